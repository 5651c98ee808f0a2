package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/Dosada05/tcg-tournaments/services"
	"github.com/google/uuid"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
}

func NewRegistrationHandler(rs services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: rs}
}

type registerInput struct {
	PlayerID uuid.UUID `json:"player_id"`
}

// RegisterHandler godoc
// @Summary      Register for a tournament
// @Description  Without a body the caller registers themselves. Operators may pass player_id.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        tournamentID  path  string  true  "Tournament ID"
// @Success      201  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/registrations [post]
func (h *RegistrationHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input registerInput
	if err := readOptionalJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reg, warnings, err := h.registrationService.Register(r.Context(), actorFrom(r), tournamentID, input.PlayerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"registration": reg}, warnings)
}

// ListHandler godoc
// @Summary  Registrations of a tournament in registration order
// @Tags     registrations
// @Produce  json
// @Param    tournamentID  path  string  true  "Tournament ID"
// @Success  200  {object}  map[string]interface{}
// @Router   /tournaments/{tournamentID}/registrations [get]
func (h *RegistrationHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	regs, err := h.registrationService.ListRegistrations(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"registrations": regs}, nil)
}

// CheckInAllHandler godoc
// @Summary  Mark every active registration present
// @Tags     registrations
// @Produce  json
// @Param    tournamentID  path  string  true  "Tournament ID"
// @Success  200  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/check-in [post]
func (h *RegistrationHandler) CheckInAllHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	count, err := h.registrationService.BulkCheckIn(r.Context(), actorFrom(r), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"checked_in": count}, nil)
}

type registrationFunc func(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Registration, error)

func (h *RegistrationHandler) update(fn registrationFunc) http.HandlerFunc {
	return h.updateWithWarnings(func(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Registration, services.Warnings, error) {
		reg, err := fn(ctx, actor, id)
		return reg, nil, err
	})
}

func (h *RegistrationHandler) updateWithWarnings(fn func(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Registration, services.Warnings, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := getIDFromURL(r, "registrationID")
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		reg, warnings, err := fn(r.Context(), actorFrom(r), id)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"registration": reg}, warnings)
	}
}

// WithdrawHandler godoc
// @Summary  Withdraw a registration while registration is open
// @Tags     registrations
// @Param    registrationID  path  string  true  "Registration ID"
// @Success  200  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /registrations/{registrationID}/withdraw [post]
func (h *RegistrationHandler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	h.updateWithWarnings(h.registrationService.Withdraw)(w, r)
}

// ConfirmHandler godoc
// @Summary  Confirm a pending registration
// @Tags     registrations
// @Param    registrationID  path  string  true  "Registration ID"
// @Success  200  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /registrations/{registrationID}/confirm [post]
func (h *RegistrationHandler) ConfirmHandler(w http.ResponseWriter, r *http.Request) {
	h.update(h.registrationService.Confirm)(w, r)
}

// PresentHandler godoc
// @Summary  Check a player in
// @Tags     registrations
// @Param    registrationID  path  string  true  "Registration ID"
// @Success  200  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /registrations/{registrationID}/present [post]
func (h *RegistrationHandler) PresentHandler(w http.ResponseWriter, r *http.Request) {
	h.update(h.registrationService.MarkPresent)(w, r)
}

// AbsentHandler godoc
// @Summary  Mark a player absent
// @Tags     registrations
// @Param    registrationID  path  string  true  "Registration ID"
// @Success  200  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /registrations/{registrationID}/absent [post]
func (h *RegistrationHandler) AbsentHandler(w http.ResponseWriter, r *http.Request) {
	h.update(h.registrationService.MarkAbsent)(w, r)
}

// CancelHandler godoc
// @Summary  Cancel a registration as the organizer
// @Tags     registrations
// @Param    registrationID  path  string  true  "Registration ID"
// @Success  200  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /registrations/{registrationID}/cancel [post]
func (h *RegistrationHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	h.updateWithWarnings(h.registrationService.CancelRegistration)(w, r)
}

// PaidHandler godoc
// @Summary  Record the entry fee as paid
// @Tags     registrations
// @Param    registrationID  path  string  true  "Registration ID"
// @Success  200  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /registrations/{registrationID}/paid [post]
func (h *RegistrationHandler) PaidHandler(w http.ResponseWriter, r *http.Request) {
	h.update(h.registrationService.MarkPaid)(w, r)
}

// RefundedHandler godoc
// @Summary  Record a refund
// @Tags     registrations
// @Param    registrationID  path  string  true  "Registration ID"
// @Success  200  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /registrations/{registrationID}/refunded [post]
func (h *RegistrationHandler) RefundedHandler(w http.ResponseWriter, r *http.Request) {
	h.update(h.registrationService.MarkRefunded)(w, r)
}

// DeleteHandler godoc
// @Summary  Remove a registration
// @Tags     registrations
// @Param    registrationID  path  string  true  "Registration ID"
// @Success  204
// @Security BearerAuth
// @Router   /registrations/{registrationID} [delete]
func (h *RegistrationHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.registrationService.Remove(r.Context(), actorFrom(r), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
