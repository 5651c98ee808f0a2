package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/Dosada05/tcg-tournaments/ranking"
	"github.com/Dosada05/tcg-tournaments/services"
	"github.com/google/uuid"
)

const defaultListLimit = 20

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

// CreateHandler godoc
// @Summary      Create a draft tournament
// @Tags         tournaments
// @Accept       json
// @Produce      json
// @Param        input  body      services.CreateTournamentInput  true  "Tournament"
// @Success      201    {object}  map[string]interface{}
// @Failure      422    {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments [post]
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, warnings, err := h.tournamentService.CreateTournament(r.Context(), actorFrom(r), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"tournament": tournament}, warnings)
}

// GetByIDHandler godoc
// @Summary      Tournament with its registrations
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID  path  string  true  "Tournament ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"tournament": tournament}, nil)
}

// ListHandler godoc
// @Summary      List tournaments
// @Description  Anonymous callers and players only see published, closed and in-progress tournaments.
// @Tags         tournaments
// @Produce      json
// @Param        store_id  query  string  false  "Store ID"
// @Param        game      query  string  false  "Game"
// @Param        status    query  string  false  "Status"
// @Param        from      query  string  false  "First start date (YYYY-MM-DD)"
// @Param        to        query  string  false  "Last start date (YYYY-MM-DD)"
// @Param        limit     query  int     false  "Page size"
// @Param        offset    query  int     false  "Offset"
// @Success      200  {object}  map[string]interface{}
// @Router       /tournaments [get]
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter services.TournamentFilter
	var err error

	if filter.StoreID, err = queryUUID(r, "store_id"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if filter.FromDate, err = queryDate(r, "from"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if filter.ToDate, err = queryDate(r, "to"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if filter.Limit, err = queryInt(r, "limit", defaultListLimit, 1); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset", 0, 0); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	query := r.URL.Query()
	if game := query.Get("game"); game != "" {
		g := models.GameType(game)
		filter.Game = &g
	}
	if status := query.Get("status"); status != "" {
		s := models.TournamentStatus(status)
		if !s.Valid() {
			badRequestResponse(w, r, fmt.Errorf("invalid status query parameter %q", status))
			return
		}
		filter.Status = &s
	}

	tournaments, err := h.tournamentService.ListTournaments(r.Context(), actorFrom(r), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil)
}

// UpdateHandler godoc
// @Summary      Edit tournament fields
// @Description  Registrants are notified when the tournament already has registrations.
// @Tags         tournaments
// @Accept       json
// @Produce      json
// @Param        tournamentID  path  string                         true  "Tournament ID"
// @Param        input         body  services.UpdateTournamentInput  true  "Changed fields"
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID} [patch]
func (h *TournamentHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.UpdateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, warnings, err := h.tournamentService.UpdateTournament(r.Context(), actorFrom(r), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"tournament": tournament}, warnings)
}

type transitionFunc func(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Tournament, services.Warnings, error)

func (h *TournamentHandler) transition(fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := getIDFromURL(r, "tournamentID")
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		tournament, warnings, err := fn(r.Context(), actorFrom(r), id)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"tournament": tournament}, warnings)
	}
}

// PublishHandler godoc
// @Summary  Open registration (draft to published)
// @Tags     tournaments
// @Param    tournamentID  path  string  true  "Tournament ID"
// @Success  200  {object}  map[string]interface{}
// @Failure  409  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/publish [post]
func (h *TournamentHandler) PublishHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(h.tournamentService.Publish)(w, r)
}

// CloseRegistrationsHandler godoc
// @Summary  Close registration (published to closed)
// @Tags     tournaments
// @Param    tournamentID  path  string  true  "Tournament ID"
// @Success  200  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/close [post]
func (h *TournamentHandler) CloseRegistrationsHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(h.tournamentService.CloseRegistrations)(w, r)
}

// StartHandler godoc
// @Summary  Start the tournament
// @Tags     tournaments
// @Param    tournamentID  path  string  true  "Tournament ID"
// @Success  200  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/start [post]
func (h *TournamentHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(h.tournamentService.Start)(w, r)
}

// CancelHandler godoc
// @Summary  Cancel the tournament
// @Tags     tournaments
// @Param    tournamentID  path  string  true  "Tournament ID"
// @Success  200  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/cancel [post]
func (h *TournamentHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(h.tournamentService.Cancel)(w, r)
}

// CompleteHandler godoc
// @Summary      Complete the tournament with its final ranking
// @Tags         tournaments
// @Accept       json
// @Produce      json
// @Param        tournamentID  path  string         true  "Tournament ID"
// @Param        input         body  ranking.Input  true  "Full order or podium"
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Failure      422  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/complete [post]
func (h *TournamentHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input ranking.Input
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, warnings, err := h.tournamentService.Complete(r.Context(), actorFrom(r), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"tournament": tournament}, warnings)
}
