package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/tcg-tournaments/services"
)

type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

func NewScheduleHandler(ss services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: ss}
}

// CreateHandler godoc
// @Summary  Create a recurring schedule
// @Tags     schedules
// @Accept   json
// @Produce  json
// @Param    input  body  services.CreateScheduleInput  true  "Schedule"
// @Success  201  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /schedules [post]
func (h *ScheduleHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateScheduleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	schedule, err := h.scheduleService.CreateSchedule(r.Context(), actorFrom(r), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"schedule": schedule}, nil)
}

// ListByStoreHandler godoc
// @Summary  Recurring schedules of a store
// @Tags     schedules
// @Produce  json
// @Param    storeID  path  string  true  "Store ID"
// @Success  200  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /stores/{storeID}/schedules [get]
func (h *ScheduleHandler) ListByStoreHandler(w http.ResponseWriter, r *http.Request) {
	storeID, err := getIDFromURL(r, "storeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	schedules, err := h.scheduleService.ListSchedules(r.Context(), actorFrom(r), storeID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"schedules": schedules}, nil)
}

// SetActiveHandler godoc
// @Summary  Pause or resume a recurring schedule
// @Tags     schedules
// @Accept   json
// @Param    scheduleID  path  string  true  "Schedule ID"
// @Success  200  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /schedules/{scheduleID} [patch]
func (h *ScheduleHandler) SetActiveHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "scheduleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		IsActive *bool `json:"is_active"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.IsActive == nil {
		badRequestResponse(w, r, errors.New("is_active is required"))
		return
	}

	schedule, err := h.scheduleService.SetScheduleActive(r.Context(), actorFrom(r), id, *input.IsActive)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"schedule": schedule}, nil)
}

// DeleteHandler godoc
// @Summary  Delete a recurring schedule
// @Tags     schedules
// @Param    scheduleID  path  string  true  "Schedule ID"
// @Success  204
// @Security BearerAuth
// @Router   /schedules/{scheduleID} [delete]
func (h *ScheduleHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "scheduleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.scheduleService.DeleteSchedule(r.Context(), actorFrom(r), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateNextHandler godoc
// @Summary  Create the next draft occurrence of a schedule
// @Tags     schedules
// @Produce  json
// @Param    scheduleID  path  string  true  "Schedule ID"
// @Success  201  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /schedules/{scheduleID}/generate [post]
func (h *ScheduleHandler) GenerateNextHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "scheduleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tournament, warnings, err := h.scheduleService.GenerateNext(r.Context(), actorFrom(r), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"tournament": tournament}, warnings)
}
