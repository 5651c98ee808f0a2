package handlers

import (
	"net/http"

	"github.com/Dosada05/tcg-tournaments/services"
)

type MessageHandler struct {
	messageService services.MessageService
}

func NewMessageHandler(ms services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: ms}
}

// PostHandler godoc
// @Summary  Post a message to the tournament group
// @Tags     messages
// @Accept   json
// @Produce  json
// @Param    tournamentID  path  string                     true  "Tournament ID"
// @Param    input         body  services.PostMessageInput  true  "Message"
// @Success  201  {object}  map[string]interface{}
// @Failure  403  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/messages [post]
func (h *MessageHandler) PostHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.PostMessageInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	msg, warnings, err := h.messageService.PostMessage(r.Context(), actorFrom(r), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"message": msg}, warnings)
}

// ListHandler godoc
// @Summary  Messages of the tournament group, oldest first
// @Tags     messages
// @Produce  json
// @Param    tournamentID  path  string  true  "Tournament ID"
// @Success  200  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/messages [get]
func (h *MessageHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	messages, err := h.messageService.ListMessages(r.Context(), actorFrom(r), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"messages": messages}, nil)
}
