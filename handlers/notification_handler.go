package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dosada05/tcg-tournaments/services"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(ns services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns}
}

// ListHandler godoc
// @Summary  Notifications of the caller, newest first
// @Tags     notifications
// @Produce  json
// @Param    unread  query  bool  false  "Only unread"
// @Param    limit   query  int   false  "Page size"
// @Success  200  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /notifications [get]
func (h *NotificationHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0, 1)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	unread, _ := strconv.ParseBool(r.URL.Query().Get("unread"))

	notifications, err := h.notificationService.ListNotifications(r.Context(), actorFrom(r), unread, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"notifications": notifications}, nil)
}

// MarkReadHandler godoc
// @Summary  Mark every notification of the caller as read
// @Tags     notifications
// @Produce  json
// @Success  200  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /notifications/read [post]
func (h *NotificationHandler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	n, err := h.notificationService.MarkNotificationsRead(r.Context(), actorFrom(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"marked": n}, nil)
}
