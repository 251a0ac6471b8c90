package http

import (
	"net/http"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/service"
)

// InboxHandler serves notifications and direct messages.
type InboxHandler struct {
	notificationSvc service.NotificationService
	messageSvc      service.MessageService
}

func NewInboxHandler(notificationSvc service.NotificationService, messageSvc service.MessageService) *InboxHandler {
	return &InboxHandler{notificationSvc: notificationSvc, messageSvc: messageSvc}
}

func (h *InboxHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	page, pageSize := queryPage(r)
	items, total, err := h.notificationSvc.GetNotifications(r.Context(), mustActor(r).UserID, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Notification]{Items: items, Total: total})
}

func (h *InboxHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.notificationSvc.MarkAsRead(r.Context(), mustActor(r).UserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InboxHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	msg, err := h.messageSvc.SendMessage(r.Context(), mustActor(r), req.RecipientID, req.Subject, req.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *InboxHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	page, pageSize := queryPage(r)
	items, total, err := h.messageSvc.ListInbox(r.Context(), mustActor(r), page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Message]{Items: items, Total: total})
}

func (h *InboxHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	other, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, pageSize := queryPage(r)
	items, err := h.messageSvc.ListConversation(r.Context(), mustActor(r), other, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Message]{Items: items, Total: int32(len(items))})
}

func (h *InboxHandler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.messageSvc.MarkAsRead(r.Context(), mustActor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
