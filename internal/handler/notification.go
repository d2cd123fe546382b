package handler

import (
	"net/http"
	"strconv"

	"github.com/soukmarket/souk-api/internal/domain/notification"
)

type notificationListDTO struct {
	Notifications []notificationDTO `json:"notifications"`
	Pagination    paginationDTO     `json:"pagination"`
}

type paginationDTO struct {
	Total       int `json:"total"`
	Page        int `json:"page"`
	Pages       int `json:"pages"`
	UnreadCount int `json:"unreadCount"`
}

// listNotifications returns a page of the caller's notifications.
func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := notification.ListParams{
		Page:       intQuery(q.Get("page"), 1),
		Limit:      intQuery(q.Get("limit"), 20),
		UnreadOnly: q.Get("unreadOnly") == "true",
	}

	items, page, err := h.notifications.List(r.Context(), identity(r).UserID, params)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	out := make([]notificationDTO, len(items))
	for i := range items {
		out[i] = toNotificationDTO(&items[i])
	}
	respond(w, http.StatusOK, "notifications retrieved successfully", notificationListDTO{
		Notifications: out,
		Pagination: paginationDTO{
			Total:       page.Total,
			Page:        page.Page,
			Pages:       page.Pages,
			UnreadCount: page.UnreadCount,
		},
	})
}

// markNotificationRead flags one notification as read.
func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.MarkRead(r.Context(), identity(r).UserID, r.PathValue("id"))
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "notification marked as read", toNotificationDTO(n))
}

type markAllReadDTO struct {
	ModifiedCount int `json:"modifiedCount"`
}

// markAllNotificationsRead flags every unread notification of the caller.
func (h *Handler) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.MarkAllRead(r.Context(), identity(r).UserID)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "all notifications marked as read", markAllReadDTO{ModifiedCount: n})
}

// deleteNotification soft-deletes one of the caller's notifications.
func (h *Handler) deleteNotification(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.SoftDelete(r.Context(), identity(r).UserID, r.PathValue("id"))
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "notification deleted", toNotificationDTO(n))
}

func intQuery(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}
