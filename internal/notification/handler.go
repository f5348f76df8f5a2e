// AngelaMos | 2026
// handler.go

package notification

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ucsd-tech/sigi-backend/internal/core"
	"github.com/ucsd-tech/sigi-backend/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/readall", h.MarkAllRead)
		r.Put("/{notificationID}/read", h.MarkRead)
		r.Delete("/{notificationID}", h.Delete)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/admin/all", h.ListAll)
			r.Put("/{notificationID}/restore", h.Restore)
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListNotificationsParams{
		Page:       core.QueryInt(r, "page", 1),
		PageSize:   core.QueryInt(r, "limit", 20),
		UnreadOnly: r.URL.Query().Get("unread") == "true",
	}

	notifications, total, err := h.service.List(
		r.Context(),
		middleware.GetActor(r.Context()),
		params,
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToNotificationResponseList(notifications),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	params := ListNotificationsParams{
		Page:       core.QueryInt(r, "page", 1),
		PageSize:   core.QueryInt(r, "limit", 20),
		UsuarioID:  r.URL.Query().Get("usuario"),
		UnreadOnly: r.URL.Query().Get("unread") == "true",
	}

	notifications, total, err := h.service.ListAll(
		r.Context(),
		middleware.GetActor(r.Context()),
		params,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(
		w,
		ToNotificationResponseList(notifications),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID := chi.URLParam(r, "notificationID")

	notification, err := h.service.MarkRead(
		r.Context(),
		middleware.GetActor(r.Context()),
		notificationID,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "notification")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToNotificationResponse(notification))
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	marked, err := h.service.MarkAllRead(
		r.Context(),
		middleware.GetActor(r.Context()),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, MarkAllReadResponse{Marked: marked})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	notificationID := chi.URLParam(r, "notificationID")

	err := h.service.SoftDelete(
		r.Context(),
		middleware.GetActor(r.Context()),
		notificationID,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "notification")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	notificationID := chi.URLParam(r, "notificationID")

	notification, err := h.service.Restore(
		r.Context(),
		middleware.GetActor(r.Context()),
		notificationID,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "notification")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToNotificationResponse(notification))
}
