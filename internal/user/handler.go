// AngelaMos | 2026
// handler.go

package user

import (
	"errors"
	"io"
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
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.Put("/me", h.UpdateMe)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", h.ListUsers)
			r.Get("/{userID}", h.GetUser)
			r.Put("/{userID}", h.UpdateUser)
			r.Post("/{userID}/disable", h.DisableUser)
			r.Post("/{userID}/enable", h.EnableUser)
		})
	})
}

// ListUsers returns a paginated user listing with optional search over
// nombre, apellido and email.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "limit", 20),
		Search:   r.URL.Query().Get("search"),
		Role:     r.URL.Query().Get("role"),
	}

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	h.updateProfile(w, r, middleware.GetUserID(r.Context()))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	h.updateProfile(w, r, chi.URLParam(r, "userID"))
}

func (h *Handler) updateProfile(
	w http.ResponseWriter,
	r *http.Request,
	targetID string,
) {
	if targetID == "" {
		core.Unauthorized(w, "")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	patch, err := DecodePatch(body)
	if err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	user, err := h.service.UpdateUser(
		r.Context(),
		middleware.GetActor(r.Context()),
		targetID,
		patch,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) DisableUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := h.service.Disable(
		r.Context(),
		middleware.GetActor(r.Context()),
		userID,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) EnableUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := h.service.Enable(
		r.Context(),
		middleware.GetActor(r.Context()),
		userID,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}
