// AngelaMos | 2026
// handler.go

package project

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ucsd-tech/sigi-backend/internal/core"
	"github.com/ucsd-tech/sigi-backend/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/projects", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/mine", h.GetMine)
		r.Get("/{projectID}", h.Get)
		r.Put("/{projectID}", h.Update)
		r.Delete("/{projectID}", h.Delete)
		r.Post("/{projectID}/restore", h.Restore)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	project, err := h.service.Create(r.Context(), req, middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToProjectResponse(project))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	project, err := h.service.Get(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "project")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToProjectResponse(project))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListProjectsParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "limit", 20),
		Search:   r.URL.Query().Get("search"),
		Estado:   r.URL.Query().Get("estado"),
	}

	projects, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToProjectResponseList(projects),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	params := ListProjectsParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "limit", 20),
		Search:   r.URL.Query().Get("search"),
		Estado:   r.URL.Query().Get("estado"),
	}

	projects, total, err := h.service.GetMine(
		r.Context(),
		middleware.GetUserID(r.Context()),
		params,
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToProjectResponseList(projects),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	var patch core.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	project, err := h.service.Update(
		r.Context(),
		middleware.GetActor(r.Context()),
		projectID,
		patch,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "project")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToProjectResponse(project))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	err := h.service.SoftDelete(
		r.Context(),
		middleware.GetActor(r.Context()),
		projectID,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "project")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	project, err := h.service.Restore(
		r.Context(),
		middleware.GetActor(r.Context()),
		projectID,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "project")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToProjectResponse(project))
}
