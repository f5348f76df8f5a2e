// AngelaMos | 2026
// handler.go

package evaluation

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
	r.Route("/evaluations", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/project/{projectID}", h.ListByProject)
		r.Get("/{evaluationID}", h.Get)
		r.Put("/{evaluationID}", h.Update)
		r.Delete("/{evaluationID}", h.Delete)
		r.Post("/{evaluationID}/restore", h.Restore)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	evaluation, err := h.service.Create(
		r.Context(),
		middleware.GetActor(r.Context()),
		req,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "project")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToEvaluationResponse(evaluation))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	evaluationID := chi.URLParam(r, "evaluationID")

	evaluation, err := h.service.Get(r.Context(), evaluationID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "evaluation")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToEvaluationResponse(evaluation))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListEvaluationsParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "limit", 20),
	}

	evaluations, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToEvaluationResponseList(evaluations),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	params := ListEvaluationsParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "limit", 20),
	}

	evaluations, total, err := h.service.ListByProject(r.Context(), projectID, params)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "project")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToEvaluationResponseList(evaluations),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	evaluationID := chi.URLParam(r, "evaluationID")

	var req UpdateEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	evaluation, err := h.service.Update(
		r.Context(),
		middleware.GetActor(r.Context()),
		evaluationID,
		req,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "evaluation")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToEvaluationResponse(evaluation))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	evaluationID := chi.URLParam(r, "evaluationID")

	err := h.service.SoftDelete(
		r.Context(),
		middleware.GetActor(r.Context()),
		evaluationID,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "evaluation")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	evaluationID := chi.URLParam(r, "evaluationID")

	evaluation, err := h.service.Restore(
		r.Context(),
		middleware.GetActor(r.Context()),
		evaluationID,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "evaluation")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToEvaluationResponse(evaluation))
}
