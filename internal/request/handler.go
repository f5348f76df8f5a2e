// AngelaMos | 2026
// handler.go

package request

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
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/requests", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{requestID}", h.Get)
		r.Put("/{requestID}", h.Update)
		r.Delete("/{requestID}", h.Delete)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/{requestID}/any", h.GetAny)
			r.Post("/{requestID}/restore", h.Restore)
		})
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	request, err := h.service.Create(
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

	core.Created(w, ToRequestResponse(request))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	request, err := h.service.Get(
		r.Context(),
		middleware.GetActor(r.Context()),
		requestID,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "request")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToRequestResponse(request))
}

func (h *Handler) GetAny(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	request, err := h.service.GetAny(
		r.Context(),
		middleware.GetActor(r.Context()),
		requestID,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "request")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToRequestResponse(request))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListRequestsParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "limit", 20),
		Estado:   r.URL.Query().Get("estado"),
		Tipo:     r.URL.Query().Get("tipoSolicitud"),
	}

	requests, total, err := h.service.List(
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
		ToRequestResponseList(requests),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	var req UpdateRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	request, err := h.service.Update(
		r.Context(),
		middleware.GetActor(r.Context()),
		requestID,
		req,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "request")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToRequestResponse(request))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	err := h.service.SoftDelete(
		r.Context(),
		middleware.GetActor(r.Context()),
		requestID,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "request")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	request, err := h.service.Restore(
		r.Context(),
		middleware.GetActor(r.Context()),
		requestID,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "request")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToRequestResponse(request))
}
