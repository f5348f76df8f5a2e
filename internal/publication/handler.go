// AngelaMos | 2026
// handler.go

package publication

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
	r.Route("/publications", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/mine", h.GetMine)
		r.Get("/{publicationID}", h.Get)
		r.Put("/{publicationID}", h.Update)
		r.Delete("/{publicationID}", h.Delete)
		r.Post("/{publicationID}/restore", h.Restore)
	})
}

func listParams(r *http.Request) ListPublicationsParams {
	return ListPublicationsParams{
		Page:            core.QueryInt(r, "page", 1),
		PageSize:        core.QueryInt(r, "limit", 20),
		Search:          r.URL.Query().Get("search"),
		Titulo:          r.URL.Query().Get("titulo"),
		TipoPublicacion: r.URL.Query().Get("tipoPublicacion"),
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePublicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	publication, err := h.service.Create(
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

	core.Created(w, ToPublicationResponse(publication))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	publicationID := chi.URLParam(r, "publicationID")

	publication, err := h.service.Get(r.Context(), publicationID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "publication")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToPublicationResponse(publication))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)

	publications, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToPublicationResponseList(publications),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)

	publications, total, err := h.service.GetMine(
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
		ToPublicationResponseList(publications),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	publicationID := chi.URLParam(r, "publicationID")

	var patch core.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	publication, err := h.service.Update(
		r.Context(),
		middleware.GetActor(r.Context()),
		publicationID,
		patch,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "publication")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToPublicationResponse(publication))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	publicationID := chi.URLParam(r, "publicationID")

	err := h.service.SoftDelete(
		r.Context(),
		middleware.GetActor(r.Context()),
		publicationID,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "publication")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	publicationID := chi.URLParam(r, "publicationID")

	publication, err := h.service.Restore(
		r.Context(),
		middleware.GetActor(r.Context()),
		publicationID,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "publication")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToPublicationResponse(publication))
}
