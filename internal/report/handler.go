// AngelaMos | 2026
// handler.go

package report

import (
	"fmt"
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
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/projects", h.Projects)
		r.Get("/evaluations", h.Evaluations)
	})
}

func exportFormat(r *http.Request) string {
	format := r.URL.Query().Get("format")
	if format == "" {
		return FormatCSV
	}
	return format
}

func sendExport(w http.ResponseWriter, export *Export) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}

func (h *Handler) Projects(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.ProjectReport(
		r.Context(),
		middleware.GetActor(r.Context()),
		exportFormat(r),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	sendExport(w, export)
}

func (h *Handler) Evaluations(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.EvaluationReport(
		r.Context(),
		middleware.GetActor(r.Context()),
		exportFormat(r),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	sendExport(w, export)
}
