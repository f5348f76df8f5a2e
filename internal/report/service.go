// AngelaMos | 2026
// service.go

package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ucsd-tech/sigi-backend/internal/authz"
	"github.com/ucsd-tech/sigi-backend/internal/core"
)

const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// Export is a rendered report ready to be sent as a download.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Service struct {
	repo Repository
	// now is swappable in tests.
	now func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// scope returns the member filter for the actor: empty means global,
// which only administrators get.
func scope(actor authz.Actor) string {
	if actor.IsAdministrador() {
		return ""
	}
	return actor.ID
}

// formatAverage renders a mean score, or "N/A" when no evaluation
// contributed to it.
func formatAverage(avg *float64) string {
	if avg == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *avg)
}

// buildFilename produces `<prefix>_<timestamp>.<ext>` with the colons
// and dots of the ISO timestamp swapped for dashes, so the name is
// safe on every filesystem.
func (s *Service) buildFilename(prefix, ext string) string {
	stamp := s.now().UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.ReplaceAll(stamp, ":", "-")
	stamp = strings.ReplaceAll(stamp, ".", "-")
	return fmt.Sprintf("%s_%s.%s", prefix, stamp, ext)
}

func (s *Service) ProjectReport(
	ctx context.Context,
	actor authz.Actor,
	format string,
) (*Export, error) {
	rows, err := s.repo.DetailedProjects(ctx, scope(actor))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, core.BadRequestError("no data for report")
	}

	switch format {
	case FormatCSV:
		data, err := renderProjectsCSV(rows)
		if err != nil {
			return nil, err
		}
		return &Export{
			Filename:    s.buildFilename("Reporte_Proyectos", "csv"),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case FormatPDF:
		data, err := renderProjectsPDF(rows)
		if err != nil {
			return nil, err
		}
		return &Export{
			Filename:    s.buildFilename("Reporte_Proyectos", "pdf"),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, core.BadRequestError("format must be csv or pdf")
	}
}

func (s *Service) EvaluationReport(
	ctx context.Context,
	actor authz.Actor,
	format string,
) (*Export, error) {
	rows, err := s.repo.DetailedEvaluations(ctx, scope(actor))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, core.BadRequestError("no data for report")
	}

	switch format {
	case FormatCSV:
		data, err := renderEvaluationsCSV(rows)
		if err != nil {
			return nil, err
		}
		return &Export{
			Filename:    s.buildFilename("Reporte_Evaluaciones", "csv"),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case FormatPDF:
		data, err := renderEvaluationsPDF(rows)
		if err != nil {
			return nil, err
		}
		return &Export{
			Filename:    s.buildFilename("Reporte_Evaluaciones", "pdf"),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, core.BadRequestError("format must be csv or pdf")
	}
}
