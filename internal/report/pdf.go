// AngelaMos | 2026
// pdf.go

package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

func newReportPDF(title string) *fpdf.Fpdf {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(4)
	return pdf
}

func writeTableHeader(pdf *fpdf.Fpdf, widths []float64, headers []string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 8)
}

// truncate keeps table cells on one line; full values live in the CSV
// export.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func renderProjectsPDF(rows []ProjectRow) ([]byte, error) {
	pdf := newReportPDF("Reporte de Proyectos")

	widths := []float64{50, 25, 25, 22, 22, 60, 45, 28}
	writeTableHeader(pdf, widths, []string{
		"Nombre", "Estado", "Presupuesto", "Inicio", "Fin",
		"Investigadores", "Especializaciones", "Puntuacion",
	})

	for _, row := range rows {
		cells := []string{
			truncate(row.Nombre, 38),
			row.Estado,
			fmt.Sprintf("%.2f", row.Presupuesto),
			row.Cronograma.FechaInicio.Format("2006-01-02"),
			row.Cronograma.FechaFin.Format("2006-01-02"),
			truncate(strings.Join(row.Investigadores, "; "), 48),
			truncate(strings.Join(row.Especializaciones, "; "), 34),
			formatAverage(row.AvgPuntuacion),
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render projects pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func renderEvaluationsPDF(rows []EvaluationRow) ([]byte, error) {
	pdf := newReportPDF("Reporte de Evaluaciones")

	widths := []float64{55, 25, 45, 28, 22, 75, 25}
	writeTableHeader(pdf, widths, []string{
		"Proyecto", "Estado", "Evaluador", "Rol", "Puntuacion",
		"Comentarios", "Fecha",
	})

	for _, row := range rows {
		cells := []string{
			truncate(row.Proyecto, 42),
			row.ProyectoEstado,
			truncate(row.Evaluador, 34),
			row.EvaluadorRole,
			fmt.Sprintf("%.2f", row.Puntuacion),
			truncate(row.Comentarios, 58),
			row.CreatedAt.Format("2006-01-02"),
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render evaluations pdf: %w", err)
	}
	return buf.Bytes(), nil
}
