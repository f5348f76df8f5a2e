// AngelaMos | 2026
// csv.go

package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

func renderProjectsCSV(rows []ProjectRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Nombre", "Descripcion", "Estado", "Presupuesto",
		"Fecha Inicio", "Fecha Fin", "Investigadores",
		"Especializaciones", "Puntuacion Promedio",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Nombre,
			row.Descripcion,
			row.Estado,
			fmt.Sprintf("%.2f", row.Presupuesto),
			row.Cronograma.FechaInicio.Format("2006-01-02"),
			row.Cronograma.FechaFin.Format("2006-01-02"),
			strings.Join(row.Investigadores, "; "),
			strings.Join(row.Especializaciones, "; "),
			formatAverage(row.AvgPuntuacion),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

func renderEvaluationsCSV(rows []EvaluationRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Proyecto", "Estado del Proyecto", "Evaluador", "Rol",
		"Puntuacion", "Comentarios", "Fecha",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Proyecto,
			row.ProyectoEstado,
			row.Evaluador,
			row.EvaluadorRole,
			fmt.Sprintf("%.2f", row.Puntuacion),
			row.Comentarios,
			row.CreatedAt.Format("2006-01-02"),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return buf.Bytes(), nil
}
