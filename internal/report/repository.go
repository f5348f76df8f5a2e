// AngelaMos | 2026
// repository.go

package report

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ucsd-tech/sigi-backend/internal/core"
	"github.com/ucsd-tech/sigi-backend/internal/project"
)

// ProjectRow is one line of the detailed project report: the project
// joined with its investigador identities and the average score of its
// non-deleted evaluations. AvgPuntuacion is nil when nothing has been
// evaluated yet.
type ProjectRow struct {
	ID                string             `db:"id"`
	Nombre            string             `db:"nombre"`
	Descripcion       string             `db:"descripcion"`
	Estado            string             `db:"estado"`
	Presupuesto       float64            `db:"presupuesto"`
	Cronograma        project.Cronograma `db:"cronograma"`
	Investigadores    pq.StringArray     `db:"investigador_nombres"`
	Especializaciones pq.StringArray     `db:"especializaciones"`
	AvgPuntuacion     *float64           `db:"avg_puntuacion"`
	CreatedAt         time.Time          `db:"created_at"`
}

// EvaluationRow is one line of the detailed evaluation report.
type EvaluationRow struct {
	ID             string    `db:"id"`
	Evaluador      string    `db:"evaluador"`
	EvaluadorRole  string    `db:"evaluador_role"`
	Proyecto       string    `db:"proyecto"`
	ProyectoEstado string    `db:"proyecto_estado"`
	Puntuacion     float64   `db:"puntuacion"`
	Comentarios    string    `db:"comentarios"`
	CreatedAt      time.Time `db:"created_at"`
}

type Repository interface {
	// DetailedProjects returns active projects; memberID, when
	// non-empty, restricts the set to projects the user belongs to.
	DetailedProjects(ctx context.Context, memberID string) ([]ProjectRow, error)
	// DetailedEvaluations returns active evaluations of active
	// projects, scoped the same way.
	DetailedEvaluations(ctx context.Context, memberID string) ([]EvaluationRow, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) DetailedProjects(
	ctx context.Context,
	memberID string,
) ([]ProjectRow, error) {
	query := `
		SELECT p.id, p.nombre, p.descripcion, p.estado, p.presupuesto,
		       p.cronograma, p.created_at,
		       COALESCE(inv.nombres, '{}') AS investigador_nombres,
		       COALESCE(inv.especializaciones, '{}') AS especializaciones,
		       ev.avg_puntuacion
		FROM projects p
		LEFT JOIN LATERAL (
			SELECT array_agg(u.nombre || ' ' || u.apellido ORDER BY u.apellido) AS nombres,
			       array_agg(u.especializacion ORDER BY u.apellido) AS especializaciones
			FROM users u
			WHERE u.id::text = ANY(p.investigadores)
		) inv ON TRUE
		LEFT JOIN LATERAL (
			SELECT AVG(e.puntuacion) AS avg_puntuacion
			FROM evaluations e
			WHERE e.project_id = p.id AND NOT e.is_deleted
		) ev ON TRUE
		WHERE NOT p.is_deleted
		  AND ($1 = '' OR $1 = ANY(p.investigadores))
		ORDER BY p.created_at DESC`

	var rows []ProjectRow
	if err := r.db.SelectContext(ctx, &rows, query, memberID); err != nil {
		return nil, fmt.Errorf("detailed projects: %w", err)
	}

	return rows, nil
}

func (r *repository) DetailedEvaluations(
	ctx context.Context,
	memberID string,
) ([]EvaluationRow, error) {
	query := `
		SELECT e.id, e.puntuacion, e.comentarios, e.created_at,
		       u.nombre || ' ' || u.apellido AS evaluador,
		       u.role AS evaluador_role,
		       p.nombre AS proyecto,
		       p.estado AS proyecto_estado
		FROM evaluations e
		JOIN users u ON u.id = e.evaluator_id
		JOIN projects p ON p.id = e.project_id
		WHERE NOT e.is_deleted
		  AND NOT p.is_deleted
		  AND ($1 = '' OR $1 = ANY(p.investigadores))
		ORDER BY e.created_at DESC`

	var rows []EvaluationRow
	if err := r.db.SelectContext(ctx, &rows, query, memberID); err != nil {
		return nil, fmt.Errorf("detailed evaluations: %w", err)
	}

	return rows, nil
}
