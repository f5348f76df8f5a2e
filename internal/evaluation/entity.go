// AngelaMos | 2026
// entity.go

package evaluation

import (
	"time"
)

// Evaluation is an administrator's score for a project. At most one
// active evaluation exists per (project, evaluator) pair; the partial
// unique index enforces it.
type Evaluation struct {
	ID          string    `db:"id"`
	ProjectID   string    `db:"project_id"`
	EvaluatorID string    `db:"evaluator_id"`
	Puntuacion  float64   `db:"puntuacion"`
	Comentarios string    `db:"comentarios"`
	IsDeleted   bool      `db:"is_deleted"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
