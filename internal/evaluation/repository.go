// AngelaMos | 2026
// repository.go

package evaluation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ucsd-tech/sigi-backend/internal/core"
)

type Repository interface {
	// CreateTx inserts on the supplied executor so the caller can pair
	// it with the project evaluated-flag flip in one transaction.
	CreateTx(ctx context.Context, db core.DBTX, evaluation *Evaluation) error
	GetByID(ctx context.Context, id string) (*Evaluation, error)
	GetByIDAny(ctx context.Context, id string) (*Evaluation, error)
	Update(ctx context.Context, evaluation *Evaluation) error
	SetDeleted(ctx context.Context, id string, deleted bool) error
	List(ctx context.Context, params ListEvaluationsParams) ([]Evaluation, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const evaluationColumns = `id, project_id, evaluator_id, puntuacion,
	comentarios, is_deleted, created_at, updated_at`

func (r *repository) CreateTx(
	ctx context.Context,
	db core.DBTX,
	evaluation *Evaluation,
) error {
	query := `
		INSERT INTO evaluations (
			id, project_id, evaluator_id, puntuacion, comentarios
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := db.GetContext(ctx, evaluation, query,
		evaluation.ID,
		evaluation.ProjectID,
		evaluation.EvaluatorID,
		evaluation.Puntuacion,
		evaluation.Comentarios,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create evaluation: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create evaluation: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Evaluation, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM evaluations WHERE id = $1 AND NOT is_deleted`,
		evaluationColumns)

	var evaluation Evaluation
	err := r.db.GetContext(ctx, &evaluation, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get evaluation: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get evaluation: %w", err)
	}

	return &evaluation, nil
}

func (r *repository) GetByIDAny(ctx context.Context, id string) (*Evaluation, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM evaluations WHERE id = $1`, evaluationColumns)

	var evaluation Evaluation
	err := r.db.GetContext(ctx, &evaluation, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get evaluation: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get evaluation: %w", err)
	}

	return &evaluation, nil
}

func (r *repository) Update(ctx context.Context, evaluation *Evaluation) error {
	query := `
		UPDATE evaluations
		SET puntuacion = $2, comentarios = $3, updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &evaluation.UpdatedAt, query,
		evaluation.ID,
		evaluation.Puntuacion,
		evaluation.Comentarios,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update evaluation: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update evaluation: %w", err)
	}

	return nil
}

func (r *repository) SetDeleted(
	ctx context.Context,
	id string,
	deleted bool,
) error {
	query := `
		UPDATE evaluations
		SET is_deleted = $2, updated_at = NOW()
		WHERE id = $1 AND is_deleted = NOT $2`

	result, err := r.db.ExecContext(ctx, query, id, deleted)
	if err != nil {
		return fmt.Errorf("set evaluation deleted: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set evaluation deleted: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set evaluation deleted: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListEvaluationsParams,
) ([]Evaluation, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "NOT is_deleted")

	if params.ProjectID != "" {
		conditions = append(conditions, fmt.Sprintf("project_id = $%d", argIdx))
		args = append(args, params.ProjectID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM evaluations WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count evaluations: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM evaluations
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		evaluationColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var evaluations []Evaluation
	if err := r.db.SelectContext(ctx, &evaluations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list evaluations: %w", err)
	}

	return evaluations, total, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
