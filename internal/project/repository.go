// AngelaMos | 2026
// repository.go

package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/ucsd-tech/sigi-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	// GetByIDAny ignores the deleted predicate for restore flows.
	GetByIDAny(ctx context.Context, id string) (*Project, error)
	Update(ctx context.Context, project *Project) error
	SetDeleted(ctx context.Context, id string, deleted bool) error
	MarkEvaluated(ctx context.Context, db core.DBTX, id string) error
	ExistsByNombre(ctx context.Context, nombre, excludeID string) (bool, error)
	List(ctx context.Context, params ListProjectsParams) ([]Project, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const projectColumns = `id, nombre, descripcion, objetivos, presupuesto,
	cronograma, investigadores, hitos, recursos, estado, imagen,
	is_evaluated, is_deleted, created_at, updated_at`

func (r *repository) Create(ctx context.Context, project *Project) error {
	query := `
		INSERT INTO projects (
			id, nombre, descripcion, objetivos, presupuesto,
			cronograma, investigadores, hitos, recursos, estado, imagen
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, project, query,
		project.ID,
		project.Nombre,
		project.Descripcion,
		project.Objetivos,
		project.Presupuesto,
		project.Cronograma,
		pq.Array(project.Investigadores),
		project.Hitos,
		pq.Array(project.Recursos),
		project.Estado,
		project.Imagen,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create project: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create project: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Project, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM projects WHERE id = $1 AND NOT is_deleted`,
		projectColumns)

	var project Project
	err := r.db.GetContext(ctx, &project, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get project: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	return &project, nil
}

func (r *repository) GetByIDAny(ctx context.Context, id string) (*Project, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM projects WHERE id = $1`, projectColumns)

	var project Project
	err := r.db.GetContext(ctx, &project, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get project: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	return &project, nil
}

func (r *repository) Update(ctx context.Context, project *Project) error {
	query := `
		UPDATE projects
		SET nombre = $2, descripcion = $3, objetivos = $4,
		    presupuesto = $5, cronograma = $6, investigadores = $7,
		    hitos = $8, recursos = $9, estado = $10, imagen = $11,
		    updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &project.UpdatedAt, query,
		project.ID,
		project.Nombre,
		project.Descripcion,
		project.Objetivos,
		project.Presupuesto,
		project.Cronograma,
		pq.Array(project.Investigadores),
		project.Hitos,
		pq.Array(project.Recursos),
		project.Estado,
		project.Imagen,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update project: %w", core.ErrNotFound)
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("update project: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update project: %w", err)
	}

	return nil
}

func (r *repository) SetDeleted(
	ctx context.Context,
	id string,
	deleted bool,
) error {
	query := `
		UPDATE projects
		SET is_deleted = $2, updated_at = NOW()
		WHERE id = $1 AND is_deleted = NOT $2`

	result, err := r.db.ExecContext(ctx, query, id, deleted)
	if err != nil {
		return fmt.Errorf("set project deleted: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set project deleted: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set project deleted: %w", core.ErrNotFound)
	}

	return nil
}

// MarkEvaluated runs on the supplied executor so the caller can put it
// in the same transaction as the evaluation insert.
func (r *repository) MarkEvaluated(
	ctx context.Context,
	db core.DBTX,
	id string,
) error {
	query := `
		UPDATE projects
		SET is_evaluated = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted`

	result, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark project evaluated: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark project evaluated: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("mark project evaluated: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ExistsByNombre(
	ctx context.Context,
	nombre, excludeID string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM projects
			WHERE nombre = $1 AND NOT is_deleted AND id <> $2
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, nombre, excludeID); err != nil {
		return false, fmt.Errorf("check project nombre: %w", err)
	}

	return exists, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListProjectsParams,
) ([]Project, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	if !params.IncludeDeleted {
		conditions = append(conditions, "NOT is_deleted")
	} else {
		conditions = append(conditions, "TRUE")
	}

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(nombre ILIKE $%d OR descripcion ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Estado != "" {
		conditions = append(conditions, fmt.Sprintf("estado = $%d", argIdx))
		args = append(args, params.Estado)
		argIdx++
	}

	if params.MemberID != "" {
		conditions = append(conditions, fmt.Sprintf(
			"$%d = ANY(investigadores)", argIdx))
		args = append(args, params.MemberID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM projects WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM projects
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		projectColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var projects []Project
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}

	return projects, total, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
