// AngelaMos | 2026
// repository.go

package request

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ucsd-tech/sigi-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, request *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	GetByIDAny(ctx context.Context, id string) (*Request, error)
	Update(ctx context.Context, request *Request) error
	SetDeleted(ctx context.Context, id string, deleted bool) error
	List(ctx context.Context, params ListRequestsParams) ([]Request, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const requestColumns = `id, solicitante_id, tipo_solicitud, descripcion,
	proyecto_id, estado, comentarios, revisado_por, fecha_resolucion,
	is_deleted, created_at, updated_at`

func (r *repository) Create(ctx context.Context, request *Request) error {
	query := `
		INSERT INTO requests (
			id, solicitante_id, tipo_solicitud, descripcion, proyecto_id,
			comentarios
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, request, query,
		request.ID,
		request.SolicitanteID,
		request.TipoSolicitud,
		request.Descripcion,
		request.ProyectoID,
		request.Comentarios,
	)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Request, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM requests WHERE id = $1 AND NOT is_deleted`,
		requestColumns)

	var request Request
	err := r.db.GetContext(ctx, &request, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get request: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}

	return &request, nil
}

func (r *repository) GetByIDAny(ctx context.Context, id string) (*Request, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM requests WHERE id = $1`, requestColumns)

	var request Request
	err := r.db.GetContext(ctx, &request, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get request: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}

	return &request, nil
}

func (r *repository) Update(ctx context.Context, request *Request) error {
	query := `
		UPDATE requests
		SET estado = $2, comentarios = $3, revisado_por = $4,
		    fecha_resolucion = $5, updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &request.UpdatedAt, query,
		request.ID,
		request.Estado,
		request.Comentarios,
		request.RevisadoPor,
		request.FechaResolucion,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update request: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}

	return nil
}

func (r *repository) SetDeleted(
	ctx context.Context,
	id string,
	deleted bool,
) error {
	query := `
		UPDATE requests
		SET is_deleted = $2, updated_at = NOW()
		WHERE id = $1 AND is_deleted = NOT $2`

	result, err := r.db.ExecContext(ctx, query, id, deleted)
	if err != nil {
		return fmt.Errorf("set request deleted: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set request deleted: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set request deleted: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListRequestsParams,
) ([]Request, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "NOT is_deleted")

	if params.Estado != "" {
		conditions = append(conditions, fmt.Sprintf("estado = $%d", argIdx))
		args = append(args, params.Estado)
		argIdx++
	}

	if params.Tipo != "" {
		conditions = append(conditions, fmt.Sprintf(
			"tipo_solicitud = $%d", argIdx))
		args = append(args, params.Tipo)
		argIdx++
	}

	if params.SolicitanteID != "" {
		conditions = append(conditions, fmt.Sprintf(
			"solicitante_id = $%d", argIdx))
		args = append(args, params.SolicitanteID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM requests WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM requests
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		requestColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var requests []Request
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}

	return requests, total, nil
}
