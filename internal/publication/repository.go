// AngelaMos | 2026
// repository.go

package publication

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/ucsd-tech/sigi-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, publication *Publication) error
	GetByID(ctx context.Context, id string) (*Publication, error)
	GetByIDAny(ctx context.Context, id string) (*Publication, error)
	Update(ctx context.Context, publication *Publication) error
	SetDeleted(ctx context.Context, id string, deleted bool) error
	List(ctx context.Context, params ListPublicationsParams) ([]Publication, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const publicationColumns = `id, titulo, fecha, proyecto_id, revista,
	resumen, palabras_clave, tipo_publicacion, estado, anexos, idioma,
	autores, is_deleted, created_at, updated_at`

func (r *repository) Create(ctx context.Context, publication *Publication) error {
	query := `
		INSERT INTO publications (
			id, titulo, fecha, proyecto_id, revista, resumen,
			palabras_clave, tipo_publicacion, estado, anexos, idioma,
			autores
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, publication, query,
		publication.ID,
		publication.Titulo,
		publication.Fecha,
		publication.ProyectoID,
		publication.Revista,
		publication.Resumen,
		pq.Array(publication.PalabrasClave),
		publication.TipoPublicacion,
		publication.Estado,
		pq.Array(publication.Anexos),
		publication.Idioma,
		pq.Array(publication.Autores),
	)
	if err != nil {
		return fmt.Errorf("create publication: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Publication, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM publications WHERE id = $1 AND NOT is_deleted`,
		publicationColumns)

	var publication Publication
	err := r.db.GetContext(ctx, &publication, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get publication: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get publication: %w", err)
	}

	return &publication, nil
}

func (r *repository) GetByIDAny(ctx context.Context, id string) (*Publication, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM publications WHERE id = $1`, publicationColumns)

	var publication Publication
	err := r.db.GetContext(ctx, &publication, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get publication: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get publication: %w", err)
	}

	return &publication, nil
}

func (r *repository) Update(ctx context.Context, publication *Publication) error {
	query := `
		UPDATE publications
		SET titulo = $2, fecha = $3, proyecto_id = $4, revista = $5,
		    resumen = $6, palabras_clave = $7, tipo_publicacion = $8,
		    estado = $9, anexos = $10, idioma = $11, autores = $12,
		    updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &publication.UpdatedAt, query,
		publication.ID,
		publication.Titulo,
		publication.Fecha,
		publication.ProyectoID,
		publication.Revista,
		publication.Resumen,
		pq.Array(publication.PalabrasClave),
		publication.TipoPublicacion,
		publication.Estado,
		pq.Array(publication.Anexos),
		publication.Idioma,
		pq.Array(publication.Autores),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update publication: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update publication: %w", err)
	}

	return nil
}

func (r *repository) SetDeleted(
	ctx context.Context,
	id string,
	deleted bool,
) error {
	query := `
		UPDATE publications
		SET is_deleted = $2, updated_at = NOW()
		WHERE id = $1 AND is_deleted = NOT $2`

	result, err := r.db.ExecContext(ctx, query, id, deleted)
	if err != nil {
		return fmt.Errorf("set publication deleted: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set publication deleted: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set publication deleted: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListPublicationsParams,
) ([]Publication, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "NOT is_deleted")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(titulo ILIKE $%d OR resumen ILIKE $%d"+
				" OR EXISTS (SELECT 1 FROM unnest(palabras_clave) kw WHERE kw ILIKE $%d))",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Titulo != "" {
		conditions = append(conditions, fmt.Sprintf("titulo ILIKE $%d", argIdx))
		args = append(args, "%"+escapeLike(params.Titulo)+"%")
		argIdx++
	}

	if params.TipoPublicacion != "" {
		conditions = append(conditions, fmt.Sprintf(
			"tipo_publicacion = $%d", argIdx))
		args = append(args, params.TipoPublicacion)
		argIdx++
	}

	if params.AutorID != "" {
		conditions = append(conditions, fmt.Sprintf(
			"$%d = ANY(autores)", argIdx))
		args = append(args, params.AutorID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM publications WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count publications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM publications
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		publicationColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var publications []Publication
	if err := r.db.SelectContext(ctx, &publications, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list publications: %w", err)
	}

	return publications, total, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
