// AngelaMos | 2026
// repository.go

package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ucsd-tech/sigi-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	GetByIDAny(ctx context.Context, id string) (*Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, usuarioID string) (int, error)
	SetDeleted(ctx context.Context, id string, deleted bool) error
	List(ctx context.Context, params ListNotificationsParams) ([]Notification, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const notificationColumns = `id, usuario_id, tipo, mensaje, recurso_id,
	is_read, is_deleted, created_at, updated_at`

func (r *repository) Create(ctx context.Context, notification *Notification) error {
	query := `
		INSERT INTO notifications (id, usuario_id, tipo, mensaje, recurso_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, notification, query,
		notification.ID,
		notification.UsuarioID,
		notification.Tipo,
		notification.Mensaje,
		notification.RecursoID,
	)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Notification, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM notifications WHERE id = $1 AND NOT is_deleted`,
		notificationColumns)

	var notification Notification
	err := r.db.GetContext(ctx, &notification, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get notification: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}

	return &notification, nil
}

func (r *repository) GetByIDAny(ctx context.Context, id string) (*Notification, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM notifications WHERE id = $1`, notificationColumns)

	var notification Notification
	err := r.db.GetContext(ctx, &notification, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get notification: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}

	return &notification, nil
}

func (r *repository) MarkRead(ctx context.Context, id string) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("mark notification read: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) MarkAllRead(
	ctx context.Context,
	usuarioID string,
) (int, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, updated_at = NOW()
		WHERE usuario_id = $1 AND NOT is_read AND NOT is_deleted`

	result, err := r.db.ExecContext(ctx, query, usuarioID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	return int(rows), nil
}

func (r *repository) SetDeleted(
	ctx context.Context,
	id string,
	deleted bool,
) error {
	query := `
		UPDATE notifications
		SET is_deleted = $2, updated_at = NOW()
		WHERE id = $1 AND is_deleted = NOT $2`

	result, err := r.db.ExecContext(ctx, query, id, deleted)
	if err != nil {
		return fmt.Errorf("set notification deleted: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set notification deleted: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set notification deleted: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListNotificationsParams,
) ([]Notification, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "NOT is_deleted")

	if params.UsuarioID != "" {
		conditions = append(conditions, fmt.Sprintf(
			"usuario_id = $%d", argIdx))
		args = append(args, params.UsuarioID)
		argIdx++
	}

	if params.UnreadOnly {
		conditions = append(conditions, "NOT is_read")
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM notifications WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM notifications
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		notificationColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var notifications []Notification
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	return notifications, total, nil
}
