// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/ucsd-tech/sigi-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetVerification(ctx context.Context, id, tokenHash string, expires time.Time) error
	FindByVerificationToken(ctx context.Context, tokenHash string) (*User, error)
	MarkVerified(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	FindByResetToken(ctx context.Context, tokenHash string) (*User, error)
	ClearResetToken(ctx context.Context, id string) error
	SetDisabled(ctx context.Context, id string, disabled bool) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `id, nombre, apellido, email, password_hash, role,
	especializacion, responsabilidades, foto_perfil,
	is_disabled, is_verified,
	verification_token_hash, verification_expires,
	reset_token_hash, reset_expires,
	created_at, updated_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, nombre, apellido, email, password_hash, role,
			especializacion, responsabilidades, foto_perfil,
			verification_token_hash, verification_expires
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.Nombre,
		user.Apellido,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Especializacion,
		pq.Array(user.Responsabilidades),
		user.FotoPerfil,
		user.VerificationTokenHash,
		user.VerificationExpires,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE id = $1`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE email = $1`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, strings.ToLower(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET nombre = $2, apellido = $3, email = $4, role = $5,
		    especializacion = $6, responsabilidades = $7,
		    foto_perfil = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.Nombre,
		user.Apellido,
		user.Email,
		user.Role,
		user.Especializacion,
		pq.Array(user.Responsabilidades),
		user.FotoPerfil,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "update password", query, id, passwordHash)
}

func (r *repository) SetVerification(
	ctx context.Context,
	id, tokenHash string,
	expires time.Time,
) error {
	query := `
		UPDATE users
		SET verification_token_hash = $2, verification_expires = $3,
		    updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "set verification token", query, id, tokenHash, expires)
}

func (r *repository) FindByVerificationToken(
	ctx context.Context,
	tokenHash string,
) (*User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE verification_token_hash = $1`,
		userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find by verification token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find by verification token: %w", err)
	}

	return &user, nil
}

// MarkVerified flips the verified flag but keeps the token hash so a
// repeated verify with the same link resolves the account and can
// report it as already verified.
func (r *repository) MarkVerified(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET is_verified = TRUE, verification_expires = NULL,
		    updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "mark verified", query, id)
}

func (r *repository) SetResetToken(
	ctx context.Context,
	id, tokenHash string,
	expires time.Time,
) error {
	query := `
		UPDATE users
		SET reset_token_hash = $2, reset_expires = $3, updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "set reset token", query, id, tokenHash, expires)
}

func (r *repository) FindByResetToken(
	ctx context.Context,
	tokenHash string,
) (*User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE reset_token_hash = $1`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find by reset token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find by reset token: %w", err)
	}

	return &user, nil
}

func (r *repository) ClearResetToken(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET reset_token_hash = NULL, reset_expires = NULL,
		    updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "clear reset token", query, id)
}

func (r *repository) SetDisabled(
	ctx context.Context,
	id string,
	disabled bool,
) error {
	query := `
		UPDATE users
		SET is_disabled = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "set disabled", query, id, disabled)
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(nombre ILIKE $%d OR apellido ILIKE $%d OR email ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) execExpectingRow(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
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
