// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/lib/pq"

	"github.com/ucsd-tech/sigi-backend/internal/authz"
)

// User is an account on the platform. Accounts are never hard-deleted;
// administrators disable them instead.
type User struct {
	ID                    string         `db:"id"`
	Nombre                string         `db:"nombre"`
	Apellido              string         `db:"apellido"`
	Email                 string         `db:"email"`
	PasswordHash          string         `db:"password_hash"`
	Role                  string         `db:"role"`
	Especializacion       string         `db:"especializacion"`
	Responsabilidades     pq.StringArray `db:"responsabilidades"`
	FotoPerfil            string         `db:"foto_perfil"`
	IsDisabled            bool           `db:"is_disabled"`
	IsVerified            bool           `db:"is_verified"`
	VerificationTokenHash *string        `db:"verification_token_hash"`
	VerificationExpires   *time.Time     `db:"verification_expires"`
	ResetTokenHash        *string        `db:"reset_token_hash"`
	ResetExpires          *time.Time     `db:"reset_expires"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
}

func (u *User) IsAdministrador() bool {
	return u.Role == authz.RoleAdministrador
}

func (u *User) FullName() string {
	return u.Nombre + " " + u.Apellido
}
