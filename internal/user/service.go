// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ucsd-tech/sigi-backend/internal/auth"
	"github.com/ucsd-tech/sigi-backend/internal/authz"
	"github.com/ucsd-tech/sigi-backend/internal/core"
)

// profileSchema whitelists the fields a profile update may carry.
// Unknown fields are dropped, not rejected.
var profileSchema = core.NewUpdateSchema(core.IgnoreUnknownFields,
	"nombre", "apellido", "email", "especializacion",
	"responsabilidades", "fotoPerfil", "role",
)

type Service struct {
	repo      Repository
	sessions  auth.Repository
	rules     authz.Rules
	validator *validator.Validate
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	sessions auth.Repository,
	rules authz.Rules,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		sessions:  sessions,
		rules:     rules,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

// UpdateUser applies a whitelist-filtered patch to a profile. Only an
// administrator may change role, and only an administrator or the
// account owner may touch the profile at all.
func (s *Service) UpdateUser(
	ctx context.Context,
	actor authz.Actor,
	id string,
	patch core.Patch,
) (*User, error) {
	if actor.ID != id && !actor.IsAdministrador() {
		return nil, fmt.Errorf("update user: %w", core.ErrForbidden)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	filtered, err := profileSchema.Filter(patch)
	if err != nil {
		return nil, err
	}

	if filtered.Has("role") && !actor.IsAdministrador() {
		return nil, core.ForbiddenError("only an administrator can change roles")
	}

	var fields profilePatch
	if err := core.Decode(filtered, &fields); err != nil {
		return nil, core.BadRequestError("invalid field value in update")
	}

	if err := s.validator.Struct(fields); err != nil {
		return nil, core.BadRequestError(core.FormatValidationError(err))
	}

	applyProfilePatch(user, &fields)

	if fields.Role != nil {
		if !authz.IsValidRole(*fields.Role) {
			return nil, core.BadRequestError("unknown role")
		}
		user.Role = *fields.Role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("email")
		}
		return nil, err
	}

	return user, nil
}

func applyProfilePatch(user *User, fields *profilePatch) {
	if fields.Nombre != nil {
		user.Nombre = *fields.Nombre
	}
	if fields.Apellido != nil {
		user.Apellido = *fields.Apellido
	}
	if fields.Email != nil {
		user.Email = strings.ToLower(*fields.Email)
	}
	if fields.Especializacion != nil {
		user.Especializacion = *fields.Especializacion
	}
	if fields.Responsabilidades != nil {
		user.Responsabilidades = fields.Responsabilidades
	}
	if fields.FotoPerfil != nil {
		user.FotoPerfil = *fields.FotoPerfil
	}
}

// Disable blocks an account and revokes its open sessions.
func (s *Service) Disable(ctx context.Context, actor authz.Actor, id string) (*User, error) {
	if err := s.rules.CanPerform(actor, authz.OpUserDisable, nil); err != nil {
		return nil, err
	}
	if actor.ID == id {
		return nil, core.BadRequestError("cannot disable your own account")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsDisabled {
		return nil, core.BadRequestError("account is already disabled")
	}

	if err := s.repo.SetDisabled(ctx, id, true); err != nil {
		return nil, err
	}
	user.IsDisabled = true

	if err := s.sessions.RevokeAllForUser(ctx, id); err != nil {
		s.logger.Error("revoking sessions for disabled account",
			slog.String("user_id", id),
			slog.String("error", err.Error()))
	}

	return user, nil
}

// Enable lifts the block on a disabled account.
func (s *Service) Enable(ctx context.Context, actor authz.Actor, id string) (*User, error) {
	if err := s.rules.CanPerform(actor, authz.OpUserEnable, nil); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsDisabled {
		return nil, core.BadRequestError("account is not disabled")
	}

	if err := s.repo.SetDisabled(ctx, id, false); err != nil {
		return nil, err
	}
	user.IsDisabled = false

	return user, nil
}

// --- auth.UserProvider implementation -----------------------------------

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:                  u.ID,
		Email:               u.Email,
		Nombre:              u.Nombre,
		Apellido:            u.Apellido,
		Role:                u.Role,
		Especializacion:     u.Especializacion,
		PasswordHash:        u.PasswordHash,
		IsDisabled:          u.IsDisabled,
		IsVerified:          u.IsVerified,
		VerificationExpires: u.VerificationExpires,
		ResetExpires:        u.ResetExpires,
	}
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *Service) Create(ctx context.Context, params auth.NewUserParams) (*auth.UserInfo, error) {
	user := &User{
		ID:                    uuid.NewString(),
		Nombre:                params.Nombre,
		Apellido:              params.Apellido,
		Email:                 strings.ToLower(params.Email),
		PasswordHash:          params.PasswordHash,
		Role:                  authz.RoleInvestigador,
		Especializacion:       params.Especializacion,
		Responsabilidades:     params.Responsabilidades,
		FotoPerfil:            params.FotoPerfil,
		VerificationTokenHash: &params.VerificationTokenHash,
		VerificationExpires:   &params.VerificationExpires,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

func (s *Service) SetVerification(ctx context.Context, id, tokenHash string, expires time.Time) error {
	return s.repo.SetVerification(ctx, id, tokenHash, expires)
}

func (s *Service) FindByVerificationToken(ctx context.Context, tokenHash string) (*auth.UserInfo, error) {
	user, err := s.repo.FindByVerificationToken(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *Service) MarkVerified(ctx context.Context, id string) error {
	return s.repo.MarkVerified(ctx, id)
}

func (s *Service) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	return s.repo.SetResetToken(ctx, id, tokenHash, expires)
}

func (s *Service) FindByResetToken(ctx context.Context, tokenHash string) (*auth.UserInfo, error) {
	user, err := s.repo.FindByResetToken(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *Service) ClearResetToken(ctx context.Context, id string) error {
	return s.repo.ClearResetToken(ctx, id)
}

var _ auth.UserProvider = (*Service)(nil)

// DecodePatch parses a request body into a raw patch for UpdateUser.
func DecodePatch(body []byte) (core.Patch, error) {
	var patch core.Patch
	if err := json.Unmarshal(body, &patch); err != nil {
		return nil, core.BadRequestError("invalid request body")
	}
	return patch, nil
}
