// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ucsd-tech/sigi-backend/internal/authz"
	"github.com/ucsd-tech/sigi-backend/internal/config"
	"github.com/ucsd-tech/sigi-backend/internal/core"
	"github.com/ucsd-tech/sigi-backend/internal/middleware"
)

// UserInfo is the slice of the user record the credential flows need.
type UserInfo struct {
	ID                  string
	Email               string
	Nombre              string
	Apellido            string
	Role                string
	Especializacion     string
	PasswordHash        string
	IsDisabled          bool
	IsVerified          bool
	VerificationExpires *time.Time
	ResetExpires        *time.Time
}

// NewUserParams carries everything needed to provision an account.
type NewUserParams struct {
	Nombre                string
	Apellido              string
	Email                 string
	PasswordHash          string
	Especializacion       string
	Responsabilidades     []string
	FotoPerfil            string
	VerificationTokenHash string
	VerificationExpires   time.Time
}

// UserProvider is implemented by the user package. Keeping auth behind
// this interface avoids an import cycle between the two packages.
type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(ctx context.Context, params NewUserParams) (*UserInfo, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetVerification(ctx context.Context, id, tokenHash string, expires time.Time) error
	FindByVerificationToken(ctx context.Context, tokenHash string) (*UserInfo, error)
	MarkVerified(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	FindByResetToken(ctx context.Context, tokenHash string) (*UserInfo, error)
	ClearResetToken(ctx context.Context, id string) error
}

var (
	ErrInvalidCredentials = core.UnauthorizedError("invalid email or password")
	ErrAccountDisabled    = core.ForbiddenError("account is disabled, contact an administrator")
	ErrEmailNotVerified   = core.ForbiddenError("email address has not been verified")
)

// dummyHash keeps login timing uniform when the email does not exist.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=4$c2lnaWJhY2tlbmQwMDA$KkcaDo/sx5lQCLcbFZ77AeiRZKUyQs0K8kcGfGvzCdE"

type Service struct {
	users    UserProvider
	sessions Repository
	jwt      *JWTManager
	mailer   Mailer
	cfg      *config.Config
	logger   *slog.Logger
}

func NewService(
	users UserProvider,
	sessions Repository,
	jwt *JWTManager,
	mailer Mailer,
	cfg *config.Config,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		jwt:      jwt,
		mailer:   mailer,
		cfg:      cfg,
		logger:   logger,
	}
}

func toUserResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Nombre:          u.Nombre,
		Apellido:        u.Apellido,
		Email:           u.Email,
		Role:            u.Role,
		Especializacion: u.Especializacion,
		IsVerified:      u.IsVerified,
	}
}

// Register provisions an unverified account and emails a verification
// token. New accounts always start as Investigador.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	token, err := core.GenerateOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("generating verification token: %w", err)
	}

	user, err := s.users.Create(ctx, NewUserParams{
		Nombre:                req.Nombre,
		Apellido:              req.Apellido,
		Email:                 req.Email,
		PasswordHash:          passwordHash,
		Especializacion:       req.Especializacion,
		Responsabilidades:     req.Responsabilidades,
		FotoPerfil:            req.FotoPerfil,
		VerificationTokenHash: core.HashToken(token),
		VerificationExpires:   time.Now().Add(s.cfg.Auth.VerificationExpire),
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("email")
		}
		return nil, err
	}

	if err := s.mailer.SendVerification(ctx, user.Email, user.Nombre, token); err != nil {
		s.logger.Error("sending verification email",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()))
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// Verify consumes a verification token. Verifying an already verified
// account succeeds and reports the fact instead of erroring.
func (s *Service) Verify(ctx context.Context, token string) (*VerifyResponse, error) {
	user, err := s.users.FindByVerificationToken(ctx, core.HashToken(token))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.TokenInvalidError("verification token is invalid")
		}
		return nil, err
	}

	if user.IsVerified {
		return &VerifyResponse{AlreadyVerified: true, User: toUserResponse(user)}, nil
	}

	if user.VerificationExpires == nil || time.Now().After(*user.VerificationExpires) {
		return nil, core.BadRequestError("verification token has expired")
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return nil, err
	}

	user.IsVerified = true
	return &VerifyResponse{AlreadyVerified: false, User: toUserResponse(user)}, nil
}

// ResendVerification issues a fresh verification token. The response is
// uniform whether or not the email exists.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return err
	}
	if user.IsVerified {
		return nil
	}

	token, err := core.GenerateOpaqueToken()
	if err != nil {
		return fmt.Errorf("generating verification token: %w", err)
	}

	expires := time.Now().Add(s.cfg.Auth.VerificationExpire)
	if err := s.users.SetVerification(ctx, user.ID, core.HashToken(token), expires); err != nil {
		return err
	}

	if err := s.mailer.SendVerification(ctx, user.Email, user.Nombre, token); err != nil {
		s.logger.Error("sending verification email",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()))
	}
	return nil
}

// Login verifies credentials and opens a session. Password verification
// runs against a dummy hash when the account is unknown so that lookup
// misses do not return faster than hash mismatches.
func (s *Service) Login(ctx context.Context, req LoginRequest, userAgent, ipAddress string) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			_, _ = core.VerifyPassword(req.Password, dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	valid, err := core.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !valid {
		return nil, ErrInvalidCredentials
	}

	if user.IsDisabled {
		return nil, ErrAccountDisabled
	}
	if !user.IsVerified {
		return nil, ErrEmailNotVerified
	}

	sessionID := uuid.NewString()
	signed, expiresAt, err := s.jwt.CreateSessionToken(SessionTokenClaims{
		UserID:    user.ID,
		Role:      user.Role,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("signing session token: %w", err)
	}

	session := &Session{
		ID:        sessionID,
		UserID:    user.ID,
		TokenHash: core.HashToken(signed),
		ExpiresAt: expiresAt,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &AuthResponse{
		User: toUserResponse(user),
		Token: TokenResponse{
			SessionToken: signed,
			TokenType:    "Bearer",
			ExpiresAt:    expiresAt,
		},
	}, nil
}

// Logout revokes the session carried by the presented token.
func (s *Service) Logout(ctx context.Context, userID, sessionID string) error {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return err
	}
	if session.UserID != userID {
		return core.ForbiddenError("session does not belong to this account")
	}
	return s.sessions.RevokeByID(ctx, sessionID)
}

// LogoutAll revokes every active session for the account.
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	return s.sessions.RevokeAllForUser(ctx, userID)
}

// RequestPasswordReset emails a reset token. The caller always gets a
// uniform success so the endpoint cannot be used to enumerate accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return err
	}
	if user.IsDisabled {
		return nil
	}

	token, err := core.GenerateOpaqueToken()
	if err != nil {
		return fmt.Errorf("generating reset token: %w", err)
	}

	expires := time.Now().Add(s.cfg.Auth.ResetExpire)
	if err := s.users.SetResetToken(ctx, user.ID, core.HashToken(token), expires); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Nombre, token); err != nil {
		s.logger.Error("sending password reset email",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()))
	}
	return nil
}

// ResetPassword consumes a reset token, rotates the credential and
// revokes every open session for the account.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.users.FindByResetToken(ctx, core.HashToken(token))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.TokenInvalidError("reset token is invalid")
		}
		return err
	}

	if user.ResetExpires == nil || time.Now().After(*user.ResetExpires) {
		return core.BadRequestError("reset token has expired")
	}

	passwordHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return err
	}
	if err := s.users.ClearResetToken(ctx, user.ID); err != nil {
		return err
	}

	if err := s.sessions.RevokeAllForUser(ctx, user.ID); err != nil {
		s.logger.Error("revoking sessions after password reset",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()))
	}
	return nil
}

// ChangePassword rotates the credential for an authenticated user and
// revokes every session except the one making the change.
func (s *Service) ChangePassword(ctx context.Context, userID, sessionID string, req ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	valid, err := core.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil || !valid {
		return core.UnauthorizedError("current password is incorrect")
	}

	passwordHash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return err
	}

	active, err := s.sessions.GetActiveForUser(ctx, userID)
	if err != nil {
		return nil //nolint:nilerr // password already rotated, stale sessions expire on their own
	}
	for _, sess := range active {
		if sess.ID == sessionID {
			continue
		}
		if err := s.sessions.RevokeByID(ctx, sess.ID); err != nil {
			s.logger.Error("revoking session after password change",
				slog.String("session_id", sess.ID),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// ValidateSession is the middleware.SessionGate implementation. It
// re-checks revocation and account state on every request and returns
// the account's current role, which wins over the role baked into the
// token at login time.
func (s *Service) ValidateSession(ctx context.Context, claims *middleware.SessionClaims) (string, error) {
	session, err := s.sessions.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", core.TokenRevokedError("session no longer exists")
		}
		return "", err
	}
	if session.UserID != claims.UserID {
		return "", core.TokenInvalidError("session does not match token subject")
	}
	if !session.IsActive() {
		return "", core.TokenRevokedError("session has been revoked or expired")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", core.TokenRevokedError("account no longer exists")
		}
		return "", err
	}
	if user.IsDisabled {
		return "", ErrAccountDisabled
	}
	if !authz.IsValidRole(user.Role) {
		return "", core.TokenInvalidError("account role is not recognized")
	}
	return user.Role, nil
}

// GetActiveSessions lists the account's live sessions.
func (s *Service) GetActiveSessions(ctx context.Context, userID string) ([]SessionInfo, error) {
	sessions, err := s.sessions.GetActiveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	infos := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, SessionInfo{
			ID:        sess.ID,
			UserAgent: sess.UserAgent,
			IPAddress: sess.IPAddress,
			CreatedAt: sess.CreatedAt,
			ExpiresAt: sess.ExpiresAt,
		})
	}
	return infos, nil
}

// RevokeSession revokes one of the caller's own sessions by id.
func (s *Service) RevokeSession(ctx context.Context, userID, sessionID string) error {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.UserID != userID {
		return core.ForbiddenError("session does not belong to this account")
	}
	return s.sessions.RevokeByID(ctx, sessionID)
}

// GetCurrentUser returns the authenticated account's own profile.
func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}
