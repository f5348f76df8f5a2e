// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/ucsd-tech/sigi-backend/internal/config"
	"github.com/ucsd-tech/sigi-backend/internal/core"
	"github.com/ucsd-tech/sigi-backend/internal/middleware"
)

type fakeUsers struct {
	byID    map[string]*UserInfo
	vhash   map[string]string
	rhash   map[string]string
	created []NewUserParams
}

func newFakeUsers(users ...*UserInfo) *fakeUsers {
	f := &fakeUsers{
		byID:  make(map[string]*UserInfo),
		vhash: make(map[string]string),
		rhash: make(map[string]string),
	}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) Create(_ context.Context, params NewUserParams) (*UserInfo, error) {
	for _, u := range f.byID {
		if u.Email == params.Email {
			return nil, core.ErrDuplicateKey
		}
	}
	f.created = append(f.created, params)
	u := &UserInfo{
		ID:           "u-new",
		Email:        params.Email,
		Nombre:       params.Nombre,
		Apellido:     params.Apellido,
		Role:         "Investigador",
		PasswordHash: params.PasswordHash,
	}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) SetVerification(_ context.Context, id, tokenHash string, expires time.Time) error {
	u, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	f.vhash[id] = tokenHash
	u.VerificationExpires = &expires
	return nil
}

func (f *fakeUsers) FindByVerificationToken(_ context.Context, tokenHash string) (*UserInfo, error) {
	for id, h := range f.vhash {
		if h == tokenHash {
			return f.byID[id], nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) MarkVerified(_ context.Context, id string) error {
	u, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	u.IsVerified = true
	return nil
}

func (f *fakeUsers) SetResetToken(_ context.Context, id, tokenHash string, expires time.Time) error {
	u, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	f.rhash[id] = tokenHash
	u.ResetExpires = &expires
	return nil
}

func (f *fakeUsers) FindByResetToken(_ context.Context, tokenHash string) (*UserInfo, error) {
	for id, h := range f.rhash {
		if h == tokenHash {
			return f.byID[id], nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) ClearResetToken(_ context.Context, id string) error {
	u, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	delete(f.rhash, id)
	u.ResetExpires = nil
	return nil
}

type fakeSessions struct {
	byID    map[string]*Session
	revoked []string
}

func newFakeSessions(sessions ...*Session) *fakeSessions {
	f := &fakeSessions{byID: make(map[string]*Session)}
	for _, s := range sessions {
		f.byID[s.ID] = s
	}
	return f
}

func (f *fakeSessions) Create(_ context.Context, session *Session) error {
	f.byID[session.ID] = session
	return nil
}

func (f *fakeSessions) FindByID(_ context.Context, id string) (*Session, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessions) RevokeByID(_ context.Context, id string) error {
	s, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	f.revoked = append(f.revoked, id)
	return nil
}

func (f *fakeSessions) RevokeAllForUser(_ context.Context, userID string) error {
	for _, s := range f.byID {
		if s.UserID == userID && s.RevokedAt == nil {
			now := time.Now()
			s.RevokedAt = &now
			f.revoked = append(f.revoked, s.ID)
		}
	}
	return nil
}

func (f *fakeSessions) GetActiveForUser(_ context.Context, userID string) ([]Session, error) {
	var out []Session
	for _, s := range f.byID {
		if s.UserID == userID && s.IsActive() {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessions) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

type fakeMailer struct {
	verifications int
	resets        int
	lastToken     string
}

func (m *fakeMailer) SendVerification(_ context.Context, _, _, token string) error {
	m.verifications++
	m.lastToken = token
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, _, _, token string) error {
	m.resets++
	m.lastToken = token
	return nil
}

func testJWTManager(t *testing.T) *JWTManager {
	t.Helper()
	dir := t.TempDir()
	private := filepath.Join(dir, "private.pem")
	public := filepath.Join(dir, "public.pem")
	if err := GenerateKeyPair(private, public); err != nil {
		t.Fatalf("generate key pair: %v", err)
	}
	mgr, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath: private,
		PublicKeyPath:  public,
		SessionExpire:  time.Hour,
		Issuer:         "sigi-test",
		Audience:       "sigi-api",
	})
	if err != nil {
		t.Fatalf("new jwt manager: %v", err)
	}
	return mgr
}

func testService(t *testing.T, users *fakeUsers, sessions *fakeSessions, mailer *fakeMailer) *Service {
	t.Helper()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			VerificationExpire: 24 * time.Hour,
			ResetExpire:        time.Hour,
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(users, sessions, testJWTManager(t), mailer, cfg, logger)
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := core.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func activeUser(t *testing.T, id, email, password string) *UserInfo {
	t.Helper()
	return &UserInfo{
		ID:           id,
		Email:        email,
		Nombre:       "Ana",
		Apellido:     "Reyes",
		Role:         "Investigador",
		PasswordHash: mustHash(t, password),
		IsVerified:   true,
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUsers(activeUser(t, "u1", "ana@sigi.test", "secret123"))
	svc := testService(t, users, newFakeSessions(), &fakeMailer{})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Nombre:   "Otra",
		Apellido: "Ana",
		Email:    "ana@sigi.test",
		Password: "secret123",
	})
	if !errors.Is(err, core.ErrDuplicateKey) {
		t.Fatalf("expected duplicate key, got %v", err)
	}
}

func TestRegisterSendsVerificationEmail(t *testing.T) {
	users := newFakeUsers()
	mailer := &fakeMailer{}
	svc := testService(t, users, newFakeSessions(), mailer)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Nombre:   "Ana",
		Apellido: "Reyes",
		Email:    "ana@sigi.test",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.Role != "Investigador" {
		t.Errorf("new account role = %q, want Investigador", resp.Role)
	}
	if mailer.verifications != 1 {
		t.Errorf("verification emails sent = %d, want 1", mailer.verifications)
	}
	if len(users.created) != 1 {
		t.Fatalf("users created = %d, want 1", len(users.created))
	}
	if users.created[0].VerificationTokenHash != core.HashToken(mailer.lastToken) {
		t.Error("stored verification hash does not match the emailed token")
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := testService(t, newFakeUsers(), newFakeSessions(), &fakeMailer{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@sigi.test",
		Password: "whatever",
	}, "ua", "127.0.0.1")
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	users := newFakeUsers(activeUser(t, "u1", "ana@sigi.test", "secret123"))
	svc := testService(t, users, newFakeSessions(), &fakeMailer{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ana@sigi.test",
		Password: "not-the-password",
	}, "ua", "127.0.0.1")
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	user := activeUser(t, "u1", "ana@sigi.test", "secret123")
	user.IsDisabled = true
	svc := testService(t, newFakeUsers(user), newFakeSessions(), &fakeMailer{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ana@sigi.test",
		Password: "secret123",
	}, "ua", "127.0.0.1")
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestLoginUnverifiedAccount(t *testing.T) {
	user := activeUser(t, "u1", "ana@sigi.test", "secret123")
	user.IsVerified = false
	svc := testService(t, newFakeUsers(user), newFakeSessions(), &fakeMailer{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ana@sigi.test",
		Password: "secret123",
	}, "ua", "127.0.0.1")
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestLoginOpensSession(t *testing.T) {
	users := newFakeUsers(activeUser(t, "u1", "ana@sigi.test", "secret123"))
	sessions := newFakeSessions()
	svc := testService(t, users, sessions, &fakeMailer{})

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ana@sigi.test",
		Password: "secret123",
	}, "test-agent", "10.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token.SessionToken == "" {
		t.Fatal("empty session token")
	}
	if resp.Token.TokenType != "Bearer" {
		t.Errorf("token type = %q, want Bearer", resp.Token.TokenType)
	}
	if len(sessions.byID) != 1 {
		t.Fatalf("sessions created = %d, want 1", len(sessions.byID))
	}
	for _, sess := range sessions.byID {
		if sess.TokenHash != core.HashToken(resp.Token.SessionToken) {
			t.Error("session token hash does not match issued token")
		}
		if sess.UserAgent != "test-agent" || sess.IPAddress != "10.0.0.1" {
			t.Errorf("session metadata = %q/%q", sess.UserAgent, sess.IPAddress)
		}
	}
}

func TestVerifyAlreadyVerified(t *testing.T) {
	user := activeUser(t, "u1", "ana@sigi.test", "secret123")
	users := newFakeUsers(user)
	users.vhash["u1"] = core.HashToken("tok")
	svc := testService(t, users, newFakeSessions(), &fakeMailer{})

	resp, err := svc.Verify(context.Background(), "tok")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !resp.AlreadyVerified {
		t.Error("expected alreadyVerified to be reported")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	user := activeUser(t, "u1", "ana@sigi.test", "secret123")
	user.IsVerified = false
	expired := time.Now().Add(-time.Hour)
	user.VerificationExpires = &expired
	users := newFakeUsers(user)
	users.vhash["u1"] = core.HashToken("tok")
	svc := testService(t, users, newFakeSessions(), &fakeMailer{})

	_, err := svc.Verify(context.Background(), "tok")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestVerifyMarksVerified(t *testing.T) {
	user := activeUser(t, "u1", "ana@sigi.test", "secret123")
	user.IsVerified = false
	expires := time.Now().Add(time.Hour)
	user.VerificationExpires = &expires
	users := newFakeUsers(user)
	users.vhash["u1"] = core.HashToken("tok")
	svc := testService(t, users, newFakeSessions(), &fakeMailer{})

	resp, err := svc.Verify(context.Background(), "tok")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if resp.AlreadyVerified {
		t.Error("fresh verification reported as already verified")
	}
	if !users.byID["u1"].IsVerified {
		t.Error("user not marked verified")
	}
}

func TestRequestPasswordResetIsUniform(t *testing.T) {
	user := activeUser(t, "u1", "ana@sigi.test", "secret123")
	mailer := &fakeMailer{}
	svc := testService(t, newFakeUsers(user), newFakeSessions(), mailer)

	if err := svc.RequestPasswordReset(context.Background(), "nobody@sigi.test"); err != nil {
		t.Fatalf("unknown email should not error: %v", err)
	}
	if mailer.resets != 0 {
		t.Fatal("reset email sent for unknown account")
	}

	if err := svc.RequestPasswordReset(context.Background(), "ana@sigi.test"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if mailer.resets != 1 {
		t.Fatalf("reset emails sent = %d, want 1", mailer.resets)
	}
}

func TestRequestPasswordResetSkipsDisabled(t *testing.T) {
	user := activeUser(t, "u1", "ana@sigi.test", "secret123")
	user.IsDisabled = true
	mailer := &fakeMailer{}
	svc := testService(t, newFakeUsers(user), newFakeSessions(), mailer)

	if err := svc.RequestPasswordReset(context.Background(), "ana@sigi.test"); err != nil {
		t.Fatalf("disabled account should not error: %v", err)
	}
	if mailer.resets != 0 {
		t.Fatal("reset email sent for disabled account")
	}
}

func TestResetPasswordRevokesSessions(t *testing.T) {
	user := activeUser(t, "u1", "ana@sigi.test", "secret123")
	expires := time.Now().Add(time.Hour)
	user.ResetExpires = &expires

	sessions := newFakeSessions(
		&Session{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
		&Session{ID: "s2", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
	)
	users := newFakeUsers(user)
	users.rhash["u1"] = core.HashToken("reset-tok")
	svc := testService(t, users, sessions, &fakeMailer{})

	if err := svc.ResetPassword(context.Background(), "reset-tok", "brand-new-pw"); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	if len(sessions.revoked) != 2 {
		t.Errorf("sessions revoked = %d, want 2", len(sessions.revoked))
	}
	if _, ok := users.rhash["u1"]; ok {
		t.Error("reset token not cleared")
	}
	ok, err := core.VerifyPassword("brand-new-pw", user.PasswordHash)
	if err != nil || !ok {
		t.Error("new password does not verify")
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	user := activeUser(t, "u1", "ana@sigi.test", "secret123")
	expired := time.Now().Add(-time.Minute)
	user.ResetExpires = &expired
	users := newFakeUsers(user)
	users.rhash["u1"] = core.HashToken("reset-tok")
	svc := testService(t, users, newFakeSessions(), &fakeMailer{})

	err := svc.ResetPassword(context.Background(), "reset-tok", "brand-new-pw")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestChangePasswordSparesCurrentSession(t *testing.T) {
	user := activeUser(t, "u1", "ana@sigi.test", "secret123")
	sessions := newFakeSessions(
		&Session{ID: "current", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
		&Session{ID: "other", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
	)
	svc := testService(t, newFakeUsers(user), sessions, &fakeMailer{})

	err := svc.ChangePassword(context.Background(), "u1", "current", ChangePasswordRequest{
		CurrentPassword: "secret123",
		NewPassword:     "brand-new-pw",
	})
	if err != nil {
		t.Fatalf("change password: %v", err)
	}

	if sessions.byID["current"].RevokedAt != nil {
		t.Error("current session was revoked")
	}
	if sessions.byID["other"].RevokedAt == nil {
		t.Error("other session was not revoked")
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	user := activeUser(t, "u1", "ana@sigi.test", "secret123")
	svc := testService(t, newFakeUsers(user), newFakeSessions(), &fakeMailer{})

	err := svc.ChangePassword(context.Background(), "u1", "s1", ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "brand-new-pw",
	})
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestValidateSessionRevoked(t *testing.T) {
	user := activeUser(t, "u1", "ana@sigi.test", "secret123")
	revokedAt := time.Now()
	sessions := newFakeSessions(&Session{
		ID:        "s1",
		UserID:    "u1",
		ExpiresAt: time.Now().Add(time.Hour),
		RevokedAt: &revokedAt,
	})
	svc := testService(t, newFakeUsers(user), sessions, &fakeMailer{})

	_, err := svc.ValidateSession(context.Background(), &middleware.SessionClaims{
		UserID:    "u1",
		Role:      "Investigador",
		SessionID: "s1",
	})
	if !errors.Is(err, core.ErrTokenRevoked) {
		t.Fatalf("expected token revoked, got %v", err)
	}
}

func TestValidateSessionDisabledAccount(t *testing.T) {
	user := activeUser(t, "u1", "ana@sigi.test", "secret123")
	user.IsDisabled = true
	sessions := newFakeSessions(&Session{
		ID:        "s1",
		UserID:    "u1",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	svc := testService(t, newFakeUsers(user), sessions, &fakeMailer{})

	_, err := svc.ValidateSession(context.Background(), &middleware.SessionClaims{
		UserID:    "u1",
		Role:      "Investigador",
		SessionID: "s1",
	})
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestValidateSessionReturnsCurrentRole(t *testing.T) {
	user := activeUser(t, "u1", "ana@sigi.test", "secret123")
	user.Role = "Administrador"
	sessions := newFakeSessions(&Session{
		ID:        "s1",
		UserID:    "u1",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	svc := testService(t, newFakeUsers(user), sessions, &fakeMailer{})

	// Token still carries the role from login time; the database wins.
	role, err := svc.ValidateSession(context.Background(), &middleware.SessionClaims{
		UserID:    "u1",
		Role:      "Investigador",
		SessionID: "s1",
	})
	if err != nil {
		t.Fatalf("validate session: %v", err)
	}
	if role != "Administrador" {
		t.Errorf("role = %q, want Administrador", role)
	}
}

func TestLogoutOtherUsersSession(t *testing.T) {
	sessions := newFakeSessions(&Session{
		ID:        "s1",
		UserID:    "someone-else",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	svc := testService(t, newFakeUsers(), sessions, &fakeMailer{})

	err := svc.Logout(context.Background(), "u1", "s1")
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
