package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/domain"
)

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // keyed by email
	seq   int

	lastActiveTouched chan string
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users:             make(map[string]*domain.User),
		lastActiveTouched: make(chan string, 8),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	stored := cloneUser(user)
	r.seq++
	stored.ID = strconv.Itoa(r.seq)
	r.users[stored.Email] = stored
	out := cloneUser(stored)
	out.PasswordHash = ""
	return out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			out := cloneUser(u)
			out.PasswordHash = ""
			return out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		out := cloneUser(u)
		out.PasswordHash = ""
		return out, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmailWithPassword(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		c := cloneUser(u)
		c.PasswordHash = ""
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			u.Role = role
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *stubUserRepo) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			u.Active = active
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *stubUserRepo) TouchLastActive(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			u.LastActiveAt = time.Now()
			select {
			case r.lastActiveTouched <- id:
			default:
			}
			return nil
		}
	}
	return domain.ErrUserNotFound
}

// addUser seeds an account directly with a cheap hash so tests do not pay
// the full verification-grade bcrypt cost per fixture.
func (r *stubUserRepo) addUser(t *testing.T, email, password string, role domain.Role, active bool) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash fixture password: %v", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	u := &domain.User{
		ID:           strconv.Itoa(r.seq),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       active,
	}
	r.users[email] = u
	return cloneUser(u)
}

type stubGuard struct {
	mu       sync.Mutex
	blocked  bool
	retry    time.Duration
	failures map[string]int
	resets   map[string]int
}

func newStubGuard() *stubGuard {
	return &stubGuard{failures: make(map[string]int), resets: make(map[string]int)}
}

func (g *stubGuard) IsBlocked(_ context.Context, _ string) (bool, time.Duration, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.blocked, g.retry, nil
}

func (g *stubGuard) RecordFailure(_ context.Context, source string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[source]++
	return nil
}

func (g *stubGuard) Reset(_ context.Context, source string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resets[source]++
	return nil
}

type stubRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[string]time.Time)}
}

func (r *stubRevoker) Revoke(_ context.Context, raw string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[raw] = expiresAt
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, raw string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[raw]
	return ok, nil
}

type authFixture struct {
	svc     *AuthService
	repo    *stubUserRepo
	guard   *stubGuard
	revoker *stubRevoker
	tokens  *TokenService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	repo := newStubUserRepo()
	guard := newStubGuard()
	revoker := newStubRevoker()
	tokens := newTestTokenService(t, time.Hour)
	return &authFixture{
		svc:     NewAuthService(repo, tokens, guard, revoker, zerolog.Nop()),
		repo:    repo,
		guard:   guard,
		revoker: revoker,
		tokens:  tokens,
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.svc.Register(context.Background(), "Alice@Example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected role user, got %s", user.Role)
	}
	if !user.Active {
		t.Fatalf("expected new account to be active")
	}
	if user.EmailVerified {
		t.Fatalf("expected new account to be unverified")
	}

	stored, err := f.repo.FindByEmailWithPassword(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("find stored: %v", err)
	}
	if stored.PasswordHash == "s3cret-pass" {
		t.Fatalf("expected password to be hashed")
	}
	if !CheckPassword("s3cret-pass", stored.PasswordHash) {
		t.Fatalf("stored hash does not match password")
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.addUser(t, "bob@example.com", "password1", domain.RoleUser, true)

	if _, err := f.svc.Register(context.Background(), "bob@example.com", "password2"); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.addUser(t, "carol@example.com", "g00d-pass", domain.RoleAdmin, true)

	token, user, err := f.svc.Login(context.Background(), "carol@example.com", "g00d-pass", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if user.PasswordHash != "" {
		t.Fatalf("password hash leaked from Login")
	}

	claims, err := f.tokens.Verify(token)
	if err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
	if claims.Role != domain.RoleAdmin {
		t.Fatalf("expected role admin in claims, got %s", claims.Role)
	}

	if f.guard.resets["10.0.0.1"] != 1 {
		t.Fatalf("expected guard reset on success, got %d", f.guard.resets["10.0.0.1"])
	}

	select {
	case id := <-f.repo.lastActiveTouched:
		if id != user.ID {
			t.Fatalf("touched wrong user: %s", id)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected best-effort last-active update")
	}
}

func TestAuthService_Login_WrongPasswordRecordsFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.addUser(t, "dave@example.com", "right-pass", domain.RoleUser, true)

	_, _, err := f.svc.Login(context.Background(), "dave@example.com", "wrong-pass", "10.0.0.2")
	if err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if f.guard.failures["10.0.0.2"] != 1 {
		t.Fatalf("expected one recorded failure, got %d", f.guard.failures["10.0.0.2"])
	}
}

func TestAuthService_Login_UnknownEmailIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)

	_, _, err := f.svc.Login(context.Background(), "ghost@example.com", "whatever1", "10.0.0.3")
	if err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if f.guard.failures["10.0.0.3"] != 1 {
		t.Fatalf("expected unknown-email attempt to count as a failure")
	}
}

func TestAuthService_Login_BlockedEvenWithCorrectPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.addUser(t, "erin@example.com", "right-pass", domain.RoleUser, true)
	f.guard.blocked = true
	f.guard.retry = 30 * time.Minute

	_, _, err := f.svc.Login(context.Background(), "erin@example.com", "right-pass", "10.0.0.4")
	var rle *domain.RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rle.RetryAfter != 30*time.Minute {
		t.Fatalf("expected retry-after hint, got %s", rle.RetryAfter)
	}
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.addUser(t, "frank@example.com", "right-pass", domain.RoleUser, false)

	_, _, err := f.svc.Login(context.Background(), "frank@example.com", "right-pass", "10.0.0.5")
	if err != domain.ErrAccountDeactivated {
		t.Fatalf("expected ErrAccountDeactivated, got %v", err)
	}
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	f := newAuthFixture(t)

	raw, err := f.tokens.Issue("user-1", domain.RoleUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if err := f.svc.Logout(context.Background(), raw); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	revoked, _ := f.revoker.IsRevoked(context.Background(), raw)
	if !revoked {
		t.Fatalf("expected token to be revoked")
	}

	// Logging out twice succeeds without error.
	if err := f.svc.Logout(context.Background(), raw); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
}

func TestAuthService_Logout_ExpiredTokenIsNoop(t *testing.T) {
	f := newAuthFixture(t)
	raw := signTestToken(t, testSecret, "user-1", time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))

	if err := f.svc.Logout(context.Background(), raw); err != nil {
		t.Fatalf("expected expired-token logout to succeed, got %v", err)
	}
}

func TestCheckPassword_FailsClosedOnMalformedHash(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Fatalf("expected malformed hash to fail verification")
	}
}
