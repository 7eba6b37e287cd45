package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"liftlog/internal/models"
	"liftlog/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryAccounts struct {
	mu   sync.Mutex
	byID map[string]models.Account
	err  error
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{byID: map[string]models.Account{}}
}

func (m *memoryAccounts) Create(_ context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.byID {
		if existing.Email == a.Email {
			return repository.ErrDuplicate
		}
	}
	m.byID[a.ID] = *a
	return nil
}

func (m *memoryAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, a := range m.byID {
		if a.Email == email {
			a := a
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryAccounts) GetByID(_ context.Context, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (m *memoryAccounts) UpdateDisplayName(_ context.Context, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.DisplayName = name
	m.byID[id] = a
	return nil
}

func newTestService(accounts repository.AccountRepository) *Service {
	return NewService(accounts, Config{
		Secret:     "test-secret-that-is-long-enough-0123456789",
		TokenTTL:   time.Hour,
		InstanceID: "node-a",
		BcryptCost: bcrypt.MinCost,
	})
}

type recorder struct {
	mu      sync.Mutex
	changes []StateChange
}

func (r *recorder) record(c StateChange) {
	r.mu.Lock()
	r.changes = append(r.changes, c)
	r.mu.Unlock()
}

func (r *recorder) last(t *testing.T) StateChange {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.changes)
	return r.changes[len(r.changes)-1]
}

func TestSignUpThenSignIn(t *testing.T) {
	svc := newTestService(newMemoryAccounts())
	rec := &recorder{}
	defer svc.Subscribe(rec.record)()
	ctx := context.Background()

	email := gofakeit.New(5).Email()
	cred, err := svc.SignUp(ctx, "visitor-1", "  "+email, "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, cred.Token)

	change := rec.last(t)
	assert.Equal(t, "visitor-1", change.Visitor)
	assert.Equal(t, ReasonSignUp, change.Reason)
	assert.Equal(t, "node-a", change.Origin)
	require.NotNil(t, change.Identity)
	assert.Equal(t, cred.Identity.UserID, change.Identity.UserID)

	signedIn, err := svc.SignIn(ctx, "visitor-2", email, "secret1")
	require.NoError(t, err)
	assert.Equal(t, cred.Identity.UserID, signedIn.Identity.UserID)
	assert.Equal(t, "visitor-2", rec.last(t).Visitor)

	id, err := svc.Verify(signedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, cred.Identity.UserID, id.UserID)
}

func TestSignUp_Rejections(t *testing.T) {
	svc := newTestService(newMemoryAccounts())
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "v", "not-an-email", "secret1")
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = svc.SignUp(ctx, "v", "a@example.com", "12345")
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = svc.SignUp(ctx, "v", "a@example.com", "123456")
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, "v", "A@example.com", "123456")
	assert.True(t, models.HasCode(err, models.CodeConflict))
}

func TestSignIn_Failures(t *testing.T) {
	accounts := newMemoryAccounts()
	svc := newTestService(accounts)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "v", "a@example.com", "right-pass")
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "v", "a@example.com", "wrong-pass")
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))

	_, err = svc.SignIn(ctx, "v", "nobody@example.com", "right-pass")
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))

	accounts.err = errors.New("store down")
	_, err = svc.SignIn(ctx, "v", "a@example.com", "right-pass")
	assert.True(t, models.HasCode(err, models.CodeInternal))
}

func TestRestore(t *testing.T) {
	svc := newTestService(newMemoryAccounts())
	rec := &recorder{}
	defer svc.Subscribe(rec.record)()
	ctx := context.Background()

	cred, err := svc.SignUp(ctx, "v", "a@example.com", "secret1")
	require.NoError(t, err)

	id, err := svc.Restore(ctx, "v2", cred.Token)
	require.NoError(t, err)
	assert.Equal(t, cred.Identity.UserID, id.UserID)
	assert.Equal(t, ReasonRestore, rec.last(t).Reason)

	id, err = svc.Restore(ctx, "v2", "")
	assert.NoError(t, err)
	assert.Nil(t, id)
	assert.Nil(t, rec.last(t).Identity)

	_, err = svc.Restore(ctx, "v2", cred.Token+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, rec.last(t).Identity)
}

func TestVerify_ExpiredToken(t *testing.T) {
	svc := newTestService(newMemoryAccounts())
	cred, err := svc.SignUp(context.Background(), "v", "a@example.com", "secret1")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Verify(cred.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	accounts := newMemoryAccounts()
	svc := newTestService(accounts)
	cred, err := svc.SignUp(context.Background(), "v", "a@example.com", "secret1")
	require.NoError(t, err)

	other := NewService(accounts, Config{Secret: "another-secret-another-secret-0000"})
	_, err = other.Verify(cred.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateDisplayName_ReissuesToken(t *testing.T) {
	svc := newTestService(newMemoryAccounts())
	rec := &recorder{}
	defer svc.Subscribe(rec.record)()
	ctx := context.Background()

	cred, err := svc.SignUp(ctx, "v", "a@example.com", "secret1")
	require.NoError(t, err)

	updated, err := svc.UpdateDisplayName(ctx, "v", cred.Identity.UserID, "Lifter")
	require.NoError(t, err)
	assert.Equal(t, "Lifter", updated.Identity.DisplayName)
	assert.Equal(t, ReasonProfile, rec.last(t).Reason)

	id, err := svc.Verify(updated.Token)
	require.NoError(t, err)
	assert.Equal(t, "Lifter", id.DisplayName)

	_, err = svc.UpdateDisplayName(ctx, "v", "missing", "x")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestSubscribe_UnsubscribeAndDeliver(t *testing.T) {
	svc := newTestService(newMemoryAccounts())
	rec := &recorder{}
	unsubscribe := svc.Subscribe(rec.record)

	svc.Deliver(StateChange{Visitor: "v", Reason: ReasonSignOut, Origin: "node-b"})
	assert.Equal(t, "node-b", rec.last(t).Origin)

	unsubscribe()
	unsubscribe()
	require.NoError(t, svc.SignOut(context.Background(), "v"))
	assert.Len(t, rec.changes, 1)
}

func TestValidation(t *testing.T) {
	assert.NoError(t, ValidateEmail("lifter@example.com"))
	assert.Error(t, ValidateEmail("lifter@"))
	assert.NoError(t, ValidatePassword("123456"))
	assert.Error(t, ValidatePassword("12345"))
	assert.Equal(t, "a@b.co", NormalizeEmail("  A@B.co "))
}
