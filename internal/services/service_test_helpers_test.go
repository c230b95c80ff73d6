package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/bazaarhq/bazaar/internal/database/testutil"
	"github.com/bazaarhq/bazaar/internal/models"
	"github.com/bazaarhq/bazaar/pkg/crypto"
)

type sentCode struct {
	Email string
	Code  string
}

type fakeNotifier struct {
	mu   sync.Mutex
	fail bool
	sent []sentCode
}

func (f *fakeNotifier) SendVerificationCode(_ context.Context, email, code string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentCode{Email: email, Code: code})
	return !f.fail
}

func (f *fakeNotifier) last(t *testing.T) sentCode {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "expected a verification code to be dispatched")
	return f.sent[len(f.sent)-1]
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type testClock struct {
	mu      sync.Mutex
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

func cheapHasher(password string) (string, error) {
	return crypto.HashPasswordWithCost(password, bcrypt.MinCost)
}

func sequenceGenerator(codes ...string) VerificationCodeGenerator {
	var mu sync.Mutex
	next := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(codes) {
			return "", errors.New("sequence exhausted")
		}
		code := codes[next]
		next++
		return code, nil
	}
}

type accountFixture struct {
	db           *gorm.DB
	clock        *testClock
	notifier     *fakeNotifier
	registration *RegistrationService
	verification *VerificationService
}

func newAccountFixture(t *testing.T, codes ...string) *accountFixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	clock := newTestClock()
	notifier := &fakeNotifier{}

	regOpts := []RegistrationOption{
		WithRegistrationClock(clock.Now),
		WithPasswordHasher(cheapHasher),
	}
	verOpts := []VerificationOption{WithVerificationClock(clock.Now)}
	if len(codes) > 0 {
		gen := sequenceGenerator(codes...)
		regOpts = append(regOpts, WithRegistrationCodeGenerator(gen))
		verOpts = append(verOpts, WithVerificationCodeGenerator(gen))
	}

	registration, err := NewRegistrationService(db, notifier, regOpts...)
	require.NoError(t, err)
	verification, err := NewVerificationService(db, notifier, verOpts...)
	require.NoError(t, err)

	return &accountFixture{
		db:           db,
		clock:        clock,
		notifier:     notifier,
		registration: registration,
		verification: verification,
	}
}

func validInput() RegistrationInput {
	return RegistrationInput{
		Username:        "alice_01",
		Email:           "alice@example.com",
		Password:        "Password1",
		ConfirmPassword: "Password1",
		Role:            "customer",
	}
}

func (f *accountFixture) user(t *testing.T, email string) models.User {
	t.Helper()
	var user models.User
	require.NoError(t, f.db.Where("email = ?", email).Take(&user).Error)
	return user
}

func (f *accountFixture) userCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.User{}).Count(&count).Error)
	return count
}
