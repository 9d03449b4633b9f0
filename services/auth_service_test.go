package services

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"notes-app/notes/models"
	"notes-app/notes/testutils"
	"notes-app/notes/utils/token"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestAuthService() *AuthService {
	return NewAuthService(testSecret, 24, "http://notes.test/")
}

func TestCreateUser_AndSignIn(t *testing.T) {
	db := testutils.SetupSQLiteDB(t)
	svc := newTestAuthService()
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, db, "  Alice@Example.com ", " Alice ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice", user.Name)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.False(t, user.IsConfirmed())
	assert.Equal(t, int64(1), countEvents(t, db, models.UserCreated))

	session, err := svc.SignIn(ctx, db, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.NotEmpty(t, session.Token)

	_, err = svc.SignIn(ctx, db, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, db, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUser_Validation(t *testing.T) {
	db := testutils.SetupSQLiteDB(t)
	svc := newTestAuthService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, db, "not-an-email", "", "secret123")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateUser(ctx, db, "bob@example.com", "", "123")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateUser(ctx, db, "bob@example.com", "", "secret123")
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, db, "BOB@example.com", "", "secret123")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestGetUser_ResolvesSession(t *testing.T) {
	svc := newTestAuthService()
	userID := uuid.New()

	session, err := svc.issueSession(userID, "carol@example.com", time.Now().UTC())
	require.NoError(t, err)

	resolved, err := svc.GetUser(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, resolved.UserID)
	assert.Equal(t, session.Token, resolved.Token)
	assert.False(t, resolved.Rotated)
}

func TestGetUser_RotatesAgingSession(t *testing.T) {
	svc := newTestAuthService()
	userID := uuid.New()

	// Issued 23 hours ago with a 24 hour lifetime: one hour left.
	old, err := token.GenerateToken(userID, "dave@example.com", token.PurposeSession, []byte(testSecret),
		time.Now().UTC().Add(-23*time.Hour), 24*time.Hour)
	require.NoError(t, err)

	resolved, err := svc.GetUser(context.Background(), old)
	require.NoError(t, err)
	assert.True(t, resolved.Rotated)
	assert.NotEqual(t, old, resolved.Token)
	assert.Equal(t, userID, resolved.UserID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), resolved.ExpiresAt, time.Minute)
}

func TestGetUser_Rejects(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.GetUser(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.GetUser(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	expired, err := token.GenerateToken(userID, "e@example.com", token.PurposeSession, []byte(testSecret),
		time.Now().Add(-48*time.Hour), time.Hour)
	require.NoError(t, err)
	_, err = svc.GetUser(ctx, expired)
	assert.ErrorIs(t, err, ErrUnauthorized)

	signup, err := token.GenerateToken(userID, "e@example.com", token.PurposeSignup, []byte(testSecret),
		time.Now(), time.Hour)
	require.NoError(t, err)
	_, err = svc.GetUser(ctx, signup)
	assert.ErrorIs(t, err, ErrUnauthorized)

	foreign, err := token.GenerateToken(userID, "e@example.com", token.PurposeSession, []byte("other-secret"),
		time.Now(), time.Hour)
	require.NoError(t, err)
	_, err = svc.GetUser(ctx, foreign)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSignOut(t *testing.T) {
	svc := newTestAuthService()
	session, err := svc.issueSession(uuid.New(), "f@example.com", time.Now().UTC())
	require.NoError(t, err)

	assert.NoError(t, svc.SignOut(context.Background(), session.Token))
	assert.ErrorIs(t, svc.SignOut(context.Background(), "garbage"), ErrUnauthorized)
}

func TestVerificationLink_RoundTrip(t *testing.T) {
	db := testutils.SetupSQLiteDB(t)
	svc := newTestAuthService()
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, db, "gina@example.com", "Gina", "secret123")
	require.NoError(t, err)

	_, err = svc.GenerateVerificationLink(ctx, db, "gina@example.com", "wrong", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	link, err := svc.GenerateVerificationLink(ctx, db, "gina@example.com", "secret123", "http://notes.test/notes?verified=1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "http://notes.test/auth/verify?"))

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "http://notes.test/notes?verified=1", parsed.Query().Get("redirect_to"))

	session, err := svc.VerifyEmail(ctx, db, parsed.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.NotEmpty(t, session.Token)

	verified, err := svc.GetUserByID(ctx, db, user.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsConfirmed())

	// A session token is not a verification token.
	session, err = svc.SignIn(ctx, db, "gina@example.com", "secret123")
	require.NoError(t, err)
	_, err = svc.VerifyEmail(ctx, db, session.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := testutils.SetupSQLiteDB(t)
	_, err := newTestAuthService().GetUserByID(context.Background(), db, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
