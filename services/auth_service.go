package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"notes-app/notes/database"
	"notes-app/notes/models"
	"notes-app/notes/utils/token"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	SessionCookieName     = "notes_session"
	verificationLinkTTL   = 24 * time.Hour
	minPasswordLength     = 6
	verificationLinkRoute = "/auth/verify"
)

// Session is the identity resolved from a session token. Token holds the token the
// client should keep, which differs from the presented one when Rotated is set.
type Session struct {
	UserID    uuid.UUID
	Email     string
	Token     string
	ExpiresAt time.Time
	Rotated   bool
}

// IdentityProvider is the capability surface the rest of the application relies on for
// authentication and account lifecycle.
type IdentityProvider interface {
	GetUser(ctx context.Context, sessionToken string) (*Session, error)
	SignIn(ctx context.Context, db *database.Database, email, password string) (*Session, error)
	SignOut(ctx context.Context, sessionToken string) error
	CreateUser(ctx context.Context, db *database.Database, email, name, password string) (models.User, error)
	GetUserByID(ctx context.Context, db *database.Database, id uuid.UUID) (models.User, error)
	GenerateVerificationLink(ctx context.Context, db *database.Database, email, password, redirectTo string) (string, error)
	VerifyEmail(ctx context.Context, db *database.Database, verificationToken string) (*Session, error)
}

type AuthService struct {
	jwtSecret  []byte
	sessionTTL time.Duration
	appURL     string
	now        func() time.Time
}

func NewAuthService(jwtSecret string, sessionTTLHours int, appURL string) *AuthService {
	if sessionTTLHours <= 0 {
		sessionTTLHours = 24
	}
	return &AuthService{
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: time.Duration(sessionTTLHours) * time.Hour,
		appURL:     strings.TrimRight(appURL, "/"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GetUser resolves a session token. Tokens in the last quarter of their lifetime are
// reissued so active users stay signed in.
func (s *AuthService) GetUser(ctx context.Context, sessionToken string) (*Session, error) {
	if sessionToken == "" {
		return nil, ErrUnauthorized
	}
	claims, err := token.ValidateToken(sessionToken, s.jwtSecret, token.PurposeSession)
	if err != nil {
		return nil, ErrUnauthorized
	}

	if claims.ExpiresAt == nil {
		return nil, ErrUnauthorized
	}

	now := s.now()
	session := &Session{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Token:     sessionToken,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.Remaining(now) < s.sessionTTL/4 {
		rotated, err := s.issueSession(claims.UserID, claims.Email, now)
		if err != nil {
			return nil, err
		}
		rotated.Rotated = true
		return rotated, nil
	}
	return session, nil
}

func (s *AuthService) issueSession(userID uuid.UUID, email string, now time.Time) (*Session, error) {
	signed, err := token.GenerateToken(userID, email, token.PurposeSession, s.jwtSecret, now, s.sessionTTL)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID:    userID,
		Email:     email,
		Token:     signed,
		ExpiresAt: now.Add(s.sessionTTL),
	}, nil
}

func (s *AuthService) SignIn(ctx context.Context, db *database.Database, email, password string) (*Session, error) {
	user, err := s.findByEmail(ctx, db, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.ComparePasswords(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(user.ID, user.Email, s.now())
}

// SignOut checks that the token is one of ours. Sessions are stateless, so ending one is
// a matter of the caller dropping the cookie.
func (s *AuthService) SignOut(ctx context.Context, sessionToken string) error {
	if _, err := token.ValidateToken(sessionToken, s.jwtSecret, token.PurposeSession); err != nil {
		return ErrUnauthorized
	}
	return nil
}

func (s *AuthService) CreateUser(ctx context.Context, db *database.Database, email, name, password string) (models.User, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return models.User{}, fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return models.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	now := s.now()
	user := models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUserExists
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return recordEvent(tx, models.UserCreated, "user", "create", user.ID.String(), map[string]interface{}{
			"user_id": user.ID.String(),
		})
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, db *database.Database, id uuid.UUID) (models.User, error) {
	var user models.User
	if err := db.DB.WithContext(ctx).Where("id = ?", id).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// GenerateVerificationLink issues a signup confirmation link. The password has to match
// the account so the link cannot be requested on someone else's behalf.
func (s *AuthService) GenerateVerificationLink(ctx context.Context, db *database.Database, email, password, redirectTo string) (string, error) {
	user, err := s.findByEmail(ctx, db, email)
	if err != nil {
		return "", err
	}
	if err := s.ComparePasswords(user.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	signed, err := token.GenerateToken(user.ID, user.Email, token.PurposeSignup, s.jwtSecret, s.now(), verificationLinkTTL)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("token", signed)
	if redirectTo != "" {
		query.Set("redirect_to", redirectTo)
	}
	return s.appURL + verificationLinkRoute + "?" + query.Encode(), nil
}

// VerifyEmail confirms the address a signup link was issued for and signs the user in,
// the link itself being proof of access to the mailbox.
func (s *AuthService) VerifyEmail(ctx context.Context, db *database.Database, verificationToken string) (*Session, error) {
	claims, err := token.ValidateToken(verificationToken, s.jwtSecret, token.PurposeSignup)
	if err != nil {
		return nil, ErrInvalidToken
	}

	now := s.now()
	err = db.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND email_confirmed_at IS NULL", claims.UserID).
		Updates(map[string]interface{}{"email_confirmed_at": now, "updated_at": now}).Error
	if err != nil {
		return nil, err
	}

	user, err := s.GetUserByID(ctx, db, claims.UserID)
	if err != nil {
		return nil, err
	}
	return s.issueSession(user.ID, user.Email, now)
}

func (s *AuthService) findByEmail(ctx context.Context, db *database.Database, email string) (models.User, error) {
	var user models.User
	if err := db.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
