package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/thanksrelay/relay/internal/db"
	"github.com/thanksrelay/relay/internal/models"
	"github.com/thanksrelay/relay/pkg/config"
	"github.com/thanksrelay/relay/pkg/logging"
)

// Auth failures
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// DefaultDisplayName is assigned to profiles created without one
const DefaultDisplayName = "Guest"

// Session is the result of a successful authentication
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Service implements anonymous and email/password authentication with
// stateless JWT sessions. Profiles are created lazily on first
// authentication and never deleted here.
type Service struct {
	users  *db.UserRepository
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
}

// NewService creates a new auth service
func NewService(users *db.UserRepository, cfg *config.AuthConfig) *Service {
	return &Service{
		users:  users,
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		logger: logging.WithComponent("auth"),
	}
}

// SignInAnonymously creates a fresh anonymous profile and session
func (s *Service) SignInAnonymously(ctx context.Context) (*Session, error) {
	user := &models.User{
		UID:         uuid.NewString(),
		DisplayName: DefaultDisplayName,
		IsAnonymous: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create anonymous user: %w", err)
	}

	return s.newSession(user)
}

// RegisterWithEmail creates an email/password account and profile
func (s *Service) RegisterWithEmail(ctx context.Context, email, password, displayName string) (*Session, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if displayName == "" {
		displayName = DefaultDisplayName
	}
	hashStr := string(hash)
	user := &models.User{
		UID:          uuid.NewString(),
		DisplayName:  displayName,
		Email:        &email,
		PasswordHash: &hashStr,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("uid", user.UID))
	return s.newSession(user)
}

// LoginWithEmail authenticates an existing email/password account
func (s *Service) LoginWithEmail(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.newSession(user)
}

// CurrentUser resolves a bearer token to its profile, creating the
// profile if it is somehow absent (lazy creation on first auth)
func (s *Service) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	uid, err := s.ParseToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{
			UID:         uid,
			DisplayName: DefaultDisplayName,
			IsAnonymous: true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
	}
	return user, nil
}

// IssueToken signs a session token for the uid
func (s *Service) IssueToken(uid string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": uid,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken verifies a session token and returns its uid
func (s *Service) ParseToken(tokenString string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	uid, ok := claims["sub"].(string)
	if !ok || uid == "" {
		return "", ErrInvalidToken
	}
	return uid, nil
}

func (s *Service) newSession(user *models.User) (*Session, error) {
	token, err := s.IssueToken(user.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}
