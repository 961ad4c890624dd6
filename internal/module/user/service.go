package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/readmanga/server/internal/module/auth"
	"github.com/readmanga/server/internal/shared/metrics"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Session is an issued access token together with its owner.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

// Service provides account operations.
type Service struct {
	repo    Repository
	jwt     *auth.JWTManager
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, jwt *auth.JWTManager, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		jwt:     jwt,
		metrics: m,
		logger:  logger,
	}
}

// Register creates an account and signs it in.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*Session, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	if err := s.ensureAvailable(ctx, email, username); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	languages := req.PreferredLanguages
	if len(languages) == 0 {
		languages = DefaultLanguages
	}

	user := &User{
		ID:                 uuid.New(),
		Username:           username,
		Email:              email,
		PasswordHash:       string(hash),
		PreferredLanguages: append([]string(nil), languages...),
		IsActive:           true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent registration; report which field.
			if availErr := s.ensureAvailable(ctx, email, username); availErr != nil {
				return nil, availErr
			}
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.recordEvent("register")
	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))

	return s.newSession(user)
}

// Login authenticates a user with email and password.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.recordEvent("login_failed")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordEvent("login_failed")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.recordEvent("login_failed")
		return nil, ErrAccountDisabled
	}

	s.recordEvent("login")
	return s.newSession(user)
}

// GetUser returns a user by ID.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile changes the username and/or preferred languages.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username != "" && username != user.Username {
			if _, err := s.repo.GetByUsername(ctx, username); err == nil {
				return nil, ErrUsernameTaken
			} else if !errors.Is(err, ErrUserNotFound) {
				return nil, fmt.Errorf("check username: %w", err)
			}
			user.Username = username
		}
	}

	if req.PreferredLanguages != nil {
		user.PreferredLanguages = append([]string(nil), req.PreferredLanguages...)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// ResolveIdentity implements auth.IdentityResolver.
func (s *Service) ResolveIdentity(ctx context.Context, id uuid.UUID) (*auth.Identity, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, auth.ErrIdentityNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, auth.ErrAccountDisabled
	}
	return &auth.Identity{
		UserID:             user.ID,
		Username:           user.Username,
		PreferredLanguages: user.Languages(),
	}, nil
}

func (s *Service) ensureAvailable(ctx context.Context, email, username string) error {
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("check email: %w", err)
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("check username: %w", err)
	}

	return nil
}

func (s *Service) newSession(user *User) (*Session, error) {
	token, expiresAt, err := s.jwt.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *Service) recordEvent(event string) {
	if s.metrics != nil {
		s.metrics.RecordAuthEvent(event)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
