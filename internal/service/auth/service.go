// Package auth implements account management and token-based
// authentication: bcrypt password storage and signed JWTs resolved
// back to an Actor on every request.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"dairyherd/internal/config"
	"dairyherd/internal/domain/apperr"
	"dairyherd/internal/domain/models"
)

const bcryptCost = 12

// Repository is the user persistence surface the auth service needs.
type Repository interface {
	Insert(ctx context.Context, u models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, orgID, username, email string) (bool, error)
	UpdateRole(ctx context.Context, id string, role models.Role) error
}

// OrganizationDirectory validates organization references at
// registration.
type OrganizationDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Organization, error)
}

// Service implements authentication and account management.
type Service struct {
	repo   Repository
	orgs   OrganizationDirectory
	cfg    config.AuthConfig
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewService wires a new auth service instance.
func NewService(repo Repository, orgs OrganizationDirectory, cfg config.AuthConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		orgs:   orgs,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

type claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// RegisterInput carries a new account's details.
type RegisterInput struct {
	Username       string
	Email          string
	Password       string
	Role           models.Role
	OrganizationID string
}

// Register creates a new user account. Admin only; the account lands
// in the caller's organization unless another valid one is given.
func (s *Service) Register(ctx context.Context, actor models.Actor, in RegisterInput) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("admin access required")
	}
	if in.Username == "" || in.Email == "" {
		return nil, apperr.Validation("username and email are required")
	}
	if len(in.Password) < 6 {
		return nil, apperr.Validation("password must be at least 6 characters")
	}

	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleAdmin && role != models.RoleUser {
		return nil, apperr.Validation("invalid role %s", in.Role)
	}

	orgID := in.OrganizationID
	if orgID == "" {
		orgID = actor.OrganizationID
	} else {
		org, err := s.orgs.FindByID(ctx, orgID)
		if err != nil {
			return nil, err
		}
		if org == nil {
			return nil, apperr.Validation("organization %s not found", orgID)
		}
	}

	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, orgID, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("user already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:             s.newID(),
		Username:       in.Username,
		Email:          in.Email,
		PasswordHash:   string(hash),
		Role:           role,
		OrganizationID: orgID,
		CreatedAt:      s.now(),
	}

	if err := s.repo.Insert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))

	return &user, nil
}

// Login verifies credentials and issues a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, apperr.Validation("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.Validation("invalid credentials")
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	})

	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, user, nil
}

// Resolve validates a bearer token and loads the account behind it,
// returning the access context for the request. The user is re-read so
// role changes take effect immediately.
func (s *Service) Resolve(ctx context.Context, token string) (models.Actor, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return models.Actor{}, apperr.Forbidden("invalid token")
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || c.Subject == "" {
		return models.Actor{}, apperr.Forbidden("invalid token")
	}

	user, err := s.repo.FindByID(ctx, c.Subject)
	if err != nil {
		return models.Actor{}, err
	}
	if user == nil {
		return models.Actor{}, apperr.Forbidden("invalid token")
	}

	return models.Actor{
		UserID:         user.ID,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
	}, nil
}

// Me returns the actor's own account.
func (s *Service) Me(ctx context.Context, actor models.Actor) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user %s not found", actor.UserID)
	}
	return user, nil
}

// UpdateUserRole changes another user's role. Admin only.
func (s *Service) UpdateUserRole(ctx context.Context, actor models.Actor, userID string, role models.Role) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("admin access required")
	}
	if role != models.RoleAdmin && role != models.RoleUser {
		return nil, apperr.Validation("invalid role %s", role)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.OrganizationID != actor.OrganizationID {
		return nil, apperr.NotFound("user %s not found", userID)
	}

	if err := s.repo.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}
