package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/mapease/checkin-service/internal/auth"
	"github.com/mapease/checkin-service/internal/config"
	"github.com/mapease/checkin-service/internal/domain"
	"github.com/mapease/checkin-service/internal/repository"
	"github.com/mapease/checkin-service/internal/session"
	apperrors "github.com/mapease/checkin-service/pkg/util/errorutil"
)

// AuthService coordinates operator login and sessions.
type AuthService struct {
	operators  repository.OperatorRepository
	sessions   session.Store
	tokenMgr   *auth.TokenManager
	cfg        config.AuthConfig
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	OperatorRepo repository.OperatorRepository
	Sessions     session.Store
	Logger       *zap.Logger
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Operator  *domain.Operator
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		operators:  deps.OperatorRepo,
		sessions:   deps.Sessions,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		cfg:        cfg.Auth,
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// Login authenticates an operator and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	op, err := s.operators.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !op.Active {
		return nil, apperrors.NewUnauthorized("operator disabled")
	}
	if err := auth.ComparePassword(op.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, sess, err := s.tokenMgr.GenerateToken(op.ID, op.Role)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Set(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("operator logged in", zap.String("operator_id", op.ID), zap.String("role", string(op.Role)))
	return &LoginResult{Operator: op, Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

// Logout revokes the session behind token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	return s.sessions.Clear(ctx, claims.SessionID())
}

// Enroll creates an operator whose role follows from the email address.
func (s *AuthService) Enroll(ctx context.Context, name, email, password string) (*domain.Operator, error) {
	return s.createOperator(ctx, name, email, password, auth.RoleForEmail(email, s.cfg))
}

// Bootstrap creates the configured super admin when it does not exist yet.
func (s *AuthService) Bootstrap(ctx context.Context) error {
	email := strings.TrimSpace(s.cfg.BootstrapEmail)
	if email == "" || s.cfg.BootstrapPassword == "" {
		s.logger.Debug("no bootstrap operator configured")
		return nil
	}
	if _, err := s.operators.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	op, err := s.createOperator(ctx, s.cfg.BootstrapName, email, s.cfg.BootstrapPassword, domain.RoleSuperAdmin)
	if err != nil {
		var de *apperrors.DomainError
		if errors.As(err, &de) && de.Code == "CONFLICT" {
			return nil
		}
		return err
	}
	s.logger.Info("bootstrap operator created", zap.String("operator_id", op.ID), zap.String("email", op.Email))
	return nil
}

func (s *AuthService) createOperator(ctx context.Context, name, email, password string, role domain.Role) (*domain.Operator, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	details := map[string]any{}
	if name == "" {
		details["name"] = "required"
	}
	if err := validate.Var(email, "required,email"); err != nil {
		details["email"] = "invalid"
	}
	if err := auth.ValidatePassword(password); err != nil {
		details["password"] = err.Error()
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid operator", details)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	op := &domain.Operator{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.operators.Create(ctx, op); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, err
	}
	return op, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
