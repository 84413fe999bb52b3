package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mapease/checkin-service/internal/config"
	"github.com/mapease/checkin-service/internal/domain"
	"github.com/mapease/checkin-service/internal/repository"
	"github.com/mapease/checkin-service/internal/session"
)

func newAuthService(t *testing.T) (*AuthService, session.Store, repository.OperatorRepository) {
	t.Helper()
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 30,
		BcryptCost:            bcrypt.MinCost,
		BootstrapName:         "Root",
		BootstrapEmail:        "root@mapease.com",
		BootstrapPassword:     "correct-horse",
		SuperAdminEmails:      []string{"admin@mapease.com"},
		OrganizationDomains:   []string{"@company.com"},
	}}
	sessions := session.NewMemoryStore(nil)
	ops := repository.NewMemoryOperatorRepository()
	return NewAuthService(cfg, AuthDependencies{OperatorRepo: ops, Sessions: sessions}), sessions, ops
}

func TestBootstrapIsIdempotent(t *testing.T) {
	svc, _, ops := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx))
	require.NoError(t, svc.Bootstrap(ctx))

	op, err := ops.GetByEmail(ctx, "root@mapease.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperAdmin, op.Role)
	assert.True(t, op.Active)
}

func TestLoginLogout(t *testing.T) {
	svc, sessions, _ := newAuthService(t)
	ctx := context.Background()
	require.NoError(t, svc.Bootstrap(ctx))

	_, err := svc.Login(ctx, "root@mapease.com", "wrong-password")
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))
	_, err = svc.Login(ctx, "nobody@mapease.com", "correct-horse")
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))

	res, err := svc.Login(ctx, "ROOT@mapease.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	claims, err := svc.TokenManager().ParseToken(res.Token)
	require.NoError(t, err)
	sess, err := sessions.Get(ctx, claims.SessionID())
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, res.Operator.ID, sess.OperatorID)

	require.NoError(t, svc.Logout(ctx, res.Token))
	sess, err = sessions.Get(ctx, claims.SessionID())
	require.NoError(t, err)
	assert.Nil(t, sess)

	assert.Equal(t, http.StatusUnauthorized, statusOf(svc.Logout(ctx, "garbage")))
}

func TestEnrollDerivesRole(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	cases := map[string]domain.Role{
		"admin@mapease.com": domain.RoleSuperAdmin,
		"jane@company.com":  domain.RoleTenantAdmin,
		"joe@gmail.com":     domain.RoleUser,
	}
	for email, want := range cases {
		op, err := svc.Enroll(ctx, "Someone", email, "long-enough")
		require.NoError(t, err, email)
		assert.Equal(t, want, op.Role, email)
	}

	_, err := svc.Enroll(ctx, "Dup", "JANE@company.com", "long-enough")
	assert.Equal(t, http.StatusConflict, statusOf(err))

	_, err = svc.Enroll(ctx, "", "bad", "short")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}
