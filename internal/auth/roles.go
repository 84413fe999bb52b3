package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mapease/checkin-service/internal/config"
	"github.com/mapease/checkin-service/internal/domain"
	apperrors "github.com/mapease/checkin-service/pkg/util/errorutil"
)

// RequireRole ensures the operator holds one of the allowed roles. With no
// roles it only requires an authenticated operator.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Operator == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Operator.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAdmin admits tenant and super admins.
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleTenantAdmin, domain.RoleSuperAdmin)
}

// IsOrganizationEmail reports whether email ends with one of the organisation domains.
func IsOrganizationEmail(email string, domains []string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, d := range domains {
		d = strings.ToLower(d)
		if d == "" {
			continue
		}
		if !strings.HasPrefix(d, "@") {
			d = "@" + d
		}
		if strings.HasSuffix(email, d) {
			return true
		}
	}
	return false
}

// RoleForEmail derives the role a new operator gets: listed super admins,
// then organisation members as tenant admins, then everyone else as user.
func RoleForEmail(email string, cfg config.AuthConfig) domain.Role {
	normalized := strings.ToLower(strings.TrimSpace(email))
	for _, admin := range cfg.SuperAdminEmails {
		if strings.ToLower(admin) == normalized {
			return domain.RoleSuperAdmin
		}
	}
	if IsOrganizationEmail(normalized, cfg.OrganizationDomains) {
		return domain.RoleTenantAdmin
	}
	return domain.RoleUser
}
