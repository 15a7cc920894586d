package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
	"github.com/jhoicas/sweetshop-api/pkg/logger"
)

// LocalPrincipal clave de c.Locals con la cuenta autenticada (*entity.User).
const LocalPrincipal = "principal"

// TokenVerifier verifica un bearer token y devuelve su subject (implementado por *jwt.Service).
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// PrincipalResolver carga la cuenta del subject (implementado por *auth.AuthUseCase).
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, subject string) (*entity.User, error)
}

// AuthMiddleware valida el Bearer Token y carga la cuenta actual en c.Locals.
// El rol se lee del registro en cada petición, no del token.
func AuthMiddleware(tokens TokenVerifier, principals PrincipalResolver, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return writeError(c, log, domain.ErrMissingCredential)
		}
		subject, err := tokens.Verify(tokenString)
		if err != nil {
			return writeError(c, log, domain.ErrInvalidToken)
		}
		user, err := principals.ResolvePrincipal(c.UserContext(), subject)
		if err != nil {
			return writeError(c, log, err)
		}
		c.Locals(LocalPrincipal, user)
		return c.Next()
	}
}

// bearerToken extrae el token de "Bearer <token>"; falso si falta o no tiene esa forma.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}

// RequireAdmin deja pasar sólo a administradores. Debe ir DESPUÉS de AuthMiddleware;
// sin principal en el contexto es un error de cableado y entra en pánico (recover -> 500).
func RequireAdmin(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetPrincipal(c)
		if user == nil {
			panic("RequireAdmin usado sin AuthMiddleware")
		}
		if !user.IsAdmin {
			return writeError(c, log, domain.ErrForbidden)
		}
		return c.Next()
	}
}

// GetPrincipal devuelve la cuenta autenticada (después del middleware de auth) o nil.
func GetPrincipal(c *fiber.Ctx) *entity.User {
	u, _ := c.Locals(LocalPrincipal).(*entity.User)
	return u
}
