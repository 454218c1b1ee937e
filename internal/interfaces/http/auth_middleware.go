package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/domain/rbac"
	"github.com/tu-usuario/backoffice-pro/pkg/jwt"
)

// Locals key para el rbac.Context del actor autenticado.
const LocalActor = "actor"

// AuthMiddleware valida el Bearer Token JWT y deja el rbac.Context del
// actor en c.Locals. El token lleva el tenant elegido en el login; el
// middleware nunca lo adivina.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "ERR-AUTH-401", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "ERR-AUTH-401", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "ERR-AUTH-401", Message: "token vacío"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "ERR-AUTH-401", Message: "token inválido o expirado"})
		}
		actor := rbac.Context{
			UserID:   claims.UserID,
			TenantID: claims.TenantID,
			Roles:    rbac.RolesFromStrings(claims.Roles),
		}
		if !actor.Valid() {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "ERR-AUTH-401", Message: "token sin identidad completa"})
		}
		c.Locals(LocalActor, actor)
		return c.Next()
	}
}

// Actor devuelve el rbac.Context del contexto (después del middleware).
// Un Context cero (inválido) significa que no hubo autenticación.
func Actor(c *fiber.Ctx) rbac.Context {
	v := c.Locals(LocalActor)
	if v == nil {
		return rbac.Context{}
	}
	actor, _ := v.(rbac.Context)
	return actor
}
