package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/sweetshop-api/internal/application/dto"
	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/pkg/logger"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// El orden importa: el primer errors.Is que coincide gana.
var errorTable = []errorMapping{
	{domain.ErrStoreUnavailable, fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE", "almacenamiento no disponible, reintente"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos de entrada inválidos"},
	{domain.ErrMissingCredential, fiber.StatusUnauthorized, "MISSING_TOKEN", "Authorization header requerido"},
	{domain.ErrInvalidToken, fiber.StatusUnauthorized, "INVALID_TOKEN", "token inválido o expirado"},
	{domain.ErrPrincipalNotFound, fiber.StatusUnauthorized, "INVALID_TOKEN", "token inválido o expirado"},
	{domain.ErrInvalidCredential, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "credenciales inválidas"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "se requiere rol de administrador"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrDuplicateIdentity, fiber.StatusConflict, "DUPLICATE_EMAIL", "el email ya está registrado"},
	{domain.ErrDuplicateName, fiber.StatusConflict, "DUPLICATE_NAME", "ya existe un dulce con ese nombre"},
	{domain.ErrOutOfStock, fiber.StatusConflict, "OUT_OF_STOCK", "sin stock disponible"},
}

// writeError traduce un error de dominio a status + dto.ErrorResponse.
// Los errores no clasificados se registran y responden 500 sin detalles.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			if m.status == fiber.StatusServiceUnavailable {
				log.Warn().Err(err).Str("path", c.Path()).Msg("almacenamiento no disponible")
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.message})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}
