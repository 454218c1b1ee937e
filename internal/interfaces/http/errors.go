package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
)

// respondError traduce un error de dominio al par estable (status, code,
// message). Los errores de sistema se loguean con su causa y salen como
// 500 sin detalle interno.
func respondError(c *fiber.Ctx, err error) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		log.Error().Err(err).Str("path", c.Path()).Msg("error no tipado en handler")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "ERR-SYS-001", Message: "error interno",
		})
	}

	status := fiber.StatusInternalServerError
	switch de.Kind {
	case domain.KindAuthorization:
		// ERR-AUTH-401 es fallo de autenticación, el resto son de permiso.
		if de.Code == "ERR-AUTH-401" {
			status = fiber.StatusUnauthorized
		} else {
			status = fiber.StatusForbidden
		}
	case domain.KindValidation:
		status = fiber.StatusBadRequest
	case domain.KindStateTransition:
		status = fiber.StatusConflict
	case domain.KindNotFound:
		status = fiber.StatusNotFound
	case domain.KindSystem:
		log.Error().Err(de).Str("path", c.Path()).Str("code", de.Code).Msg("error de sistema")
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: de.Code, Message: de.Message})
}

// badBody respuesta uniforme para cuerpos no parseables.
func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code: "ERR-VAL-001", Message: "cuerpo inválido",
	})
}

// missingID respuesta uniforme para :id vacío.
func missingID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code: "ERR-VAL-001", Message: "id requerido",
	})
}
