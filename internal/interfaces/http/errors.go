package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorTable se recorre en orden; el primer errors.Is que coincide decide la respuesta.
var errorTable = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrMotivoRequerido, fiber.StatusBadRequest, "MOTIVO_REQUERIDO"},
	{domain.ErrComentarioVacio, fiber.StatusBadRequest, "COMENTARIO_VACIO"},
	{domain.ErrSinCamposValidos, fiber.StatusBadRequest, "NO_FIELDS"},
	{domain.ErrEstadoInvalido, fiber.StatusBadRequest, "ESTADO_INVALIDO"},
	{domain.ErrImagenMuyGrande, fiber.StatusBadRequest, "IMAGE_TOO_LARGE"},
	{domain.ErrDemasiadasImagenes, fiber.StatusBadRequest, "TOO_MANY_IMAGES"},
	{domain.ErrImagenInvalida, fiber.StatusBadRequest, "INVALID_IMAGE"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrUsernameTaken, fiber.StatusConflict, "USERNAME_EXISTS"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrPedidoCancelado, fiber.StatusConflict, "ALREADY_CANCELLED"},
	{domain.ErrBloqueadoPendienteValidacion, fiber.StatusConflict, "PENDING_VALIDATION"},
	{domain.ErrNoPendienteValidacion, fiber.StatusConflict, "NOT_PENDING_VALIDATION"},
	{domain.ErrPedidoValidado, fiber.StatusConflict, "ALREADY_VALIDATED"},
	{domain.ErrUserHasRecords, fiber.StatusConflict, "USER_HAS_RECORDS"},
	{domain.ErrSweepEnCurso, fiber.StatusConflict, "SWEEP_RUNNING"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrRootUserProtected, fiber.StatusForbidden, "ROOT_PROTECTED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// writeError traduce un error de dominio a la respuesta HTTP. Lo no mapeado es 500
// con mensaje genérico; el detalle solo va al log.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// paramID id numérico positivo de la ruta.
func paramID(c *fiber.Ctx) (int64, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}

func invalidID(c *fiber.Ctx) error {
	return badRequest(c, "INVALID_ID", "id inválido")
}

// ErrorHandler para fiber.Config: errores de Fiber conservan su código, el resto es 500.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
		}
		return writeError(c, log, err)
	}
}
