package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/notificaciones"
)

// NotificacionHandler bandeja de avisos del usuario autenticado.
type NotificacionHandler struct {
	uc  *notificaciones.UseCase
	log zerolog.Logger
}

func NewNotificacionHandler(uc *notificaciones.UseCase, log zerolog.Logger) *NotificacionHandler {
	return &NotificacionHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Mis notificaciones
// @Tags         notificaciones
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.NotificacionResponse
// @Router       /notificaciones [get]
func (h *NotificacionHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// NoLeidas godoc
// @Summary      Cantidad sin leer
// @Tags         notificaciones
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.NoLeidasResponse
// @Router       /notificaciones/no-leidas [get]
func (h *NotificacionHandler) NoLeidas(c *fiber.Ctx) error {
	n, err := h.uc.CountUnread(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NoLeidasResponse{NoLeidas: n})
}

// Create godoc
// @Summary      Crear notificación
// @Description  usuario_id vacío notifica al propio usuario; notificar a otro requiere rol validador o superior.
// @Tags         notificaciones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateNotificacionRequest  true  "Aviso"
// @Success      201  {object}  dto.NotificacionResponse
// @Router       /notificaciones [post]
func (h *NotificacionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateNotificacionRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// LeerTodas godoc
// @Summary      Marcar todas como leídas
// @Tags         notificaciones
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MarcadasResponse
// @Router       /notificaciones/leer-todas [put]
func (h *NotificacionHandler) LeerTodas(c *fiber.Ctx) error {
	n, err := h.uc.MarkAllRead(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MarcadasResponse{Success: true, Actualizadas: n})
}

// Leer godoc
// @Summary      Marcar como leída
// @Tags         notificaciones
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la notificación"
// @Success      200  {object}  dto.SuccessResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /notificaciones/{id}/leer [put]
func (h *NotificacionHandler) Leer(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	if err := h.uc.MarkRead(c.UserContext(), id, GetUserID(c)); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// Delete godoc
// @Summary      Eliminar notificación
// @Tags         notificaciones
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la notificación"
// @Success      200  {object}  dto.SuccessResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /notificaciones/{id} [delete]
func (h *NotificacionHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	if err := h.uc.Delete(c.UserContext(), id, GetUserID(c)); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}
