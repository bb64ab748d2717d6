package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pedidos-api/internal/application/catalogos"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
)

// CatalogoHandler clientes y obras.
type CatalogoHandler struct {
	uc  *catalogos.UseCase
	log zerolog.Logger
}

func NewCatalogoHandler(uc *catalogos.UseCase, log zerolog.Logger) *CatalogoHandler {
	return &CatalogoHandler{uc: uc, log: log}
}

// ListClientes godoc
// @Summary      Listar clientes
// @Tags         catalogos
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CatalogoResponse
// @Router       /clientes [get]
func (h *CatalogoHandler) ListClientes(c *fiber.Ctx) error {
	out, err := h.uc.ListClientes(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// CreateCliente godoc
// @Summary      Crear cliente (admin)
// @Tags         catalogos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CatalogoRequest  true  "Nombre"
// @Success      201  {object}  dto.CatalogoResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /clientes [post]
func (h *CatalogoHandler) CreateCliente(c *fiber.Ctx) error {
	var in dto.CatalogoRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.CreateCliente(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListObras godoc
// @Summary      Listar obras
// @Tags         catalogos
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CatalogoResponse
// @Router       /obras [get]
func (h *CatalogoHandler) ListObras(c *fiber.Ctx) error {
	out, err := h.uc.ListObras(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// CreateObra godoc
// @Summary      Crear obra (admin)
// @Tags         catalogos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CatalogoRequest  true  "Nombre"
// @Success      201  {object}  dto.CatalogoResponse
// @Router       /obras [post]
func (h *CatalogoHandler) CreateObra(c *fiber.Ctx) error {
	var in dto.CatalogoRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.CreateObra(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
