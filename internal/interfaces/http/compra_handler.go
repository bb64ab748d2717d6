package http

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pedidos-api/internal/application/compras"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain/workflow"
)

// CompraHandler registro de gastos con comprobante.
type CompraHandler struct {
	uc  *compras.UseCase
	log zerolog.Logger
}

func NewCompraHandler(uc *compras.UseCase, log zerolog.Logger) *CompraHandler {
	return &CompraHandler{uc: uc, log: log}
}

type createCompraJSON struct {
	Proveedor   string          `json:"proveedor"`
	Monto       decimal.Decimal `json:"monto"`
	Obra        string          `json:"obra"`
	Descripcion string          `json:"descripcion"`
	Urgente     bool            `json:"urgente"`
}

// Create godoc
// @Summary      Registrar compra
// @Description  multipart/form-data con proveedor, monto, obra, descripcion, urgente y ticket opcional.
// @Tags         compras
// @Security     Bearer
// @Accept       mpfd
// @Produce      json
// @Param        proveedor  formData  string  true   "Proveedor"
// @Param        monto      formData  string  true   "Monto"
// @Param        ticket     formData  file    false  "Comprobante"
// @Success      201  {object}  dto.CompraResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /compras [post]
func (h *CompraHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCompraInput
	if !isMultipart(c) {
		var body createCompraJSON
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "INVALID_BODY", "cuerpo inválido")
		}
		in = dto.CreateCompraInput{
			Proveedor: body.Proveedor, Monto: body.Monto, Obra: body.Obra,
			Descripcion: body.Descripcion, Urgente: body.Urgente,
		}
	} else {
		form, err := c.MultipartForm()
		if err != nil {
			return badRequest(c, "INVALID_BODY", "formulario inválido")
		}
		in.Proveedor = formValue(form, "proveedor")
		in.Obra = formValue(form, "obra")
		in.Descripcion = formValue(form, "descripcion")
		in.Urgente = formBool(form, "urgente")
		m, err := decimal.NewFromString(formValue(form, "monto"))
		if err != nil {
			return badRequest(c, "VALIDATION", "monto inválido")
		}
		in.Monto = m
		if files := form.File["ticket"]; len(files) > 0 {
			archivos, closeAll, err := openArchivos(files[:1])
			if err != nil {
				return badRequest(c, "INVALID_BODY", "no se pudo leer el ticket")
			}
			defer closeAll()
			in.Ticket = &archivos[0]
		}
	}
	if strings.TrimSpace(in.Proveedor) == "" {
		return badRequest(c, "VALIDATION", "proveedor es requerido")
	}

	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar compras activas
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Param        userId  query  int  false  "Filtrar por solicitante (admin)"
// @Success      200  {array}  dto.CompraResponse
// @Router       /compras [get]
func (h *CompraHandler) List(c *fiber.Ctx) error {
	uid, ok := queryUserID(c)
	if !ok {
		return badRequest(c, "INVALID_QUERY", "userId inválido")
	}
	out, err := h.uc.List(c.UserContext(), GetActor(c), uid)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListCanceladas godoc
// @Summary      Listar compras canceladas
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CompraResponse
// @Router       /compras/cancelados/lista [get]
func (h *CompraHandler) ListCanceladas(c *fiber.Ctx) error {
	uid, ok := queryUserID(c)
	if !ok {
		return badRequest(c, "INVALID_QUERY", "userId inválido")
	}
	out, err := h.uc.ListCanceladas(c.UserContext(), GetActor(c), uid)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener compra
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la compra"
// @Success      200  {object}  dto.CompraResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /compras/{id} [get]
func (h *CompraHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	out, err := h.uc.Get(c.UserContext(), GetActor(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar compra
// @Description  Campos permitidos; la clave estado solo la aplica un admin.
// @Tags         compras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int     true  "ID de la compra"
// @Param        body  body  object  true  "Campos a cambiar"
// @Success      200  {object}  dto.CompraResponse
// @Router       /compras/{id} [put]
func (h *CompraHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	var cambios workflow.Cambios
	if err := json.Unmarshal(c.Body(), &cambios); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), id, cambios)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// AdjuntarTicket godoc
// @Summary      Subir o reemplazar el ticket
// @Tags         compras
// @Security     Bearer
// @Accept       mpfd
// @Produce      json
// @Param        id      path      int   true  "ID de la compra"
// @Param        ticket  formData  file  true  "Comprobante"
// @Success      200  {object}  dto.CompraResponse
// @Router       /compras/{id}/ticket [put]
func (h *CompraHandler) AdjuntarTicket(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	form, err := c.MultipartForm()
	if err != nil || len(form.File["ticket"]) == 0 {
		return badRequest(c, "VALIDATION", "ticket es requerido")
	}
	archivos, closeAll, err := openArchivos(form.File["ticket"][:1])
	if err != nil {
		return badRequest(c, "INVALID_BODY", "no se pudo leer el ticket")
	}
	defer closeAll()
	out, err := h.uc.AdjuntarTicket(c.UserContext(), GetActor(c), id, archivos[0])
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Cancelar godoc
// @Summary      Cancelar compra
// @Tags         compras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true  "ID de la compra"
// @Param        body  body  dto.CancelarRequest  true  "Motivo"
// @Success      200  {object}  dto.CompraResponse
// @Router       /compras/{id}/cancelar [put]
func (h *CompraHandler) Cancelar(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.CancelarRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Cancelar(c.UserContext(), GetActor(c), id, in.Motivo)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar compra (admin)
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la compra"
// @Success      200  {object}  dto.SuccessResponse
// @Router       /compras/{id} [delete]
func (h *CompraHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	if err := h.uc.Delete(c.UserContext(), GetActor(c), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Message: "compra eliminada"})
}
