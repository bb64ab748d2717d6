package http

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/limpieza"
	"github.com/jhoicas/pedidos-api/internal/application/pedidos"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/workflow"
)

// PedidoHandler maneja el ciclo de vida de los pedidos (protegido).
type PedidoHandler struct {
	uc       *pedidos.UseCase
	limpieza *limpieza.UseCase
	log      zerolog.Logger
}

// NewPedidoHandler construye el handler.
func NewPedidoHandler(uc *pedidos.UseCase, sweep *limpieza.UseCase, log zerolog.Logger) *PedidoHandler {
	return &PedidoHandler{uc: uc, limpieza: sweep, log: log}
}

// createPedidoJSON alta sin imágenes para clientes que envían JSON.
type createPedidoJSON struct {
	ClienteID   int64            `json:"cliente_id"`
	ObraID      int64            `json:"obra_id"`
	Descripcion string           `json:"descripcion"`
	Items       []entity.Item    `json:"items"`
	Monto       *decimal.Decimal `json:"monto"`
	Urgente     bool             `json:"urgente"`
}

// Create godoc
// @Summary      Crear pedido
// @Description  multipart/form-data: cliente_id, obra_id, descripcion, items (JSON), monto, urgente e imagenes (hasta 10).
// @Tags         pedidos
// @Security     Bearer
// @Accept       mpfd
// @Produce      json
// @Param        cliente_id  formData  int     true   "Cliente"
// @Param        obra_id     formData  int     true   "Obra"
// @Param        items       formData  string  false  "Ítems en JSON"
// @Param        imagenes    formData  file    false  "Imágenes"
// @Success      201  {object}  dto.PedidoResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /pedidos [post]
func (h *PedidoHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePedidoInput
	if !isMultipart(c) {
		var body createPedidoJSON
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "INVALID_BODY", "cuerpo inválido")
		}
		in = dto.CreatePedidoInput{
			ClienteID: body.ClienteID, ObraID: body.ObraID, Descripcion: body.Descripcion,
			Items: body.Items, Monto: body.Monto, Urgente: body.Urgente,
		}
	} else {
		form, err := c.MultipartForm()
		if err != nil {
			return badRequest(c, "INVALID_BODY", "formulario inválido")
		}
		var ok bool
		if in.ClienteID, ok = formInt64(form, "cliente_id"); !ok {
			return badRequest(c, "VALIDATION", "cliente_id es requerido")
		}
		if in.ObraID, ok = formInt64(form, "obra_id"); !ok {
			return badRequest(c, "VALIDATION", "obra_id es requerido")
		}
		in.Descripcion = formValue(form, "descripcion")
		in.Urgente = formBool(form, "urgente")
		if raw := formValue(form, "items"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &in.Items); err != nil {
				return badRequest(c, "VALIDATION", "items debe ser un arreglo JSON")
			}
		}
		if raw := formValue(form, "monto"); raw != "" {
			m, err := decimal.NewFromString(raw)
			if err != nil {
				return badRequest(c, "VALIDATION", "monto inválido")
			}
			in.Monto = &m
		}
		if len(form.File["imagenes"]) > pedidos.MaxImagenes {
			return badRequest(c, "TOO_MANY_IMAGES", fmt.Sprintf("máximo %d imágenes", pedidos.MaxImagenes))
		}
		archivos, closeAll, err := openArchivos(form.File["imagenes"])
		if err != nil {
			return badRequest(c, "INVALID_BODY", "no se pudo leer una imagen")
		}
		defer closeAll()
		in.Imagenes = archivos
	}
	if in.ClienteID <= 0 || in.ObraID <= 0 {
		return badRequest(c, "VALIDATION", "cliente_id y obra_id son requeridos")
	}

	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar pedidos activos
// @Description  Un admin ve todos (filtrable con userId); el resto solo los propios.
// @Tags         pedidos
// @Security     Bearer
// @Produce      json
// @Param        userId  query  int  false  "Filtrar por solicitante (admin)"
// @Success      200  {array}  dto.PedidoResponse
// @Router       /pedidos [get]
func (h *PedidoHandler) List(c *fiber.Ctx) error {
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

// ListCancelados godoc
// @Summary      Listar pedidos cancelados
// @Tags         pedidos
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PedidoResponse
// @Router       /pedidos/cancelados/lista [get]
func (h *PedidoHandler) ListCancelados(c *fiber.Ctx) error {
	uid, ok := queryUserID(c)
	if !ok {
		return badRequest(c, "INVALID_QUERY", "userId inválido")
	}
	out, err := h.uc.ListCancelados(c.UserContext(), GetActor(c), uid)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListPendientes godoc
// @Summary      Cola de validación
// @Tags         pedidos
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PedidoResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /pedidos/pendientes [get]
func (h *PedidoHandler) ListPendientes(c *fiber.Ctx) error {
	out, err := h.uc.ListPendientes(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Limpieza godoc
// @Summary      Ejecutar la limpieza de pedidos cancelados vencidos
// @Tags         pedidos
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LimpiezaResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /pedidos/limpieza [post]
func (h *PedidoHandler) Limpieza(c *fiber.Ctx) error {
	res, err := h.limpieza.Ejecutar(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.LimpiezaResponse{
		Ejecutada:  true,
		Eliminados: nonNil(res.Eliminados),
		Fallidos:   nonNil(res.Fallidos),
	})
}

// GetByID godoc
// @Summary      Obtener pedido con sus comentarios
// @Tags         pedidos
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del pedido"
// @Success      200  {object}  dto.PedidoResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /pedidos/{id} [get]
func (h *PedidoHandler) GetByID(c *fiber.Ctx) error {
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
// @Summary      Actualizar pedido
// @Description  Solo se aplican los campos permitidos. Una clave estado cambia el estado en la misma transacción.
// @Tags         pedidos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int     true  "ID del pedido"
// @Param        body  body  object  true  "Campos a cambiar"
// @Success      200  {object}  dto.PedidoResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /pedidos/{id} [put]
func (h *PedidoHandler) Update(c *fiber.Ctx) error {
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

// SetEstado godoc
// @Summary      Cambiar estado
// @Tags         pedidos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                true  "ID del pedido"
// @Param        body  body  dto.EstadoRequest  true  "Nuevo estado"
// @Success      200  {object}  dto.PedidoResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /pedidos/{id}/estado [put]
func (h *PedidoHandler) SetEstado(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.EstadoRequest
	if err := c.BodyParser(&in); err != nil || in.Estado == "" {
		return badRequest(c, "VALIDATION", "estado es requerido")
	}
	out, err := h.uc.SetEstado(c.UserContext(), GetActor(c), id, in.Estado)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Cancelar godoc
// @Summary      Cancelar pedido
// @Description  Programa el borrado definitivo a las 24 horas.
// @Tags         pedidos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true  "ID del pedido"
// @Param        body  body  dto.CancelarRequest  true  "Motivo"
// @Success      200  {object}  dto.PedidoResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /pedidos/{id}/cancelar [put]
func (h *PedidoHandler) Cancelar(c *fiber.Ctx) error {
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

// Validar godoc
// @Summary      Validar o rechazar un pedido pendiente
// @Tags         pedidos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                 true  "ID del pedido"
// @Param        body  body  dto.ValidarRequest  true  "accion: validar | rechazar"
// @Success      200  {object}  dto.PedidoResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /pedidos/{id}/validar [put]
func (h *PedidoHandler) Validar(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.ValidarRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Validar(c.UserContext(), GetActor(c), id, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Comentar godoc
// @Summary      Agregar comentario
// @Tags         pedidos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                    true  "ID del pedido"
// @Param        body  body  dto.ComentarioRequest  true  "Texto"
// @Success      201  {object}  dto.ComentarioResponse
// @Router       /pedidos/{id}/comentarios [post]
func (h *PedidoHandler) Comentar(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.ComentarioRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Comentar(c.UserContext(), GetActor(c), id, in.Comentario)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListComentarios godoc
// @Summary      Hilo de comentarios
// @Tags         pedidos
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del pedido"
// @Success      200  {array}  dto.ComentarioResponse
// @Router       /pedidos/{id}/comentarios [get]
func (h *PedidoHandler) ListComentarios(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	out, err := h.uc.ListComentarios(c.UserContext(), GetActor(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// AgregarImagenes godoc
// @Summary      Adjuntar imágenes a un pedido
// @Tags         pedidos
// @Security     Bearer
// @Accept       mpfd
// @Produce      json
// @Param        id        path      int   true  "ID del pedido"
// @Param        imagenes  formData  file  true  "Imágenes"
// @Success      200  {object}  dto.PedidoResponse
// @Router       /pedidos/{id}/imagenes [post]
func (h *PedidoHandler) AgregarImagenes(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	form, err := c.MultipartForm()
	if err != nil || len(form.File["imagenes"]) == 0 {
		return badRequest(c, "VALIDATION", "se requiere al menos una imagen")
	}
	archivos, closeAll, err := openArchivos(form.File["imagenes"])
	if err != nil {
		return badRequest(c, "INVALID_BODY", "no se pudo leer una imagen")
	}
	defer closeAll()
	out, err := h.uc.AgregarImagenes(c.UserContext(), GetActor(c), id, archivos)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Hoja imprimible del pedido
// @Tags         pedidos
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID del pedido"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /pedidos/{id}/pdf [get]
func (h *PedidoHandler) PDF(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	b, err := h.uc.PDF(c.UserContext(), GetActor(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="pedido-%d.pdf"`, id))
	return c.Send(b)
}

// Delete godoc
// @Summary      Eliminar pedido (admin)
// @Tags         pedidos
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del pedido"
// @Success      200  {object}  dto.SuccessResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /pedidos/{id} [delete]
func (h *PedidoHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	if err := h.uc.Delete(c.UserContext(), GetActor(c), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Message: "pedido eliminado"})
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
