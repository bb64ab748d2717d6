package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrUsernameTaken      = errors.New("el nombre de usuario ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrRootUserProtected  = errors.New("el supervisor raíz no puede eliminarse ni degradarse")
	ErrUserHasRecords     = errors.New("el usuario tiene registros asociados")
	ErrSweepEnCurso       = errors.New("ya hay una limpieza en ejecución")
	ErrImagenMuyGrande    = errors.New("la imagen supera el tamaño máximo permitido")
	ErrDemasiadasImagenes = errors.New("se superó la cantidad máxima de imágenes")
	ErrImagenInvalida     = errors.New("formato de imagen no soportado")
)

// Errores del ciclo de vida de pedidos y compras.
var (
	ErrPedidoCancelado              = errors.New("el registro ya está cancelado")
	ErrBloqueadoPendienteValidacion = errors.New("el pedido está bloqueado pendiente de validación")
	ErrNoPendienteValidacion        = errors.New("el pedido no está pendiente de validación")
	ErrEstadoInvalido               = errors.New("estado no válido para esta operación")
	ErrMotivoRequerido              = errors.New("el motivo es requerido")
	ErrComentarioVacio              = errors.New("el comentario no puede estar vacío")
	ErrSinCamposValidos             = errors.New("no se enviaron campos válidos para actualizar")
	ErrPedidoValidado               = errors.New("el pedido ya fue validado")
)

// UserHasRecordsError impide eliminar un usuario que tiene pedidos o compras.
type UserHasRecordsError struct {
	Pedidos int
	Compras int
}

func (e *UserHasRecordsError) Error() string {
	return fmt.Sprintf("no se puede eliminar el usuario: tiene %d pedido(s) y %d compra(s) asociados", e.Pedidos, e.Compras)
}

// Is permite errors.Is(err, ErrUserHasRecords).
func (e *UserHasRecordsError) Is(target error) bool {
	return target == ErrUserHasRecords
}
