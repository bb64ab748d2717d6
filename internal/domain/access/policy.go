// Package access concentra la política de autorización por rol.
// Toda decisión pasa por Allowed; handlers y casos de uso consultan la misma tabla.
package access

import "github.com/jhoicas/pedidos-api/internal/domain/entity"

// Operation capacidad que un rol puede o no ejercer.
type Operation string

const (
	PedidoVerTodos        Operation = "pedido.ver_todos"
	PedidoCambiarEstado   Operation = "pedido.cambiar_estado"
	PedidoValidar         Operation = "pedido.validar"
	PedidoVerPendientes   Operation = "pedido.ver_pendientes"
	PedidoEliminar        Operation = "pedido.eliminar"
	CompraVerTodas        Operation = "compra.ver_todas"
	CompraForzarEstado    Operation = "compra.forzar_estado"
	CompraEliminar        Operation = "compra.eliminar"
	UsuarioGestionar      Operation = "usuario.gestionar"
	UsuarioAsignarSuper   Operation = "usuario.asignar_supervisor"
	RegistrarPrivilegiado Operation = "usuario.registrar_privilegiado"
	NotificarOtroUsuario  Operation = "notificacion.crear_ajena"
	CatalogoGestionar     Operation = "catalogo.gestionar"
	LimpiezaEjecutar      Operation = "limpieza.ejecutar"
)

// Actor usuario autenticado que invoca una operación.
type Actor struct {
	ID   int64
	Role string
}

// Can atajo de Allowed para el actor.
func (a Actor) Can(op Operation) bool { return Allowed(a.Role, op) }

// Reaches dueño del registro o admin.
func (a Actor) Reaches(ownerID int64) bool { return CanReach(a.Role, a.ID, ownerID) }

// Reads dueño del registro o revisor.
func (a Actor) Reads(ownerID int64) bool { return CanRead(a.Role, a.ID, ownerID) }

// rank jerarquía: supervisor ⊇ admin ⊇ validador ⊇ user.
var rank = map[string]int{
	entity.RoleUser:       1,
	entity.RoleValidador:  2,
	entity.RoleAdmin:      3,
	entity.RoleSupervisor: 4,
}

// minimo rol requerido por operación.
var minimo = map[Operation]string{
	PedidoVerTodos:        entity.RoleAdmin,
	PedidoCambiarEstado:   entity.RoleAdmin,
	PedidoValidar:         entity.RoleValidador,
	PedidoVerPendientes:   entity.RoleValidador,
	PedidoEliminar:        entity.RoleAdmin,
	CompraVerTodas:        entity.RoleAdmin,
	CompraForzarEstado:    entity.RoleAdmin,
	CompraEliminar:        entity.RoleAdmin,
	UsuarioGestionar:      entity.RoleAdmin,
	UsuarioAsignarSuper:   entity.RoleSupervisor,
	RegistrarPrivilegiado: entity.RoleAdmin,
	NotificarOtroUsuario:  entity.RoleValidador,
	CatalogoGestionar:     entity.RoleAdmin,
	LimpiezaEjecutar:      entity.RoleAdmin,
}

// Allowed indica si el rol puede ejecutar la operación. Roles u operaciones desconocidos se niegan.
func Allowed(role string, op Operation) bool {
	need, ok := minimo[op]
	if !ok {
		return false
	}
	have, ok := rank[role]
	if !ok {
		return false
	}
	return have >= rank[need]
}

// IsAdmin admin o supervisor.
func IsAdmin(role string) bool {
	return rank[role] >= rank[entity.RoleAdmin]
}

// IsValidador validador, admin o supervisor.
func IsValidador(role string) bool {
	return rank[role] >= rank[entity.RoleValidador]
}

// IsAdminOrValidador admin, validador o supervisor.
func IsAdminOrValidador(role string) bool {
	return IsAdmin(role) || role == entity.RoleValidador
}

// CanReach indica si el actor puede operar sobre un registro: dueño o admin.
func CanReach(role string, actorID, ownerID int64) bool {
	return actorID == ownerID || IsAdmin(role)
}

// CanRead dueño, admin o validador (los revisores ven pedidos ajenos).
func CanRead(role string, actorID, ownerID int64) bool {
	return actorID == ownerID || IsValidador(role)
}
