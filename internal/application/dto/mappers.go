package dto

import "github.com/jhoicas/pedidos-api/internal/domain/entity"

// UsuarioFromEntity nunca expone el hash.
func UsuarioFromEntity(u *entity.Usuario) UsuarioResponse {
	return UsuarioResponse{
		ID:        u.ID,
		Username:  u.Username,
		Nombre:    u.Nombre,
		Rol:       u.Rol,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// PedidoFromEntity incluye comentarios si vienen cargados.
func PedidoFromEntity(p *entity.Pedido) PedidoResponse {
	out := PedidoResponse{
		ID:                         p.ID,
		SolicitanteID:              p.SolicitanteID,
		ClienteID:                  p.ClienteID,
		ObraID:                     p.ObraID,
		Cliente:                    p.Cliente,
		Obra:                       p.Obra,
		NumeroSecuencial:           p.NumeroSecuencial,
		CentroCosto:                p.CentroCosto,
		Descripcion:                p.Descripcion,
		Items:                      p.Items,
		Monto:                      p.Monto,
		Imagenes:                   p.Imagenes,
		Urgente:                    p.Urgente,
		Incompleto:                 p.Incompleto,
		Estado:                     p.Estado,
		MotivoRechazo:              p.MotivoRechazo,
		Cancelado:                  p.Cancelado,
		MotivoCancelacion:          p.Motivo,
		CanceladoPor:               p.CanceladoPor,
		FechaCancelacion:           p.FechaCancelacion,
		FechaEliminacionProgramada: p.FechaEliminacionProgramada,
		Validado:                   p.Validado,
		ValidadoPor:                p.ValidadoPor,
		FechaValidacion:            p.FechaValidacion,
		CreatedAt:                  p.CreatedAt,
		UpdatedAt:                  p.UpdatedAt,
	}
	if out.Items == nil {
		out.Items = []entity.Item{}
	}
	if out.Imagenes == nil {
		out.Imagenes = []string{}
	}
	for _, c := range p.Comentarios {
		out.Comentarios = append(out.Comentarios, ComentarioFromEntity(c))
	}
	return out
}

// ComentarioFromEntity comentario del hilo.
func ComentarioFromEntity(c entity.Comentario) ComentarioResponse {
	return ComentarioResponse{ID: c.ID, AutorID: c.AutorID, Texto: c.Texto, CreatedAt: c.CreatedAt}
}

// CompraFromEntity salida de una compra.
func CompraFromEntity(c *entity.Compra) CompraResponse {
	return CompraResponse{
		ID:                c.ID,
		SolicitanteID:     c.SolicitanteID,
		Proveedor:         c.Proveedor,
		Monto:             c.Monto,
		Ticket:            c.Ticket,
		Obra:              c.Obra,
		Descripcion:       c.Descripcion,
		Estado:            c.Estado,
		Urgente:           c.Urgente,
		Cancelado:         c.Cancelado,
		MotivoCancelacion: c.Motivo,
		CanceladoPor:      c.CanceladoPor,
		FechaCancelacion:  c.FechaCancelacion,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

// NotificacionFromEntity salida de una notificación.
func NotificacionFromEntity(n *entity.Notificacion) NotificacionResponse {
	return NotificacionResponse{
		ID:        n.ID,
		UsuarioID: n.UsuarioID,
		Tipo:      n.Tipo,
		Titulo:    n.Titulo,
		Mensaje:   n.Mensaje,
		Icono:     n.Icono,
		Leida:     n.Leida,
		CreatedAt: n.CreatedAt,
	}
}
