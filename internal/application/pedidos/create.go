package pedidos

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/access"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/workflow"
)

// Create registra un pedido. Las imágenes se procesan antes de abrir la transacción; el
// secuencial del par (cliente, obra) se asigna dentro de ella. Si la transacción falla
// después de escribir archivos, el directorio del pedido se borra.
func (uc *UseCase) Create(ctx context.Context, actor access.Actor, in dto.CreatePedidoInput) (res *dto.PedidoResponse, err error) {
	ctx, span := uc.startSpan(ctx, "create", 0)
	defer func() { endSpan(span, err) }()

	if len(in.Imagenes) > MaxImagenes {
		return nil, domain.ErrDemasiadasImagenes
	}
	if err := validarItems(in.Items); err != nil {
		return nil, err
	}
	if in.Monto != nil && in.Monto.IsNegative() {
		return nil, fmt.Errorf("%w: monto negativo", domain.ErrInvalidInput)
	}
	cliente, err := uc.catalogo.GetCliente(ctx, in.ClienteID)
	if err != nil {
		return nil, err
	}
	if cliente == nil {
		return nil, fmt.Errorf("%w: cliente %d no existe", domain.ErrInvalidInput, in.ClienteID)
	}
	obra, err := uc.catalogo.GetObra(ctx, in.ObraID)
	if err != nil {
		return nil, err
	}
	if obra == nil {
		return nil, fmt.Errorf("%w: obra %d no existe", domain.ErrInvalidInput, in.ObraID)
	}

	processed, err := uc.process(in.Imagenes)
	if err != nil {
		return nil, err
	}

	p := &entity.Pedido{
		SolicitanteID: actor.ID,
		ClienteID:     cliente.ID,
		ObraID:        obra.ID,
		Cliente:       cliente.Nombre,
		Obra:          obra.Nombre,
		Descripcion:   strings.TrimSpace(in.Descripcion),
		Items:         in.Items,
		Monto:         in.Monto,
		Urgente:       in.Urgente,
	}
	written := false
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		n, err := r.Pedidos.NextSecuencial(ctx, p.ClienteID, p.ObraID)
		if err != nil {
			return fmt.Errorf("next secuencial: %w", err)
		}
		workflow.NuevoPedido(p, uc.now())
		p.Incompleto = len(processed) == 0
		workflow.Numerar(p, n)
		if err := r.Pedidos.Create(ctx, p); err != nil {
			return fmt.Errorf("create pedido: %w", err)
		}
		if len(processed) == 0 {
			return nil
		}
		written = true
		paths, err := uc.images.SavePedidoImages(ctx, p.ID, 1, processed)
		if err != nil {
			return err
		}
		p.Imagenes = paths
		return r.Pedidos.Update(ctx, p)
	})
	if err != nil {
		if written {
			uc.removeDir(ctx, p.ID)
		}
		return nil, err
	}
	span.SetAttributes(pedidoAttrs(p)...)

	uc.log.Info().Int64("pedido_id", p.ID).Str("centro_costo", p.CentroCosto).Int("imagenes", len(p.Imagenes)).Msg("pedido creado")
	if uc.notifier != nil {
		uc.notifier.NotifyRoles(ctx, ports.Aviso{
			Tipo:    entity.NotifInfo,
			Titulo:  "Nuevo pedido",
			Mensaje: fmt.Sprintf("Se registró el pedido %s", p.CentroCosto),
			Icono:   "📦",
		}, entity.RoleAdmin, entity.RoleSupervisor)
	}
	out := dto.PedidoFromEntity(p)
	return &out, nil
}

// AgregarImagenes anexa imágenes a un pedido existente, numeradas a continuación de las actuales.
func (uc *UseCase) AgregarImagenes(ctx context.Context, actor access.Actor, id int64, archivos []dto.Archivo) (res *dto.PedidoResponse, err error) {
	ctx, span := uc.startSpan(ctx, "agregar_imagenes", id)
	defer func() { endSpan(span, err) }()

	if len(archivos) == 0 {
		return nil, fmt.Errorf("%w: sin imágenes", domain.ErrInvalidInput)
	}
	if len(archivos) > MaxImagenes {
		return nil, domain.ErrDemasiadasImagenes
	}
	processed, err := uc.process(archivos)
	if err != nil {
		return nil, err
	}

	var (
		p      *entity.Pedido
		nuevas []string
	)
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		p, err = loadForUpdate(ctx, r, actor, id, reaches)
		if err != nil {
			return err
		}
		if err := workflow.PuedeAdjuntarImagenes(p); err != nil {
			return err
		}
		if len(p.Imagenes)+len(processed) > MaxImagenes {
			return domain.ErrDemasiadasImagenes
		}
		nuevas, err = uc.images.SavePedidoImages(ctx, p.ID, len(p.Imagenes)+1, processed)
		if err != nil {
			return err
		}
		p.Imagenes = append(p.Imagenes, nuevas...)
		p.Incompleto = false
		p.UpdatedAt = uc.now()
		return r.Pedidos.Update(ctx, p)
	})
	if err != nil {
		for _, path := range nuevas {
			if rmErr := uc.images.RemoveFile(ctx, path); rmErr != nil {
				uc.log.Warn().Err(rmErr).Str("path", path).Msg("no se pudo borrar imagen huérfana")
			}
		}
		return nil, err
	}
	out := dto.PedidoFromEntity(p)
	return &out, nil
}

func (uc *UseCase) process(archivos []dto.Archivo) ([][]byte, error) {
	out := make([][]byte, 0, len(archivos))
	for _, a := range archivos {
		b, err := uc.images.Process(a.Reader, a.Size)
		if err != nil {
			return nil, fmt.Errorf("imagen %q: %w", a.Nombre, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func validarItems(items []entity.Item) error {
	for i, it := range items {
		if strings.TrimSpace(it.Nombre) == "" {
			return fmt.Errorf("%w: item %d sin nombre", domain.ErrInvalidInput, i+1)
		}
		if it.Cantidad.IsNegative() {
			return fmt.Errorf("%w: item %d con cantidad negativa", domain.ErrInvalidInput, i+1)
		}
	}
	return nil
}
