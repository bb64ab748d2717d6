package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// Cambios cuerpo crudo de una actualización parcial: nombre de campo → valor JSON.
type Cambios map[string]json.RawMessage

// CampoEstado clave que dispara un cambio de estado en lugar de una asignación directa.
const CampoEstado = "estado"

// Estado extrae el estado solicitado, si viene.
func (c Cambios) Estado() (string, bool, error) {
	raw, ok := c[CampoEstado]
	if !ok {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", true, fmt.Errorf("%w: campo %s", domain.ErrInvalidInput, CampoEstado)
	}
	return s, true, nil
}

type setterPedido func(p *entity.Pedido, raw json.RawMessage) error

type setterCompra func(c *entity.Compra, raw json.RawMessage) error

// camposPedido lista permitida de campos editables de un pedido.
var camposPedido = map[string]setterPedido{
	"cliente":     func(p *entity.Pedido, raw json.RawMessage) error { return setTexto(&p.Cliente, raw, true) },
	"obra":        func(p *entity.Pedido, raw json.RawMessage) error { return setTexto(&p.Obra, raw, true) },
	"descripcion": func(p *entity.Pedido, raw json.RawMessage) error { return setTexto(&p.Descripcion, raw, false) },
	"items": func(p *entity.Pedido, raw json.RawMessage) error {
		var items []entity.Item
		if isNull(raw) {
			p.Items = nil
			return nil
		}
		if err := json.Unmarshal(raw, &items); err != nil {
			return err
		}
		for _, it := range items {
			if strings.TrimSpace(it.Nombre) == "" || it.Cantidad.IsNegative() {
				return domain.ErrInvalidInput
			}
		}
		p.Items = items
		return nil
	},
	"monto": func(p *entity.Pedido, raw json.RawMessage) error {
		if isNull(raw) {
			p.Monto = nil
			return nil
		}
		var m decimal.Decimal
		if err := json.Unmarshal(raw, &m); err != nil {
			return err
		}
		if m.IsNegative() {
			return domain.ErrInvalidInput
		}
		p.Monto = &m
		return nil
	},
	"urgente":    func(p *entity.Pedido, raw json.RawMessage) error { return setFlag(&p.Urgente, raw) },
	"incompleto": func(p *entity.Pedido, raw json.RawMessage) error { return setFlag(&p.Incompleto, raw) },
}

// camposCompra lista permitida de campos editables de una compra.
var camposCompra = map[string]setterCompra{
	"proveedor":   func(c *entity.Compra, raw json.RawMessage) error { return setTexto(&c.Proveedor, raw, true) },
	"obra":        func(c *entity.Compra, raw json.RawMessage) error { return setTexto(&c.Obra, raw, false) },
	"descripcion": func(c *entity.Compra, raw json.RawMessage) error { return setTexto(&c.Descripcion, raw, false) },
	"monto": func(c *entity.Compra, raw json.RawMessage) error {
		if isNull(raw) {
			return domain.ErrInvalidInput
		}
		var m decimal.Decimal
		if err := json.Unmarshal(raw, &m); err != nil {
			return err
		}
		if m.IsNegative() {
			return domain.ErrInvalidInput
		}
		c.Monto = m
		return nil
	},
	"urgente": func(c *entity.Compra, raw json.RawMessage) error { return setFlag(&c.Urgente, raw) },
}

// CamposPedido nombres aceptados, ordenados.
func CamposPedido() []string { return keys(camposPedido) }

// CamposCompra nombres aceptados, ordenados (estado aparte).
func CamposCompra() []string { return keys(camposCompra) }

// AplicarCambiosPedido aplica solo las claves permitidas; las demás se ignoran.
// Se trabaja sobre una copia: ante cualquier valor inválido el pedido queda intacto.
// Renombrar cliente u obra recalcula el centro de costo con el mismo secuencial.
func AplicarCambiosPedido(p *entity.Pedido, cambios Cambios, now time.Time) ([]string, error) {
	if p.Cancelado {
		return nil, domain.ErrPedidoCancelado
	}
	work := p.Clone()
	var aplicados []string
	for _, name := range CamposPedido() {
		raw, ok := cambios[name]
		if !ok {
			continue
		}
		if err := camposPedido[name](work, raw); err != nil {
			return nil, fmt.Errorf("%w: campo %s", domain.ErrInvalidInput, name)
		}
		aplicados = append(aplicados, name)
	}
	if len(aplicados) == 0 {
		return nil, domain.ErrSinCamposValidos
	}
	if work.NumeroSecuencial > 0 && (work.Cliente != p.Cliente || work.Obra != p.Obra) {
		work.CentroCosto = CentroCosto(work.Cliente, work.Obra, work.NumeroSecuencial)
	}
	work.UpdatedAt = now
	*p = *work
	return aplicados, nil
}

// AplicarCambiosCompra como AplicarCambiosPedido. La clave estado solo se acepta cuando
// puedeForzar es true; en ese caso se asigna tal cual aunque contradiga al ticket.
func AplicarCambiosCompra(c *entity.Compra, cambios Cambios, puedeForzar bool, now time.Time) ([]string, error) {
	if c.Cancelado {
		return nil, domain.ErrPedidoCancelado
	}
	work := c.Clone()
	var aplicados []string
	for _, name := range CamposCompra() {
		raw, ok := cambios[name]
		if !ok {
			continue
		}
		if err := camposCompra[name](work, raw); err != nil {
			return nil, fmt.Errorf("%w: campo %s", domain.ErrInvalidInput, name)
		}
		aplicados = append(aplicados, name)
	}
	if puedeForzar {
		estado, ok, err := cambios.Estado()
		if err != nil {
			return nil, err
		}
		if ok {
			if estado != entity.CompraPendiente && estado != entity.CompraSubido {
				return nil, fmt.Errorf("%w: campo %s", domain.ErrInvalidInput, CampoEstado)
			}
			work.Estado = estado
			aplicados = append(aplicados, CampoEstado)
		}
	}
	if len(aplicados) == 0 {
		return nil, domain.ErrSinCamposValidos
	}
	work.UpdatedAt = now
	*c = *work
	return aplicados, nil
}

func setTexto(dst *string, raw json.RawMessage, requerido bool) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if requerido && s == "" {
		return domain.ErrInvalidInput
	}
	*dst = s
	return nil
}

// setFlag acepta true/false y también 0/1.
func setFlag(dst *bool, raw json.RawMessage) error {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		*dst = b
		return nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return err
	}
	if n != 0 && n != 1 {
		return domain.ErrInvalidInput
	}
	*dst = n == 1
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func keys[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
