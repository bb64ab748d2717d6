// Package pdf genera la hoja imprimible de un pedido.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Centro de costo + estado  │  N° + fecha             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SOLICITANTE / CLIENTE / OBRA                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Unidad | Material | Descripción               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  MONTO + FLAGS                                               │
//	│  COMENTARIOS                                                 │
//	│  FOOTER: QR con la referencia del pedido                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

var _ ports.PedidoPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDanger  = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa ports.PedidoPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	empresa string
}

// NewMarotoPDFGenerator empresa aparece como autor del documento.
func NewMarotoPDFGenerator(empresa string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{empresa: empresa}
}

// GeneratePedidoPDF genera el PDF y devuelve sus bytes. solicitante puede ser nil
// si la cuenta ya no existe.
func (g *MarotoPDFGenerator) GeneratePedidoPDF(_ context.Context, p *entity.Pedido, solicitante *entity.Usuario) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Pedido "+p.CentroCosto, true).
		WithAuthor(nonEmpty(g.empresa, "Pedidos"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(p))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(datosRow(p, solicitante))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(p)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(resumenRow(p))
	m.AddRows(comentarioRows(p)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(p))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(p *entity.Pedido) core.Row {
	estadoColor := colorPrimary
	if p.Cancelado {
		estadoColor = colorDanger
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(p.CentroCosto, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Estado: "+p.Estado, props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 9, Color: estadoColor,
			}),
		),
		col.New(5).Add(
			text.New("PEDIDO DE MATERIAL", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("N° %d", p.NumeroSecuencial), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+p.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func datosRow(p *entity.Pedido, solicitante *entity.Usuario) core.Row {
	nombre := "—"
	if solicitante != nil {
		nombre = fmt.Sprintf("%s (%s)", solicitante.Nombre, solicitante.Username)
	}
	return row.New(16).Add(
		col.New(12).Add(
			text.New("SOLICITANTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nombre, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("Cliente: %s   |   Obra: %s", p.Cliente, p.Obra),
				props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 2, align.Center),
		h("Unidad", 2, align.Center),
		h("Material", 4, align.Left),
		h("Descripción", 4, align.Left),
	)
}

// itemRows una fila por ítem; sin ítems se imprime la descripción libre.
func itemRows(p *entity.Pedido) []core.Row {
	if len(p.Items) == 0 {
		return []core.Row{row.New(10).Add(col.New(12).Add(
			text.New(nonEmpty(p.Descripcion, "Sin detalle"), props.Text{Size: 8, Top: 1, Left: 1}),
		))}
	}
	result := make([]core.Row, 0, len(p.Items))
	for _, it := range p.Items {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(it.Cantidad.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(nonEmpty(it.Unidad, "—"), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(it.Nombre, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(it.Descripcion, props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
		))
	}
	return result
}

func resumenRow(p *entity.Pedido) core.Row {
	monto := "—"
	if p.Monto != nil {
		monto = "$" + formatMoney(p.Monto.StringFixed(0))
	}
	var flags []string
	if p.Urgente {
		flags = append(flags, "URGENTE")
	}
	if p.Incompleto {
		flags = append(flags, "INCOMPLETO")
	}
	if p.Validado {
		flags = append(flags, "VALIDADO")
	}
	return row.New(10).Add(
		col.New(6).Add(text.New(strings.Join(flags, " · "), props.Text{
			Style: fontstyle.Bold, Size: 9, Color: colorDanger, Top: 2,
		})),
		col.New(6).Add(text.New("Monto estimado: "+monto, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2,
		})),
	)
}

func comentarioRows(p *entity.Pedido) []core.Row {
	rows := []core.Row{}
	if p.Cancelado {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("Cancelado: "+nonEmpty(p.Motivo, "sin motivo"), props.Text{Style: fontstyle.Bold, Size: 8, Color: colorDanger, Top: 1}),
		)))
	}
	if p.MotivoRechazo != "" {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("Último rechazo: "+p.MotivoRechazo, props.Text{Size: 8, Color: colorDanger, Top: 1}),
		)))
	}
	if len(p.Comentarios) == 0 {
		return rows
	}
	rows = append(rows, row.New(6).Add(col.New(12).Add(
		text.New("COMENTARIOS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	)))
	for _, c := range p.Comentarios {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(fmt.Sprintf("%s — %s", c.CreatedAt.Format("02/01 15:04"), c.Texto),
				props.Text{Size: 7.5, Color: colorGray, Top: 0.5, Left: 2}),
		)))
	}
	return rows
}

func footerRow(p *entity.Pedido) core.Row {
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(fmt.Sprintf("pedido:%d:%s", p.ID, p.CentroCosto), props.Rect{
			Percent: 95,
			Center:  true,
		})),
		col.New(9).Add(
			text.New("Referencia interna del pedido", props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New(p.CentroCosto, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 12, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
