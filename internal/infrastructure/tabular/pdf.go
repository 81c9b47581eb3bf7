package tabular

import (
	"fmt"
	"slices"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/jhoicas/inventario-sync/internal/application/export"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary  = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray     = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite    = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorLowStock = &props.Color{Red: 254, Green: 226, Blue: 226}
)

// columnWeights ancho relativo de cada columna conocida; el resto pesa 2.
var columnWeights = map[string]int{
	export.ColImage:       3,
	export.ColSKU:         2,
	export.ColName:        3,
	export.ColCategory:    2,
	export.ColDescription: 3,
	export.ColQuantity:    1,
	export.ColStatus:      2,
	export.ColLastUpdated: 3,
}

// PDF reporte tabular en A4 generado con Maroto v2.
type PDF struct {
	Author string
}

var _ export.Encoder = PDF{}

func (PDF) Format() string      { return "pdf" }
func (PDF) ContentType() string { return "application/pdf" }

// Encode genera el documento y devuelve sus bytes. Las filas con stock bajo se resaltan.
func (p PDF) Encode(t export.Table) ([]byte, error) {
	weights := make([]int, len(t.Columns))
	grid := 0
	for i, c := range t.Columns {
		w, ok := columnWeights[c]
		if !ok {
			w = 2
		}
		weights[i] = w
		grid += w
	}
	if grid == 0 {
		grid = 12
	}

	title := t.Title
	if title == "" {
		title = t.Sheet
	}
	b := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithMaxGridSize(grid).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(title, true)
	if p.Author != "" {
		b = b.WithAuthor(p.Author, true)
	}
	m := maroto.New(b.Build())

	m.AddRows(titleRow(title, grid, len(t.Rows)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(headerRow(t.Columns, weights))

	qtyIdx := slices.Index(t.Columns, export.ColQuantity)
	for _, r := range t.Rows {
		m.AddRows(dataRow(r, weights, isLowStock(r, qtyIdx)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func titleRow(title string, grid, count int) core.Row {
	return row.New(14).Add(
		col.New(grid).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%d registros", count), props.Text{
				Size: 8, Top: 8, Color: colorGray,
			}),
		),
	)
}

func headerRow(columns []string, weights []int) core.Row {
	cols := make([]core.Col, len(columns))
	for i, c := range columns {
		cols[i] = col.New(weights[i]).Add(text.New(c, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: alignFor(c),
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(cols...).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func dataRow(values []any, weights []int, low bool) core.Row {
	cols := make([]core.Col, len(weights))
	for i := range weights {
		v := ""
		if i < len(values) {
			v = fmt.Sprint(values[i])
		}
		a := align.Left
		if _, numeric := valueAt(values, i).(int); numeric {
			a = align.Right
		}
		cols[i] = col.New(weights[i]).Add(text.New(v, props.Text{
			Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	r := row.New(7).Add(cols...)
	if low {
		r = r.WithStyle(&props.Cell{BackgroundColor: colorLowStock})
	}
	return r
}

// ── helpers ───────────────────────────────────────────────────────────────────

func isLowStock(values []any, qtyIdx int) bool {
	q, ok := valueAt(values, qtyIdx).(int)
	return ok && q < entity.LowStockThreshold
}

func valueAt(values []any, i int) any {
	if i < 0 || i >= len(values) {
		return nil
	}
	return values[i]
}

func alignFor(column string) align.Type {
	if column == export.ColQuantity {
		return align.Right
	}
	return align.Left
}
