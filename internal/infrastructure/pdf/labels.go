// Package pdf genera hojas de etiquetas con código de barras (Code128) para
// los ingresos de stock.
//
// Layout de la página A4: encabezado con el título del ingreso y una grilla de
// tres etiquetas por fila (nombre del producto, barras y valor legible).
package pdf

import (
	"context"
	"fmt"

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

	"github.com/jhoicas/catalogo-api/internal/application/usecase"
)

const labelsPerRow = 3

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ usecase.LabelRenderer = (*LabelSheetGenerator)(nil)

// LabelSheetGenerator implementa usecase.LabelRenderer usando Maroto v2.
type LabelSheetGenerator struct{}

// NewLabelSheetGenerator construye el generador.
func NewLabelSheetGenerator() *LabelSheetGenerator { return &LabelSheetGenerator{} }

// RenderLabels genera el PDF de etiquetas y devuelve sus bytes.
func (g *LabelSheetGenerator) RenderLabels(_ context.Context, title string, labels []usecase.Label) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(title, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(title, len(labels)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(labelRows(labels)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar etiquetas: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(title string, n int) core.Row {
	return row.New(12).Add(
		col.New(8).Add(text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 2,
		})),
		col.New(4).Add(text.New(fmt.Sprintf("%d etiquetas", n), props.Text{
			Size: 8, Align: align.Right, Color: colorGray, Top: 4,
		})),
	)
}

// labelRows agrupa las etiquetas de a labelsPerRow; la última fila se rellena con columnas vacías.
func labelRows(labels []usecase.Label) []core.Row {
	rows := make([]core.Row, 0, len(labels)/labelsPerRow+1)
	for start := 0; start < len(labels); start += labelsPerRow {
		cols := make([]core.Col, 0, labelsPerRow)
		for i := start; i < start+labelsPerRow; i++ {
			if i >= len(labels) {
				cols = append(cols, col.New(12/labelsPerRow))
				continue
			}
			cols = append(cols, labelCol(labels[i]))
		}
		rows = append(rows, row.New(34).Add(cols...))
	}
	return rows
}

func labelCol(l usecase.Label) core.Col {
	return col.New(12/labelsPerRow).Add(
		text.New(l.Title, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Center, Top: 1}),
		text.New(l.Subtitle, props.Text{Size: 6.5, Align: align.Center, Color: colorGray, Top: 5}),
		code.NewBar(l.Value, props.Barcode{Percent: 80, Center: true, Top: 9}),
		text.New(l.Value, props.Text{Size: 7, Align: align.Center, Top: 28}),
	)
}
