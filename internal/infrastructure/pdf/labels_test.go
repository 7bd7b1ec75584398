package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-api/internal/application/usecase"
)

func TestLabelRows_GroupsByThree(t *testing.T) {
	labels := []usecase.Label{{Value: "A"}, {Value: "B"}, {Value: "C"}, {Value: "D"}}
	rows := labelRows(labels)
	require.Len(t, rows, 2)
	assert.Empty(t, labelRows(nil))
}

func TestRenderLabels(t *testing.T) {
	g := NewLabelSheetGenerator()
	out, err := g.RenderLabels(context.Background(), "Ingreso FAC-001", []usecase.Label{
		{Title: "Teléfono X", Subtitle: "Serie", Value: "SN0001"},
		{Title: "Teléfono X", Subtitle: "Serie", Value: "SN0002"},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
