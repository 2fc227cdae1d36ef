package importer

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func wideSchema(cols int) Schema {
	specs := make([]ColumnSpec, cols)
	for i := range specs {
		specs[i] = ColumnSpec{Key: "col" + strconv.Itoa(i), Label: "Col " + strconv.Itoa(i)}
	}
	return NewSchema(specs...)
}

func Test_BuildPreview_truncatesColumnsAndRows(t *testing.T) {
	schema := wideSchema(8)
	rows := make([]Row, 14)
	for i := range rows {
		rows[i] = Row{"col0": strconv.Itoa(i), "col7": "hidden"}
	}

	p := BuildPreview(schema, rows, 5, 10)

	assert.Equal(t, 14, p.TotalRows)
	assert.Len(t, p.Columns, 5)
	assert.Equal(t, 3, p.OmittedColumns)
	assert.Len(t, p.Rows, 10)
	assert.Equal(t, 4, p.OmittedRows)

	// only visible columns are projected
	_, ok := p.Rows[0]["col7"]
	assert.False(t, ok)

	// source rows are untouched
	assert.Len(t, rows, 14)
	assert.Equal(t, "hidden", rows[0]["col7"])
}

func Test_BuildPreview_smallSetsAreNotTruncated(t *testing.T) {
	schema := wideSchema(3)
	rows := []Row{{"col0": "a"}, {"col0": "b"}}

	p := BuildPreview(schema, rows, 5, 10)

	assert.Equal(t, 2, p.TotalRows)
	assert.Len(t, p.Columns, 3)
	assert.Zero(t, p.OmittedColumns)
	assert.Len(t, p.Rows, 2)
	assert.Zero(t, p.OmittedRows)
}
