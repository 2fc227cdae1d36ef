package importer

// Preview is a bounded, read-only projection of a validated row set,
// meant for a human to eyeball before confirming the import. The full
// row set, not the preview, is what gets submitted.
type Preview struct {
	TotalRows      int          `json:"total_rows"`
	Columns        []ColumnSpec `json:"columns"`
	OmittedColumns int          `json:"omitted_columns"`
	Rows           []Row        `json:"rows"`
	OmittedRows    int          `json:"omitted_rows"`
}

// BuildPreview truncates the schema to maxCols columns and the rows to
// maxRows rows, recording how much was left out.
func BuildPreview(schema Schema, rows []Row, maxCols, maxRows int) Preview {
	p := Preview{TotalRows: len(rows)}

	cols := []ColumnSpec(schema)
	if len(cols) > maxCols {
		p.OmittedColumns = len(cols) - maxCols
		cols = cols[:maxCols]
	}
	p.Columns = append(p.Columns, cols...)

	shown := rows
	if len(shown) > maxRows {
		p.OmittedRows = len(shown) - maxRows
		shown = shown[:maxRows]
	}
	for _, row := range shown {
		visible := make(Row, len(p.Columns))
		for _, col := range p.Columns {
			visible[col.Key] = row[col.Key]
		}
		p.Rows = append(p.Rows, visible)
	}
	return p
}
