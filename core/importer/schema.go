package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

type (
	// ColumnSpec declares one expected column of an uploaded file.
	ColumnSpec struct {
		Key      string `json:"key"`
		Label    string `json:"label"`
		Required bool   `json:"required"`
	}

	// Schema is the ordered declaration of the columns an import type
	// expects. Keys are unique.
	Schema []ColumnSpec
)

// NewSchema builds a Schema and enforces key uniqueness. Schemas are
// static declarations, so a duplicate key is a programmer error.
func NewSchema(cols ...ColumnSpec) Schema {
	seen := make(map[string]struct{}, len(cols))
	for _, col := range cols {
		if _, ok := seen[col.Key]; ok {
			panic(fmt.Sprintf("importer.NewSchema: duplicate column key %q", col.Key))
		}
		seen[col.Key] = struct{}{}
	}
	return Schema(cols)
}

func (s Schema) Keys() []string {
	keys := make([]string, len(s))
	for i, col := range s {
		keys[i] = col.Key
	}
	return keys
}

func (s Schema) requiredCols() []ColumnSpec {
	var req []ColumnSpec
	for _, col := range s {
		if col.Required {
			req = append(req, col)
		}
	}
	return req
}

// Template renders a downloadable CSV template: the header row is the
// schema's ordered key list, followed by the given example rows.
// encoding/csv takes care of quoting values containing the delimiter or
// quote character, so feeding the output back through Parse and Validate
// reproduces the same logical rows.
func (s Schema) Template(examples []Row) []byte {
	var buff bytes.Buffer
	w := csv.NewWriter(&buff)

	_ = w.Write(s.Keys())
	for _, row := range examples {
		record := make([]string, len(s))
		for i, col := range s {
			record[i] = row[col.Key]
		}
		_ = w.Write(record)
	}
	w.Flush()
	return buff.Bytes()
}
