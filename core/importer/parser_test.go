package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func studentSchema() Schema {
	return NewSchema(
		ColumnSpec{Key: "first_name", Label: "First Name", Required: true},
		ColumnSpec{Key: "last_name", Label: "Last Name", Required: true},
		ColumnSpec{Key: "email", Label: "Email", Required: true},
		ColumnSpec{Key: "class", Label: "Class"},
	)
}

func Test_Parse_roundTripsTemplate(t *testing.T) {
	schema := studentSchema()
	examples := []Row{
		{"first_name": "Jane", "last_name": "Doe", "email": "jane@example.com", "class": "JSS 1"},
		{"first_name": "Ali, Jr.", "last_name": `O'Brien "Bob"`, "email": "ali@example.com", "class": ""},
	}

	doc := schema.Template(examples)

	headers, rows, err := Parse(bytes.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	assert.Equal(t, schema.Keys(), headers)

	validated, errs := Validate(schema, headers, rows)
	assert.Empty(t, errs)
	if assert.Len(t, validated, len(examples)) {
		for i, want := range examples {
			for _, col := range schema {
				assert.Equal(t, want[col.Key], validated[i][col.Key], "row %d column %s", i, col.Key)
			}
		}
	}
}

func Test_Parse_malformedFile(t *testing.T) {
	// unterminated quote cannot be recovered by the csv reader
	in := "first_name,last_name,email\n\"Jane,Doe,jane@example.com\nBob"
	_, _, err := Parse(strings.NewReader(in))
	assert.Error(t, err)
}

func Test_Parse_emptyFile(t *testing.T) {
	_, _, err := Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func Test_Parse_ignoresUnknownColumnsAndRaggedRows(t *testing.T) {
	in := "first_name,last_name,email,shoe_size\n" +
		"Jane,Doe,jane@example.com,42,extra\n" +
		"Bob,Law\n"
	headers, rows, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	assert.Equal(t, []string{"first_name", "last_name", "email", "shoe_size"}, headers)
	if assert.Len(t, rows, 2) {
		assert.Equal(t, "jane@example.com", rows[0]["email"])
		assert.Equal(t, "", rows[1]["email"]) // short record pads with blanks
	}
}
