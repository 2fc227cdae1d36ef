package importer

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Validate_missingRequiredColumnGatesFile(t *testing.T) {
	schema := studentSchema()
	headers := []string{"first_name", "last_name"} // email missing
	rows := []Row{
		{"first_name": "Jane", "last_name": "Doe"},
		{"first_name": "", "last_name": ""}, // would be a row error, must not be reported
	}

	validated, errs := Validate(schema, headers, rows)
	assert.Nil(t, validated)
	if assert.Len(t, errs, 1) {
		assert.Equal(t, 0, errs[0].Row)
		assert.Contains(t, errs[0].Message, `"email"`)
	}
}

func Test_Validate_accumulatesRowErrorsWithHeaderOffset(t *testing.T) {
	schema := studentSchema()
	headers := schema.Keys()
	ok := Row{"first_name": "Jane", "last_name": "Doe", "email": "jane@example.com"}
	rows := []Row{
		ok,
		{"first_name": "Bob", "last_name": "Law", "email": "   "}, // data row 2 -> file row 3
		ok,
		ok,
		{"first_name": "", "last_name": "Law", "email": "x@example.com"}, // data row 5 -> file row 6
		ok,
	}

	validated, errs := Validate(schema, headers, rows)
	assert.Nil(t, validated)
	if assert.Len(t, errs, 2) {
		assert.Equal(t, 3, errs[0].Row)
		assert.Contains(t, errs[0].Message, "Email")
		assert.Equal(t, 6, errs[1].Row)
		assert.Contains(t, errs[1].Message, "First Name")
	}
}

func Test_Validate_zeroDataRows(t *testing.T) {
	schema := studentSchema()
	validated, errs := Validate(schema, schema.Keys(), nil)
	assert.Nil(t, validated)
	if assert.Len(t, errs, 1) {
		assert.Equal(t, 0, errs[0].Row)
		assert.Equal(t, "no data rows found", errs[0].Message)
	}
}

func Test_Validate_rowRulesRunAfterPresence(t *testing.T) {
	schema := NewSchema(
		ColumnSpec{Key: "name", Label: "Name", Required: true},
		ColumnSpec{Key: "points", Label: "Points", Required: true},
	)
	positivePoints := func(n int, r Row) *RowError {
		if v, err := strconv.Atoi(r["points"]); err != nil || v < 1 {
			e := rowError(n, "%q must be a whole number of at least 1", "Points")
			return &e
		}
		return nil
	}

	rows := []Row{
		{"name": "a", "points": "5"},
		{"name": "b", "points": "zero"}, // rule violation -> row 3
		{"name": "", "points": "bad"},   // presence wins over the rule -> row 4
	}
	validated, errs := Validate(schema, schema.Keys(), rows, positivePoints)
	assert.Nil(t, validated)
	if assert.Len(t, errs, 2) {
		assert.Equal(t, 3, errs[0].Row)
		assert.Contains(t, errs[0].Message, "Points")
		assert.Equal(t, 4, errs[1].Row)
		assert.Contains(t, errs[1].Message, "Name")
	}
}

func Test_Validate_cleanRowsPass(t *testing.T) {
	schema := studentSchema()
	rows := []Row{
		{"first_name": "Jane", "last_name": "Doe", "email": "jane@example.com", "class": ""},
	}
	validated, errs := Validate(schema, schema.Keys(), rows)
	assert.Empty(t, errs)
	assert.Len(t, validated, 1)
}

func Test_NewSchema_duplicateKeyPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewSchema(
			ColumnSpec{Key: "name", Label: "Name"},
			ColumnSpec{Key: "name", Label: "Name Again"},
		)
	})
}
