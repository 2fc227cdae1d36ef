package importer

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/sqoolify/sqoolify/core"
)

// headerOffset accounts for the header line when reporting row numbers:
// the first data row of the file is row 2.
const headerOffset = 2

// FileRowNum converts a data-row index to the file line number users
// see in error messages.
func FileRowNum(i int) int { return i + headerOffset }

// RowError describes a problem found in an uploaded file. Row is the
// 1-based line number in the file; 0 means the error applies to the
// whole file.
type RowError struct {
	Row     int    `json:"row,omitempty"`
	Message string `json:"message"`
}

func fileError(format string, args ...interface{}) RowError {
	return RowError{Message: fmt.Sprintf(format, args...)}
}

func rowError(row int, format string, args ...interface{}) RowError {
	return RowError{Row: row, Message: fmt.Sprintf(format, args...)}
}

// NewRowError builds an error scoped to one reported row number; rules
// supplied by import types use it.
func NewRowError(row int, format string, args ...interface{}) RowError {
	return rowError(row, format, args...)
}

func (e RowError) Error() string {
	if e.Row == 0 {
		return e.Message
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// scope names the error's location for the field -> message map rendered
// by the API layer.
func (e RowError) scope() string {
	if e.Row == 0 {
		return "file"
	}
	return fmt.Sprintf("row %d", e.Row)
}

// RowRule is an import-type specific structural check applied to a row
// once its required fields are known to be present. row is the reported
// row number.
type RowRule func(row int, r Row) *RowError

// Validate applies the schema to parsed rows, short-circuiting on the
// first failure class found:
//  1. every required column must appear in the headers; the first
//     missing one fails the whole file and no row is looked at;
//  2. every required field must be non-blank in every row; the first
//     violation per row is reported and all rows are checked;
//  3. an upload with zero data rows is a whole-file error;
//  4. extra type-specific rules run per row (question imports).
// Any error rejects the import in full; only a clean row set is returned.
func Validate(schema Schema, headers []string, rows []Row, rules ...RowRule) ([]Row, []RowError) {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}
	for _, col := range schema.requiredCols() {
		if _, ok := present[col.Key]; !ok {
			return nil, []RowError{fileError("missing required column %q", col.Key)}
		}
	}

	if len(rows) == 0 {
		return nil, []RowError{fileError("no data rows found")}
	}

	var errs []RowError
	for i, row := range rows {
		n := i + headerOffset
		if err := checkRequiredFields(schema, n, row); err != nil {
			errs = append(errs, *err)
			continue
		}
		for _, rule := range rules {
			if err := rule(n, row); err != nil {
				errs = append(errs, *err)
				break
			}
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return rows, nil
}

func checkRequiredFields(schema Schema, n int, row Row) *RowError {
	for _, col := range schema.requiredCols() {
		if strings.TrimSpace(row[col.Key]) == "" {
			err := rowError(n, "%q is required", col.Label)
			return &err
		}
	}
	return nil
}

// asValidationError folds row errors into the application-wide validation
// error shape so the API layer renders them like any other bad input.
func asValidationError(errs []RowError) error {
	flds := make([]core.FieldError, 0, len(errs))
	for _, e := range errs {
		flds = append(flds, core.FieldError{Field: e.scope(), Error: e.Message})
	}
	return core.NewValidationError(errors.New("import validation failed"), flds...)
}
