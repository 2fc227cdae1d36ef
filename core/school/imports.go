package school

import (
	"github.com/pkg/errors"

	"github.com/sqoolify/sqoolify/core/importer"
)

// ImportType identifies one of the roster import targets.
type ImportType string

const (
	ImportStudents  ImportType = "students"
	ImportTeachers  ImportType = "teachers"
	ImportGuardians ImportType = "guardians"
	ImportClasses   ImportType = "classes"
	ImportSubjects  ImportType = "subjects"
)

var ErrUnknownImportType = errors.New("unknown import type")

var AllImportTypes = []ImportType{ImportStudents, ImportTeachers, ImportGuardians, ImportClasses, ImportSubjects}

func (t ImportType) Valid() bool {
	switch t {
	case ImportStudents, ImportTeachers, ImportGuardians, ImportClasses, ImportSubjects:
		return true
	}
	return false
}

// Schema declares the upload columns per import type. Exhaustive: a new
// import type has to declare its schema here.
func (t ImportType) Schema() importer.Schema {
	switch t {
	case ImportStudents:
		return importer.NewSchema(
			importer.ColumnSpec{Key: "first_name", Label: "First Name", Required: true},
			importer.ColumnSpec{Key: "last_name", Label: "Last Name", Required: true},
			importer.ColumnSpec{Key: "email", Label: "Email", Required: true},
			importer.ColumnSpec{Key: "admission_no", Label: "Admission Number", Required: true},
			importer.ColumnSpec{Key: "class_name", Label: "Class"},
			importer.ColumnSpec{Key: "guardian_email", Label: "Guardian Email"},
		)
	case ImportTeachers:
		return importer.NewSchema(
			importer.ColumnSpec{Key: "first_name", Label: "First Name", Required: true},
			importer.ColumnSpec{Key: "last_name", Label: "Last Name", Required: true},
			importer.ColumnSpec{Key: "email", Label: "Email", Required: true},
			importer.ColumnSpec{Key: "phone", Label: "Phone"},
			importer.ColumnSpec{Key: "subject", Label: "Subject"},
		)
	case ImportGuardians:
		return importer.NewSchema(
			importer.ColumnSpec{Key: "first_name", Label: "First Name", Required: true},
			importer.ColumnSpec{Key: "last_name", Label: "Last Name", Required: true},
			importer.ColumnSpec{Key: "email", Label: "Email", Required: true},
			importer.ColumnSpec{Key: "phone", Label: "Phone"},
		)
	case ImportClasses:
		return importer.NewSchema(
			importer.ColumnSpec{Key: "name", Label: "Class Name", Required: true},
			importer.ColumnSpec{Key: "section", Label: "Section"},
		)
	case ImportSubjects:
		return importer.NewSchema(
			importer.ColumnSpec{Key: "name", Label: "Subject Name", Required: true},
			importer.ColumnSpec{Key: "code", Label: "Subject Code", Required: true},
		)
	}
	panic("school: no schema for import type " + string(t))
}

// ExampleRows fills the downloadable template per import type.
func (t ImportType) ExampleRows() []importer.Row {
	switch t {
	case ImportStudents:
		return []importer.Row{{
			"first_name": "Jane", "last_name": "Doe", "email": "jane.doe@example.com",
			"admission_no": "ADM-0001", "class_name": "JSS 1", "guardian_email": "guardian@example.com",
		}}
	case ImportTeachers:
		return []importer.Row{{
			"first_name": "John", "last_name": "Smith", "email": "john.smith@example.com",
			"phone": "+2348012345678", "subject": "Mathematics",
		}}
	case ImportGuardians:
		return []importer.Row{{
			"first_name": "Mary", "last_name": "Doe", "email": "mary.doe@example.com",
			"phone": "+2348098765432",
		}}
	case ImportClasses:
		return []importer.Row{{"name": "JSS 1", "section": "A"}}
	case ImportSubjects:
		return []importer.Row{{"name": "Mathematics", "code": "MTH101"}}
	}
	return nil
}
