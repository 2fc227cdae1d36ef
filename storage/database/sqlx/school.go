package sqlxrepos

import (
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/sqoolify/sqoolify/core/school"
)

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) school.Repository {
	return &schoolRepository{db: db}
}

// uniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func uniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

type dbStudent struct {
	ID            string      `db:"id"`
	FirstName     string      `db:"first_name"`
	LastName      string      `db:"last_name"`
	Email         string      `db:"email"`
	AdmissionNo   string      `db:"admission_no"`
	ClassName     null.String `db:"class_name"`
	GuardianEmail null.String `db:"guardian_email"`
	CreatedAt     null.Time   `db:"created_at"`
}

func (repo *schoolRepository) CreateStudent(s school.Student) (school.Student, error) {
	_, err := repo.db.NamedExec(
		`INSERT INTO student (id, first_name, last_name, email, admission_no, class_name, guardian_email, created_at)
		 VALUES (:id, :first_name, :last_name, :email, :admission_no, :class_name, :guardian_email, :created_at)`,
		dbStudent{
			ID:            s.ID,
			FirstName:     s.FirstName,
			LastName:      s.LastName,
			Email:         s.Email,
			AdmissionNo:   s.AdmissionNo,
			ClassName:     null.NewString(s.ClassName, s.ClassName != ""),
			GuardianEmail: null.NewString(s.GuardianEmail, s.GuardianEmail != ""),
			CreatedAt:     null.TimeFrom(s.CreatedAt),
		},
	)
	if uniqueViolation(err) {
		return school.Student{}, school.ErrStudentExists
	}
	if err != nil {
		return school.Student{}, err
	}
	return s, nil
}

type dbTeacher struct {
	ID        string      `db:"id"`
	FirstName string      `db:"first_name"`
	LastName  string      `db:"last_name"`
	Email     string      `db:"email"`
	Phone     null.String `db:"phone"`
	Subject   null.String `db:"subject"`
	CreatedAt null.Time   `db:"created_at"`
}

func (repo *schoolRepository) CreateTeacher(t school.Teacher) (school.Teacher, error) {
	_, err := repo.db.NamedExec(
		`INSERT INTO teacher (id, first_name, last_name, email, phone, subject, created_at)
		 VALUES (:id, :first_name, :last_name, :email, :phone, :subject, :created_at)`,
		dbTeacher{
			ID:        t.ID,
			FirstName: t.FirstName,
			LastName:  t.LastName,
			Email:     t.Email,
			Phone:     null.NewString(t.Phone, t.Phone != ""),
			Subject:   null.NewString(t.Subject, t.Subject != ""),
			CreatedAt: null.TimeFrom(t.CreatedAt),
		},
	)
	if uniqueViolation(err) {
		return school.Teacher{}, school.ErrTeacherExists
	}
	if err != nil {
		return school.Teacher{}, err
	}
	return t, nil
}

type dbGuardian struct {
	ID        string      `db:"id"`
	FirstName string      `db:"first_name"`
	LastName  string      `db:"last_name"`
	Email     string      `db:"email"`
	Phone     null.String `db:"phone"`
	CreatedAt null.Time   `db:"created_at"`
}

func (repo *schoolRepository) CreateGuardian(g school.Guardian) (school.Guardian, error) {
	_, err := repo.db.NamedExec(
		`INSERT INTO guardian (id, first_name, last_name, email, phone, created_at)
		 VALUES (:id, :first_name, :last_name, :email, :phone, :created_at)`,
		dbGuardian{
			ID:        g.ID,
			FirstName: g.FirstName,
			LastName:  g.LastName,
			Email:     g.Email,
			Phone:     null.NewString(g.Phone, g.Phone != ""),
			CreatedAt: null.TimeFrom(g.CreatedAt),
		},
	)
	if uniqueViolation(err) {
		return school.Guardian{}, school.ErrGuardianExists
	}
	if err != nil {
		return school.Guardian{}, err
	}
	return g, nil
}

type dbClass struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	Section   null.String `db:"section"`
	CreatedAt null.Time   `db:"created_at"`
}

func (repo *schoolRepository) CreateClass(c school.Class) (school.Class, error) {
	_, err := repo.db.NamedExec(
		`INSERT INTO class (id, name, section, created_at)
		 VALUES (:id, :name, :section, :created_at)`,
		dbClass{
			ID:        c.ID,
			Name:      c.Name,
			Section:   null.NewString(c.Section, c.Section != ""),
			CreatedAt: null.TimeFrom(c.CreatedAt),
		},
	)
	if uniqueViolation(err) {
		return school.Class{}, school.ErrClassExists
	}
	if err != nil {
		return school.Class{}, err
	}
	return c, nil
}

type dbSubject struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Code      string    `db:"code"`
	CreatedAt null.Time `db:"created_at"`
}

func (repo *schoolRepository) CreateSubject(s school.Subject) (school.Subject, error) {
	_, err := repo.db.NamedExec(
		`INSERT INTO subject (id, name, code, created_at)
		 VALUES (:id, :name, :code, :created_at)`,
		dbSubject{
			ID:        s.ID,
			Name:      s.Name,
			Code:      s.Code,
			CreatedAt: null.TimeFrom(s.CreatedAt),
		},
	)
	if uniqueViolation(err) {
		return school.Subject{}, school.ErrSubjectExists
	}
	if err != nil {
		return school.Subject{}, err
	}
	return s, nil
}
