package dummydb

import (
	"github.com/sqoolify/sqoolify/core/school"
)

type schoolRepository struct {
	db *schoolTables
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db.school}
}

func (repo *schoolRepository) CreateStudent(s school.Student) (school.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, other := range repo.db.students {
		if other.Email == s.Email || other.AdmissionNo == s.AdmissionNo {
			return school.Student{}, school.ErrStudentExists
		}
	}
	repo.db.students[s.ID] = &s
	return s, nil
}

func (repo *schoolRepository) CreateTeacher(t school.Teacher) (school.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, other := range repo.db.teachers {
		if other.Email == t.Email {
			return school.Teacher{}, school.ErrTeacherExists
		}
	}
	repo.db.teachers[t.ID] = &t
	return t, nil
}

func (repo *schoolRepository) CreateGuardian(g school.Guardian) (school.Guardian, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, other := range repo.db.guardians {
		if other.Email == g.Email {
			return school.Guardian{}, school.ErrGuardianExists
		}
	}
	repo.db.guardians[g.ID] = &g
	return g, nil
}

func (repo *schoolRepository) CreateClass(c school.Class) (school.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, other := range repo.db.classes {
		if other.Name == c.Name && other.Section == c.Section {
			return school.Class{}, school.ErrClassExists
		}
	}
	repo.db.classes[c.ID] = &c
	return c, nil
}

func (repo *schoolRepository) CreateSubject(s school.Subject) (school.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, other := range repo.db.subjects {
		if other.Code == s.Code {
			return school.Subject{}, school.ErrSubjectExists
		}
	}
	repo.db.subjects[s.ID] = &s
	return s, nil
}
