package dummydb

import (
	"sync"

	"github.com/sqoolify/sqoolify/core/exam"
	"github.com/sqoolify/sqoolify/core/school"
)

// DB is an in-memory stand-in for the real database, used by unit tests
// and local experiments.
type (
	DB struct {
		exam   *examTables
		school *schoolTables
	}

	examTables struct {
		sync.RWMutex
		exams     map[string]*exam.Exam
		questions map[string]*exam.Question
	}

	schoolTables struct {
		sync.RWMutex
		students  map[string]*school.Student
		teachers  map[string]*school.Teacher
		guardians map[string]*school.Guardian
		classes   map[string]*school.Class
		subjects  map[string]*school.Subject
	}
)

func Open() (*DB, error) {
	db := &DB{
		exam: &examTables{
			exams:     make(map[string]*exam.Exam),
			questions: make(map[string]*exam.Question),
		},
		school: &schoolTables{
			students:  make(map[string]*school.Student),
			teachers:  make(map[string]*school.Teacher),
			guardians: make(map[string]*school.Guardian),
			classes:   make(map[string]*school.Class),
			subjects:  make(map[string]*school.Subject),
		},
	}
	return db, nil
}
