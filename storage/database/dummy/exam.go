package dummydb

import (
	"fmt"
	"sort"

	"github.com/sqoolify/sqoolify/core/exam"
	"github.com/sqoolify/sqoolify/core/importer"
)

type examRepository struct {
	db *examTables
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *DB) exam.Repository {
	return &examRepository{db: db.exam}
}

func (repo *examRepository) CreateExam(ex exam.Exam) (exam.Exam, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.exams[ex.ID] = &ex
	return ex, nil
}

func (repo *examRepository) GetExamByID(id string) (exam.Exam, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ex, ok := repo.db.exams[id]; ok {
		return *ex, nil
	}
	return exam.Exam{}, exam.ErrExamNotFound
}

func (repo *examRepository) UpdateExam(ex exam.Exam) (exam.Exam, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.exams[ex.ID]; !ok {
		return exam.Exam{}, exam.ErrExamNotFound
	}
	repo.db.exams[ex.ID] = &ex
	return ex, nil
}

func (repo *examRepository) QueryQuestions(examID string) ([]exam.Question, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.queryQuestions(examID), nil
}

func (repo *examRepository) queryQuestions(examID string) []exam.Question {
	var questions []exam.Question
	for _, q := range repo.db.questions {
		if q.ExamID == examID {
			questions = append(questions, *q)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].CreatedAt.Before(questions[j].CreatedAt) })
	return questions
}

func (repo *examRepository) GetQuestionByID(examID, id string) (exam.Question, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if q, ok := repo.db.questions[id]; ok && q.ExamID == examID {
		return *q, nil
	}
	return exam.Question{}, exam.ErrQuestionNotFound
}

func (repo *examRepository) CreateQuestion(q exam.Question) (exam.Question, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.questions[q.ID] = &q
	return q, nil
}

func (repo *examRepository) UpdateQuestion(q exam.Question) (exam.Question, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.questions[q.ID]; !ok {
		return exam.Question{}, exam.ErrQuestionNotFound
	}
	repo.db.questions[q.ID] = &q
	return q, nil
}

func (repo *examRepository) DeleteQuestion(examID, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if q, ok := repo.db.questions[id]; ok && q.ExamID == examID {
		delete(repo.db.questions, id)
		return nil
	}
	return exam.ErrQuestionNotFound
}

func (repo *examRepository) CreateQuestions(qs []exam.Question) (importer.Outcome, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var outcome importer.Outcome
	for i, q := range qs {
		q := q
		if _, ok := repo.db.questions[q.ID]; ok {
			outcome.FailureCount++
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("row %d: duplicate question id", importer.FileRowNum(i)))
			continue
		}
		repo.db.questions[q.ID] = &q
		outcome.SuccessCount++
	}
	return outcome, nil
}
