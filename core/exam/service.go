package exam

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/sqoolify/sqoolify/core/importer"
)

var (
	// errors
	ErrExamNotFound     = errors.New("exam not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrExamPublished    = errors.New("exam is published; questions are locked")
	ErrAlreadyPublished = errors.New("exam is already published")
	ErrNoQuestions      = errors.New("an exam needs at least one question before it can be published")
)

// BudgetError signals that a candidate question (or batch) would push
// the exam's points total past its maximum score. Previously saved
// questions are unaffected; only the candidate is rejected.
type BudgetError struct {
	MaxScore int
	Total    int
}

func (e *BudgetError) Excess() int { return e.Total - e.MaxScore }

func (e *BudgetError) Error() string {
	return fmt.Sprintf("question points would total %d, exceeding the exam's maximum score of %d by %d",
		e.Total, e.MaxScore, e.Excess())
}

// CheckBudget sums the points of all existing questions except the one
// being replaced (excludeID, during edit-in-place), adds the candidate
// points and compares against the exam's maximum score. Reaching the
// budget exactly is success; only exceeding it is a violation.
func CheckBudget(exam Exam, existing []Question, candidatePoints int, excludeID string) error {
	total := candidatePoints
	for _, q := range existing {
		if excludeID != "" && q.ID == excludeID {
			continue
		}
		total += q.Points
	}
	if total > exam.MaxScore {
		return &BudgetError{MaxScore: exam.MaxScore, Total: total}
	}
	return nil
}

type (
	Repository interface {
		CreateExam(exam Exam) (Exam, error)
		GetExamByID(id string) (Exam, error)
		UpdateExam(exam Exam) (Exam, error)
		QueryQuestions(examID string) ([]Question, error)
		GetQuestionByID(examID, id string) (Question, error)
		CreateQuestion(q Question) (Question, error)
		UpdateQuestion(q Question) (Question, error)
		DeleteQuestion(examID, id string) error
		// CreateQuestions applies the batch row by row; failures are
		// collected in the outcome rather than aborting the batch.
		CreateQuestions(qs []Question) (importer.Outcome, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ne NewExam) (Exam, error) {
	now := time.Now().UTC()
	return svc.repo.CreateExam(Exam{
		ID:        uuid.New().String(),
		Name:      ne.Name,
		MaxScore:  ne.MaxScore,
		State:     StateDraft,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) GetByID(id string) (Exam, error) {
	return svc.repo.GetExamByID(id)
}

func (svc *Service) QueryQuestions(examID string) ([]Question, error) {
	if _, err := svc.repo.GetExamByID(examID); err != nil {
		return nil, err
	}
	return svc.repo.QueryQuestions(examID)
}

// AddQuestion persists a single new question after the lifecycle and
// points-budget guards pass.
func (svc *Service) AddQuestion(examID string, nq NewQuestion) (Question, error) {
	ex, existing, err := svc.mutableExam(examID)
	if err != nil {
		return Question{}, err
	}
	if err = CheckBudget(ex, existing, nq.Points, ""); err != nil {
		return Question{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateQuestion(questionOf(ex.ID, uuid.New().String(), nq, now, now))
}

// EditQuestion replaces an existing question in place; its previous
// points are excluded from the budget check.
func (svc *Service) EditQuestion(examID, id string, uq UpdateQuestion) (Question, error) {
	ex, existing, err := svc.mutableExam(examID)
	if err != nil {
		return Question{}, err
	}
	orig, err := svc.repo.GetQuestionByID(examID, id)
	if err != nil {
		return Question{}, err
	}
	if err = CheckBudget(ex, existing, uq.Points, id); err != nil {
		return Question{}, err
	}

	q := questionOf(ex.ID, orig.ID, NewQuestion(uq), orig.CreatedAt, time.Now().UTC())
	return svc.repo.UpdateQuestion(q)
}

func (svc *Service) RemoveQuestion(examID, id string) error {
	if _, _, err := svc.mutableExam(examID); err != nil {
		return err
	}
	return svc.repo.DeleteQuestion(examID, id)
}

// Publish transitions the exam to its terminal published state. It
// requires at least one question and fails if already published.
func (svc *Service) Publish(examID string) (Exam, error) {
	ex, err := svc.repo.GetExamByID(examID)
	if err != nil {
		return Exam{}, err
	}
	if ex.Published() {
		return Exam{}, ErrAlreadyPublished
	}
	questions, err := svc.repo.QueryQuestions(examID)
	if err != nil {
		return Exam{}, err
	}
	if len(questions) == 0 {
		return Exam{}, ErrNoQuestions
	}

	ex.State = StatePublished
	ex.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateExam(ex)
}

// mutableExam loads the exam and its questions, rejecting any mutation
// once the exam is published.
func (svc *Service) mutableExam(examID string) (Exam, []Question, error) {
	ex, err := svc.repo.GetExamByID(examID)
	if err != nil {
		return Exam{}, nil, err
	}
	if ex.Published() {
		return Exam{}, nil, ErrExamPublished
	}
	existing, err := svc.repo.QueryQuestions(examID)
	if err != nil {
		return Exam{}, nil, err
	}
	return ex, existing, nil
}

func questionOf(examID, id string, nq NewQuestion, createdAt, updatedAt time.Time) Question {
	qt := QuestionType(nq.Type)
	q := Question{
		ID:        id,
		ExamID:    examID,
		Type:      qt,
		Text:      nq.Text,
		Points:    nq.Points,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if qt.HasOptions() {
		q.Options = nq.Options
	}
	if qt.HasCorrectAnswer() {
		q.CorrectAnswer = nq.CorrectAnswer
	}
	if qt.HasMarkingScheme() {
		q.MarkingScheme = nq.MarkingScheme
	}
	return q
}
