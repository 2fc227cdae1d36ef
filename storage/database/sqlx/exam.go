package sqlxrepos

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/sqoolify/sqoolify/core/exam"
	"github.com/sqoolify/sqoolify/core/importer"
)

type examRepository struct {
	db *sqlx.DB
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *sqlx.DB) exam.Repository {
	return &examRepository{db: db}
}

// dbExam is the row shape of the "exam" table.
type dbExam struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	MaxScore  int        `db:"max_score"`
	State     exam.State `db:"state"`
	CreatedAt null.Time  `db:"created_at"`
	UpdatedAt null.Time  `db:"updated_at"`
}

func (row dbExam) toExam() exam.Exam {
	return exam.Exam{
		ID:        row.ID,
		Name:      row.Name,
		MaxScore:  row.MaxScore,
		State:     row.State,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

func examRow(ex exam.Exam) dbExam {
	return dbExam{
		ID:        ex.ID,
		Name:      ex.Name,
		MaxScore:  ex.MaxScore,
		State:     ex.State,
		CreatedAt: null.TimeFrom(ex.CreatedAt),
		UpdatedAt: null.TimeFrom(ex.UpdatedAt),
	}
}

// dbQuestion is the row shape of the "question" table. Options ride as a
// Postgres text array; the per-type optional fields are nullable.
type dbQuestion struct {
	ID            string            `db:"id"`
	ExamID        string            `db:"exam_id"`
	Type          exam.QuestionType `db:"type"`
	Text          string            `db:"text"`
	Points        int               `db:"points"`
	Options       pq.StringArray    `db:"options"`
	CorrectAnswer null.String       `db:"correct_answer"`
	MarkingScheme null.String       `db:"marking_scheme"`
	CreatedAt     null.Time         `db:"created_at"`
	UpdatedAt     null.Time         `db:"updated_at"`
}

func (row dbQuestion) toQuestion() exam.Question {
	return exam.Question{
		ID:            row.ID,
		ExamID:        row.ExamID,
		Type:          row.Type,
		Text:          row.Text,
		Points:        row.Points,
		Options:       row.Options,
		CorrectAnswer: row.CorrectAnswer.String,
		MarkingScheme: row.MarkingScheme.String,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}

func questionRow(q exam.Question) dbQuestion {
	return dbQuestion{
		ID:            q.ID,
		ExamID:        q.ExamID,
		Type:          q.Type,
		Text:          q.Text,
		Points:        q.Points,
		Options:       q.Options,
		CorrectAnswer: null.NewString(q.CorrectAnswer, q.CorrectAnswer != ""),
		MarkingScheme: null.NewString(q.MarkingScheme, q.MarkingScheme != ""),
		CreatedAt:     null.TimeFrom(q.CreatedAt),
		UpdatedAt:     null.TimeFrom(q.UpdatedAt),
	}
}

func (repo *examRepository) CreateExam(ex exam.Exam) (exam.Exam, error) {
	_, err := repo.db.NamedExec(
		`INSERT INTO exam (id, name, max_score, state, created_at, updated_at)
		 VALUES (:id, :name, :max_score, :state, :created_at, :updated_at)`,
		examRow(ex),
	)
	if err != nil {
		return exam.Exam{}, err
	}
	return ex, nil
}

func (repo *examRepository) GetExamByID(id string) (exam.Exam, error) {
	var row dbExam
	err := repo.db.Get(&row, `SELECT * FROM exam WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return exam.Exam{}, exam.ErrExamNotFound
	}
	if err != nil {
		return exam.Exam{}, err
	}
	return row.toExam(), nil
}

func (repo *examRepository) UpdateExam(ex exam.Exam) (exam.Exam, error) {
	res, err := repo.db.NamedExec(
		`UPDATE exam
		 SET name = :name, max_score = :max_score, state = :state, updated_at = :updated_at
		 WHERE id = :id`,
		examRow(ex),
	)
	if err != nil {
		return exam.Exam{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return exam.Exam{}, exam.ErrExamNotFound
	}
	return ex, nil
}

func (repo *examRepository) QueryQuestions(examID string) ([]exam.Question, error) {
	var rows []dbQuestion
	err := repo.db.Select(&rows, `SELECT * FROM question WHERE exam_id = $1 ORDER BY created_at`, examID)
	if err != nil {
		return nil, err
	}
	questions := make([]exam.Question, len(rows))
	for i, row := range rows {
		questions[i] = row.toQuestion()
	}
	return questions, nil
}

func (repo *examRepository) GetQuestionByID(examID, id string) (exam.Question, error) {
	var row dbQuestion
	err := repo.db.Get(&row, `SELECT * FROM question WHERE id = $1 AND exam_id = $2`, id, examID)
	if err == sql.ErrNoRows {
		return exam.Question{}, exam.ErrQuestionNotFound
	}
	if err != nil {
		return exam.Question{}, err
	}
	return row.toQuestion(), nil
}

func (repo *examRepository) CreateQuestion(q exam.Question) (exam.Question, error) {
	if err := repo.insertQuestion(q); err != nil {
		return exam.Question{}, err
	}
	return q, nil
}

func (repo *examRepository) UpdateQuestion(q exam.Question) (exam.Question, error) {
	res, err := repo.db.NamedExec(
		`UPDATE question
		 SET type = :type, text = :text, points = :points, options = :options,
		     correct_answer = :correct_answer, marking_scheme = :marking_scheme, updated_at = :updated_at
		 WHERE id = :id AND exam_id = :exam_id`,
		questionRow(q),
	)
	if err != nil {
		return exam.Question{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return exam.Question{}, exam.ErrQuestionNotFound
	}
	return q, nil
}

func (repo *examRepository) DeleteQuestion(examID, id string) error {
	res, err := repo.db.Exec(`DELETE FROM question WHERE id = $1 AND exam_id = $2`, id, examID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return exam.ErrQuestionNotFound
	}
	return nil
}

// CreateQuestions inserts a validated batch row by row so one rejected
// row never takes down its siblings.
func (repo *examRepository) CreateQuestions(qs []exam.Question) (importer.Outcome, error) {
	var outcome importer.Outcome
	for i, q := range qs {
		if err := repo.insertQuestion(q); err != nil {
			outcome.FailureCount++
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("row %d: %v", importer.FileRowNum(i), err))
			continue
		}
		outcome.SuccessCount++
	}
	return outcome, nil
}

func (repo *examRepository) insertQuestion(q exam.Question) error {
	_, err := repo.db.NamedExec(
		`INSERT INTO question (id, exam_id, type, text, points, options, correct_answer, marking_scheme, created_at, updated_at)
		 VALUES (:id, :exam_id, :type, :text, :points, :options, :correct_answer, :marking_scheme, :created_at, :updated_at)`,
		questionRow(q),
	)
	return err
}
