package exam

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sqoolify/sqoolify/core"
)

// State is an exam's lifecycle state. The transition is one-way: a
// published exam never goes back to draft and its questions are locked.
type State string

const (
	StateDraft     State = "draft"
	StatePublished State = "published"
)

func (s State) Valid() bool {
	switch s {
	case StateDraft, StatePublished:
		return true
	}
	return false
}

// Label is the user-facing name of the state. Exhaustive on purpose: a
// new state must be given a label here before it can be rendered.
func (s State) Label() string {
	switch s {
	case StateDraft:
		return "Draft"
	case StatePublished:
		return "Published"
	}
	return string(s)
}

// BadgeVariant maps the state to the admin console's badge color.
func (s State) BadgeVariant() string {
	switch s {
	case StateDraft:
		return "warning"
	case StatePublished:
		return "success"
	}
	return "secondary"
}

// QuestionType enumerates the supported kinds of exam questions.
type QuestionType string

const (
	TypeMCQ         QuestionType = "mcq"
	TypeTrueFalse   QuestionType = "true_false"
	TypeShortAnswer QuestionType = "short_answer"
	TypeEssay       QuestionType = "essay"
)

var AllQuestionTypes = []QuestionType{TypeMCQ, TypeTrueFalse, TypeShortAnswer, TypeEssay}

func (t QuestionType) Valid() bool {
	switch t {
	case TypeMCQ, TypeTrueFalse, TypeShortAnswer, TypeEssay:
		return true
	}
	return false
}

func (t QuestionType) Label() string {
	switch t {
	case TypeMCQ:
		return "Multiple Choice"
	case TypeTrueFalse:
		return "True / False"
	case TypeShortAnswer:
		return "Short Answer"
	case TypeEssay:
		return "Essay"
	}
	return string(t)
}

// HasOptions reports whether the type carries an option list.
func (t QuestionType) HasOptions() bool { return t == TypeMCQ }

// HasCorrectAnswer reports whether the type carries an expected answer.
func (t QuestionType) HasCorrectAnswer() bool { return t == TypeMCQ || t == TypeTrueFalse }

// HasMarkingScheme reports whether the type is hand-graded against a
// marking scheme.
func (t QuestionType) HasMarkingScheme() bool { return t == TypeEssay || t == TypeShortAnswer }

type Exam struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MaxScore  int       `json:"max_score"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (e Exam) Published() bool { return e.State == StatePublished }

type Question struct {
	ID            string       `json:"id"`
	ExamID        string       `json:"exam_id"`
	Type          QuestionType `json:"type"`
	Text          string       `json:"text"`
	Points        int          `json:"points"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	MarkingScheme string       `json:"marking_scheme,omitempty"`
	CreatedAt     time.Time    `json:"created_at"` // UTC
	UpdatedAt     time.Time    `json:"updated_at"` // UTC
}

// PointsTotal sums the points of persisted questions; soft-deleted or
// unsaved drafts never reach this list.
func PointsTotal(questions []Question) int {
	var total int
	for _, q := range questions {
		total += q.Points
	}
	return total
}

// NewExam contains information needed to create a new Exam.
type NewExam struct {
	Name     string `json:"name" validate:"required"`
	MaxScore int    `json:"max_score" validate:"required,min=1"`
}

func (ne *NewExam) Validate(validate *validator.Validate) error {
	ne.Name = core.CleanString(ne.Name)
	return validate.Struct(ne)
}

// NewQuestion contains information needed to add a Question to an exam.
type NewQuestion struct {
	Type          string   `json:"type" validate:"required,questiontype"`
	Text          string   `json:"text" validate:"required"`
	Points        int      `json:"points" validate:"required,min=1"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	MarkingScheme string   `json:"marking_scheme"`
}

func (nq *NewQuestion) Validate(validate *validator.Validate) error {
	nq.clean()
	return validate.Struct(nq)
}

func (nq *NewQuestion) clean() {
	nq.Type = core.CleanString(nq.Type, true /* lower */)
	nq.Text = core.CleanString(nq.Text)
	nq.CorrectAnswer = core.CleanString(nq.CorrectAnswer)
	nq.MarkingScheme = core.CleanString(nq.MarkingScheme)

	opts := nq.Options[:0]
	for _, opt := range nq.Options {
		if opt = core.CleanString(opt); opt != "" {
			opts = append(opts, opt)
		}
	}
	nq.Options = opts
}

// UpdateQuestion defines what may be modified on an existing Question.
// The full shape is resubmitted; partial edits are resolved by the editor.
type UpdateQuestion struct {
	Type          string   `json:"type" validate:"required,questiontype"`
	Text          string   `json:"text" validate:"required"`
	Points        int      `json:"points" validate:"required,min=1"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	MarkingScheme string   `json:"marking_scheme"`
}

func (uq *UpdateQuestion) Validate(validate *validator.Validate) error {
	nq := NewQuestion(*uq)
	if err := nq.Validate(validate); err != nil {
		return err
	}
	*uq = UpdateQuestion(nq)
	return nil
}
