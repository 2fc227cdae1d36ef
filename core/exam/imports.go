package exam

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sqoolify/sqoolify/core"
	"github.com/sqoolify/sqoolify/core/importer"
)

var optionKeys = []string{"option_a", "option_b", "option_c", "option_d"}

// ImportSchema declares the columns of the question bulk-import file.
func ImportSchema() importer.Schema {
	return importer.NewSchema(
		importer.ColumnSpec{Key: "text", Label: "Question Text", Required: true},
		importer.ColumnSpec{Key: "type", Label: "Question Type", Required: true},
		importer.ColumnSpec{Key: "points", Label: "Points", Required: true},
		importer.ColumnSpec{Key: "option_a", Label: "Option A"},
		importer.ColumnSpec{Key: "option_b", Label: "Option B"},
		importer.ColumnSpec{Key: "option_c", Label: "Option C"},
		importer.ColumnSpec{Key: "option_d", Label: "Option D"},
		importer.ColumnSpec{Key: "correct_answer", Label: "Correct Answer"},
		importer.ColumnSpec{Key: "marking_scheme", Label: "Marking Scheme"},
	)
}

// ImportExampleRows fills the downloadable template with one example per
// question type.
func ImportExampleRows() []importer.Row {
	return []importer.Row{
		{
			"text": "What is 2 + 2?", "type": string(TypeMCQ), "points": "5",
			"option_a": "3", "option_b": "4", "option_c": "5", "option_d": "22",
			"correct_answer": "4",
		},
		{
			"text": "The earth is flat.", "type": string(TypeTrueFalse), "points": "2",
			"correct_answer": "false",
		},
		{
			"text": "Name the capital of France.", "type": string(TypeShortAnswer), "points": "3",
			"marking_scheme": "Accept Paris only.",
		},
		{
			"text": "Discuss the causes of World War I.", "type": string(TypeEssay), "points": "10",
			"marking_scheme": "2 points per distinct cause, up to 5 causes.",
		},
	}
}

// ImportRowRule applies the question-specific structural checks to a row
// whose required fields are already known to be present: a known type, a
// positive integer points value and, per type, the same answer rules the
// single-add path enforces.
func ImportRowRule() importer.RowRule {
	return func(n int, r importer.Row) *importer.RowError {
		qt := QuestionType(core.CleanString(r["type"], true /* lower */))
		if !qt.Valid() {
			return importRowError(n, "unknown question type %q", r["type"])
		}

		points, err := strconv.Atoi(strings.TrimSpace(r["points"]))
		if err != nil || points < 1 {
			return importRowError(n, "points must be a whole number of at least 1, got %q", r["points"])
		}

		switch qt {
		case TypeMCQ:
			var opts []string
			for _, key := range optionKeys {
				if opt := core.CleanString(r[key]); opt != "" {
					opts = append(opts, opt)
				}
			}
			if len(opts) < 2 {
				return importRowError(n, mcqOptionsText)
			}
			if ans := core.CleanString(r["correct_answer"]); ans != "" && !containsString(opts, ans) {
				return importRowError(n, correctAnswerText)
			}
		case TypeTrueFalse:
			if ans := core.CleanString(r["correct_answer"]); ans != "" && ans != "true" && ans != "false" {
				return importRowError(n, tfAnswerText)
			}
		}
		return nil
	}
}

func importRowError(n int, format string, args ...interface{}) *importer.RowError {
	err := importer.NewRowError(n, format, args...)
	return &err
}

// questionFromRow shapes a validated import row into a Question.
func questionFromRow(examID string, r importer.Row, now time.Time) Question {
	qt := QuestionType(core.CleanString(r["type"], true /* lower */))
	points, _ := strconv.Atoi(strings.TrimSpace(r["points"])) // validated upstream

	q := Question{
		ID:        uuid.New().String(),
		ExamID:    examID,
		Type:      qt,
		Text:      core.CleanString(r["text"]),
		Points:    points,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if qt.HasOptions() {
		for _, key := range optionKeys {
			if opt := core.CleanString(r[key]); opt != "" {
				q.Options = append(q.Options, opt)
			}
		}
	}
	if qt.HasCorrectAnswer() {
		q.CorrectAnswer = core.CleanString(r["correct_answer"])
	}
	if qt.HasMarkingScheme() {
		q.MarkingScheme = core.CleanString(r["marking_scheme"])
	}
	return q
}

// ImportQuestions submits a validated batch of question rows to the
// exam. The lifecycle guard applies as for any mutation, and the whole
// batch is budget-checked up front: a batch that would overshoot is
// rejected in full, never trimmed to fit.
func (svc *Service) ImportQuestions(ctx context.Context, examID string, rows []importer.Row) (importer.Outcome, error) {
	ex, existing, err := svc.mutableExam(examID)
	if err != nil {
		return importer.Outcome{}, err
	}

	now := time.Now().UTC()
	questions := make([]Question, 0, len(rows))
	var batchPoints int
	for _, r := range rows {
		q := questionFromRow(ex.ID, r, now)
		batchPoints += q.Points
		questions = append(questions, q)
	}

	if total := PointsTotal(existing) + batchPoints; total > ex.MaxScore {
		return importer.Outcome{}, &BudgetError{MaxScore: ex.MaxScore, Total: total}
	}

	return svc.repo.CreateQuestions(questions)
}

// Acceptor adapts the question import for the generic pipeline, bound to
// one exam.
func (svc *Service) Acceptor(examID string) importer.Acceptor {
	return importer.AcceptorFunc(func(ctx context.Context, rows []importer.Row) (importer.Outcome, error) {
		return svc.ImportQuestions(ctx, examID, rows)
	})
}
