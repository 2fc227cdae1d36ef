package exam_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/sqoolify/sqoolify/core/exam"
	"github.com/sqoolify/sqoolify/core/importer"
	dummydb "github.com/sqoolify/sqoolify/storage/database/dummy"
)

func setup(t *testing.T) (*exam.Service, exam.Repository) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := dummydb.NewExamRepository(db)
	svc := exam.NewService(repo)
	return svc, repo
}

func createExam(t *testing.T, svc *exam.Service, maxScore int) exam.Exam {
	ex, err := svc.Create(exam.NewExam{Name: "Mid-term Mathematics", MaxScore: maxScore})
	if err != nil {
		t.Fatalf("createExam() failed: %v", err)
	}
	return ex
}

func addQuestion(t *testing.T, svc *exam.Service, examID string, points int) exam.Question {
	q, err := svc.AddQuestion(examID, exam.NewQuestion{
		Type:   string(exam.TypeEssay),
		Text:   "Discuss.",
		Points: points,
	})
	if err != nil {
		t.Fatalf("addQuestion(%d) failed: %v", points, err)
	}
	return q
}

func questionRow(points int) importer.Row {
	return importer.Row{
		"text":   "The earth is flat.",
		"type":   string(exam.TypeTrueFalse),
		"points": strconv.Itoa(points),
	}
}

func Test_Service_AddQuestion_budget(t *testing.T) {
	svc, _ := setup(t)
	ex := createExam(t, svc, 100)
	addQuestion(t, svc, ex.ID, 50)
	addQuestion(t, svc, ex.ID, 40) // 90/100 used

	// filling the budget exactly is fine
	q, err := svc.AddQuestion(ex.ID, exam.NewQuestion{Type: string(exam.TypeEssay), Text: "Discuss.", Points: 10})
	assert.NoError(t, err)
	assert.Equal(t, 10, q.Points)

	// one point over is not
	_, err = svc.AddQuestion(ex.ID, exam.NewQuestion{Type: string(exam.TypeEssay), Text: "Discuss more.", Points: 1})
	var bErr *exam.BudgetError
	if assert.True(t, errors.As(err, &bErr)) {
		assert.Equal(t, 1, bErr.Excess())
	}
}

func Test_Service_EditQuestion_budgetExcludesReplacedQuestion(t *testing.T) {
	svc, _ := setup(t)
	ex := createExam(t, svc, 100)
	addQuestion(t, svc, ex.ID, 50)
	addQuestion(t, svc, ex.ID, 30)
	target := addQuestion(t, svc, ex.ID, 10) // 90/100 used

	edit := func(points int) error {
		_, err := svc.EditQuestion(ex.ID, target.ID, exam.UpdateQuestion{
			Type:   string(exam.TypeEssay),
			Text:   "Discuss.",
			Points: points,
		})
		return err
	}

	// 10 -> 15: new total 95, allowed
	assert.NoError(t, edit(15))

	// 15 -> 25: new total 105, rejected with the overage
	err := edit(25)
	var bErr *exam.BudgetError
	if assert.True(t, errors.As(err, &bErr)) {
		assert.Equal(t, 5, bErr.Excess())
	}

	// previously saved questions are untouched
	questions, _ := svc.QueryQuestions(ex.ID)
	assert.Equal(t, 95, exam.PointsTotal(questions))
}

func Test_Service_ImportQuestions_budgetChecksWholeBatch(t *testing.T) {
	svc, _ := setup(t)
	ex := createExam(t, svc, 100)
	addQuestion(t, svc, ex.ID, 90) // 90/100 used

	// a batch summing to 11 is rejected in full
	over := make([]importer.Row, 11)
	for i := range over {
		over[i] = questionRow(1)
	}
	_, err := svc.ImportQuestions(context.Background(), ex.ID, over)
	var bErr *exam.BudgetError
	if assert.True(t, errors.As(err, &bErr)) {
		assert.Equal(t, 1, bErr.Excess())
	}
	questions, _ := svc.QueryQuestions(ex.ID)
	assert.Len(t, questions, 1) // nothing was partially saved

	// a batch summing to 10 lands exactly on the budget
	fits := make([]importer.Row, 10)
	for i := range fits {
		fits[i] = questionRow(1)
	}
	outcome, err := svc.ImportQuestions(context.Background(), ex.ID, fits)
	assert.NoError(t, err)
	assert.Equal(t, 10, outcome.SuccessCount)
	assert.Zero(t, outcome.FailureCount)

	questions, _ = svc.QueryQuestions(ex.ID)
	assert.Equal(t, 100, exam.PointsTotal(questions))
}

func Test_Service_Publish(t *testing.T) {
	svc, _ := setup(t)
	ex := createExam(t, svc, 100)

	// an exam without questions cannot be published
	_, err := svc.Publish(ex.ID)
	assert.Equal(t, exam.ErrNoQuestions, errors.Cause(err))

	addQuestion(t, svc, ex.ID, 10)
	published, err := svc.Publish(ex.ID)
	assert.NoError(t, err)
	assert.Equal(t, exam.StatePublished, published.State)
	assert.True(t, published.Published())

	// publishing is not repeatable
	_, err = svc.Publish(ex.ID)
	assert.Equal(t, exam.ErrAlreadyPublished, errors.Cause(err))
}

func Test_Service_lifecycleLocksAllMutations(t *testing.T) {
	svc, _ := setup(t)
	ex := createExam(t, svc, 100)
	q := addQuestion(t, svc, ex.ID, 10)
	if _, err := svc.Publish(ex.ID); err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}

	_, err := svc.AddQuestion(ex.ID, exam.NewQuestion{Type: string(exam.TypeEssay), Text: "x", Points: 1})
	assert.Equal(t, exam.ErrExamPublished, errors.Cause(err))

	_, err = svc.EditQuestion(ex.ID, q.ID, exam.UpdateQuestion{Type: string(exam.TypeEssay), Text: "x", Points: 1})
	assert.Equal(t, exam.ErrExamPublished, errors.Cause(err))

	err = svc.RemoveQuestion(ex.ID, q.ID)
	assert.Equal(t, exam.ErrExamPublished, errors.Cause(err))

	_, err = svc.ImportQuestions(context.Background(), ex.ID, []importer.Row{questionRow(1)})
	assert.Equal(t, exam.ErrExamPublished, errors.Cause(err))

	// the question set is unchanged
	questions, _ := svc.QueryQuestions(ex.ID)
	if assert.Len(t, questions, 1) {
		assert.Equal(t, q.ID, questions[0].ID)
		assert.Equal(t, 10, questions[0].Points)
	}
}

func Test_Service_ImportQuestions_shapesRowsPerType(t *testing.T) {
	svc, _ := setup(t)
	ex := createExam(t, svc, 100)

	rows := []importer.Row{
		{
			"text": "What is 2 + 2?", "type": "mcq", "points": "5",
			"option_a": "3", "option_b": "4", "option_c": "", "option_d": "",
			"correct_answer": "4",
			"marking_scheme": "should be ignored for mcq",
		},
		{
			"text": "Explain gravity.", "type": "essay", "points": "10",
			"marking_scheme": "2 points per law cited",
			"correct_answer": "should be ignored for essay",
		},
	}
	outcome, err := svc.ImportQuestions(context.Background(), ex.ID, rows)
	assert.NoError(t, err)
	assert.Equal(t, 2, outcome.SuccessCount)

	questions, _ := svc.QueryQuestions(ex.ID)
	if !assert.Len(t, questions, 2) {
		return
	}
	byType := make(map[exam.QuestionType]exam.Question, 2)
	for _, q := range questions {
		byType[q.Type] = q
	}

	mcq := byType[exam.TypeMCQ]
	assert.Equal(t, []string{"3", "4"}, mcq.Options)
	assert.Equal(t, "4", mcq.CorrectAnswer)
	assert.Empty(t, mcq.MarkingScheme)

	essay := byType[exam.TypeEssay]
	assert.Empty(t, essay.Options)
	assert.Empty(t, essay.CorrectAnswer)
	assert.Equal(t, "2 points per law cited", essay.MarkingScheme)
}
