package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sqoolify/sqoolify/core"
	"github.com/sqoolify/sqoolify/core/exam"
	"github.com/sqoolify/sqoolify/core/importer"
)

const questionImportType = "questions"

type examApi struct {
	conf      *core.Config
	validate  *validator.Validate
	svc       *exam.Service
	importSvc *importer.Service
	mailSvc   core.EmailService
}

func registerExamAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := examApi{
		conf:      deps.Conf,
		validate:  deps.Validate,
		svc:       deps.ExamSvc,
		importSvc: deps.ImportSvc,
		mailSvc:   deps.MailSvc,
	}

	eg := g.Group("/exams", jwt, capabilityMiddleware(CapManageExams))
	eg.POST("", api.create)
	eg.GET("/:id", api.retrieve)
	eg.POST("/:id/publish", api.publish)

	qg := eg.Group("/:id/questions")
	qg.GET("", api.queryQuestions)
	qg.POST("", api.addQuestion)
	qg.PUT("/:qid", api.editQuestion)
	qg.DELETE("/:qid", api.removeQuestion)
	qg.GET("/import/template", api.importTemplate)
	qg.POST("/import", api.importUpload)
	qg.POST("/import/:sid/submit", api.importSubmit)
}

type (
	// ExamResponse decorates the exam with its display attributes so the
	// console renders states through one exhaustive mapping.
	ExamResponse struct {
		exam.Exam
		StateLabel string `json:"state_label"`
		StateBadge string `json:"state_badge"`
	}

	QuestionResponse struct {
		exam.Question
		TypeLabel string `json:"type_label"`
	}
)

func newExamResponse(ex exam.Exam) ExamResponse {
	return ExamResponse{Exam: ex, StateLabel: ex.State.Label(), StateBadge: ex.State.BadgeVariant()}
}

func newQuestionResponse(q exam.Question) QuestionResponse {
	return QuestionResponse{Question: q, TypeLabel: q.Type.Label()}
}

// Handlers

func (api *examApi) create(ctx echo.Context) error {
	var data exam.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ex, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating exam")
	}
	return ctx.JSON(http.StatusCreated, newExamResponse(ex))
}

func (api *examApi) retrieve(ctx echo.Context) error {
	ex, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newExamResponse(ex))
}

func (api *examApi) publish(ctx echo.Context) error {
	ex, err := api.svc.Publish(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newExamResponse(ex))
}

func (api *examApi) queryQuestions(ctx echo.Context) error {
	questions, err := api.svc.QueryQuestions(ctx.Param("id"))
	if err != nil {
		return err
	}
	res := make([]QuestionResponse, 0, len(questions))
	for _, q := range questions {
		res = append(res, newQuestionResponse(q))
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *examApi) addQuestion(ctx echo.Context) error {
	var data exam.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	q, err := api.svc.AddQuestion(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, newQuestionResponse(q))
}

func (api *examApi) editQuestion(ctx echo.Context) error {
	var data exam.UpdateQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	q, err := api.svc.EditQuestion(ctx.Param("id"), ctx.Param("qid"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newQuestionResponse(q))
}

func (api *examApi) removeQuestion(ctx echo.Context) error {
	if err := api.svc.RemoveQuestion(ctx.Param("id"), ctx.Param("qid")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *examApi) importTemplate(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Param("id")); err != nil {
		return err
	}
	return writeCSVTemplate(ctx, questionImportType, exam.ImportSchema().Template(exam.ImportExampleRows()))
}

func (api *examApi) importUpload(ctx echo.Context) error {
	examID := ctx.Param("id")
	if _, err := api.svc.GetByID(examID); err != nil {
		return err
	}

	src, err := uploadedFile(ctx, api.conf.Import.MaxUploadBytes)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	session, err := api.importSvc.Start(questionImportType, examID, exam.ImportSchema(), src, exam.ImportRowRule())
	if err != nil {
		return errors.Wrap(err, "starting import session")
	}
	return ctx.JSON(http.StatusCreated, newSessionResponse(session))
}

func (api *examApi) importSubmit(ctx echo.Context) error {
	examID := ctx.Param("id")
	if _, err := api.svc.GetByID(examID); err != nil {
		return err
	}

	// only a session validated as a question import for this very exam
	// may land here
	session, err := api.importSvc.GetFor(ctx.Param("sid"), questionImportType, examID)
	if err != nil {
		return err
	}

	outcome, err := api.importSvc.Submit(ctx.Request().Context(), session.ID, api.svc.Acceptor(examID))
	if err != nil {
		return errors.Wrap(err, "submitting import")
	}

	if claims, cErr := getContextClaims(ctx); cErr == nil {
		sendImportReport(api.mailSvc, claims, questionImportType, outcome)
	}
	return ctx.JSON(http.StatusOK, outcome)
}
