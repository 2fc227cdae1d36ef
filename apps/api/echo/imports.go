package echoapi

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sqoolify/sqoolify/core"
	"github.com/sqoolify/sqoolify/core/importer"
	"github.com/sqoolify/sqoolify/core/school"
)

type importApi struct {
	conf      *core.Config
	importSvc *importer.Service
	schoolSvc *school.Service
	mailSvc   core.EmailService
}

func registerImportAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := importApi{
		conf:      deps.Conf,
		importSvc: deps.ImportSvc,
		schoolSvc: deps.SchoolSvc,
		mailSvc:   deps.MailSvc,
	}

	ig := g.Group("/imports", jwt, capabilityMiddleware(CapManageImports))
	ig.GET("/types", api.queryTypes)
	ig.GET("/:type/template", api.template)
	ig.POST("/:type", api.upload)

	sg := ig.Group("/sessions/:id")
	sg.GET("", api.retrieveSession)
	sg.POST("/submit", api.submit)
	sg.DELETE("", api.drop)
}

type (
	ImportTypeInfo struct {
		Type    school.ImportType `json:"type"`
		Columns importer.Schema   `json:"columns"`
	}

	SessionResponse struct {
		ID        string            `json:"id"`
		Type      string            `json:"type"`
		TotalRows int               `json:"total_rows"`
		Preview   *importer.Preview `json:"preview"`
	}
)

func newSessionResponse(s *importer.Session) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		Type:      s.Type,
		TotalRows: s.RowCount(),
		Preview:   s.Preview(),
	}
}

// Handlers

func (api *importApi) queryTypes(ctx echo.Context) error {
	infos := make([]ImportTypeInfo, 0, len(school.AllImportTypes))
	for _, typ := range school.AllImportTypes {
		infos = append(infos, ImportTypeInfo{Type: typ, Columns: typ.Schema()})
	}
	return ctx.JSON(http.StatusOK, infos)
}

func (api *importApi) template(ctx echo.Context) error {
	typ := school.ImportType(ctx.Param("type"))
	if !typ.Valid() {
		return school.ErrUnknownImportType
	}
	return writeCSVTemplate(ctx, string(typ), typ.Schema().Template(typ.ExampleRows()))
}

func (api *importApi) upload(ctx echo.Context) error {
	typ := school.ImportType(ctx.Param("type"))
	if !typ.Valid() {
		return school.ErrUnknownImportType
	}

	src, err := uploadedFile(ctx, api.conf.Import.MaxUploadBytes)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	session, err := api.importSvc.Start(string(typ), "", typ.Schema(), src)
	if err != nil {
		return errors.Wrap(err, "starting import session")
	}
	return ctx.JSON(http.StatusCreated, newSessionResponse(session))
}

func (api *importApi) retrieveSession(ctx echo.Context) error {
	session, err := api.importSvc.Get(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newSessionResponse(session))
}

func (api *importApi) submit(ctx echo.Context) error {
	session, err := api.importSvc.Get(ctx.Param("id"))
	if err != nil {
		return err
	}
	if session.Ref != "" { // scoped sessions submit at their own endpoint
		return importer.ErrSessionMismatch
	}

	typ := school.ImportType(session.Type)
	acceptor, err := api.schoolSvc.Acceptor(typ)
	if err != nil {
		return errors.Wrap(err, "resolving import acceptor")
	}

	outcome, err := api.importSvc.Submit(ctx.Request().Context(), session.ID, acceptor)
	if err != nil {
		return errors.Wrap(err, "submitting import")
	}

	if claims, cErr := getContextClaims(ctx); cErr == nil {
		sendImportReport(api.mailSvc, claims, string(typ), outcome)
	}
	return ctx.JSON(http.StatusOK, outcome)
}

func (api *importApi) drop(ctx echo.Context) error {
	api.importSvc.Drop(ctx.Param("id"))
	return ctx.NoContent(http.StatusNoContent)
}

// Helpers shared with the exam question import.

func writeCSVTemplate(ctx echo.Context, name string, blob []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s-template.csv"`, name))
	return ctx.Blob(http.StatusOK, "text/csv", blob)
}

// uploadedFile pulls the "file" part out of a multipart upload and
// bounds its size.
func uploadedFile(ctx echo.Context, maxBytes int64) (multipart.File, error) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "file", Error: "a file is required"})
	}
	if fileHeader.Size > maxBytes {
		return nil, errFileTooLarge
	}
	src, err := fileHeader.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening uploaded file")
	}
	return src, nil
}

type importReport struct {
	Type         string
	Total        int
	SuccessCount int
	FailureCount int
	Errors       []string
}

// sendImportReport mails the submitting user a summary of the outcome.
func sendImportReport(mailSvc core.EmailService, claims Claims, typ string, outcome importer.Outcome) {
	if claims.Email == "" {
		return
	}
	mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: claims.Username, Address: claims.Email}},
		Subject:      fmt.Sprintf("Your %s import has finished", typ),
		TemplateName: "import-report",
		TemplateData: importReport{
			Type:         typ,
			Total:        outcome.SuccessCount + outcome.FailureCount,
			SuccessCount: outcome.SuccessCount,
			FailureCount: outcome.FailureCount,
			Errors:       outcome.Errors,
		},
	})
}
