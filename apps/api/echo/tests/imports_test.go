package tests

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/sqoolify/sqoolify/apps/api/echo"
	"github.com/sqoolify/sqoolify/core/importer"
	emailsvc "github.com/sqoolify/sqoolify/services/email"
)

const studentsCSV = "first_name,last_name,email,admission_no,class_name,guardian_email\n" +
	"Jane,Doe,jane@test.cd,ADM-001,JSS 1,guardian@test.cd\n" +
	"John,Doe,john@test.cd,ADM-002,JSS 1,\n"

func Test_importApi_auth(t *testing.T) {
	app := setup(t)

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodGet, path: "/v1/imports/types",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Capability required", method: http.MethodGet, path: "/v1/imports/types",
			token:    getToken(t, app.conf, false /* plain user, no capabilities */),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Exam capability does not grant imports", method: http.MethodGet, path: "/v1/imports/types",
			token:    getToken(t, app.conf, false, CapManageExams),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_importApi_template(t *testing.T) {
	app := setup(t)
	token := getToken(t, app.conf, false, CapManageImports)

	req, rec := newAuthRequest(http.MethodGet, "/v1/imports/students/template", token)
	app.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="students-template.csv"`)

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Equal(t, "first_name,last_name,email,admission_no,class_name,guardian_email", lines[0])
	assert.Len(t, lines, 2) // header + one example row

	// unknown type
	req, rec = newAuthRequest(http.MethodGet, "/v1/imports/lol/template", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_importApi_upload(t *testing.T) {
	app := setup(t)
	token := getToken(t, app.conf, true)

	t.Run("valid file opens a session with a preview", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/imports/students", token, studentsCSV)
		app.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var res SessionResponse
		unmarshalBody(t, rec, &res)
		assert.NotEmpty(t, res.ID)
		assert.Equal(t, "students", res.Type)
		assert.Equal(t, 2, res.TotalRows)
		if assert.NotNil(t, res.Preview) {
			// 6 schema columns, preview bounded at 5
			assert.Len(t, res.Preview.Columns, 5)
			assert.Equal(t, 1, res.Preview.OmittedColumns)
			assert.Len(t, res.Preview.Rows, 2)
		}
	})

	t.Run("missing required column rejects the whole file", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/imports/students", token,
			"first_name,last_name,admission_no\nJane,Doe,ADM-001\n")
		app.server.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"file": `missing required column "email"`}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("blank required fields are reported per row", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/imports/students", token,
			"first_name,last_name,email,admission_no\n"+
				"Jane,Doe,,ADM-001\n"+
				"John,Doe,john@test.cd,ADM-002\n"+
				"Jim,Doe,,ADM-003\n")
		app.server.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"row 2": `"Email" is required`,
				"row 4": `"Email" is required`,
			}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("empty file", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/imports/students", token,
			"first_name,last_name,email,admission_no\n")
		app.server.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"file": "no data rows found"}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("missing file part", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/imports/students", token)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_importApi_submit(t *testing.T) {
	app := setup(t)
	token := getToken(t, app.conf, true)

	upload := func(t *testing.T, csv string) SessionResponse {
		req, rec := newUploadRequest(t, "/v1/imports/students", token, csv)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("upload failed: %d: %s", rec.Code, rec.Body.String())
		}
		var res SessionResponse
		unmarshalBody(t, rec, &res)
		return res
	}

	t.Run("happy path, at most once", func(t *testing.T) {
		session := upload(t, studentsCSV)

		req, rec := newAuthRequest(http.MethodPost, "/v1/imports/sessions/"+session.ID+"/submit", token)
		app.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var outcome importer.Outcome
		unmarshalBody(t, rec, &outcome)
		assert.Equal(t, 2, outcome.SuccessCount)
		assert.Zero(t, outcome.FailureCount)

		// a report email went out to the submitting user
		if assert.NotEmpty(t, emailsvc.SentMessages) {
			msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
			assert.Equal(t, "admin@test.cd", msg.To[0].Address)
			assert.Contains(t, msg.TextContent, "Succeeded:      2")
		}

		// the preview is gone once consumed
		req, rec = newAuthRequest(http.MethodGet, "/v1/imports/sessions/"+session.ID, token)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		var res SessionResponse
		unmarshalBody(t, rec, &res)
		assert.Nil(t, res.Preview)
		assert.Zero(t, res.TotalRows)

		// a second confirmation is rejected
		req, rec = newAuthRequest(http.MethodPost, "/v1/imports/sessions/"+session.ID+"/submit", token)
		app.server.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "import session already submitted"}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("partial failure still consumes the session", func(t *testing.T) {
		// ADM-001 was already imported above
		session := upload(t, "first_name,last_name,email,admission_no\n"+
			"Janet,Doe,jane@test.cd,ADM-009\n"+ // duplicate email
			"Jack,Doe,jack@test.cd,ADM-010\n")

		req, rec := newAuthRequest(http.MethodPost, "/v1/imports/sessions/"+session.ID+"/submit", token)
		app.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var outcome importer.Outcome
		unmarshalBody(t, rec, &outcome)
		assert.Equal(t, 1, outcome.SuccessCount)
		assert.Equal(t, 1, outcome.FailureCount)
		if assert.Len(t, outcome.Errors, 1) {
			assert.Equal(t, fmt.Sprintf("row 2: %v", "a student with this email or admission number already exists"), outcome.Errors[0])
		}

		req, rec = newAuthRequest(http.MethodPost, "/v1/imports/sessions/"+session.ID+"/submit", token)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/imports/sessions/lol/submit", token)
		app.server.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "import session not found"}),
		}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_importApi_drop(t *testing.T) {
	app := setup(t)
	token := getToken(t, app.conf, true)

	req, rec := newUploadRequest(t, "/v1/imports/subjects", token, "name,code\nMathematics,MTH101\n")
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var session SessionResponse
	unmarshalBody(t, rec, &session)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/imports/sessions/"+session.ID, token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/imports/sessions/"+session.ID, token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
