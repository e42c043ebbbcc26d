package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/simulado/apps/api/echo"
	"github.com/trezcool/simulado/core"
	"github.com/trezcool/simulado/core/question"
	"github.com/trezcool/simulado/core/subject"
	emailsvc "github.com/trezcool/simulado/services/email"
	logsvc "github.com/trezcool/simulado/services/logger"
	sqlxrepos "github.com/trezcool/simulado/storage/database/sqlx"
	testutil "github.com/trezcool/simulado/tests"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

type fixture struct {
	app      *echoapi.Server
	conf     *core.Config
	subjRepo subject.Repository
	qRepo    question.Repository
}

func setup(t *testing.T) fixture {
	t.Helper()

	conf := core.NewTestConfig()
	logger := logsvc.NewRollbarLoggerMock()

	// set up DB & repos
	db := testutil.PrepareDB(t)
	subjRepo := sqlxrepos.NewSubjectRepository(db)
	qRepo := sqlxrepos.NewQuestionRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	emailsvc.ResetSentMessages()
	subjSvc := subject.NewService(subjRepo)
	qSvc := question.NewServiceMock(db, qRepo, subjSvc, mailSvc, logger, conf)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	question.InitValidators(validate, translator)

	// set up server
	app := echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		SubjectSvc:     subjSvc,
		QuestionSvc:    qSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return fixture{app: app, conf: conf, subjRepo: subjRepo, qRepo: qRepo}
}

func (fx fixture) serve(req *http.Request, rec *httptest.ResponseRecorder) {
	fx.app.ServeHTTP(rec, req)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, conf *core.Config, op core.Operator, isAdmin bool) string {
	t.Helper()

	token, err := echoapi.GenerateToken(echoapi.NewClaims(op, isAdmin, conf), conf.SecretKey)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()

	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if _, ok := j1.([]interface{}); !ok {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, fx fixture, tests []httpTest) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			fx.serve(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}
}
