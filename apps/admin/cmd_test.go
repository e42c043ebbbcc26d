package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	echoapi "github.com/trezcool/simulado/apps/api/echo"
	"github.com/trezcool/simulado/core"
	"github.com/trezcool/simulado/core/question"
	"github.com/trezcool/simulado/core/subject"
	emailsvc "github.com/trezcool/simulado/services/email"
	logsvc "github.com/trezcool/simulado/services/logger"
	sqlxrepos "github.com/trezcool/simulado/storage/database/sqlx"
	testutil "github.com/trezcool/simulado/tests"
)

const plainQuestions = "1) What color is the sky on a clear day? A) Red B) Blue C) Green D) Yellow E) Black Resposta: B\n" +
	"2) Which planet is known as the red planet? A) Venus B) Mars C) Jupiter D) Saturn E) Mercury Gabarito: b\n"

type fixture struct {
	cli   *commandLine
	out   *bytes.Buffer
	qRepo question.Repository
	subj  subject.Subject
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

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	question.InitValidators(validate, translator)

	var out, errOut bytes.Buffer
	return fixture{
		cli: &commandLine{
			db:       db.DB,
			conf:     conf,
			qSvc:     question.NewServiceMock(db, qRepo, subjSvc, mailSvc, logger, conf),
			validate: validate,
			out:      &out,
			errOut:   &errOut,
		},
		out:   &out,
		qRepo: qRepo,
		subj:  testutil.CreateSubject(t, subjRepo, "Inglês", 0, true),
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()

	fp := filepath.Join(t.TempDir(), "questions.html")
	if err := os.WriteFile(fp, []byte(content), 0o600); err != nil {
		t.Fatalf("writeFile() failed: %v", err)
	}
	return fp
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()

	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() error = nil, want an error")
			}
		})
	}
}

func Test_commandLine_help(t *testing.T) {
	fx := setup(t)

	runCLITests(t, fx.cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErrStr: `unknown command "lol" for "admin"`},
	})
}

func Test_commandLine_migrate(t *testing.T) {
	fx := setup(t)

	orig := gooseRunFunc
	t.Cleanup(func() { gooseRunFunc = orig })

	var gotDialect string
	gooseRunFunc = func(command string, db *sql.DB, dialect string, args ...string) error {
		gotDialect = dialect
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, fx.cli, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "UP", args: []string{"migrate", "UP"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
	})
	assert.Equal(t, "sqlite3", gotDialect)
}

func Test_commandLine_token(t *testing.T) {
	fx := setup(t)

	runCLITests(t, fx.cli, []cliTest{
		{name: "no flags", args: []string{"token"}, wantErr: errHelp},
		{name: "no name", args: []string{"token", "--email", "ana@test.br"}, wantErr: errHelp},
	})

	fx.out.Reset()
	require.NoError(t, fx.cli.run([]string{"admin", "token", "--email", " Ana@Test.br ", "--name", "Ana", "--id", "op-1"}))

	claims := new(echoapi.Claims)
	_, err := jwt.ParseWithClaims(strings.TrimSpace(fx.out.String()), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(fx.cli.conf.SecretKey), nil
	})
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, core.Operator{ID: "op-1", Name: "Ana", Email: "ana@test.br"}, claims.Operator())
}

func Test_commandLine_analyze(t *testing.T) {
	fx := setup(t)
	fp := writeFile(t, plainQuestions)

	runCLITests(t, fx.cli, []cliTest{
		{name: "no flags", args: []string{"analyze"}, wantErr: errHelp},
		{name: "bad format", args: []string{"analyze", "-f", fp, "-s", fx.subj.ID, "--format", "xml"}, wantErr: errHelp},
		{name: "empty file", args: []string{"analyze", "-f", writeFile(t, ""), "-s", fx.subj.ID}, wantErrStr: "Key: 'AnalyzeRequest.html_content' Error:Field validation for 'html_content' failed on the 'required' tag"},
	})

	want := question.AnalyzeResult{
		Questions: []question.Extracted{
			{
				Prompt:       "What color is the sky on a clear day?",
				Choices:      question.Choices{A: "Red", B: "Blue", C: "Green", D: "Yellow", E: "Black"},
				CorrectLabel: question.LabelB,
			},
			{
				Prompt:       "Which planet is known as the red planet?",
				Choices:      question.Choices{A: "Venus", B: "Mars", C: "Jupiter", D: "Saturn", E: "Mercury"},
				CorrectLabel: question.LabelB,
			},
		},
		Count: 2,
	}

	t.Run("json", func(t *testing.T) {
		fx.out.Reset()
		require.NoError(t, fx.cli.run([]string{"admin", "analyze", "-f", fp, "-s", fx.subj.ID}))

		var got question.AnalyzeResult
		require.NoError(t, json.Unmarshal(fx.out.Bytes(), &got))
		assert.Equal(t, want, got)
	})

	t.Run("yaml", func(t *testing.T) {
		fx.out.Reset()
		require.NoError(t, fx.cli.run([]string{"admin", "analyze", "-f", fp, "-s", fx.subj.ID, "--format", "yaml"}))

		var got question.AnalyzeResult
		require.NoError(t, yaml.Unmarshal(fx.out.Bytes(), &got))
		assert.Equal(t, want, got)
		assert.Contains(t, fx.out.String(), "correct_label: b")
	})
}

func Test_commandLine_import(t *testing.T) {
	fx := setup(t)
	fp := writeFile(t, plainQuestions)

	runCLITests(t, fx.cli, []cliTest{
		{name: "no flags", args: []string{"import"}, wantErr: errHelp},
		{
			name: "bad difficulty", args: []string{"import", "-f", fp, "-s", fx.subj.ID, "-d", "easy"},
			wantErrStr: "Key: 'ImportRequest.difficulty' Error:Field validation for 'difficulty' failed on the 'difficulty' tag",
		},
	})

	fx.out.Reset()
	args := []string{"admin", "import", "-f", fp, "-s", fx.subj.ID, "-d", "facil", "--email", "ana@test.br", "--name", "Ana"}
	require.NoError(t, fx.cli.run(args))
	assert.Equal(t, "2 question(s) imported, 0 skipped as duplicates\n", fx.out.String())

	stored, err := fx.qRepo.QueryQuestions(context.Background(), &question.QueryFilter{SubjectID: fx.subj.ID}, nil)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, q := range stored {
		assert.Equal(t, question.DifficultyEasy, q.Difficulty)
		assert.Equal(t, question.SourceImport, q.Source)
	}
	require.Len(t, emailsvc.SentMessages, 1)

	// a second run only finds duplicates
	fx.out.Reset()
	require.NoError(t, fx.cli.run(args))
	assert.True(t, strings.HasPrefix(fx.out.String(), "0 question(s) imported, 2 skipped as duplicates\n"))
}
