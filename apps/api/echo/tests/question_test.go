package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/simulado/core"
	"github.com/trezcool/simulado/core/question"
	emailsvc "github.com/trezcool/simulado/services/email"
	testutil "github.com/trezcool/simulado/tests"
)

const twoQuestions = "<div class='questao'><p><strong>1)</strong> 2+2=?</p><ul><li>A) 3</li><li>B) 4</li>" +
	"<li>C) 5</li><li>D) 6</li><li>E) 7</li></ul><p><em>Resposta: B</em></p></div>" +
	"<div class='questao'><p><strong>2)</strong> 3+3=?</p><ul><li>A) 5</li><li>B) 6</li>" +
	"<li>C) 7</li><li>D) 8</li><li>E) 9</li></ul><p><em>Gabarito: b</em></p></div>"

func Test_questionApi_analyze(t *testing.T) {
	fx := setup(t)
	subj := testutil.CreateSubject(t, fx.subjRepo, "Matemática", 0, true)
	adminToken := getToken(t, fx.conf, core.Operator{ID: "admin-1"}, true)

	body := func(html, subjectID string) []byte {
		return marchallObj(t, question.AnalyzeRequest{HTMLContent: html, SubjectID: subjectID})
	}
	path := "/v1/questions/analyze"

	runHTTPTests(t, fx, []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: path, body: body(twoQuestions, subj.ID),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Admin required", method: http.MethodPost, path: path, body: body(twoQuestions, subj.ID),
			token:    getToken(t, fx.conf, core.Operator{ID: "student-1"}, false),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "missing fields", method: http.MethodPost, path: path, body: []byte(`{}`), token: adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"html_content": "this field is required",
				"subject_id":   "this field is required",
			}),
		},
		{
			name: "blank content", method: http.MethodPost, path: path, body: body(" \n ", subj.ID), token: adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"html_content": "this field cannot be blank"}),
		},
		{
			name: "content too large", method: http.MethodPost, path: path, token: adminToken,
			body:     body(strings.Repeat("x", fx.conf.Importer.MaxBlobBytes+1), subj.ID),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"html_content": "content exceeds 65536 bytes"}),
		},
		{
			name: "nothing recognized", method: http.MethodPost, path: path, body: body("<p>só texto</p>", subj.ID), token: adminToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, question.AnalyzeResult{Questions: []question.Extracted{}}),
		},
		{
			name: "two questions", method: http.MethodPost, path: path, body: body(twoQuestions, subj.ID), token: adminToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, question.AnalyzeResult{
				Questions: []question.Extracted{
					{Prompt: "2+2=?", Choices: question.Choices{A: "3", B: "4", C: "5", D: "6", E: "7"}, CorrectLabel: question.LabelB},
					{Prompt: "3+3=?", Choices: question.Choices{A: "5", B: "6", C: "7", D: "8", E: "9"}, CorrectLabel: question.LabelB},
				},
				Count: 2,
			}),
		},
	})
}

func Test_questionApi_import(t *testing.T) {
	fx := setup(t)
	subj := testutil.CreateSubject(t, fx.subjRepo, "Matemática", 0, true)
	existing := testutil.CreateQuestion(t, fx.qRepo, subj.ID, "Quanto é 2+2?", question.DifficultyEasy)

	op := core.Operator{ID: "admin-1", Name: "Ana", Email: "ana@test.br"}
	adminToken := getToken(t, fx.conf, op, true)
	path := "/v1/questions/import"

	valid := question.Extracted{
		Prompt:       "3+3=?",
		Choices:      question.Choices{A: "5", B: "6", C: "7", D: "8", E: "9"},
		CorrectLabel: question.LabelB,
	}
	incomplete := valid
	incomplete.Choices.E = ""

	runHTTPTests(t, fx, []httpTest{
		{
			name: "unknown subject", method: http.MethodPost, path: path, token: adminToken,
			body: marchallObj(t, question.ImportRequest{
				SubjectID: "00000000-0000-0000-0000-000000000000",
				Questions: []question.Extracted{valid},
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"subject_id": "subject not found"}),
		},
		{
			name: "incomplete question", method: http.MethodPost, path: path, token: adminToken,
			body: marchallObj(t, question.ImportRequest{
				SubjectID:  subj.ID,
				Difficulty: "impossible",
				Questions:  []question.Extracted{valid, incomplete},
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"difficulty":           "difficulty must be one of facil, medio or dificil",
				"questions[1].choices": "all five choices (a to e) are required",
			}),
		},
	})

	t.Run("imported", func(t *testing.T) {
		dup := valid
		dup.Prompt = " quanto e 2+2? "
		req, rec := newAuthRequest(http.MethodPost, path, adminToken, marchallObj(t, question.ImportRequest{
			SubjectID:  subj.ID,
			Difficulty: "Dificil",
			Questions:  []question.Extracted{dup, valid},
		}))
		fx.serve(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var res question.ImportResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, 1, res.Count)
		assert.Equal(t, 1, res.Skipped)
		assert.Equal(t, []string{"quanto e 2+2?"}, res.SkippedPrompts)
		require.Len(t, res.Questions, 1)

		got := res.Questions[0]
		assert.Equal(t, valid.Prompt, got.Prompt)
		assert.Equal(t, valid.Choices, got.Choices)
		assert.Equal(t, question.DifficultyHard, got.Difficulty)
		assert.Equal(t, question.SourceImport, got.Source)
		assert.Equal(t, op.ID, got.ImportedBy)

		stored, err := fx.qRepo.GetQuestionByID(req.Context(), got.ID)
		require.NoError(t, err)
		assert.Equal(t, got.Prompt, stored.Prompt)
		assert.NotEqual(t, existing.ID, stored.ID)

		require.Len(t, emailsvc.SentMessages, 1)
		assert.Equal(t, op.Email, emailsvc.SentMessages[0].To[0].Address)
	})
}

func Test_questionApi_query(t *testing.T) {
	fx := setup(t)
	math := testutil.CreateSubject(t, fx.subjRepo, "Matemática", 0, true)
	bio := testutil.CreateSubject(t, fx.subjRepo, "Biologia", 1, true)

	now := time.Now()
	q1 := testutil.CreateQuestion(t, fx.qRepo, math.ID, "Quanto é 2+2?", question.DifficultyEasy, now)
	q2 := testutil.CreateQuestion(t, fx.qRepo, math.ID, "Quanto é 7x8?", question.DifficultyHard, now.Add(time.Minute))
	q3 := testutil.CreateQuestion(t, fx.qRepo, bio.ID, "O que é a fotossíntese?", question.DifficultyMedium, now.Add(2*time.Minute))

	adminToken := getToken(t, fx.conf, core.Operator{ID: "admin-1"}, true)
	path := func(params map[string]string) string {
		v := make(url.Values)
		for k, p := range params {
			v.Set(k, p)
		}
		return "/v1/questions?" + v.Encode()
	}

	runHTTPTests(t, fx, []httpTest{
		{name: "Auth required", path: "/v1/questions", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/questions", token: getToken(t, fx.conf, core.Operator{ID: "student-1"}, false),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "Get all", path: "/v1/questions", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, q3, q2, q1)},
		{
			name: "subject_id", path: path(map[string]string{"subject_id": math.ID}), token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, q2, q1),
		},
		{
			name: "difficulty", path: path(map[string]string{"difficulty": "DIFICIL"}), token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, q2),
		},
		{
			name: "search", path: path(map[string]string{"search": "quanto"}), token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, q2, q1),
		},
		{
			name: "source (none imported)", path: path(map[string]string{"source": "import"}), token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t),
		},
		{
			name: "order by created_at", path: path(map[string]string{"ordering": "created_at"}), token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, q1, q2, q3),
		},
		{name: "retrieve", path: "/v1/questions/" + q3.ID, token: adminToken, wantCode: http.StatusOK, wantData: marchallObj(t, q3)},
		{
			name: "retrieve (unknown)", path: "/v1/questions/00000000-0000-0000-0000-000000000000", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
	})
}

func Test_questionApi_create(t *testing.T) {
	fx := setup(t)
	subj := testutil.CreateSubject(t, fx.subjRepo, "Matemática", 0, true)
	adminToken := getToken(t, fx.conf, core.Operator{ID: "admin-1"}, true)

	nq := question.NewQuestion{
		SubjectID:    subj.ID,
		Prompt:       "Quanto é 9x9?",
		Choices:      question.Choices{A: "18", B: "81", C: "99", D: "72", E: "90"},
		CorrectLabel: "B",
	}

	bad := nq
	bad.CorrectLabel = "z"
	runHTTPTests(t, fx, []httpTest{
		{
			name: "bad label", method: http.MethodPost, path: "/v1/questions", body: marchallObj(t, bad), token: adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"correct_label": "label must be one of a, b, c, d or e"}),
		},
	})

	req, rec := newAuthRequest(http.MethodPost, "/v1/questions", adminToken, marchallObj(t, nq))
	fx.serve(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got question.Question
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, question.LabelB, got.CorrectLabel)
	assert.Equal(t, question.DifficultyMedium, got.Difficulty)
	assert.Equal(t, question.SourceManual, got.Source)
	assert.Empty(t, got.ImportedBy)
}

func Test_questionApi_destroy(t *testing.T) {
	fx := setup(t)
	subj := testutil.CreateSubject(t, fx.subjRepo, "Matemática", 0, true)
	q1 := testutil.CreateQuestion(t, fx.qRepo, subj.ID, "Quanto é 2+2?", question.DifficultyEasy)
	q2 := testutil.CreateQuestion(t, fx.qRepo, subj.ID, "Quanto é 3+3?", question.DifficultyEasy)
	q3 := testutil.CreateQuestion(t, fx.qRepo, subj.ID, "Quanto é 4+4?", question.DifficultyEasy)

	adminToken := getToken(t, fx.conf, core.Operator{ID: "admin-1"}, true)

	runHTTPTests(t, fx, []httpTest{
		{name: "destroy", method: http.MethodDelete, path: "/v1/questions/" + q1.ID, token: adminToken, wantCode: http.StatusNoContent},
		{
			name: "destroy (gone)", method: http.MethodDelete, path: "/v1/questions/" + q1.ID, token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "destroy multiple", method: http.MethodDelete, token: adminToken,
			path:     "/v1/questions?id=" + q2.ID + "&id=" + q3.ID + "&id=nope",
			wantCode: http.StatusOK, wantData: []byte(`{"deleted": 2}`),
		},
		{name: "empty bank", path: "/v1/questions", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t)},
	})
}
