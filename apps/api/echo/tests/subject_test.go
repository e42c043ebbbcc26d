package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/simulado/core"
	"github.com/trezcool/simulado/core/subject"
	testutil "github.com/trezcool/simulado/tests"
)

func Test_subjectApi_query(t *testing.T) {
	fx := setup(t)

	math := testutil.CreateSubject(t, fx.subjRepo, "Matemática", 0, true)
	bio := testutil.CreateSubject(t, fx.subjRepo, "Biologia", 1, true)
	chem := testutil.CreateSubject(t, fx.subjRepo, "Química", 2, false)

	token := getToken(t, fx.conf, core.Operator{ID: "student-1"}, false)

	runHTTPTests(t, fx, []httpTest{
		{name: "Auth required", path: "/v1/subjects", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Get all", path: "/v1/subjects", token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, math, bio, chem),
		},
		{name: "search (unknown)", path: "/v1/subjects?search=lol", token: token, wantCode: http.StatusOK, wantData: marchallList(t)},
		{name: "search=BIO", path: "/v1/subjects?search=BIO", token: token, wantCode: http.StatusOK, wantData: marchallList(t, bio)},
		{
			name: "is_active=true", path: "/v1/subjects?is_active=true", token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, math, bio),
		},
		{name: "is_active=false", path: "/v1/subjects?is_active=false", token: token, wantCode: http.StatusOK, wantData: marchallList(t, chem)},
		{
			name: "order by -position", path: "/v1/subjects?ordering=-position", token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, chem, bio, math),
		},
	})
}

func Test_subjectApi_create(t *testing.T) {
	fx := setup(t)
	testutil.CreateSubject(t, fx.subjRepo, "Matemática", 0, true)

	adminToken := getToken(t, fx.conf, core.Operator{ID: "admin-1", Name: "Ana"}, true)
	body := func(name, color string) []byte {
		return marchallObj(t, subject.NewSubject{Name: name, Color: color})
	}

	runHTTPTests(t, fx, []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: "/v1/subjects", body: body("Física", ""),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Admin required", method: http.MethodPost, path: "/v1/subjects", body: body("Física", ""),
			token:    getToken(t, fx.conf, core.Operator{ID: "student-1"}, false),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "blank name", method: http.MethodPost, path: "/v1/subjects", body: body("   ", ""), token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "name taken", method: http.MethodPost, path: "/v1/subjects", body: body(" matemática ", ""), token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": subject.ErrNameExists.Error()}),
		},
		{
			name: "bad color", method: http.MethodPost, path: "/v1/subjects", body: body("Física", "blue"), token: adminToken,
			wantCode: http.StatusBadRequest,
		},
	})

	t.Run("created", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/subjects", adminToken, body(" Física ", ""))
		fx.serve(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got subject.Subject
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, "Física", got.Name)
		assert.Equal(t, subject.DefaultColor, got.Color)
		assert.Equal(t, 1, got.Position)
		assert.True(t, got.IsActive)
	})
}
