package subject_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/simulado/core"
	"github.com/trezcool/simulado/core/subject"
	sqlxrepos "github.com/trezcool/simulado/storage/database/sqlx"
	testutil "github.com/trezcool/simulado/tests"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	repo := sqlxrepos.NewSubjectRepository(testutil.PrepareDB(t))
	svc := subject.NewService(repo)

	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	math := testutil.CreateSubject(t, repo, "Matemática", 0, true)

	t.Run("create", func(t *testing.T) {
		ns := subject.NewSubject{Name: "  Biologia ", Color: "#22AA44"}
		require.NoError(t, ns.Validate(ctx, validate, svc))

		subj, err := svc.Create(ctx, ns)
		require.NoError(t, err)
		assert.Equal(t, "Biologia", subj.Name)
		assert.Equal(t, "#22aa44", subj.Color)
		assert.Equal(t, 1, subj.Position)

		got, err := svc.GetByID(ctx, " "+subj.ID+" ")
		require.NoError(t, err)
		assert.Equal(t, subj, got)
	})

	t.Run("name taken", func(t *testing.T) {
		ns := subject.NewSubject{Name: "matemática"}
		err := ns.Validate(ctx, validate, svc)
		require.True(t, core.IsValidationError(err))
		assert.Equal(t, subject.ErrNameExists.Error(), err.Error())
	})

	t.Run("query", func(t *testing.T) {
		found, err := svc.Query(ctx, &subject.QueryFilter{Search: "MAT"}, nil)
		require.NoError(t, err)
		assert.Equal(t, []subject.Subject{math}, found)

		found, err = svc.Query(ctx, &subject.QueryFilter{IsActive: "false"}, nil)
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.Equal(t, subject.ErrNotFound, err)
	})
}
