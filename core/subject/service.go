package subject

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/simulado/core"
)

var (
	// errors
	ErrNotFound   = errors.New("subject not found")
	ErrNameExists = errors.New("a subject with this name already exists")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string, exec ...core.DBExecutor) error
		CreateSubject(ctx context.Context, subj Subject, exec ...core.DBExecutor) (Subject, error)
		CountSubjects(ctx context.Context, exec ...core.DBExecutor) (int, error)
		// QuerySubjects applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Subject.Name.
		QuerySubjects(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id string, exec ...core.DBExecutor) (Subject, error)
	}

	Service interface {
		CheckNameUniqueness(ctx context.Context, name string) error
		Create(ctx context.Context, ns NewSubject) (Subject, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Subject, error)
		GetByID(ctx context.Context, id string) (Subject, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckNameUniqueness(ctx context.Context, name string) error {
	if err := svc.repo.CheckNameUniqueness(ctx, name); err != nil {
		if err == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	count, err := svc.repo.CountSubjects(ctx)
	if err != nil {
		return Subject{}, errors.Wrap(err, "counting subjects")
	}

	color := ns.Color
	if color == "" {
		color = DefaultColor
	}
	now := NowFunc().UTC()
	subj := Subject{
		ID:          uuid.NewString(),
		Name:        ns.Name,
		Description: ns.Description,
		Color:       color,
		Position:    count,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateSubject(ctx, subj)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, core.CleanString(id))
}
