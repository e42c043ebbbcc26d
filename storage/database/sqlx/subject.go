package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/simulado/core"
	"github.com/trezcool/simulado/core/subject"
)

const subjectColumns = "id, name, description, color, position, is_active, created_at, updated_at"

var subjectOrderings = map[string]string{
	"name":       "name",
	"position":   "position",
	"created_at": "created_at",
}

type subjectRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	Description null.String `db:"description"`
	Color       null.String `db:"color"`
	Position    int         `db:"position"`
	IsActive    bool        `db:"is_active"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

type subjectRepository struct {
	exec core.DBExecutor
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(exec core.DBExecutor) *subjectRepository {
	return &subjectRepository{exec: exec}
}

func (repo subjectRepository) boil(subj subject.Subject) subjectRow {
	return subjectRow{
		ID:          subj.ID,
		Name:        subj.Name,
		Description: null.NewString(subj.Description, subj.Description != ""),
		Color:       null.NewString(subj.Color, subj.Color != ""),
		Position:    subj.Position,
		IsActive:    subj.IsActive,
		CreatedAt:   subj.CreatedAt.UTC(),
		UpdatedAt:   subj.UpdatedAt.UTC(),
	}
}

func (repo subjectRepository) unboil(row subjectRow) subject.Subject {
	return subject.Subject{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description.String,
		Color:       row.Color.String,
		Position:    row.Position,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

// trapNoRowsErr maps "no rows" err to subject.ErrNotFound
func (repo subjectRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return subject.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo subjectRepository) CheckNameUniqueness(ctx context.Context, name string, exec ...core.DBExecutor) error {
	exe := getExec(repo.exec, exec)
	var count int
	q := exe.Rebind(`SELECT COUNT(*) FROM subject WHERE LOWER(name) = LOWER(?)`)
	if err := exe.GetContext(ctx, &count, q, name); err != nil {
		return errors.Wrap(err, "checking subject name uniqueness")
	}
	if count > 0 {
		return subject.ErrNameExists
	}
	return nil
}

func (repo subjectRepository) CreateSubject(ctx context.Context, subj subject.Subject, exec ...core.DBExecutor) (subject.Subject, error) {
	if subj.ID == "" {
		subj.ID = uuid.NewString()
	}
	row := repo.boil(subj)
	exe := getExec(repo.exec, exec)
	q := exe.Rebind(`INSERT INTO subject (` + subjectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := exe.ExecContext(ctx, q,
		row.ID, row.Name, row.Description, row.Color, row.Position, row.IsActive, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return repo.unboil(row), nil
}

func (repo subjectRepository) CountSubjects(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	var count int
	if err := getExec(repo.exec, exec).GetContext(ctx, &count, `SELECT COUNT(*) FROM subject`); err != nil {
		return 0, errors.Wrap(err, "counting subjects")
	}
	return count, nil
}

func (repo subjectRepository) QuerySubjects(
	ctx context.Context,
	filter *subject.QueryFilter,
	ordering []core.DBOrdering,
	exec ...core.DBExecutor,
) ([]subject.Subject, error) {
	var w where
	if filter != nil {
		if filter.Search != "" {
			w.add("LOWER(name) LIKE ?", likePattern(filter.Search))
		}
		switch filter.IsActive {
		case "true":
			w.add("is_active = ?", true)
		case "false":
			w.add("is_active = ?", false)
		}
	}

	exe := getExec(repo.exec, exec)
	q := exe.Rebind(`SELECT ` + subjectColumns + ` FROM subject` + w.String() + orderBy(ordering, subjectOrderings, "position, name"))
	var rows []subjectRow
	if err := exe.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}

	subjects := make([]subject.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, repo.unboil(row))
	}
	return subjects, nil
}

func (repo subjectRepository) GetSubjectByID(ctx context.Context, id string, exec ...core.DBExecutor) (subject.Subject, error) {
	if _, err := uuid.Parse(id); err != nil {
		return subject.Subject{}, subject.ErrNotFound
	}
	exe := getExec(repo.exec, exec)
	var row subjectRow
	q := exe.Rebind(`SELECT ` + subjectColumns + ` FROM subject WHERE id = ?`)
	if err := exe.GetContext(ctx, &row, q, id); err != nil {
		return subject.Subject{}, repo.trapNoRowsErr(err, "finding subject by ID")
	}
	return repo.unboil(row), nil
}
