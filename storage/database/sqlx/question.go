package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/simulado/core"
	"github.com/trezcool/simulado/core/question"
)

const questionColumns = "id, subject_id, prompt, choices, correct_label, difficulty, source, imported_by, is_active, created_at, updated_at"

var questionOrderings = map[string]string{
	"created_at": "created_at",
	"difficulty": "difficulty",
	"prompt":     "prompt",
	"subject_id": "subject_id",
}

type questionRow struct {
	ID           string      `db:"id"`
	SubjectID    string      `db:"subject_id"`
	Prompt       string      `db:"prompt"`
	Choices      string      `db:"choices"` // JSON object {"a": ..., "e": ...}
	CorrectLabel string      `db:"correct_label"`
	Difficulty   string      `db:"difficulty"`
	Source       string      `db:"source"`
	ImportedBy   null.String `db:"imported_by"`
	IsActive     bool        `db:"is_active"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

type questionRepository struct {
	exec core.DBExecutor
}

var _ question.Repository = (*questionRepository)(nil) // interface compliance check

func NewQuestionRepository(exec core.DBExecutor) *questionRepository {
	return &questionRepository{exec: exec}
}

func (repo questionRepository) boil(q question.Question) (questionRow, error) {
	choices, err := json.Marshal(q.Choices)
	if err != nil {
		return questionRow{}, errors.Wrap(err, "encoding choices")
	}
	return questionRow{
		ID:           q.ID,
		SubjectID:    q.SubjectID,
		Prompt:       q.Prompt,
		Choices:      string(choices),
		CorrectLabel: string(q.CorrectLabel),
		Difficulty:   string(q.Difficulty),
		Source:       string(q.Source),
		ImportedBy:   null.NewString(q.ImportedBy, q.ImportedBy != ""),
		IsActive:     q.IsActive,
		CreatedAt:    q.CreatedAt.UTC(),
		UpdatedAt:    q.UpdatedAt.UTC(),
	}, nil
}

func (repo questionRepository) unboil(row questionRow) (question.Question, error) {
	var choices question.Choices
	if err := json.Unmarshal([]byte(row.Choices), &choices); err != nil {
		return question.Question{}, errors.Wrapf(err, "decoding choices of question %s", row.ID)
	}
	return question.Question{
		ID:           row.ID,
		SubjectID:    row.SubjectID,
		Prompt:       row.Prompt,
		Choices:      choices,
		CorrectLabel: question.Label(row.CorrectLabel),
		Difficulty:   question.Difficulty(row.Difficulty),
		Source:       question.Source(row.Source),
		ImportedBy:   row.ImportedBy.String,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}, nil
}

func (repo questionRepository) unboilSlice(rows []questionRow) ([]question.Question, error) {
	questions := make([]question.Question, 0, len(rows))
	for _, row := range rows {
		q, err := repo.unboil(row)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// trapNoRowsErr maps "no rows" err to question.ErrNotFound
func (repo questionRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return question.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// CreateQuestions inserts qs in order. Pass a transaction to make the batch atomic.
func (repo questionRepository) CreateQuestions(ctx context.Context, qs []question.Question, exec ...core.DBExecutor) ([]question.Question, error) {
	exe := getExec(repo.exec, exec)
	q := exe.Rebind(`INSERT INTO question (` + questionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	created := make([]question.Question, 0, len(qs))
	for _, qst := range qs {
		if qst.ID == "" {
			qst.ID = uuid.NewString()
		}
		row, err := repo.boil(qst)
		if err != nil {
			return nil, err
		}
		_, err = exe.ExecContext(ctx, q,
			row.ID, row.SubjectID, row.Prompt, row.Choices, row.CorrectLabel, row.Difficulty, row.Source,
			row.ImportedBy, row.IsActive, row.CreatedAt, row.UpdatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "inserting question")
		}
		qst.CreatedAt, qst.UpdatedAt = row.CreatedAt, row.UpdatedAt
		created = append(created, qst)
	}
	return created, nil
}

func (repo questionRepository) QueryQuestions(
	ctx context.Context,
	filter *question.QueryFilter,
	ordering []core.DBOrdering,
	exec ...core.DBExecutor,
) ([]question.Question, error) {
	var w where
	if filter != nil {
		if filter.SubjectID != "" {
			w.add("subject_id = ?", filter.SubjectID)
		}
		if filter.Difficulty != "" {
			w.add("difficulty = ?", filter.Difficulty)
		}
		if filter.Source != "" {
			w.add("source = ?", filter.Source)
		}
		if filter.Search != "" {
			w.add("LOWER(prompt) LIKE ?", likePattern(filter.Search))
		}
		if filter.ActiveOnly {
			w.add("is_active = ?", true)
		}
	}

	exe := getExec(repo.exec, exec)
	q := exe.Rebind(`SELECT ` + questionColumns + ` FROM question` + w.String() + orderBy(ordering, questionOrderings, "created_at DESC, id"))
	var rows []questionRow
	if err := exe.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	return repo.unboilSlice(rows)
}

func (repo questionRepository) GetQuestionByID(ctx context.Context, id string, exec ...core.DBExecutor) (question.Question, error) {
	if _, err := uuid.Parse(id); err != nil {
		return question.Question{}, question.ErrNotFound
	}
	exe := getExec(repo.exec, exec)
	var row questionRow
	q := exe.Rebind(`SELECT ` + questionColumns + ` FROM question WHERE id = ?`)
	if err := exe.GetContext(ctx, &row, q, id); err != nil {
		return question.Question{}, repo.trapNoRowsErr(err, "finding question by ID")
	}
	return repo.unboil(row)
}

func (repo questionRepository) ListPrompts(ctx context.Context, subjectID string, exec ...core.DBExecutor) ([]string, error) {
	exe := getExec(repo.exec, exec)
	var prompts []string
	q := exe.Rebind(`SELECT prompt FROM question WHERE subject_id = ? ORDER BY created_at`)
	if err := exe.SelectContext(ctx, &prompts, q, subjectID); err != nil {
		return nil, errors.Wrap(err, "listing prompts")
	}
	return prompts, nil
}

func (repo questionRepository) DeleteQuestionsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}

	q, args, err := sqlx.In(`DELETE FROM question WHERE id IN (?)`, valid)
	if err != nil {
		return 0, errors.Wrap(err, "building delete query")
	}
	exe := getExec(repo.exec, exec)
	res, err := exe.ExecContext(ctx, exe.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting questions")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deleted questions")
	}
	return int(cnt), nil
}
