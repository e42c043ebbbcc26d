package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/trezcool/simulado/core/question"
	"github.com/trezcool/simulado/core/subject"
	"github.com/trezcool/simulado/storage/database"
)

var dbCount int64

// PrepareDB returns a fresh, migrated in-memory database closed at the end of the test.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	name := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&dbCount, 1))
	db, err := sqlx.Open("sqlite3", name)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	// a single connection keeps the in-memory database alive and serializes access
	db.SetMaxOpenConns(1)

	if err = database.Migrate(db.DB, "sqlite3"); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func CreateSubject(t *testing.T, repo subject.Repository, name string, position int, isActive bool) subject.Subject {
	t.Helper()

	now := time.Now().UTC()
	subj, err := repo.CreateSubject(context.Background(), subject.Subject{
		Name:      name,
		Color:     subject.DefaultColor,
		Position:  position,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return subj
}

func CreateQuestion(
	t *testing.T,
	repo question.Repository,
	subjectID, prompt string,
	difficulty question.Difficulty,
	createdAt ...time.Time,
) question.Question {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	created, err := repo.CreateQuestions(context.Background(), []question.Question{{
		SubjectID:    subjectID,
		Prompt:       prompt,
		Choices:      question.Choices{A: "1", B: "2", C: "3", D: "4", E: "5"},
		CorrectLabel: question.LabelA,
		Difficulty:   difficulty,
		Source:       question.SourceManual,
		IsActive:     true,
		CreatedAt:    tstamp,
		UpdatedAt:    tstamp,
	}})
	if err != nil {
		t.Fatalf("CreateQuestion() failed: %v", err)
	}
	return created[0]
}
