package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)

	u := &User{
		ID:           "user-1",
		Username:     "alice",
		Email:        "a@b.com",
		PasswordHash: "hash",
		Skills:       []string{"Python", "Docker"},
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			u.ID,
			u.Username,
			u.Email,
			sqlmock.AnyArg(), // password_hash
			[]byte(`["Python","Docker"]`),
			u.CreatedAt,
			u.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "skills", "created_at", "updated_at"}).
		AddRow("user-1", "alice", "a@b.com", "hash", []byte(`["Go"]`), now, now)
	mock.ExpectQuery("SELECT id, username, email").
		WithArgs("a@b.com").
		WillReturnRows(rows)

	u, err := repo.GetByEmail(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u.ID != "user-1" || len(u.Skills) != 1 || u.Skills[0] != "Go" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, username, email").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "skills", "created_at", "updated_at"}))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGRepoUpdateSkills(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE users SET skills").
		WithArgs("user-1", []byte(`["Kubernetes"]`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateSkills(context.Background(), "user-1", []string{"Kubernetes"}); err != nil {
		t.Fatalf("UpdateSkills: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateSkillsUnknownUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE users SET skills").
		WithArgs("missing", []byte(`[]`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateSkills(context.Background(), "missing", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGRepoAppendResultsSingleStatement(t *testing.T) {
	repo, mock := newMockRepo(t)

	records := []ResultRecord{
		{Question: "q1", Answer: "a1", QuestionNumber: 0, Result: []byte(`{"score":1}`)},
		{Question: "q2", Answer: "a2", QuestionNumber: 1},
	}

	mock.ExpectExec("INSERT INTO interview_results").
		WithArgs(
			"user-1", "q1", "a1", 0, []byte(`{"score":1}`),
			"user-1", "q2", "a2", 1, []byte(`{}`),
		).
		WillReturnResult(sqlmock.NewResult(2, 2))

	if err := repo.AppendResults(context.Background(), "user-1", records); err != nil {
		t.Fatalf("AppendResults: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoAppendResultsEmptyNoop(t *testing.T) {
	repo, mock := newMockRepo(t)

	if err := repo.AppendResults(context.Background(), "user-1", nil); err != nil {
		t.Fatalf("AppendResults: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListResults(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "question", "answer", "question_number", "result", "created_at"}).
		AddRow(int64(2), "user-1", "q2", "a2", 1, []byte(`{}`), now).
		AddRow(int64(1), "user-1", "q1", "a1", 0, []byte(`{}`), now.Add(-time.Minute))
	mock.ExpectQuery("SELECT id, user_id, question").
		WithArgs("user-1", 50).
		WillReturnRows(rows)

	got, err := repo.ListResults(context.Background(), "user-1", 50)
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(got) != 2 || got[0].Question != "q2" {
		t.Fatalf("unexpected results: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
