package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new user.
func (r *PGRepo) Create(ctx context.Context, u *User) error {
	const query = `
INSERT INTO users (id, username, email, password_hash, skills, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	skills, err := marshalSkills(u.Skills)
	if err != nil {
		return err
	}
	now := u.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
		u.CreatedAt = now
		u.UpdatedAt = now
	}
	_, err = r.DB.ExecContext(ctx, query, u.ID, u.Username, u.Email, nullString(u.PasswordHash), skills, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

// GetByEmail returns the user with the given email.
func (r *PGRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
SELECT id, username, email, password_hash, skills, created_at, updated_at
FROM users
WHERE email = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, email))
}

// GetByID returns the user with the given id.
func (r *PGRepo) GetByID(ctx context.Context, id string) (*User, error) {
	const query = `
SELECT id, username, email, password_hash, skills, created_at, updated_at
FROM users
WHERE id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

// Upsert inserts the user or refreshes the username when the email already exists.
func (r *PGRepo) Upsert(ctx context.Context, u *User) (*User, error) {
	const query = `
INSERT INTO users (id, username, email, password_hash, skills, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
ON CONFLICT (email) DO UPDATE SET username = EXCLUDED.username, updated_at = EXCLUDED.updated_at
RETURNING id, username, email, password_hash, skills, created_at, updated_at`

	skills, err := marshalSkills(u.Skills)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return r.scanOne(r.DB.QueryRowContext(ctx, query, u.ID, u.Username, u.Email, nullString(u.PasswordHash), skills, now))
}

// UpdateSkills replaces a user's skill list.
func (r *PGRepo) UpdateSkills(ctx context.Context, userID string, skills []string) error {
	const query = `
UPDATE users SET skills = $2, updated_at = $3 WHERE id = $1`

	encoded, err := marshalSkills(skills)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, userID, encoded, time.Now().UTC())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendResults stores the records in one statement so a session flush is all or nothing.
func (r *PGRepo) AppendResults(ctx context.Context, userID string, records []ResultRecord) error {
	if len(records) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO interview_results (user_id, question, answer, question_number, result) VALUES ")
	args := make([]any, 0, len(records)*5)
	for i, rec := range records {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 5
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5)
		result := rec.Result
		if len(result) == 0 {
			result = []byte("{}")
		}
		args = append(args, userID, rec.Question, rec.Answer, rec.QuestionNumber, result)
	}

	_, err := r.DB.ExecContext(ctx, sb.String(), args...)
	return err
}

// ListResults returns the user's answered questions, newest first.
func (r *PGRepo) ListResults(ctx context.Context, userID string, limit int) ([]ResultRecord, error) {
	const query = `
SELECT id, user_id, question, answer, question_number, result, created_at
FROM interview_results
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`

	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ResultRecord
	for rows.Next() {
		var rec ResultRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Question, &rec.Answer, &rec.QuestionNumber, &rec.Result, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *PGRepo) scanOne(row *sql.Row) (*User, error) {
	var u User
	var passwordHash sql.NullString
	var skills []byte
	err := row.Scan(&u.ID, &u.Username, &u.Email, &passwordHash, &skills, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.PasswordHash = passwordHash.String
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &u.Skills); err != nil {
			return nil, fmt.Errorf("decode skills: %w", err)
		}
	}
	return &u, nil
}

func marshalSkills(skills []string) ([]byte, error) {
	if skills == nil {
		skills = []string{}
	}
	return json.Marshal(skills)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
