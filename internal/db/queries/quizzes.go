// Package queries holds the SQL used by the quiz library.
package queries

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Quiz is a row of the quizzes table.
type Quiz struct {
	QuizID     pgtype.UUID
	OwnerID    pgtype.UUID
	WisebaseID string
	Title      string
	SaveType   string
	Data       []byte
	CreatedAt  pgtype.Timestamptz
}

const quizColumns = `quiz_id, owner_id, wisebase_id, title, save_type, data, created_at`

func scanQuiz(row pgx.Row) (Quiz, error) {
	var q Quiz
	err := row.Scan(&q.QuizID, &q.OwnerID, &q.WisebaseID, &q.Title, &q.SaveType, &q.Data, &q.CreatedAt)
	return q, err
}

const insertQuiz = `
INSERT INTO quizzes (quiz_id, owner_id, wisebase_id, title, save_type, data)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + quizColumns

type InsertQuizParams struct {
	QuizID     pgtype.UUID
	OwnerID    pgtype.UUID
	WisebaseID string
	Title      string
	SaveType   string
	Data       []byte
}

func (q *Queries) InsertQuiz(ctx context.Context, arg InsertQuizParams) (Quiz, error) {
	row := q.db.QueryRow(ctx, insertQuiz,
		arg.QuizID, arg.OwnerID, arg.WisebaseID, arg.Title, arg.SaveType, arg.Data)
	return scanQuiz(row)
}

const getQuiz = `
SELECT ` + quizColumns + `
FROM quizzes
WHERE quiz_id = $1 AND owner_id = $2`

type GetQuizParams struct {
	QuizID  pgtype.UUID
	OwnerID pgtype.UUID
}

func (q *Queries) GetQuiz(ctx context.Context, arg GetQuizParams) (Quiz, error) {
	return scanQuiz(q.db.QueryRow(ctx, getQuiz, arg.QuizID, arg.OwnerID))
}

const listQuizzes = `
SELECT ` + quizColumns + `
FROM quizzes
WHERE owner_id = $1 AND wisebase_id = $2
ORDER BY created_at DESC, quiz_id
LIMIT $3 OFFSET $4`

type ListQuizzesParams struct {
	OwnerID    pgtype.UUID
	WisebaseID string
	Limit      int32
	Offset     int32
}

func (q *Queries) ListQuizzes(ctx context.Context, arg ListQuizzesParams) ([]Quiz, error) {
	rows, err := q.db.Query(ctx, listQuizzes, arg.OwnerID, arg.WisebaseID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Quiz
	for rows.Next() {
		item, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const countQuizzes = `
SELECT count(*) FROM quizzes
WHERE owner_id = $1 AND wisebase_id = $2`

type CountQuizzesParams struct {
	OwnerID    pgtype.UUID
	WisebaseID string
}

func (q *Queries) CountQuizzes(ctx context.Context, arg CountQuizzesParams) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countQuizzes, arg.OwnerID, arg.WisebaseID).Scan(&n)
	return n, err
}
