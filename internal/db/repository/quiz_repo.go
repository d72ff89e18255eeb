package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/quiz-widget/internal/db/queries"
	"github.com/gokatarajesh/quiz-widget/internal/quiz"
)

// ErrQuizNotFound is returned when no quiz matches the id and owner.
var ErrQuizNotFound = errors.New("quiz not found")

type quizStore interface {
	InsertQuiz(ctx context.Context, arg queries.InsertQuizParams) (queries.Quiz, error)
	GetQuiz(ctx context.Context, arg queries.GetQuizParams) (queries.Quiz, error)
	ListQuizzes(ctx context.Context, arg queries.ListQuizzesParams) ([]queries.Quiz, error)
	CountQuizzes(ctx context.Context, arg queries.CountQuizzesParams) (int64, error)
}

// QuizRecord is a saved quiz as the library serves it.
type QuizRecord struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Wisebase  string
	CreatedAt time.Time
	Data      quiz.QuizData
}

// QuizRepository persists saved quizzes per owner.
type QuizRepository struct {
	store quizStore
	newID func() uuid.UUID
}

func NewQuizRepository(store quizStore) *QuizRepository {
	return &QuizRepository{store: store, newID: uuid.New}
}

// Create stores data under owner and wisebase. The save type defaults to "all".
func (r *QuizRepository) Create(ctx context.Context, owner uuid.UUID, wisebase string, data quiz.QuizData) (QuizRecord, error) {
	saveType := data.Type
	if saveType == "" {
		saveType = quiz.SaveAll
	}
	data.ID = ""
	data.CreatedAt = ""
	data.Type = saveType

	raw, err := json.Marshal(data)
	if err != nil {
		return QuizRecord{}, fmt.Errorf("encode quiz: %w", err)
	}

	row, err := r.store.InsertQuiz(ctx, queries.InsertQuizParams{
		QuizID:     pgUUID(r.newID()),
		OwnerID:    pgUUID(owner),
		WisebaseID: wisebase,
		Title:      data.Title,
		SaveType:   saveType,
		Data:       raw,
	})
	if err != nil {
		return QuizRecord{}, fmt.Errorf("insert quiz: %w", err)
	}
	return toRecord(row)
}

// Get fetches one quiz owned by owner.
func (r *QuizRepository) Get(ctx context.Context, owner, id uuid.UUID) (QuizRecord, error) {
	row, err := r.store.GetQuiz(ctx, queries.GetQuizParams{QuizID: pgUUID(id), OwnerID: pgUUID(owner)})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return QuizRecord{}, ErrQuizNotFound
		}
		return QuizRecord{}, fmt.Errorf("get quiz: %w", err)
	}
	return toRecord(row)
}

// List returns one page of owner's quizzes, newest first, and the total count.
func (r *QuizRepository) List(ctx context.Context, owner uuid.UUID, wisebase string, limit, offset int) ([]QuizRecord, int64, error) {
	total, err := r.store.CountQuizzes(ctx, queries.CountQuizzesParams{OwnerID: pgUUID(owner), WisebaseID: wisebase})
	if err != nil {
		return nil, 0, fmt.Errorf("count quizzes: %w", err)
	}
	if total == 0 || int64(offset) >= total {
		return []QuizRecord{}, total, nil
	}

	rows, err := r.store.ListQuizzes(ctx, queries.ListQuizzesParams{
		OwnerID:    pgUUID(owner),
		WisebaseID: wisebase,
		Limit:      int32(limit),
		Offset:     int32(offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list quizzes: %w", err)
	}

	out := make([]QuizRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := toRecord(row)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, nil
}

func toRecord(row queries.Quiz) (QuizRecord, error) {
	var data quiz.QuizData
	if err := json.Unmarshal(row.Data, &data); err != nil {
		return QuizRecord{}, fmt.Errorf("decode quiz %x: %w", row.QuizID.Bytes, err)
	}
	id := uuid.UUID(row.QuizID.Bytes)
	rec := QuizRecord{
		ID:       id,
		OwnerID:  uuid.UUID(row.OwnerID.Bytes),
		Wisebase: row.WisebaseID,
	}
	if row.CreatedAt.Valid {
		rec.CreatedAt = row.CreatedAt.Time.UTC()
		data.CreatedAt = rec.CreatedAt.Format(time.RFC3339)
	}
	data.ID = id.String()
	data.Type = row.SaveType
	if data.Error == nil {
		data.Error = []int{}
	}
	rec.Data = data
	return rec, nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: [16]byte(id), Valid: true}
}
