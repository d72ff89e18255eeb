package library

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-widget/internal/db/repository"
	"github.com/gokatarajesh/quiz-widget/internal/quiz"
)

type memStore struct {
	mu      sync.Mutex
	records []repository.QuizRecord
	lists   int
	failErr error
}

func (m *memStore) Create(_ context.Context, owner uuid.UUID, wisebase string, data quiz.QuizData) (repository.QuizRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return repository.QuizRecord{}, m.failErr
	}
	rec := repository.QuizRecord{
		ID:        uuid.New(),
		OwnerID:   owner,
		Wisebase:  wisebase,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, len(m.records), 0, time.UTC),
		Data:      data,
	}
	if rec.Data.Type == "" {
		rec.Data.Type = quiz.SaveAll
	}
	rec.Data.ID = rec.ID.String()
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *memStore) Get(_ context.Context, owner, id uuid.UUID) (repository.QuizRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.ID == id && rec.OwnerID == owner {
			return rec, nil
		}
	}
	return repository.QuizRecord{}, repository.ErrQuizNotFound
}

func (m *memStore) List(_ context.Context, owner uuid.UUID, wisebase string, limit, offset int) ([]repository.QuizRecord, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.failErr != nil {
		return nil, 0, m.failErr
	}
	var mine []repository.QuizRecord
	for _, rec := range m.records {
		if rec.OwnerID == owner && rec.Wisebase == wisebase {
			mine = append(mine, rec)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })
	total := int64(len(mine))
	if offset >= len(mine) {
		return []repository.QuizRecord{}, total, nil
	}
	end := offset + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[offset:end], total, nil
}

type memCache struct {
	mu       sync.Mutex
	pages    map[PageKey]Page
	versions map[uuid.UUID]int64
}

func newMemCache() *memCache {
	return &memCache{pages: map[PageKey]Page{}, versions: map[uuid.UUID]int64{}}
}

func (c *memCache) Version(_ context.Context, owner uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[owner], nil
}

func (c *memCache) Get(_ context.Context, key PageKey) (*Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pages[key]; ok {
		return &p, nil
	}
	return nil, nil
}

func (c *memCache) Set(_ context.Context, key PageKey, page Page) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[key] = page
	return nil
}

func (c *memCache) Invalidate(_ context.Context, owner uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[owner]++
	return nil
}

func validQuiz(title string) quiz.QuizData {
	opts := make([]quiz.QuestionOption, quiz.OptionsPerQuestion)
	for i := range opts {
		opts[i] = quiz.QuestionOption{Text: string(rune('A' + i)), IsCorrect: i == 2}
	}
	return quiz.QuizData{
		Title:     title,
		Questions: []quiz.Question{{ID: "q1", Question: "?", Options: opts}},
		Error:     []int{},
	}
}

func TestServiceSaveThenGet(t *testing.T) {
	svc := NewService(&memStore{}, nil, ServiceOptions{}, zerolog.Nop())
	owner := uuid.New()

	item, err := svc.Save(context.Background(), owner, "", validQuiz("Go basics"))
	require.NoError(t, err)

	id, err := uuid.Parse(item.ID)
	require.NoError(t, err)
	got, err := svc.Get(context.Background(), owner, id)
	require.NoError(t, err)
	assert.Equal(t, "Go basics", got.Data.Title)
	assert.Equal(t, quiz.SaveAll, got.Data.Type)

	_, err = svc.Get(context.Background(), uuid.New(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceSaveRejectsInvalidQuiz(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, nil, ServiceOptions{}, zerolog.Nop())

	bad := validQuiz("x")
	bad.Questions[0].Options = bad.Questions[0].Options[:2]
	_, err := svc.Save(context.Background(), uuid.New(), "", bad)
	assert.ErrorIs(t, err, ErrInvalidQuiz)
	assert.ErrorIs(t, err, quiz.ErrOptionCount)

	typed := validQuiz("x")
	typed.Type = "some"
	_, err = svc.Save(context.Background(), uuid.New(), "", typed)
	assert.ErrorIs(t, err, quiz.ErrInvalidSaveType)
	assert.Empty(t, store.records)
}

func TestServiceSaveAcceptsEmptyIncorrectSave(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, nil, ServiceOptions{}, zerolog.Nop())

	empty := validQuiz("all correct")
	empty.Questions = []quiz.Question{}
	empty.Type = quiz.SaveIncorrect
	_, err := svc.Save(context.Background(), uuid.New(), "", empty)
	require.NoError(t, err)
	assert.Len(t, store.records, 1)

	empty.Title = ""
	_, err = svc.Save(context.Background(), uuid.New(), "", empty)
	assert.ErrorIs(t, err, quiz.ErrMissingTitle)
}

func TestServiceListPagesNewestFirst(t *testing.T) {
	svc := NewService(&memStore{}, nil, ServiceOptions{}, zerolog.Nop())
	owner := uuid.New()
	for _, title := range []string{"one", "two", "three"} {
		_, err := svc.Save(context.Background(), owner, "inbox", validQuiz(title))
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), owner, "inbox", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "three", page.Items[0].Data.Title)
	assert.Equal(t, page.Items[0].ID, page.Items[0].Data.ID)

	page, err = svc.List(context.Background(), owner, "inbox", 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "one", page.Items[0].Data.Title)

	page, err = svc.List(context.Background(), owner, "other", 1, 2)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.NotNil(t, page.Items)
}

func TestServiceListClampsPageSize(t *testing.T) {
	cache := newMemCache()
	svc := NewService(&memStore{}, cache, ServiceOptions{MaxPageSize: 50}, zerolog.Nop())
	owner := uuid.New()

	_, err := svc.List(context.Background(), owner, "", 0, 500)
	require.NoError(t, err)
	_, err = svc.List(context.Background(), owner, "", -3, 0)
	require.NoError(t, err)

	assert.Contains(t, cache.pages, PageKey{Owner: owner, Wisebase: "inbox", Page: 1, PageSize: 50})
	assert.Contains(t, cache.pages, PageKey{Owner: owner, Wisebase: "inbox", Page: 1, PageSize: 20})
}

func TestServiceListCacheHitAndInvalidation(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, newMemCache(), ServiceOptions{}, zerolog.Nop())
	owner := uuid.New()
	ctx := context.Background()

	_, err := svc.Save(ctx, owner, "", validQuiz("one"))
	require.NoError(t, err)

	first, err := svc.List(ctx, owner, "", 1, 20)
	require.NoError(t, err)
	second, err := svc.List(ctx, owner, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.lists)

	_, err = svc.Save(ctx, owner, "", validQuiz("two"))
	require.NoError(t, err)

	third, err := svc.List(ctx, owner, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Total)
	assert.Equal(t, 2, store.lists)
}

func TestServiceListStoreError(t *testing.T) {
	boom := errors.New("pool closed")
	svc := NewService(&memStore{failErr: boom}, newMemCache(), ServiceOptions{}, zerolog.Nop())

	_, err := svc.List(context.Background(), uuid.New(), "", 1, 20)
	assert.ErrorIs(t, err, boom)
}

func TestPageKeyIncludesVersion(t *testing.T) {
	owner := uuid.MustParse("00000000-0000-0000-0000-000000000007")
	key := PageKey{Owner: owner, Wisebase: "inbox", Page: 2, PageSize: 20, Version: 3}
	assert.Equal(t, "quizlib:page:00000000-0000-0000-0000-000000000007:inbox:v3:2:20", key.String())
	assert.Equal(t, "quizlib:ver:00000000-0000-0000-0000-000000000007", versionKey(owner))
}
