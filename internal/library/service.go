package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-widget/internal/db/repository"
	"github.com/gokatarajesh/quiz-widget/internal/quiz"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	defaultWisebase = "inbox"
)

var (
	ErrNotFound    = repository.ErrQuizNotFound
	ErrInvalidQuiz = errors.New("invalid quiz")
)

// Store persists saved quizzes.
type Store interface {
	Create(ctx context.Context, owner uuid.UUID, wisebase string, data quiz.QuizData) (repository.QuizRecord, error)
	Get(ctx context.Context, owner, id uuid.UUID) (repository.QuizRecord, error)
	List(ctx context.Context, owner uuid.UUID, wisebase string, limit, offset int) ([]repository.QuizRecord, int64, error)
}

// Item is one entry of a list page.
type Item struct {
	ID   string        `json:"id"`
	Data quiz.QuizData `json:"data"`
}

// Page is one backend page of an owner's quizzes.
type Page struct {
	Total int    `json:"total"`
	Items []Item `json:"items"`
}

// ServiceOptions tunes paging.
type ServiceOptions struct {
	DefaultPageSize int
	MaxPageSize     int
	DefaultWisebase string
}

// Service stores and pages saved quizzes per owner.
type Service struct {
	store  Store
	cache  PageCache
	logger zerolog.Logger
	opts   ServiceOptions
}

// NewService builds the library service. cache may be nil.
func NewService(store Store, cache PageCache, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = defaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = maxPageSize
	}
	if opts.DefaultWisebase == "" {
		opts.DefaultWisebase = defaultWisebase
	}
	return &Service{
		store:  store,
		cache:  cache,
		logger: logger.With().Str("component", "library_service").Logger(),
		opts:   opts,
	}
}

// Save validates and stores data for owner.
func (s *Service) Save(ctx context.Context, owner uuid.UUID, wisebase string, data quiz.QuizData) (Item, error) {
	start := time.Now()
	if err := validate(data); err != nil {
		observe("save", start, err)
		return Item{}, err
	}

	rec, err := s.store.Create(ctx, owner, s.wisebase(wisebase), data)
	if err != nil {
		observe("save", start, err)
		return Item{}, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, owner); err != nil {
			s.logger.Warn().Err(err).Str("owner", owner.String()).Msg("list cache invalidation failed")
		}
	}
	s.logger.Info().
		Str("owner", owner.String()).
		Str("quiz_id", rec.ID.String()).
		Str("type", rec.Data.Type).
		Int("questions", len(rec.Data.Questions)).
		Msg("quiz saved")
	observe("save", start, nil)
	return Item{ID: rec.ID.String(), Data: rec.Data}, nil
}

// List returns page (1-based) of owner's quizzes. Out-of-range sizes are
// clamped.
func (s *Service) List(ctx context.Context, owner uuid.UUID, wisebase string, page, pageSize int) (Page, error) {
	start := time.Now()
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.opts.DefaultPageSize
	}
	if pageSize > s.opts.MaxPageSize {
		pageSize = s.opts.MaxPageSize
	}
	key := PageKey{Owner: owner, Wisebase: s.wisebase(wisebase), Page: page, PageSize: pageSize}

	if s.cache != nil {
		if version, err := s.cache.Version(ctx, owner); err != nil {
			s.logger.Warn().Err(err).Msg("list cache version lookup failed")
		} else {
			key.Version = version
			if cached, err := s.cache.Get(ctx, key); err != nil {
				s.logger.Warn().Err(err).Msg("list cache read failed")
			} else if cached != nil {
				cacheLookups.WithLabelValues("hit").Inc()
				observe("list", start, nil)
				return *cached, nil
			}
			cacheLookups.WithLabelValues("miss").Inc()
		}
	}

	records, total, err := s.store.List(ctx, owner, key.Wisebase, pageSize, (page-1)*pageSize)
	if err != nil {
		observe("list", start, err)
		return Page{}, err
	}
	out := Page{Total: int(total), Items: make([]Item, 0, len(records))}
	for _, rec := range records {
		out.Items = append(out.Items, Item{ID: rec.ID.String(), Data: rec.Data})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out); err != nil {
			s.logger.Warn().Err(err).Msg("list cache write failed")
		}
	}
	observe("list", start, nil)
	return out, nil
}

// Get returns one of owner's quizzes.
func (s *Service) Get(ctx context.Context, owner, id uuid.UUID) (Item, error) {
	start := time.Now()
	rec, err := s.store.Get(ctx, owner, id)
	observe("get", start, err)
	if err != nil {
		return Item{}, err
	}
	return Item{ID: rec.ID.String(), Data: rec.Data}, nil
}

func validate(data quiz.QuizData) error {
	if err := data.ValidateSaved(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuiz, err)
	}
	if data.Type != "" && !quiz.ValidSaveType(data.Type) {
		return fmt.Errorf("%w: %w", ErrInvalidQuiz, quiz.ErrInvalidSaveType)
	}
	return nil
}

func (s *Service) wisebase(w string) string {
	if w == "" {
		return s.opts.DefaultWisebase
	}
	return w
}
