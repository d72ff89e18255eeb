package quizlist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-widget/internal/quiz"
)

// Default page sizes: the UI shows a handful of quizzes while the backend is
// asked for larger chunks.
const (
	DefaultFrontendPageSize = 5
	DefaultBackendPageSize  = 20
)

// ErrLoading is returned when a fetch is already in flight.
var ErrLoading = errors.New("quiz list is loading")

// Page is one backend page of saved quizzes.
type Page struct {
	Total int
	Items []quiz.QuizData
}

// Fetcher loads a backend page (1-based).
type Fetcher interface {
	FetchPage(ctx context.Context, page, pageSize int) (Page, error)
}

// Options configures a Loader.
type Options struct {
	FrontendPageSize int
	BackendPageSize  int
}

// Loader maps a small UI page size onto larger backend pages, fetching a
// backend page only when the requested UI page is not covered yet.
// Items are append-only and deduplicated by id.
type Loader struct {
	fetcher          Fetcher
	logger           zerolog.Logger
	frontendPageSize int
	backendPageSize  int

	mu      sync.Mutex
	items   []quiz.QuizData
	seen    map[string]struct{}
	total   int
	current int
	loading bool
}

// NewLoader builds a loader; non-positive sizes fall back to the defaults.
func NewLoader(fetcher Fetcher, opts Options, logger zerolog.Logger) *Loader {
	if opts.FrontendPageSize <= 0 {
		opts.FrontendPageSize = DefaultFrontendPageSize
	}
	if opts.BackendPageSize <= 0 {
		opts.BackendPageSize = DefaultBackendPageSize
	}
	return &Loader{
		fetcher:          fetcher,
		logger:           logger.With().Str("component", "quiz_list_loader").Logger(),
		frontendPageSize: opts.FrontendPageSize,
		backendPageSize:  opts.BackendPageSize,
		seen:             make(map[string]struct{}),
		current:          1,
	}
}

// Load fetches the first backend page. It is the mount step of the list widget.
func (l *Loader) Load(ctx context.Context) error {
	return l.fetch(ctx, 1)
}

// Next advances one UI page, fetching the backend page that covers it first
// when needed. It reports whether the page changed; on a fetch error the page
// stays where it was so the caller can retry.
func (l *Loader) Next(ctx context.Context) (bool, error) {
	l.mu.Lock()
	if l.loading {
		l.mu.Unlock()
		return false, ErrLoading
	}
	if l.current >= l.totalPagesLocked() {
		l.mu.Unlock()
		return false, nil
	}
	next := l.current + 1
	required := ceilDiv(next*l.frontendPageSize, l.backendPageSize)
	loaded := ceilDiv(len(l.items), l.backendPageSize)
	l.mu.Unlock()

	// a UI page may span several backend pages; fetch each one missing
	for page := loaded + 1; page <= required; page++ {
		if err := l.fetch(ctx, page); err != nil {
			return false, err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current+1 != next {
		// another caller moved the page while we were fetching
		return false, nil
	}
	l.current = next
	return true, nil
}

// Previous moves back one UI page. It never fetches.
func (l *Loader) Previous() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current <= 1 {
		return false
	}
	l.current--
	return true
}

// Items returns the quizzes of the current UI page.
func (l *Loader) Items() []quiz.QuizData {
	l.mu.Lock()
	defer l.mu.Unlock()
	start := (l.current - 1) * l.frontendPageSize
	if start >= len(l.items) {
		return nil
	}
	end := min(start+l.frontendPageSize, len(l.items))
	out := make([]quiz.QuizData, end-start)
	copy(out, l.items[start:end])
	return out
}

// CurrentPage is the 1-based UI page.
func (l *Loader) CurrentPage() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// TotalPages is ceil(total / frontend page size).
func (l *Loader) TotalPages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalPagesLocked()
}

func (l *Loader) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Loaded returns how many distinct quizzes have been fetched so far.
func (l *Loader) Loaded() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

func (l *Loader) fetch(ctx context.Context, page int) error {
	l.mu.Lock()
	if l.loading {
		l.mu.Unlock()
		return ErrLoading
	}
	l.loading = true
	l.mu.Unlock()

	result, err := l.fetcher.FetchPage(ctx, page, l.backendPageSize)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if err != nil {
		l.logger.Error().Err(err).Int("page", page).Msg("fetch quiz list page failed")
		return fmt.Errorf("fetch page %d: %w", page, err)
	}
	l.merge(result.Items)
	l.total = result.Total
	l.logger.Debug().Int("page", page).Int("items", len(result.Items)).Int("total", l.total).Msg("quiz list page merged")
	return nil
}

func (l *Loader) merge(items []quiz.QuizData) {
	for _, item := range items {
		if item.ID != "" {
			if _, dup := l.seen[item.ID]; dup {
				continue
			}
			l.seen[item.ID] = struct{}{}
		}
		l.items = append(l.items, item)
	}
}

func (l *Loader) totalPagesLocked() int {
	return ceilDiv(l.total, l.frontendPageSize)
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
