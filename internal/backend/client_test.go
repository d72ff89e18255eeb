package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-widget/internal/quiz"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL + "/api", AppName: "quiz-widget"}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestDoGetDecodesJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/library/v1/quizzes", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "quiz-widget", r.Header.Get("X-App-Name"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "Asia/Shanghai", r.Header.Get("X-TZ-Name"))
		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, body)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"code":0,"data":{"total":1}}`))
	})

	resp, err := c.Do(context.Background(), Request{
		Path:        "/library/v1/quizzes",
		Token:       "Bearer tok",
		QueryParams: map[string]string{"page": "2"},
		Headers:     map[string]string{"X-TZ-Name": "Asia/Shanghai"},
		Payload:     map[string]string{"ignored": "for GET"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	body := resp.Body.(map[string]any)
	assert.Equal(t, float64(0), body["code"])
}

func TestDoReturnsTextBodies(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("pong"))
	})

	resp, err := c.Do(context.Background(), Request{Path: "ping"})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Body)
}

func TestSaveQuizPostsPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var in quiz.SavePayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Go basics", in.Data.Title)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0,"data":{"id":"rec-9"}}`))
	})

	res, err := c.SaveQuiz(context.Background(), "tok", quiz.QuizData{Title: "Go basics"})
	require.NoError(t, err)
	assert.Equal(t, "rec-9", res.Data.ID)
}

func TestSaveQuizNonZeroCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":401,"message":"invalid token"}`))
	})

	_, err := c.SaveQuiz(context.Background(), "bad", quiz.QuizData{Title: "x"})
	assert.ErrorIs(t, err, ErrRejected)
}

func TestSaveResultStringCode(t *testing.T) {
	cases := map[string]Code{
		`{"code":"0"}`:  0,
		`{"code":"12"}`: 12,
		`{"code":3}`:    3,
	}
	for body, want := range cases {
		var res SaveResult
		require.NoError(t, json.Unmarshal([]byte(body), &res), body)
		assert.Equal(t, want, res.Code, body)
	}

	var res SaveResult
	assert.Error(t, json.Unmarshal([]byte(`{"code":"abc"}`), &res))
}

func TestDoRefusesForeignHosts(t *testing.T) {
	var leaked []string
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		leaked = append(leaked, r.Header.Get("Authorization"))
	}))
	defer foreign.Close()

	c, err := NewClient(Config{BaseURL: "http://backend.invalid/api"}, zerolog.Nop())
	require.NoError(t, err)

	for _, path := range []string{
		foreign.URL + "/steal",
		"///" + foreign.Listener.Addr().String() + "/steal",
		"mailto:someone@example.com",
	} {
		_, err := c.Do(context.Background(), Request{Path: path, Token: "Bearer secret"})
		assert.ErrorIs(t, err, ErrForeignURL, path)
	}
	assert.Empty(t, leaked)
}

func TestDoKeepsRelativePathsOnBackend(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/library/v1/quizzes/abc", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0}`))
	})

	_, err := c.Do(context.Background(), Request{Path: "library/v1/quizzes/abc"})
	require.NoError(t, err)
}
