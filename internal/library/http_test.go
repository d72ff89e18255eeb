package library

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-widget/internal/auth"
	"github.com/gokatarajesh/quiz-widget/internal/auth/jwt"
	"github.com/gokatarajesh/quiz-widget/internal/quiz"
	httperrors "github.com/gokatarajesh/quiz-widget/pkg/http/errors"
)

type libraryFixture struct {
	mux   *http.ServeMux
	token string
	owner uuid.UUID
}

func newLibraryFixture(t *testing.T) libraryFixture {
	t.Helper()
	tokens := jwt.NewManager(jwt.TokenConfig{Secret: []byte("test-secret")})
	owner := uuid.New()
	token, err := tokens.Generate(jwt.User{ID: owner})
	require.NoError(t, err)

	mux := http.NewServeMux()
	svc := NewService(&memStore{}, newMemCache(), ServiceOptions{}, zerolog.Nop())
	NewHTTPHandler(svc, zerolog.Nop()).Register(mux, auth.Middleware(tokens, zerolog.Nop()))
	return libraryFixture{mux: mux, token: token, owner: owner}
}

func (f libraryFixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Authorization", f.token)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

type listEnvelope struct {
	Code int  `json:"code"`
	Data Page `json:"data"`
}

func TestHTTPSaveListGet(t *testing.T) {
	f := newLibraryFixture(t)

	data := validQuiz("Go basics")
	data.Type = quiz.SaveIncorrect
	rec := f.do(t, http.MethodPost, BasePath, quiz.SavePayload{Data: data})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var saved struct {
		Code int `json:"code"`
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Zero(t, saved.Code)
	require.NotEmpty(t, saved.Data.ID)

	rec = f.do(t, http.MethodGet, BasePath+"?page=1&pageSize=20&wisebaseId=inbox", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list listEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Data.Total)
	require.Len(t, list.Data.Items, 1)
	assert.Equal(t, saved.Data.ID, list.Data.Items[0].ID)
	assert.Equal(t, quiz.SaveIncorrect, list.Data.Items[0].Data.Type)

	rec = f.do(t, http.MethodGet, BasePath+"/"+saved.Data.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var one struct {
		Data Item `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	assert.Equal(t, "Go basics", one.Data.Data.Title)
}

func TestHTTPSaveValidationError(t *testing.T) {
	f := newLibraryFixture(t)

	rec := f.do(t, http.MethodPost, BasePath, quiz.SavePayload{Data: quiz.QuizData{Title: "empty"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body httperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 400, body.Code)
	assert.Equal(t, httperrors.ErrCodeValidationFailed, body.Error)
}

func TestHTTPGetErrors(t *testing.T) {
	f := newLibraryFixture(t)

	rec := f.do(t, http.MethodGet, BasePath+"/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, BasePath+"/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body httperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotZero(t, body.Code)
}

func TestHTTPRequiresToken(t *testing.T) {
	f := newLibraryFixture(t)
	req := httptest.NewRequest(http.MethodGet, BasePath, nil)
	rec := httptest.NewRecorder()

	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
