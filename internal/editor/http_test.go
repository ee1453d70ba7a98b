package editor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizforge/packadmin/internal/pack"
)

func newEditorMux(t *testing.T) (*http.ServeMux, pack.Category) {
	t.Helper()
	cat, category := newCatalog(t)
	h := NewHTTPHandler(NewRegistry(cat, zerolog.Nop()), zerolog.Nop())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions", h.Open)
	mux.HandleFunc("GET /v1/sessions/{id}", h.Get)
	mux.HandleFunc("DELETE /v1/sessions/{id}", h.Discard)
	mux.HandleFunc("POST /v1/sessions/{id}/commands", h.Apply)
	mux.HandleFunc("POST /v1/sessions/{id}/save", h.Save)
	return mux, category
}

func send(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSessionEndpoints(t *testing.T) {
	mux, category := newEditorMux(t)

	rec := send(t, mux, http.MethodPost, "/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var view View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.NotEmpty(t, view.SessionID)
	base := "/v1/sessions/" + view.SessionID

	rec = send(t, mux, http.MethodPost, base+"/commands", `{"op":"addQuestion","text":"Capital of France?","options":[{"text":"Paris","is_correct":true},{"text":""}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"too_few_options","message":"at least 2 options with text are required","field":"options"}`, rec.Body.String())

	rec = send(t, mux, http.MethodPost, base+"/commands", `{"op":"deleteQuestion","question_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(t, mux, http.MethodPost, base+"/save", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"missing_name"`)

	for _, body := range []string{
		`{"op":"setField","field":"name","value":"Capitals"}`,
		`{"op":"setField","field":"category_id","value":"` + category.ID + `","name":"Geography"}`,
		`{"op":"addQuestion","text":"Capital of France?","options":[{"text":"Paris","is_correct":true},{"text":"Lyon"}]}`,
	} {
		rec = send(t, mux, http.MethodPost, base+"/commands", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = send(t, mux, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "Capitals", view.Pack.Name)
	assert.Len(t, view.Pack.Questions, 1)

	rec = send(t, mux, http.MethodPost, base+"/save", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var saved pack.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, int64(1), saved.Version)

	rec = send(t, mux, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"session_not_found"`)
}

func TestOpenUnknownPack(t *testing.T) {
	mux, _ := newEditorMux(t)

	rec := send(t, mux, http.MethodPost, "/v1/sessions", `{"pack_id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(t, mux, http.MethodPost, "/v1/sessions", `{"pack_id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDiscardEndpoint(t *testing.T) {
	mux, _ := newEditorMux(t)

	rec := send(t, mux, http.MethodPost, "/v1/sessions", `{}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var view View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))

	rec = send(t, mux, http.MethodDelete, "/v1/sessions/"+view.SessionID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = send(t, mux, http.MethodDelete, "/v1/sessions/"+view.SessionID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
