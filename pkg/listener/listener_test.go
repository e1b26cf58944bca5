package listener

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-artificial-world/pkg/docstore"
	"github.com/goliatone/go-artificial-world/pkg/remote"
)

func decodeReply(t *testing.T, rec *httptest.ResponseRecorder) reply {
	t.Helper()
	var body reply
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHandlerWritesDocument(t *testing.T) {
	store := docstore.NewMemoryStore()
	handler := NewHandler(store)

	req := httptest.NewRequest(http.MethodPost, Route, strings.NewReader(`{"data":{"volume":3},"path":"settings.json"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.True(t, decodeReply(t, rec).Update)

	doc, err := store.Load(context.Background(), "settings.json")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"volume": float64(3)}, doc)
}

type refusingWriter struct{}

func (refusingWriter) Write(context.Context, string, any) bool { return false }

func TestHandlerReportsFailedWrite(t *testing.T) {
	handler := NewHandler(refusingWriter{})

	req := httptest.NewRequest(http.MethodPost, Route, strings.NewReader(`{"data":1,"path":"a.json"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.False(t, decodeReply(t, rec).Update)
}

func TestHandlerRejectsMalformedBodies(t *testing.T) {
	cases := map[string]string{
		"empty":        ``,
		"not json":     `{data`,
		"missing path": `{"data":{}}`,
		"blank path":   `{"data":{},"path":"  "}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			handler := NewHandler(docstore.NewMemoryStore())
			req := httptest.NewRequest(http.MethodPost, Route, strings.NewReader(body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			got := decodeReply(t, rec)
			assert.False(t, got.Update)
			assert.NotEmpty(t, got.Error)
		})
	}
}

func TestHandlerRejectsOtherMethods(t *testing.T) {
	handler := NewHandler(docstore.NewMemoryStore())
	req := httptest.NewRequest(http.MethodGet, Route, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestRemoteClientRoundTrip(t *testing.T) {
	store := docstore.NewMemoryStore()
	server := httptest.NewServer(NewMux(NewHandler(store)))
	defer server.Close()

	client, err := remote.New(server.URL + Route)
	require.NoError(t, err)

	resp, err := client.Post(context.Background(), "inbox/note.json", map[string]any{"text": "hi"})
	require.NoError(t, err)
	updated, err := resp.Updated()
	require.NoError(t, err)
	assert.True(t, updated)

	doc, err := store.Load(context.Background(), "inbox/note.json")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"text": "hi"}, doc)
}

func TestServeStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", NewHandler(docstore.NewMemoryStore()), nil)
	}()
	cancel()
	require.NoError(t, <-done)
}
