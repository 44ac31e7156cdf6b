package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyPostsJSON(t *testing.T) {
	var got map[string]string
	var contentType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	w := NewWebhook(ts.URL, 0)
	w.Notify(context.Background(), map[string]string{"run_id": "abc"})

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, map[string]string{"run_id": "abc"}, got)
}

func TestNotifySwallowsFailures(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	// Neither a failing endpoint nor an unreachable one may panic or block.
	NewWebhook(ts.URL, 0).Notify(context.Background(), map[string]string{"k": "v"})
	NewWebhook("http://127.0.0.1:1", 0).Notify(context.Background(), map[string]string{"k": "v"})
}

func TestNotifyEmptyURLIsNoop(t *testing.T) {
	NewWebhook("", 0).Notify(context.Background(), map[string]string{"k": "v"})
}
