package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/sparkpost-relay/internal/config"
)

func newTestReceiver(cfg config.WebhookConfig, registry *Registry) *Receiver {
	if registry == nil {
		registry = NewRegistry()
	}
	return NewReceiver(cfg, NewProcessor(registry, 0))
}

func deliver(t *testing.T, rc *Receiver, body string, auth func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/incoming", strings.NewReader(body))
	if auth != nil {
		auth(req)
	}
	rec := httptest.NewRecorder()
	rc.ServeHTTP(rec, req)
	return rec
}

func TestReceiver_ProcessesBatch(t *testing.T) {
	registry := NewRegistry()
	var got []Event
	registry.SubscribeAll(func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	rec := deliver(t, newTestReceiver(config.WebhookConfig{}, registry), sampleBatch, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	require.Len(t, got, 2)
}

func TestReceiver_EmptyBody(t *testing.T) {
	rec := deliver(t, newTestReceiver(config.WebhookConfig{}, nil), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "NO DATA", rec.Body.String())
}

func TestReceiver_MalformedBodyStillAccepted(t *testing.T) {
	rec := deliver(t, newTestReceiver(config.WebhookConfig{}, nil), "not json", nil)
	// The provider disables endpoints that answer non-2xx
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "INVALID PAYLOAD", rec.Body.String())
}

func TestReceiver_BasicAuth(t *testing.T) {
	cfg := config.WebhookConfig{Username: "hook", Password: "secret"}
	registry := NewRegistry()
	var processed int
	registry.SubscribeAll(func(_ context.Context, _ Event) error {
		processed++
		return nil
	})
	rc := newTestReceiver(cfg, registry)

	// Missing credentials: acknowledged but not processed
	rec := deliver(t, rc, sampleBatch, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "INVALID CREDENTIALS", rec.Body.String())
	assert.Zero(t, processed)

	// Wrong password
	rec = deliver(t, rc, sampleBatch, func(r *http.Request) { r.SetBasicAuth("hook", "wrong") })
	assert.Equal(t, "INVALID CREDENTIALS", rec.Body.String())
	assert.Zero(t, processed)

	// Correct credentials
	rec = deliver(t, rc, sampleBatch, func(r *http.Request) { r.SetBasicAuth("hook", "secret") })
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, 2, processed)
}

func TestReceiver_ClaimedBatchSkipped(t *testing.T) {
	registry := NewRegistry()
	var processed int
	registry.SubscribeAll(func(_ context.Context, _ Event) error {
		processed++
		return nil
	})
	rc := newTestReceiver(config.WebhookConfig{}, registry)

	claimed := map[string]bool{}
	rc.SetClaimFunc(func(_ context.Context, batchID string) bool {
		if claimed[batchID] {
			return false
		}
		claimed[batchID] = true
		return true
	})

	withBatchID := func(r *http.Request) { r.Header.Set("X-Messagesystems-Batch-Id", "batch-7") }

	rec := deliver(t, rc, sampleBatch, withBatchID)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, 2, processed)

	// A redelivery of the same batch is acknowledged but not reprocessed
	rec = deliver(t, rc, sampleBatch, withBatchID)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DUPLICATE", rec.Body.String())
	assert.Equal(t, 2, processed)
}

func TestReceiver_LogsPayload(t *testing.T) {
	dir := t.TempDir()
	rc := newTestReceiver(config.WebhookConfig{LogDir: dir}, nil)

	rec := deliver(t, rc, sampleBatch, func(r *http.Request) {
		r.Header.Set("X-Messagesystems-Batch-Id", "batch-1")
	})
	assert.Equal(t, "OK", rec.Body.String())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "batch-1")

	data, err := os.ReadFile(dir + "/" + entries[0].Name())
	require.NoError(t, err)
	assert.Contains(t, string(data), "message_event")
}
