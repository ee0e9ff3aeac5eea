package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/sparkpost-relay/internal/config"
	"github.com/ignite/sparkpost-relay/internal/events"
	"github.com/ignite/sparkpost-relay/internal/mailer"
	"github.com/ignite/sparkpost-relay/internal/sparkpost"
)

// newTestRouter wires the full admin surface against a stub upstream.
func newTestRouter(t *testing.T, upstream http.HandlerFunc) http.Handler {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	client, err := sparkpost.NewClient(config.SparkPostConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	h := &Handlers{
		Client: client,
		Events: events.NewCache(client, nil, config.EventsConfig{}),
		Sender: mailer.NewSender(client, config.MailerConfig{}),
	}
	return SetupRoutes(h, nil)
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSendMessage(t *testing.T) {
	var upstreamPath string
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		upstreamPath = r.URL.Path
		w.Write([]byte(`{"results":{"id":"tx-9","total_accepted_recipients":1}}`))
	})

	body := `{"From":"sender@test.com","To":["me@test.com"],"Subject":"Hi","HTML":"<p>Hi</p>"}`
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "/transmissions", upstreamPath)

	var result mailer.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "tx-9", result.ID)
	assert.Equal(t, 1, result.Accepted)
}

func TestSendMessage_ProviderRejection(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"message":"Invalid domain","code":"7001"}]}`))
	})

	body := `{"From":"sender@bad.com","To":["me@test.com"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "7001")
}

func TestListEvents(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/message", r.URL.Path)
		assert.Equal(t, "bounce", r.URL.Query().Get("events"))
		w.Write([]byte(`{"results":[{"type":"bounce","rcpt_to":"me@test.com"}]}`))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events?events=bounce", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []sparkpost.MessageEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "me@test.com", got[0].RcptTo)
}

func TestValidateWebhookRoute(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/webhooks/hook-1/validate", r.URL.Path)
		w.Write([]byte(`{"results":{"valid":true}}`))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/webhooks/hook-1/validate", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "valid")
}

func TestGetSuppression_NotSuppressed(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":[{"message":"Recipient could not be found"}]}`))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/suppressions/gone@test.com", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not suppressed")
}

func TestCreateSuppression_RequiresRecipient(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/suppressions", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpstreamDown(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`garbage`))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/webhooks", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
