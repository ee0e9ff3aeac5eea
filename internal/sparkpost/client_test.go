package sparkpost

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/sparkpost-relay/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.SparkPostConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(config.SparkPostConfig{})
	require.Error(t, err)

	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestNewClient_Endpoints(t *testing.T) {
	client, err := NewClient(config.SparkPostConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.sparkpost.com/api/v1", client.baseURL)

	client, err = NewClient(config.SparkPostConfig{APIKey: "k", EUEndpoint: true})
	require.NoError(t, err)
	assert.Equal(t, "https://api.eu.sparkpost.com/api/v1", client.baseURL)
}

func TestClient_RequestHeaders(t *testing.T) {
	var gotReq *http.Request
	var gotBody []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(r.Context())
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"results":[]}`))
	})
	client.subaccount = 42

	_, err := client.ListWebhooks(context.Background(), "")
	require.NoError(t, err)

	require.NotNil(t, gotReq)
	assert.Equal(t, http.MethodGet, gotReq.Method)
	assert.Equal(t, "/webhooks", gotReq.URL.Path)
	assert.Equal(t, "test-key", gotReq.Header.Get("Authorization"))
	assert.Equal(t, "42", gotReq.Header.Get("X-MSYS-SUBACCOUNT"))
	assert.Equal(t, userAgent, gotReq.Header.Get("User-Agent"))
	assert.Empty(t, gotBody)
}

func TestClient_NoSubaccountHeaderWhenUnset(t *testing.T) {
	var header string
	var present bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("X-MSYS-SUBACCOUNT")
		_, present = r.Header["X-Msys-Subaccount"]
		w.Write([]byte(`{"results":[]}`))
	})

	_, err := client.ListWebhooks(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, header)
	assert.False(t, present)
}

func TestClient_EmptyObjectResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{ }`))
	})

	webhooks, err := client.ListWebhooks(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, webhooks)
	assert.JSONEq(t, `{"results":null}`, string(client.LastResult()))
}

func TestClient_ErrorsJoined(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[
			{"message":"first problem","code":1902,"description":"more detail"},
			{"message":"second problem"}
		]}`))
	})

	_, err := client.ListWebhooks(context.Background(), "")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.HasCode("1902"))
	assert.Equal(t,
		"sparkpost: the API returned the following error(s): "+
			"1902 - first problem: more detail; second problem",
		err.Error())
}

func TestClient_InvalidDomainEnrichment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"message":"Invalid domain","code":"7001"}]}`))
	})

	_, err := client.CreateTransmission(context.Background(), Params{
		"from":       Address{Email: "sender@bad.com"},
		"recipients": []Recipient{{Address: Address{Email: "me@test.com"}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "7001 - Invalid domain (bad.com)")
}

func TestClient_InvalidRecipientsEnrichment(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"message":"Invalid recipients","code":"5002"}]}`))
	}

	// No recipients key at all
	client := newTestClient(t, handler)
	_, err := client.CreateTransmission(context.Background(), Params{"subject": "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(no recipients defined)")

	// Empty recipients list
	client = newTestClient(t, handler)
	_, err = client.CreateTransmission(context.Background(), Params{"recipients": []Recipient{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(empty recipients list)")

	// The offending addresses are echoed back
	client = newTestClient(t, handler)
	_, err = client.CreateTransmission(context.Background(), Params{
		"recipients": []Recipient{{Address: Address{Email: "me@test.com"}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "me@test.com")
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(config.SparkPostConfig{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.ListWebhooks(context.Background(), "")
	require.Error(t, err)

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr))
}

func TestCreateTransmission_MapsParams(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &body))
		w.Write([]byte(`{"results":{"id":"tx-1","total_accepted_recipients":1,"total_rejected_recipients":0}}`))
	})

	result, err := client.CreateTransmission(context.Background(), Params{
		"campaign":   "newsletter",
		"trackOpens": true,
		"subject":    "Hello",
		"html":       "<p>Hi</p>",
		"from":       Address{Email: "sender@test.com", Name: "Sender"},
		"recipients": []Recipient{{Address: Address{Email: "me@test.com"}}},
		"metadata":   map[string]any{"plan": "pro"},
	})
	require.NoError(t, err)
	assert.Equal(t, "tx-1", result.ID)
	assert.Equal(t, 1, result.TotalAcceptedRecipients)

	assert.Equal(t, "newsletter", body["campaign_id"])
	assert.Equal(t, map[string]any{"plan": "pro"}, body["metadata"])

	options := body["options"].(map[string]any)
	assert.Equal(t, true, options["open_tracking"])

	content := body["content"].(map[string]any)
	assert.Equal(t, "Hello", content["subject"])
	assert.Equal(t, "<p>Hi</p>", content["html"])
	assert.Equal(t, "sender@test.com", content["from"].(map[string]any)["email"])

	recipients := body["recipients"].([]any)
	require.Len(t, recipients, 1)

	// The SDK-style keys themselves never reach the wire
	assert.NotContains(t, body, "campaign")
	assert.NotContains(t, body, "trackOpens")
}

func TestValidateWebhook_SendsFixedBody(t *testing.T) {
	var path string
	var body []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"results":{"valid":true}}`))
	})

	_, err := client.ValidateWebhook(context.Background(), "hook-1")
	require.NoError(t, err)
	assert.Equal(t, "/webhooks/hook-1/validate", path)
	assert.JSONEq(t, `{"msys":{}}`, string(body))
}

func TestGetSuppression_NotFoundIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":[{"message":"Recipient could not be found"}]}`))
	})

	entries, err := client.GetSuppression(context.Background(), "gone@test.com")
	require.NoError(t, err)
	assert.Nil(t, entries)
}

var datetimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}$`)

func TestSearchMessageEvents_Defaults(t *testing.T) {
	var query map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{"results":[]}`))
	})

	_, err := client.SearchMessageEvents(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"100"}, query["per_page"])
	assert.NotEmpty(t, query["timezone"])
	require.Len(t, query["from"], 1)
	assert.Regexp(t, datetimeRe, query["from"][0])
}

func TestSearchMessageEvents_CallerOverridesDefaults(t *testing.T) {
	var query map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{"results":[]}`))
	})

	params := map[string][]string{"per_page": {"5"}, "events": {"bounce"}}
	_, err := client.SearchMessageEvents(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, []string{"5"}, query["per_page"])
	assert.Equal(t, []string{"bounce"}, query["events"])
}

func TestSearchSuppressions_Defaults(t *testing.T) {
	var query map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{"results":[]}`))
	})

	_, err := client.SearchSuppressions(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"10"}, query["per_page"])
	require.Len(t, query["from"], 1)
	assert.Regexp(t, datetimeRe, query["from"][0])
}

func TestValidDatetime(t *testing.T) {
	at := time.Date(2026, 8, 30, 14, 5, 59, 0, time.UTC)
	assert.Equal(t, "2026-08-30T14:05", validDatetime(at))
}

func TestClient_VerboseLog(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})
	client.verbose = true

	_, err := client.ListWebhooks(context.Background(), "")
	require.NoError(t, err)

	log := client.VerboseLog()
	require.Len(t, log, 1)
	assert.Contains(t, log[0], "GET ")
	assert.Contains(t, log[0], `{"results":[]}`)
}
