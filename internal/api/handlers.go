// Package api is the admin HTTP surface of the relay: message submission,
// event search, and management of webhooks, domains and the suppression
// list.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/sparkpost-relay/internal/events"
	"github.com/ignite/sparkpost-relay/internal/mailer"
	"github.com/ignite/sparkpost-relay/internal/pkg/httputil"
	"github.com/ignite/sparkpost-relay/internal/sparkpost"
)

// Handlers carries the dependencies of the admin API. Master, when set,
// is a client on the master account key; domain and relay-webhook
// management fall back to it because subaccount keys may not touch
// those resources.
type Handlers struct {
	Client *sparkpost.Client
	Master *sparkpost.Client
	Events *events.Cache
	Sender *mailer.Sender
}

// masterClient returns the client used for account-level resources.
func (h *Handlers) masterClient() *sparkpost.Client {
	if h.Master != nil {
		return h.Master
	}
	return h.Client
}

// respondAPIError translates client errors into HTTP responses: a
// structured provider rejection passes through as 422, transport
// trouble maps to 502, anything else is a 500.
func respondAPIError(w http.ResponseWriter, err error) {
	var apiErr *sparkpost.APIError
	if errors.As(err, &apiErr) {
		httputil.JSON(w, http.StatusUnprocessableEntity, httputil.ErrorResponse{
			Error:   apiErr.Error(),
			Details: apiErr.Entries,
		})
		return
	}
	var transportErr *sparkpost.TransportError
	if errors.As(err, &transportErr) {
		httputil.Error(w, http.StatusBadGateway, "upstream request failed")
		return
	}
	httputil.InternalError(w, err)
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "ok"})
}

// SendMessage submits one message through the transmissions API.
func (h *Handlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	var msg mailer.Message
	if !httputil.Decode(w, r, &msg) {
		return
	}
	result, err := h.Sender.Send(r.Context(), &msg)
	if err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.OK(w, result)
}

// ListEvents searches message events through the cache. Query
// parameters pass through to the provider (events, recipients,
// campaigns, per_page, from, to, ...).
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	results, err := h.Events.Search(r.Context(), r.URL.Query())
	if err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.OK(w, results)
}

// InvalidateEvents drops the event search cache.
func (h *Handlers) InvalidateEvents(w http.ResponseWriter, r *http.Request) {
	if err := h.Events.Invalidate(r.Context()); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}

// ListWebhooks lists configured event webhooks.
func (h *Handlers) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	webhooks, err := h.Client.ListWebhooks(r.Context(), r.URL.Query().Get("timezone"))
	if err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.OK(w, webhooks)
}

// CreateWebhook registers a new event webhook.
func (h *Handlers) CreateWebhook(w http.ResponseWriter, r *http.Request) {
	var webhook sparkpost.Webhook
	if !httputil.Decode(w, r, &webhook) {
		return
	}
	created, err := h.Client.CreateWebhook(r.Context(), webhook)
	if err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.Created(w, created)
}

// GetWebhook fetches one webhook by id.
func (h *Handlers) GetWebhook(w http.ResponseWriter, r *http.Request) {
	webhook, err := h.Client.GetWebhook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.OK(w, webhook)
}

// DeleteWebhook removes a webhook.
func (h *Handlers) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	if err := h.Client.DeleteWebhook(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.NoContent(w)
}

// ValidateWebhook asks the provider to fire a test batch at a webhook.
func (h *Handlers) ValidateWebhook(w http.ResponseWriter, r *http.Request) {
	result, err := h.Client.ValidateWebhook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.OK(w, result)
}

// WebhookBatchStatus reports recent delivery attempts for a webhook.
func (h *Handlers) WebhookBatchStatus(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	statuses, err := h.Client.WebhookBatchStatus(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.OK(w, statuses)
}

// ListSendingDomains lists the account's sending domains.
func (h *Handlers) ListSendingDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := h.masterClient().ListSendingDomains(r.Context())
	if err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.OK(w, domains)
}

// CreateSendingDomain registers a sending domain.
func (h *Handlers) CreateSendingDomain(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Domain string `json:"domain"`
	}
	if !httputil.Decode(w, r, &body) {
		return
	}
	if body.Domain == "" {
		httputil.BadRequest(w, "domain is required")
		return
	}
	result, err := h.masterClient().CreateSimpleSendingDomain(r.Context(), body.Domain)
	if err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.Created(w, result)
}

// GetSendingDomain fetches one sending domain with its readiness state.
func (h *Handlers) GetSendingDomain(w http.ResponseWriter, r *http.Request) {
	domain, err := h.masterClient().GetSendingDomain(r.Context(), chi.URLParam(r, "domain"))
	if err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"domain": domain, "ready": domain.Ready()})
}

// VerifySendingDomain triggers DKIM and SPF verification.
func (h *Handlers) VerifySendingDomain(w http.ResponseWriter, r *http.Request) {
	result, err := h.masterClient().VerifySendingDomain(r.Context(), chi.URLParam(r, "domain"))
	if err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.OK(w, result)
}

// DeleteSendingDomain removes a sending domain.
func (h *Handlers) DeleteSendingDomain(w http.ResponseWriter, r *http.Request) {
	if err := h.masterClient().DeleteSendingDomain(r.Context(), chi.URLParam(r, "domain")); err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.NoContent(w)
}

// ListInboundDomains lists inbound (relay) domains.
func (h *Handlers) ListInboundDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := h.masterClient().ListInboundDomains(r.Context())
	if err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.OK(w, domains)
}

// ListRelayWebhooks lists relay webhooks.
func (h *Handlers) ListRelayWebhooks(w http.ResponseWriter, r *http.Request) {
	hooks, err := h.masterClient().ListRelayWebhooks(r.Context())
	if err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.OK(w, hooks)
}

// SearchSuppressions searches the suppression list; query parameters
// pass through (to, domain, types, sources, per_page, from, ...).
func (h *Handlers) SearchSuppressions(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Client.SearchSuppressions(r.Context(), r.URL.Query())
	if err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.OK(w, entries)
}

// GetSuppression looks up one recipient on the suppression list.
func (h *Handlers) GetSuppression(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Client.GetSuppression(r.Context(), chi.URLParam(r, "recipient"))
	if err != nil {
		respondAPIError(w, err)
		return
	}
	if entries == nil {
		httputil.NotFound(w, "recipient is not suppressed")
		return
	}
	httputil.OK(w, entries)
}

// CreateSuppression adds a recipient to the suppression list.
func (h *Handlers) CreateSuppression(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Recipient     string `json:"recipient"`
		Transactional bool   `json:"transactional"`
		Description   string `json:"description"`
	}
	if !httputil.Decode(w, r, &body) {
		return
	}
	if body.Recipient == "" {
		httputil.BadRequest(w, "recipient is required")
		return
	}
	if err := h.Client.CreateSuppression(r.Context(), body.Recipient, body.Transactional, body.Description); err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.NoContent(w)
}

// DeleteSuppression removes a recipient from the suppression list.
func (h *Handlers) DeleteSuppression(w http.ResponseWriter, r *http.Request) {
	if err := h.Client.DeleteSuppression(r.Context(), chi.URLParam(r, "recipient")); err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.NoContent(w)
}

// SuppressionSummary reports suppression counts by source.
func (h *Handlers) SuppressionSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Client.SuppressionSummaryReport(r.Context())
	if err != nil {
		respondAPIError(w, err)
		return
	}
	httputil.OK(w, summary)
}
