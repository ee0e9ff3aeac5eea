package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/sparkpost-relay/internal/config"
	"github.com/ignite/sparkpost-relay/internal/pkg/logger"
)

// Receiver is the HTTP endpoint the provider delivers event batches to.
// It always answers 200: the provider disables webhooks that keep
// failing, so even rejected or malformed batches are acknowledged and
// only logged.
type Receiver struct {
	cfg       config.WebhookConfig
	processor *Processor
	claim     ClaimFunc
}

// ClaimFunc claims a batch id for this instance. Returning false means
// another instance already processed (or is processing) the batch and
// the delivery should only be acknowledged.
type ClaimFunc func(ctx context.Context, batchID string) bool

func NewReceiver(cfg config.WebhookConfig, processor *Processor) *Receiver {
	return &Receiver{cfg: cfg, processor: processor}
}

// SetClaimFunc installs cross-instance batch deduplication.
func (rc *Receiver) SetClaimFunc(claim ClaimFunc) {
	rc.claim = claim
}

// ServeHTTP handles one webhook delivery.
func (rc *Receiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	batchID := r.Header.Get("X-Messagesystems-Batch-Id")
	if batchID == "" {
		batchID = uuid.NewString()
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("failed to read webhook body", "batch_id", batchID, "error", err.Error())
		rc.respond(w, "NO DATA")
		return
	}
	if len(body) == 0 {
		rc.respond(w, "NO DATA")
		return
	}

	if rc.cfg.LogDir != "" {
		if err := rc.logPayload(batchID, body); err != nil {
			logger.Warn("failed to log webhook payload", "batch_id", batchID, "error", err.Error())
		}
	}

	if !rc.authenticated(r) {
		logger.Warn("webhook delivery rejected: bad credentials", "batch_id", batchID)
		rc.respond(w, "INVALID CREDENTIALS")
		return
	}

	if rc.claim != nil && !rc.claim(r.Context(), batchID) {
		logger.Info("webhook batch already claimed elsewhere", "batch_id", batchID)
		rc.respond(w, "DUPLICATE")
		return
	}

	events, err := ParseBatch(body)
	if err != nil {
		logger.Error("failed to parse webhook batch", "batch_id", batchID, "error", err.Error())
		rc.respond(w, "INVALID PAYLOAD")
		return
	}

	stats := rc.processor.ProcessBatch(r.Context(), events)
	logger.Info("webhook batch processed",
		"batch_id", batchID,
		"processed", fmt.Sprintf("%d", stats.Processed),
		"skipped", fmt.Sprintf("%d", stats.Skipped),
		"errors", fmt.Sprintf("%d", stats.Errors))

	rc.respond(w, "OK")
}

// authenticated checks HTTP basic auth against the configured
// credentials. With no username configured every delivery is accepted.
func (rc *Receiver) authenticated(r *http.Request) bool {
	if rc.cfg.Username == "" {
		return true
	}
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(rc.cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(rc.cfg.Password)) == 1
	return userOK && passOK
}

func (rc *Receiver) respond(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(message))
}

// logPayload writes the raw batch, pretty printed when possible, into
// the configured log directory.
func (rc *Receiver) logPayload(batchID string, body []byte) error {
	if err := os.MkdirAll(rc.cfg.LogDir, 0o755); err != nil {
		return fmt.Errorf("failed to create webhook log dir: %w", err)
	}

	pretty := body
	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil {
		if data, err := json.MarshalIndent(decoded, "", "  "); err == nil {
			pretty = data
		}
	}

	name := fmt.Sprintf("%s_%s.json", time.Now().Format("20060102-150405"), batchID)
	if err := os.WriteFile(filepath.Join(rc.cfg.LogDir, name), pretty, 0o644); err != nil {
		return fmt.Errorf("failed to write webhook payload log: %w", err)
	}
	return nil
}
