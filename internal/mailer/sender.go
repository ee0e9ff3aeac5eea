package mailer

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/sparkpost-relay/internal/config"
	"github.com/ignite/sparkpost-relay/internal/pkg/logger"
	"github.com/ignite/sparkpost-relay/internal/sparkpost"
)

// Result reports the outcome of a send. Disabled sends return a synthetic
// id so callers can keep treating the result uniformly.
type Result struct {
	ID       string
	Accepted int
	Rejected int
	Disabled bool
}

// Transmitter is the slice of the API client the sender needs.
type Transmitter interface {
	CreateTransmission(ctx context.Context, data sparkpost.Params) (*sparkpost.TransmissionResult, error)
}

// Sender delivers Messages through the transmissions API, honoring the
// disable-sending switch and the optional on-disk content log.
type Sender struct {
	client Transmitter
	cfg    config.MailerConfig
}

func NewSender(client Transmitter, cfg config.MailerConfig) *Sender {
	return &Sender{client: client, cfg: cfg}
}

// Send builds the transmission payload for msg and submits it. When sending
// is disabled (globally or via the X-SendingDisabled header) the message is
// only logged and a synthetic accepted result is returned.
func (s *Sender) Send(ctx context.Context, msg *Message) (*Result, error) {
	env := msg.Envelope()
	if len(env.Recipients) == 0 {
		return nil, fmt.Errorf("message has no recipients")
	}

	if s.cfg.EnableLogging && s.cfg.LogFolder != "" {
		if err := s.logMessageContent(msg); err != nil {
			logger.Warn("failed to write message content log", "error", err.Error())
		}
	}

	_, perMessageDisabled := msg.Headers[HeaderSendingDisabled]
	if s.cfg.DisableSending || perMessageDisabled {
		logger.Info("sending disabled, message not submitted",
			"subject", msg.Subject,
			"to", strings.Join(msg.To, "; "))
		return &Result{
			ID:       uuid.NewString(),
			Accepted: len(env.Recipients),
			Disabled: true,
		}, nil
	}

	payload, err := BuildPayload(msg, env, s.cfg)
	if err != nil {
		return nil, err
	}

	res, err := s.client.CreateTransmission(ctx, payload)
	if err != nil {
		return nil, err
	}

	logger.Info("transmission accepted",
		"id", res.ID,
		"accepted", fmt.Sprintf("%d", res.TotalAcceptedRecipients),
		"rejected", fmt.Sprintf("%d", res.TotalRejectedRecipients))

	return &Result{
		ID:       res.ID,
		Accepted: res.TotalAcceptedRecipients,
		Rejected: res.TotalRejectedRecipients,
	}, nil
}

var unsafeFilenameRe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// logMessageContent writes the rendered body and a small metadata sidecar
// into the configured log folder, one pair of files per message.
func (s *Sender) logMessageContent(msg *Message) error {
	if err := os.MkdirAll(s.cfg.LogFolder, 0o755); err != nil {
		return fmt.Errorf("failed to create log folder: %w", err)
	}

	nonce := make([]byte, 4)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate log filename: %w", err)
	}
	slug := unsafeFilenameRe.ReplaceAllString(msg.Subject, "-")
	if len(slug) > 60 {
		slug = slug[:60]
	}
	base := fmt.Sprintf("%s_%s_%s",
		time.Now().Format("20060102-150405"), hex.EncodeToString(nonce), slug)

	body := msg.HTML
	ext := ".html"
	if body == "" {
		body = msg.Text
		ext = ".txt"
	}
	if err := os.WriteFile(filepath.Join(s.cfg.LogFolder, base+ext), []byte(body), 0o644); err != nil {
		return fmt.Errorf("failed to write message body log: %w", err)
	}

	var meta strings.Builder
	fmt.Fprintf(&meta, "From: %s\n", msg.From)
	fmt.Fprintf(&meta, "To: %s\n", strings.Join(msg.To, "; "))
	if len(msg.Cc) > 0 {
		fmt.Fprintf(&meta, "Cc: %s\n", strings.Join(msg.Cc, "; "))
	}
	if len(msg.Bcc) > 0 {
		fmt.Fprintf(&meta, "Bcc: %s\n", strings.Join(msg.Bcc, "; "))
	}
	fmt.Fprintf(&meta, "Subject: %s\n", msg.Subject)
	for name, value := range msg.Headers {
		fmt.Fprintf(&meta, "%s: %s\n", name, value)
	}
	for _, a := range msg.Attachments {
		fmt.Fprintf(&meta, "Attachment: %s (%s, %d bytes)\n", a.Filename, a.ContentType, len(a.Body))
	}
	if err := os.WriteFile(filepath.Join(s.cfg.LogFolder, base+".headers.txt"), []byte(meta.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write message header log: %w", err)
	}
	return nil
}
