package sparkpost

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Provider error codes the client enriches messages for.
const (
	CodeInvalidDomain     = "7001"
	CodeInvalidRecipients = "5002"
)

// ConfigurationError indicates the client was constructed with unusable
// settings (e.g. an empty API key).
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "sparkpost: configuration error: " + e.Reason
}

// TransportError indicates the request never produced a usable API
// response: network failure, timeout, or a body that is not valid JSON.
// Inspecting the payload will not help; the remote service was never
// heard from (or not understood).
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sparkpost: transport error on %s: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ErrorEntry is one structured error from the API's errors array.
type ErrorEntry struct {
	Message     string `json:"message"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
}

// UnmarshalJSON tolerates numeric codes; the API is inconsistent about
// quoting them.
func (e *ErrorEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Message     string          `json:"message"`
		Code        json.RawMessage `json:"code"`
		Description string          `json:"description"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Message = raw.Message
	e.Description = raw.Description
	e.Code = string(bytes.Trim(raw.Code, `"`))
	if e.Code == "null" {
		e.Code = ""
	}
	return nil
}

// APIError is a structured rejection from the remote service. It keeps
// every entry from the errors array so callers can branch on known codes
// without re-parsing the joined message.
type APIError struct {
	Path    string
	Entries []ErrorEntry

	message string
}

func (e *APIError) Error() string {
	return e.message
}

// HasCode reports whether any entry carries the given provider code.
func (e *APIError) HasCode(code string) bool {
	for _, entry := range e.Entries {
		if entry.Code == code {
			return true
		}
	}
	return false
}

// newAPIError joins every entry into one human-readable message. Two
// codes get extra context from the outgoing payload, because the bare
// provider message is too vague to debug otherwise: invalid sending
// domain (7001) gets the sender's domain, invalid recipients (5002)
// gets the recipient addresses that were sent.
func newAPIError(path string, entries []ErrorEntry, payload map[string]any) *APIError {
	messages := make([]string, 0, len(entries))
	for _, entry := range entries {
		msg := entry.Message
		if entry.Code != "" {
			msg = entry.Code + " - " + msg
			switch entry.Code {
			case CodeInvalidDomain:
				if domain := senderDomain(payload); domain != "" {
					msg += " (" + domain + ")"
				}
			case CodeInvalidRecipients:
				msg += " " + describeRecipients(payload)
			}
		}
		if entry.Description != "" {
			msg += ": " + entry.Description
		}
		messages = append(messages, msg)
	}
	return &APIError{
		Path:    path,
		Entries: entries,
		message: "sparkpost: the API returned the following error(s): " + strings.Join(messages, "; "),
	}
}

// senderDomain extracts the domain part of content.from in the payload,
// whether from is a bare string or an address object.
func senderDomain(payload map[string]any) string {
	content, ok := payload["content"].(map[string]any)
	if !ok {
		return ""
	}
	var from string
	switch v := content["from"].(type) {
	case string:
		from = v
	case map[string]any:
		from, _ = v["email"].(string)
	}
	if at := strings.LastIndex(from, "@"); at >= 0 {
		return from[at+1:]
	}
	return ""
}

// describeRecipients renders the payload's recipient addresses for the
// invalid-recipients enrichment.
func describeRecipients(payload map[string]any) string {
	raw, ok := payload["recipients"]
	if !ok {
		return "(no recipients defined)"
	}
	var addresses []string
	recipients, _ := raw.([]any)
	for _, r := range recipients {
		if m, ok := r.(map[string]any); ok {
			if data, err := json.Marshal(m["address"]); err == nil {
				addresses = append(addresses, string(data))
			}
		}
	}
	if len(addresses) == 0 {
		return "(empty recipients list)"
	}
	return "(" + strings.Join(addresses, ",") + ")"
}
