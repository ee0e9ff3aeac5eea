package mailer

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ignite/sparkpost-relay/internal/config"
	"github.com/ignite/sparkpost-relay/internal/sparkpost"
)

// BuildPayload turns a Message and its Envelope into the parameter bag
// consumed by the transmissions API. The result uses the friendly key names
// of sparkpost.Params ("campaign", "trackOpens", ...) so configured defaults
// and computed fields live in the same namespace.
//
// Merge order: default_params from config first, computed fields on top,
// and any X-MSYS-API header payload last.
func BuildPayload(msg *Message, env Envelope, cfg config.MailerConfig) (sparkpost.Params, error) {
	tags, metadata, inlineHeader, msysExtra, customHeaders, err := splitCompatHeaders(msg.Headers)
	if err != nil {
		return nil, err
	}

	recipients, ccEmails := buildRecipients(msg, env, tags, metadata)

	fromEmail, fromName := resolveSender(env.Sender, cfg)

	htmlBody := msg.HTML
	textBody := msg.Text
	if htmlBody != "" && textBody == "" && cfg.ProvidePlain {
		textBody = ConvertHTMLToText(htmlBody)
	}

	params := sparkpost.Params{}
	for k, v := range cfg.DefaultParams {
		params[k] = v
	}

	computed := sparkpost.Params{
		"recipients": recipients,
		"from":       sparkpost.Address{Email: fromEmail, Name: fromName},
		"subject":    msg.Subject,
	}

	if inlineHeader != nil {
		computed["inlineCss"] = *inlineHeader
	} else if cfg.InlineCSS && htmlBody != "" {
		inlined, err := InlineCSS(htmlBody)
		if err != nil {
			// Local inlining failed, let the provider do it instead.
			computed["inlineCss"] = true
		} else {
			htmlBody = inlined
		}
	}

	if htmlBody != "" {
		computed["html"] = htmlBody
	}
	if textBody != "" {
		computed["text"] = textBody
	}
	if msg.ReplyTo != "" {
		computed["replyTo"] = EmailFromRFC(msg.ReplyTo)
	}

	if len(ccEmails) > 0 {
		customHeaders["CC"] = strings.Join(ccEmails, ",")
	}
	if len(customHeaders) > 0 {
		computed["customHeaders"] = customHeaders
	}

	if len(msg.Attachments) > 0 {
		computed["attachments"] = encodeAttachments(msg.Attachments)
	}

	for k, v := range computed {
		params[k] = v
	}
	for k, v := range msysExtra {
		params[k] = v
	}
	return params, nil
}

// splitCompatHeaders pulls the X-MC-* and X-MSYS-API directives out of the
// header map and returns whatever is left for verbatim pass-through. The
// X-MSYS-API payload is applied after the X-MC-* ones so its tags extend
// the tag list and its metadata keys win.
func splitCompatHeaders(headers map[string]string) (tags []string, metadata map[string]any, inlineCSS *bool, msysExtra map[string]any, rest map[string]string, err error) {
	metadata = map[string]any{}
	rest = map[string]string{}

	if value := headers[HeaderTags]; value != "" {
		for _, t := range strings.Split(value, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	if value := headers[HeaderMetadata]; value != "" {
		if err := json.Unmarshal([]byte(value), &metadata); err != nil {
			return nil, nil, nil, nil, nil, fmt.Errorf("invalid %s header: %w", HeaderMetadata, err)
		}
	}
	if value := headers[HeaderInlineCSS]; value != "" {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, nil, nil, nil, nil, fmt.Errorf("invalid %s header: %w", HeaderInlineCSS, err)
		}
		inlineCSS = &v
	}
	if value := headers[HeaderMSYSAPI]; value != "" {
		var msys map[string]any
		if err := json.Unmarshal([]byte(value), &msys); err != nil {
			return nil, nil, nil, nil, nil, fmt.Errorf("invalid %s header: %w", HeaderMSYSAPI, err)
		}
		if raw, ok := msys["tags"].([]any); ok {
			for _, t := range raw {
				if s, ok := t.(string); ok && !containsString(tags, s) {
					tags = append(tags, s)
				}
			}
		}
		delete(msys, "tags")
		if raw, ok := msys["metadata"].(map[string]any); ok {
			for k, v := range raw {
				metadata[k] = v
			}
		}
		delete(msys, "metadata")
		msysExtra = msys
	}

	for name, value := range headers {
		switch name {
		case HeaderTags, HeaderMetadata, HeaderInlineCSS, HeaderMSYSAPI, HeaderSendingDisabled:
			// Consumed above, never forwarded.
		default:
			rest[name] = value
		}
	}
	if len(metadata) == 0 {
		metadata = nil
	}
	return tags, metadata, inlineCSS, msysExtra, rest, nil
}

// buildRecipients partitions the envelope recipients into to, cc and bcc
// entries. Cc and bcc entries carry a header_to pointing at the primary to
// recipient so the provider renders them as copies rather than primary
// recipients. Tags and metadata attach to to entries only.
func buildRecipients(msg *Message, env Envelope, tags []string, metadata map[string]any) ([]sparkpost.Recipient, []string) {
	ccSet := emailSet(msg.Cc)
	bccSet := emailSet(msg.Bcc)

	primaryTo := ""
	for _, rfc := range env.Recipients {
		email := EmailFromRFC(rfc)
		if !ccSet[email] && !bccSet[email] {
			primaryTo = email
			break
		}
	}

	var recipients []sparkpost.Recipient
	var ccEmails []string
	for _, rfc := range env.Recipients {
		email := EmailFromRFC(rfc)
		name := DisplayNameFromRFC(rfc)
		if name == "" {
			name = email
		}

		if ccSet[email] || bccSet[email] {
			headerTo := primaryTo
			if headerTo == "" {
				headerTo = email
			}
			recipients = append(recipients, sparkpost.Recipient{
				Address: sparkpost.Address{Email: email, Name: name, HeaderTo: headerTo},
			})
			if ccSet[email] {
				ccEmails = append(ccEmails, email)
			}
			continue
		}
		recipients = append(recipients, sparkpost.Recipient{
			Address:  sparkpost.Address{Email: email, Name: name},
			Tags:     tags,
			Metadata: metadata,
		})
	}
	return recipients, ccEmails
}

// resolveSender applies the configured sender overrides: the admin address
// is swapped for the default from address when override_admin_email is on,
// and force_sender trumps everything.
func resolveSender(sender string, cfg config.MailerConfig) (email, name string) {
	email = EmailFromRFC(sender)
	name = DisplayNameFromRFC(sender)

	if cfg.OverrideAdminEmail && cfg.AdminEmail != "" && email == cfg.AdminEmail && cfg.DefaultFrom != "" {
		email = cfg.DefaultFrom
		name = ""
	}
	if cfg.ForceSender != "" {
		email = EmailFromRFC(cfg.ForceSender)
		name = DisplayNameFromRFC(cfg.ForceSender)
	}
	if name == "" {
		name = DisplayNameFromRFC(email)
	}
	return email, name
}

func encodeAttachments(attachments []Attachment) []map[string]string {
	out := make([]map[string]string, 0, len(attachments))
	for _, a := range attachments {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		out = append(out, map[string]string{
			"name": a.Filename,
			"type": contentType,
			"data": base64.StdEncoding.EncodeToString(a.Body),
		})
	}
	return out
}

func emailSet(addrs []string) map[string]bool {
	set := make(map[string]bool, len(addrs))
	for _, a := range addrs {
		set[EmailFromRFC(a)] = true
	}
	return set
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
