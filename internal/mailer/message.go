package mailer

// Compat headers understood by the payload builder. They are consumed while
// building the transmission and never hit the wire as SMTP headers.
const (
	HeaderTags      = "X-MC-Tags"
	HeaderMetadata  = "X-MC-Metadata"
	HeaderInlineCSS = "X-MC-InlineCSS"
	HeaderMSYSAPI   = "X-MSYS-API"

	// HeaderSendingDisabled short-circuits delivery for a single message
	// regardless of the global disable_sending setting.
	HeaderSendingDisabled = "X-SendingDisabled"

	headerListUnsubscribe = "List-Unsubscribe"
)

// Attachment is a file carried by an outbound message. Body holds the raw
// bytes; encoding happens when the transmission payload is built.
type Attachment struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Message is a provider-agnostic outbound email. Address fields accept both
// bare addresses and "Name <email>" form.
type Message struct {
	From    string
	To      []string
	Cc      []string
	Bcc     []string
	ReplyTo string

	Subject string
	HTML    string
	Text    string

	Headers     map[string]string
	Attachments []Attachment
}

// Envelope is the SMTP-level sender and recipient set. It can diverge from
// the visible headers, e.g. for VERP-style return paths.
type Envelope struct {
	Sender     string
	Recipients []string
}

// Envelope derives the default envelope from the message headers: the From
// address as sender and the union of To, Cc and Bcc as recipients.
func (m *Message) Envelope() Envelope {
	recipients := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	recipients = append(recipients, m.To...)
	recipients = append(recipients, m.Cc...)
	recipients = append(recipients, m.Bcc...)
	return Envelope{Sender: m.From, Recipients: recipients}
}
