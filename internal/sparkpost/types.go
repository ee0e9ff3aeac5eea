package sparkpost

// Webhook event categories. A webhook batch entry nests its event data
// under exactly one of these keys.
const (
	TypeMessage     = "message_event"     // bounce, delivery, injection, sms_status, spam_complaint, out_of_band, policy_rejection, delay
	TypeEngagement  = "track_event"       // click, open
	TypeGeneration  = "gen_event"         // generation_failure, generation_rejection
	TypeUnsubscribe = "unsubscribe_event" // list_unsubscribe, link_unsubscribe
	TypeRelay       = "relay_event"       // relay_injection, relay_rejection, relay_delivery, relay_tempfail, relay_permfail
)

// Individual event names within the categories above.
const (
	EventDelivery        = "delivery"
	EventBounce          = "bounce"
	EventInjection       = "injection"
	EventSMSStatus       = "sms_status"
	EventSpamComplaint   = "spam_complaint"
	EventOutOfBand       = "out_of_band"
	EventPolicyRejection = "policy_rejection"
	EventDelay           = "delay"
	EventOpen            = "open"
	EventClick           = "click"
	EventGenFailure      = "generation_failure"
	EventGenRejection    = "generation_rejection"
	EventListUnsub       = "list_unsubscribe"
	EventLinkUnsub       = "link_unsubscribe"
	EventRelayInjection  = "relay_injection"
	EventRelayRejection  = "relay_rejection"
	EventRelayDelivery   = "relay_delivery"
	EventRelayTempfail   = "relay_tempfail"
	EventRelayPermfail   = "relay_permfail"
)

// Address is a single from/to address in the transmissions schema.
// HeaderTo is only set on cc/bcc entries, to preserve the visible To
// header for recipients that are technically separate API entries.
type Address struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	HeaderTo string `json:"header_to,omitempty"`
}

// Recipient is one entry of a transmission's recipients list.
type Recipient struct {
	Address          Address        `json:"address"`
	Tags             []string       `json:"tags,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	SubstitutionData map[string]any `json:"substitution_data,omitempty"`
}

// TransmissionResult is the response to a create-transmission call.
type TransmissionResult struct {
	ID                      string `json:"id"`
	TotalAcceptedRecipients int    `json:"total_accepted_recipients"`
	TotalRejectedRecipients int    `json:"total_rejected_recipients"`
}

// Webhook is a webhook definition as returned by the API.
type Webhook struct {
	ID              string            `json:"id,omitempty"`
	Name            string            `json:"name"`
	Target          string            `json:"target"`
	Events          []string          `json:"events"`
	AuthType        string            `json:"auth_type,omitempty"`
	AuthToken       string            `json:"auth_token,omitempty"`
	AuthCredentials *WebhookBasicAuth `json:"auth_credentials,omitempty"`
	LastSuccessful  string            `json:"last_successful,omitempty"`
	LastFailure     string            `json:"last_failure,omitempty"`
}

// WebhookBasicAuth carries basic-auth credentials embedded in a webhook
// definition.
type WebhookBasicAuth struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// BatchStatus is one entry of a webhook's batch delivery history.
type BatchStatus struct {
	BatchID      string `json:"batch_id"`
	Timestamp    string `json:"ts"`
	Attempts     int    `json:"attempts"`
	ResponseCode string `json:"response_code"`
	FailureCode  string `json:"failure_code,omitempty"`
}

// DomainStatus is the verification state of a sending domain.
type DomainStatus struct {
	SPFStatus         string `json:"spf_status"`
	DKIMStatus        string `json:"dkim_status"`
	ComplianceStatus  string `json:"compliance_status"`
	OwnershipVerified bool   `json:"ownership_verified"`
}

// SendingDomain is a DNS domain registered for use in From addresses.
type SendingDomain struct {
	Domain string       `json:"domain"`
	Status DomainStatus `json:"status"`
}

// Ready reports whether the domain can be used for sending: DKIM valid,
// compliance valid and ownership verified.
func (d SendingDomain) Ready() bool {
	return d.Status.DKIMStatus == "valid" &&
		d.Status.ComplianceStatus == "valid" &&
		d.Status.OwnershipVerified
}

// VerifyResult is the response to a sending-domain verify call.
type VerifyResult struct {
	Domain            string `json:"domain,omitempty"`
	SPFStatus         string `json:"spf_status"`
	DKIMStatus        string `json:"dkim_status"`
	ComplianceStatus  string `json:"compliance_status"`
	OwnershipVerified bool   `json:"ownership_verified"`
}

// InboundDomain is a domain configured to receive relayed mail.
type InboundDomain struct {
	Domain string `json:"domain"`
}

// RelayWebhookMatch selects which inbound traffic a relay webhook sees.
type RelayWebhookMatch struct {
	Protocol string `json:"protocol,omitempty"`
	Domain   string `json:"domain"`
}

// RelayWebhook forwards inbound mail for a matched domain to a target
// URL.
type RelayWebhook struct {
	ID        string            `json:"id,omitempty"`
	Name      string            `json:"name"`
	Target    string            `json:"target"`
	AuthToken string            `json:"auth_token,omitempty"`
	Match     RelayWebhookMatch `json:"match"`
}

// SuppressionEntry is one address on the provider's do-not-send list.
type SuppressionEntry struct {
	Recipient     string `json:"recipient"`
	Type          string `json:"type"`
	Source        string `json:"source,omitempty"`
	Description   string `json:"description,omitempty"`
	Created       string `json:"created,omitempty"`
	Updated       string `json:"updated,omitempty"`
	Transactional bool   `json:"transactional,omitempty"`
	SubaccountID  int    `json:"subaccount_id,omitempty"`
}

// SuppressionSummary breaks the suppression list down by source.
type SuppressionSummary struct {
	SpamComplaint   int `json:"spam_complaint"`
	ListUnsubscribe int `json:"list_unsubscribe"`
	BounceRule      int `json:"bounce_rule"`
	UnsubscribeLink int `json:"unsubscribe_link"`
	ManuallyAdded   int `json:"manually_added"`
	Compliance      int `json:"compliance"`
	Total           int `json:"total"`
}

// MessageEvent is one result of an event search. The API returns many
// more fields; these are the ones the admin surface displays and
// filters on.
type MessageEvent struct {
	EventID         string         `json:"event_id"`
	Type            string         `json:"type"`
	Timestamp       string         `json:"timestamp"`
	RcptTo          string         `json:"rcpt_to"`
	RawRcptTo       string         `json:"raw_rcpt_to,omitempty"`
	FriendlyFrom    string         `json:"friendly_from,omitempty"`
	Subject         string         `json:"subject,omitempty"`
	MessageID       string         `json:"message_id,omitempty"`
	TransmissionID  string         `json:"transmission_id,omitempty"`
	CampaignID      string         `json:"campaign_id,omitempty"`
	TemplateID      string         `json:"template_id,omitempty"`
	SendingDomain   string         `json:"sending_domain,omitempty"`
	RecipientDomain string         `json:"recipient_domain,omitempty"`
	IPAddress       string         `json:"ip_address,omitempty"`
	Reason          string         `json:"reason,omitempty"`
	BounceClass     string         `json:"bounce_class,omitempty"`
	SubaccountID    int            `json:"subaccount_id,omitempty"`
	RcptTags        []string       `json:"rcpt_tags,omitempty"`
	RcptMeta        map[string]any `json:"rcpt_meta,omitempty"`
}
