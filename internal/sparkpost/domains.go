package sparkpost

import (
	"context"
	"net/http"
)

// CreateSendingDomain registers a domain for use in From addresses.
// The params bag is passed through; at minimum it must carry "domain".
func (c *Client) CreateSendingDomain(ctx context.Context, params Params) (map[string]any, error) {
	var result map[string]any
	if err := c.requestInto(ctx, http.MethodPost, "sending-domains", nil, params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateSimpleSendingDomain registers a domain with default settings.
func (c *Client) CreateSimpleSendingDomain(ctx context.Context, domain string) (map[string]any, error) {
	return c.CreateSendingDomain(ctx, Params{"domain": domain})
}

// ListSendingDomains lists every registered sending domain.
func (c *Client) ListSendingDomains(ctx context.Context) ([]SendingDomain, error) {
	var domains []SendingDomain
	if err := c.requestInto(ctx, http.MethodGet, "sending-domains", nil, nil, &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

// GetSendingDomain fetches a sending domain by name.
func (c *Client) GetSendingDomain(ctx context.Context, domain string) (*SendingDomain, error) {
	var d SendingDomain
	if err := c.requestInto(ctx, http.MethodGet, "sending-domains/"+domain, nil, nil, &d); err != nil {
		return nil, err
	}
	if d.Domain == "" {
		d.Domain = domain
	}
	return &d, nil
}

// VerifySendingDomain asks the provider to re-check the domain's SPF
// and DKIM records.
func (c *Client) VerifySendingDomain(ctx context.Context, domain string) (*VerifyResult, error) {
	body := map[string]any{
		"dkim_verify": true,
		"spf_verify":  true,
	}
	var result VerifyResult
	if err := c.requestInto(ctx, http.MethodPost, "sending-domains/"+domain+"/verify", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateSendingDomain updates a sending domain's settings.
func (c *Client) UpdateSendingDomain(ctx context.Context, domain string, params Params) error {
	_, err := c.request(ctx, http.MethodPut, "sending-domains/"+domain, nil, params)
	return err
}

// DeleteSendingDomain removes a sending domain.
func (c *Client) DeleteSendingDomain(ctx context.Context, domain string) error {
	_, err := c.request(ctx, http.MethodDelete, "sending-domains/"+domain, nil, nil)
	return err
}

// CreateInboundDomain registers a domain that will receive relayed
// inbound mail.
func (c *Client) CreateInboundDomain(ctx context.Context, domain string) error {
	_, err := c.request(ctx, http.MethodPost, "inbound-domains", nil, map[string]any{"domain": domain})
	return err
}

// ListInboundDomains lists every inbound domain.
func (c *Client) ListInboundDomains(ctx context.Context) ([]InboundDomain, error) {
	var domains []InboundDomain
	if err := c.requestInto(ctx, http.MethodGet, "inbound-domains", nil, nil, &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

// GetInboundDomain fetches the details of an inbound domain.
func (c *Client) GetInboundDomain(ctx context.Context, domain string) (*InboundDomain, error) {
	var d InboundDomain
	if err := c.requestInto(ctx, http.MethodGet, "inbound-domains/"+domain, nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// DeleteInboundDomain removes an inbound domain. Relay webhooks
// matching the domain must be deleted first.
func (c *Client) DeleteInboundDomain(ctx context.Context, domain string) error {
	_, err := c.request(ctx, http.MethodDelete, "inbound-domains/"+domain, nil, nil)
	return err
}
