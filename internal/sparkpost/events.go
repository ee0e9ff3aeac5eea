package sparkpost

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// SearchMessageEvents queries the legacy message-events endpoint.
// Defaults: local timezone, 100 results per page, last 7 days. Caller
// parameters override the defaults.
//
// Deprecated: the provider has replaced this endpoint with
// events/message; use SearchEvents for new code.
func (c *Client) SearchMessageEvents(ctx context.Context, params url.Values) ([]MessageEvent, error) {
	query := url.Values{}
	query.Set("timezone", localTimezone())
	query.Set("per_page", "100")
	query.Set("from", validDatetime(time.Now().AddDate(0, 0, -7)))
	for k, vs := range params {
		query[k] = vs
	}

	var events []MessageEvent
	if err := c.requestInto(ctx, http.MethodGet, "message-events", query, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// SearchEvents queries the events/message endpoint. Supported filters
// include from/to, events, recipients, campaigns, templates,
// transmissions, subaccounts and mailbox_providers; they are passed
// through verbatim.
func (c *Client) SearchEvents(ctx context.Context, params url.Values) ([]MessageEvent, error) {
	var events []MessageEvent
	if err := c.requestInto(ctx, http.MethodGet, "events/message", params, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// localTimezone names the process's timezone in a form the API accepts.
// Go reports an unconfigured local zone as "Local", which the API does
// not understand; fall back to UTC in that case.
func localTimezone() string {
	name := time.Local.String()
	if name == "Local" {
		return "UTC"
	}
	return name
}
