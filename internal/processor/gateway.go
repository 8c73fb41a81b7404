package processor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/streamvault/payments/internal/repos/processorcfg"
	"github.com/streamvault/payments/internal/repos/sessions"
)

const maxResponseBytes = 1 << 20 // 1MB cap on processor responses

// Gateway issues checkout-session requests to the external processor.
// It performs no retries: a failed call is surfaced once and retry
// policy stays with the caller (re-poll vs. abandon).
type Gateway struct {
	baseURL string
	client  *http.Client
}

// NewGateway returns a Gateway for the processor at baseURL. timeout
// bounds the whole round trip; there is no engine-internal retry loop.
func NewGateway(baseURL string, timeout time.Duration) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// CreateSession posts the session's line items to the processor and
// returns the canonical form of whatever came back. Only network-level
// failures return an error; a non-2xx processor response comes back as
// a Canonical the caller inspects.
func (g *Gateway) CreateSession(ctx context.Context, cfg processorcfg.Config, s sessions.Session) (Canonical, error) {
	body := encodeSessionForm(cfg, s)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/v1/checkout/sessions", strings.NewReader(body))
	if err != nil {
		return Canonical{}, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+cfg.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return Canonical{}, fmt.Errorf("call processor: %w", err)
	}
	//nolint:errcheck
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Canonical{}, fmt.Errorf("read processor response: %w", err)
	}

	return Transform([]byte(s.ID), Raw{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Body:    raw,
	}), nil
}

// encodeSessionForm builds the form-encoded checkout-session request.
// url.Values.Encode sorts keys, so the request body is deterministic
// for a given session.
func encodeSessionForm(cfg processorcfg.Config, s sessions.Session) string {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", s.ID)
	form.Set("success_url", s.SuccessURL)
	form.Set("cancel_url", s.CancelURL)

	for i, item := range s.Items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", item.Currency)
		form.Set(prefix+"[price_data][product_data][name]", item.ProductName)
		form.Set(prefix+"[price_data][product_data][description]", item.ProductDescription)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.PriceMinor, 10))
		form.Set(prefix+"[quantity]", strconv.FormatInt(item.Quantity, 10))
	}

	for i, country := range cfg.AllowedCountries {
		form.Set(fmt.Sprintf("shipping_address_collection[allowed_countries][%d]", i), country)
	}

	return form.Encode()
}
