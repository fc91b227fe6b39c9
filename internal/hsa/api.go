// Package hsa is the client for the HSA exam registration API.
//
// All calls go through a single [poller.Client], so they are serialized and
// followed by the configured delay. Read calls never fail loudly: a network
// error, a non-2xx status or a malformed body is logged and reported as an
// empty result with ok=false.
package hsa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jpalmerr/slotwatch"
	"github.com/jpalmerr/slotwatch/internal/poller"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.hsa.edu.vn"

const (
	signInPath       = "/accounts/sign-in"
	registrationPath = "/exam/views/registration"
)

// DefaultHeaders mimic the registration web app. The API rejects requests
// that do not look like they come from a browser on the portal origin.
var DefaultHeaders = map[string]string{
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "en-US,en;q=0.9,vi;q=0.8",
	"Cache-Control":   "no-cache",
	"Connection":      "keep-alive",
	"DNT":             "1",
	"Origin":          "https://id.hsa.edu.vn",
	"Pragma":          "no-cache",
	"Referer":         "https://id.hsa.edu.vn/",
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
}

// ErrSignInFailed is returned when the sign-in call yields no token.
var ErrSignInFailed = errors.New("authentication failed")

// API implements [slotwatch.Registry] against the HSA registration service.
type API struct {
	client  *poller.Client
	baseURL string
	logger  *slog.Logger
}

var _ slotwatch.Registry = (*API)(nil)

// New creates an [API]. An empty baseURL selects [DefaultBaseURL].
func New(client *poller.Client, baseURL string, logger *slog.Logger) *API {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

type signInRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token string `json:"token"`
}

// SignIn exchanges a phone number and password for a bearer token.
func (a *API) SignIn(ctx context.Context, phone, password string) (string, error) {
	a.logger.Info("authenticating", "phone", phone)

	resp := a.client.Fetch(ctx, http.MethodPost, a.baseURL+signInPath, signInRequest{ID: phone, Password: password})
	if !resp.OK() {
		return "", fmt.Errorf("%w: %w", ErrSignInFailed, resp.Error)
	}

	var body signInResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", fmt.Errorf("%w: malformed response: %w", ErrSignInFailed, err)
	}
	if body.Token == "" {
		return "", fmt.Errorf("%w: no token in response: %s", ErrSignInFailed, truncate(resp.Body, 200))
	}

	a.logger.Info("authentication successful")
	return body.Token, nil
}

// ResolveToken returns token when set, otherwise signs in with phone and
// password. It fails with [slotwatch.ErrNoToken] when neither is usable.
func (a *API) ResolveToken(ctx context.Context, token, phone, password string) (string, error) {
	if token != "" {
		return token, nil
	}
	if phone == "" || password == "" {
		return "", fmt.Errorf("%w: provide a token or a phone number and password", slotwatch.ErrNoToken)
	}

	token, err := a.SignIn(ctx, phone, password)
	if err != nil {
		return "", fmt.Errorf("%w: %w", slotwatch.ErrNoToken, err)
	}
	return token, nil
}

// Periods lists the available exam periods. The first one is the active period.
func (a *API) Periods(ctx context.Context) ([]slotwatch.Period, bool) {
	return getList[slotwatch.Period](ctx, a, "available-period", nil)
}

// Batches lists the batches of a period.
func (a *API) Batches(ctx context.Context, periodID slotwatch.ID) ([]slotwatch.Batch, bool) {
	return getList[slotwatch.Batch](ctx, a, "available-batch", url.Values{"periodId": {periodID.String()}})
}

// Locations lists the test sites of a batch.
func (a *API) Locations(ctx context.Context, batchID slotwatch.ID) ([]slotwatch.Location, bool) {
	return getList[slotwatch.Location](ctx, a, "available-location", url.Values{"batchId": {batchID.String()}})
}

// Slots lists the sessions of a location.
func (a *API) Slots(ctx context.Context, locationID slotwatch.ID) ([]slotwatch.Slot, bool) {
	return getList[slotwatch.Slot](ctx, a, "available-slot", url.Values{"locationId": {locationID.String()}})
}

// getList fetches a registration resource and decodes it as a JSON array.
// Any failure is logged and yields (nil, false).
func getList[T any](ctx context.Context, a *API, resource string, query url.Values) ([]T, bool) {
	endpoint := a.baseURL + registrationPath + "/" + resource
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	resp := a.client.Fetch(ctx, http.MethodGet, endpoint, nil)
	if !resp.OK() {
		a.logger.Warn("api call failed",
			"resource", resource,
			"url", endpoint,
			"status_code", resp.StatusCode,
			"latency_ms", resp.Latency.Milliseconds(),
			"error", resp.Error.Error(),
		)
		return nil, false
	}

	var items []T
	if err := json.Unmarshal(resp.Body, &items); err != nil {
		a.logger.Warn("api call returned malformed body",
			"resource", resource,
			"url", endpoint,
			"error", err.Error(),
			"body", truncate(resp.Body, 200),
		)
		return nil, false
	}

	a.logger.Debug("api call completed",
		"resource", resource,
		"items", len(items),
		"latency_ms", resp.Latency.Milliseconds(),
	)
	return items, true
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
