package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"github.com/srgjo27/ticket_storefront/internal/core/domain"
)

const (
	DefaultBaseURL = "http://localhost:8074/api"
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 64 << 10
)

type Config struct {
	BaseURL string
	Timeout time.Duration

	// BreakerFailures consecutive transport or 5xx failures open the
	// breaker for BreakerCooldown.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Client talks to the external ticketing API. It implements ports.OrderAPI,
// ports.CatalogAPI and ports.FavoritesAPI.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "order-api",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		breaker: breaker,
		logger:  logger,
	}
}

// countsAsSuccess keeps client errors and caller cancellations from
// tripping the breaker; only transport failures and 5xx count.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode < http.StatusInternalServerError
	}
	return false
}

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

type errorBody struct {
	Message string `json:"message"`
}

func (c *Client) Checkout(ctx context.Context, submission domain.CheckoutSubmission) (*domain.Order, error) {
	var out dataEnvelope[domain.Order]
	if err := c.do(ctx, http.MethodPost, "/public/checkout", "", submission, &out); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

func (c *Client) GetOrder(ctx context.Context, hash string) (*domain.Order, error) {
	var out dataEnvelope[domain.Order]
	if err := c.do(ctx, http.MethodGet, "/public/orders/"+url.PathEscape(hash), "", nil, &out); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

// ValidateCoupon answers with the validation body even when the API rejects
// the coupon with a client error status.
func (c *Client) ValidateCoupon(ctx context.Context, code string, eventID int64, orderValue float64) (*domain.CouponValidation, error) {
	payload := map[string]any{
		"code":        code,
		"event_id":    eventID,
		"order_value": orderValue,
	}

	var out domain.CouponValidation
	err := c.do(ctx, http.MethodPost, "/public/coupons/validate", "", payload, &out)
	if err == nil {
		return &out, nil
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return &domain.CouponValidation{Valid: false, Message: apiErr.Message}, nil
	}

	return nil, err
}

func (c *Client) ListEvents(ctx context.Context, filter domain.EventFilter) (*domain.EventPage, error) {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.City != "" {
		q.Set("city", filter.City)
	}
	if filter.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(filter.PerPage))
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Sort != "" {
		q.Set("sort", filter.Sort)
	}
	if filter.Direction != "" {
		q.Set("direction", filter.Direction)
	}

	path := "/public/events"
	if qs := q.Encode(); qs != "" {
		path += "?" + qs
	}

	var out domain.EventPage
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) GetEvent(ctx context.Context, slug string) (*domain.Event, error) {
	var out dataEnvelope[domain.Event]
	if err := c.do(ctx, http.MethodGet, "/public/events/"+url.PathEscape(slug), "", nil, &out); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

func (c *Client) CheckFavorites(ctx context.Context, token string, eventIDs []int64) ([]int64, error) {
	ids := make([]string, len(eventIDs))
	for i, id := range eventIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	var out struct {
		FavoritedIDs []int64 `json:"favorited_ids"`
	}
	if err := c.do(ctx, http.MethodGet, "/site/favorites/check?event_ids="+strings.Join(ids, ","), token, nil, &out); err != nil {
		return nil, err
	}

	return out.FavoritedIDs, nil
}

func (c *Client) ToggleFavorite(ctx context.Context, token string, eventID int64) (*domain.FavoriteToggle, error) {
	var out domain.FavoriteToggle
	path := fmt.Sprintf("/site/favorites/%d", eventID)
	if err := c.do(ctx, http.MethodPost, path, token, nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// do sends one JSON request through the circuit breaker. Non-2xx responses
// become *domain.APIError with the server's message when the body carries one.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.roundTrip(ctx, method, path, token, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("order api request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("order api request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &domain.APIError{StatusCode: resp.StatusCode}

		var eb errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Message = eb.Message
		}

		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}

	return nil
}
