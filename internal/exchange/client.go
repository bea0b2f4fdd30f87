// Package exchange implements the home venue's REST and WebSocket clients.
//
// Client satisfies internal/reactor's HomeClient port:
//   - RequestTransactionsFrom: GET transactions newer than a timestamp
//     high-water mark (idempotent, safe to retry — spec.md §4.6).
//   - PlaceOrder / CancelOrder: the order manager's two mutating operations.
//
// Every request is wrapped in a circuit breaker so a failing home venue
// fails fast instead of piling up retries, and retried on 5xx by resty's
// built-in retry. Order placement, cancels and book reads wait on their
// rate-limit category; transaction polls and key derivation do not. Order
// placement and cancels carry L2 HMAC headers; book and transaction reads
// are sent unauthenticated.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"

	"tacticmm/internal/config"
	"tacticmm/pkg/types"
)

// Client is the home venue's REST API client.
type Client struct {
	http    *resty.Client
	auth    *Auth
	rl      *RateLimiter
	cb      *gobreaker.CircuitBreaker[*resty.Response]
	assetID string
	dryRun  bool
	logger  *slog.Logger
}

// NewClient creates a REST client with rate limiting, retry, and a circuit
// breaker around the underlying transport.
func NewClient(cfg config.Config, auth *Auth, logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.Home.RESTBaseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json")

	cbSettings := gobreaker.Settings{
		Name:        "home-venue-http",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Client{
		http:    httpClient,
		auth:    auth,
		rl:      NewRateLimiter(),
		cb:      gobreaker.NewCircuitBreaker[*resty.Response](cbSettings),
		assetID: cfg.Home.AssetID,
		dryRun:  cfg.DryRun,
		logger:  logger,
	}
}

// do runs an already-built resty request through the circuit breaker.
func (c *Client) do(fn func() (*resty.Response, error)) (*resty.Response, error) {
	return c.cb.Execute(fn)
}

// GetOrderBook fetches the order book for the home venue's tracked asset.
func (c *Client) GetOrderBook(ctx context.Context, assetID string) (*types.BookResponse, error) {
	if err := c.rl.Book.Wait(ctx); err != nil {
		return nil, err
	}

	var result types.BookResponse
	resp, err := c.do(func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetQueryParam("asset_id", assetID).
			SetResult(&result).
			Get("/book")
	})
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("get book: status %d: %s", resp.StatusCode(), resp.String())
	}
	return &result, nil
}

// PlaceOrder places a single order and returns the venue-assigned order id.
func (c *Client) PlaceOrder(ctx context.Context, side types.Side, price types.Price, size float64) (string, error) {
	if c.dryRun {
		id := fmt.Sprintf("dry-run-%d", time.Now().UnixNano())
		c.logger.Info("DRY-RUN: would place order", "side", side, "price", price, "size", size, "order_id", id)
		return id, nil
	}
	if err := c.rl.Order.Wait(ctx); err != nil {
		return "", err
	}

	order := types.UserOrder{
		AssetID:    c.assetID,
		Price:      float64(price),
		Size:       size,
		Side:       side,
		OrderType:  types.OrderTypeGTC,
		Expiration: 0,
	}

	body, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("marshal order: %w", err)
	}
	headers, err := c.auth.L2Headers("POST", "/orders", string(body))
	if err != nil {
		return "", fmt.Errorf("l2 headers: %w", err)
	}

	var result types.OrderResponse
	resp, err := c.do(func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetHeaders(headers).
			SetBody(order).
			SetResult(&result).
			Post("/orders")
	})
	if err != nil {
		return "", fmt.Errorf("place order: %w", err)
	}
	if resp.StatusCode() != http.StatusOK || !result.Success {
		return "", fmt.Errorf("place order: status %d: %s (%s)", resp.StatusCode(), resp.String(), result.ErrorMsg)
	}
	return result.OrderID, nil
}

// CancelOrder cancels a single order by id.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	if c.dryRun {
		c.logger.Info("DRY-RUN: would cancel order", "order_id", orderID)
		return nil
	}
	if err := c.rl.Cancel.Wait(ctx); err != nil {
		return err
	}

	payload := struct {
		OrderIDs []string `json:"orderIDs"`
	}{OrderIDs: []string{orderID}}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal cancel request: %w", err)
	}
	headers, err := c.auth.L2Headers("DELETE", "/orders", string(body))
	if err != nil {
		return fmt.Errorf("l2 headers: %w", err)
	}

	var result types.CancelResponse
	resp, err := c.do(func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetHeaders(headers).
			SetBody(json.RawMessage(body)).
			SetResult(&result).
			Delete("/orders")
	})
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("cancel order: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// CancelAll cancels every open order on the home venue. It is not part of
// the reactor's HomeClient port; neither startup nor a reset calls it.
func (c *Client) CancelAll(ctx context.Context) error {
	if c.dryRun {
		c.logger.Info("DRY-RUN: would cancel all orders")
		return nil
	}
	if err := c.rl.Cancel.Wait(ctx); err != nil {
		return err
	}

	headers, err := c.auth.L2Headers("DELETE", "/cancel-all", "")
	if err != nil {
		return fmt.Errorf("l2 headers: %w", err)
	}

	var result types.CancelResponse
	resp, err := c.do(func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetHeaders(headers).
			SetResult(&result).
			Delete("/cancel-all")
	})
	if err != nil {
		return fmt.Errorf("cancel all: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("cancel all: status %d: %s", resp.StatusCode(), resp.String())
	}
	c.logger.Warn("all orders cancelled", "count", len(result.Canceled))
	return nil
}

// RequestTransactionsFrom fetches transactions newer than lastSeenTs.
// Idempotent and safe to retry: the fill poller (internal/reactor) dedupes
// by exec_id and derives incremental fill sizes from cum_size.
func (c *Client) RequestTransactionsFrom(ctx context.Context, lastSeenTs string) ([]types.Transaction, error) {
	var result []types.Transaction
	resp, err := c.do(func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetQueryParam("after", lastSeenTs).
			SetResult(&result).
			Get("/transactions")
	})
	if err != nil {
		return nil, fmt.Errorf("request transactions: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("request transactions: status %d: %s", resp.StatusCode(), resp.String())
	}
	return result, nil
}

// DeriveAPIKey derives L2 API credentials via L1 authentication.
func (c *Client) DeriveAPIKey(ctx context.Context) (*Credentials, error) {
	headers, err := c.auth.L1Headers(0)
	if err != nil {
		return nil, fmt.Errorf("l1 headers: %w", err)
	}

	var result Credentials
	resp, err := c.do(func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetHeaders(headers).
			SetResult(&result).
			Get("/auth/derive-api-key")
	})
	if err != nil {
		return nil, fmt.Errorf("derive api key: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("derive api key: status %d: %s", resp.StatusCode(), resp.String())
	}

	c.auth.SetCredentials(result)
	c.logger.Info("API key derived", "api_key", result.APIKey)
	return &result, nil
}
