package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/keksoko/storefront/pkg/config"
	pkgerrors "github.com/keksoko/storefront/pkg/errors"
)

// Client talks to the marketplace API that owns products, orders,
// payments and reviews. The storefront holds no data of its own beyond
// the session cart; everything here is the source of truth.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds an upstream client from config.
func New(cfg config.UpstreamConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("upstream base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid upstream base url: %w", err)
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Ping verifies the upstream API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping upstream: %w", err)
	}
	defer drain(resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("upstream unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// ListProducts runs a catalog query with the provided filter parameters.
func (c *Client) ListProducts(ctx context.Context, query url.Values) (*ProductPage, error) {
	endpoint := c.baseURL + "/products"
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var page ProductPage
	if err := c.doJSON(ctx, http.MethodGet, endpoint, "", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateOrder submits the cart and contact details, initiating payment.
func (c *Client) CreateOrder(ctx context.Context, order OrderRequest) (*OrderCreated, error) {
	var created OrderCreated
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/checkout", "", order, &created); err != nil {
		return nil, err
	}
	if created.OrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order created without an order id")
	}
	return &created, nil
}

// PaymentStatus fetches the gateway payment state for an order.
func (c *Client) PaymentStatus(ctx context.Context, orderID string) (PaymentState, error) {
	if strings.TrimSpace(orderID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	var payload struct {
		PaymentStatus PaymentState `json:"paymentStatus"`
	}
	endpoint := c.baseURL + "/mpesa/status/" + url.PathEscape(orderID)
	if err := c.doJSON(ctx, http.MethodGet, endpoint, "", nil, &payload); err != nil {
		return "", err
	}
	return payload.PaymentStatus, nil
}

// ReviewEligibility fetches the review gate tuple for a product. The
// buyer's bearer token is forwarded so the API can scope the answer.
func (c *Client) ReviewEligibility(ctx context.Context, productID, authToken string) (*ReviewEligibility, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	var eligibility ReviewEligibility
	endpoint := c.baseURL + "/products/" + url.PathEscape(productID) + "/review"
	if err := c.doJSON(ctx, http.MethodGet, endpoint, authToken, nil, &eligibility); err != nil {
		return nil, err
	}
	return &eligibility, nil
}

// SubmitReview creates or updates the buyer's review for a product.
func (c *Client) SubmitReview(ctx context.Context, productID, authToken string, review Review) error {
	if strings.TrimSpace(productID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	endpoint := c.baseURL + "/products/" + url.PathEscape(productID) + "/review"
	return c.doJSON(ctx, http.MethodPost, endpoint, authToken, review, nil)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint, authToken string, body, dest any) error {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call upstream api")
	}
	defer drain(resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errorFromResponse(resp)
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode upstream response")
	}
	return nil
}

// errorFromResponse converts a non-2xx upstream response into a coded
// error, keeping the server-provided message when one is decodable.
func errorFromResponse(resp *http.Response) error {
	message := ""
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8192)).Decode(&body); err == nil {
		if body.Error != "" {
			message = body.Error
		} else if body.Message != "" {
			message = body.Message
		}
	}
	if message == "" {
		message = fmt.Sprintf("upstream returned status %d", resp.StatusCode)
	}

	code := pkgerrors.CodeDependency
	switch {
	case resp.StatusCode == http.StatusNotFound:
		code = pkgerrors.CodeNotFound
	case resp.StatusCode == http.StatusBadRequest:
		code = pkgerrors.CodeValidation
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		code = pkgerrors.CodeForbidden
	case resp.StatusCode == http.StatusConflict:
		code = pkgerrors.CodeConflict
	}
	return pkgerrors.New(code, message).WithDetails(map[string]any{"status": resp.StatusCode})
}

func drain(body io.ReadCloser) {
	io.Copy(io.Discard, body)
	body.Close()
}
