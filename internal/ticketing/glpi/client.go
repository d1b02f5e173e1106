package glpi

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"glpibot/internal/domain"
	"glpibot/internal/ticketing"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	defaultListLimit = 20
	maxResponseSize  = 4 << 20
	dateLayout       = "2006-01-02 15:04:05"
)

// Config holds GLPI REST API connection settings
type Config struct {
	// BaseURL points at apirest.php, e.g. https://glpi.example.com/apirest.php
	BaseURL string
	// AppToken is sent as App-Token header when set
	AppToken   string
	HTTPClient *http.Client
	// ListLimit caps the number of tickets returned by ListTickets
	ListLimit int
}

// Client implements ticketing.Backend on top of GLPI REST API
type Client struct {
	baseURL    string
	appToken   string
	httpClient *http.Client
	listLimit  int
}

// APIError is a non-2xx answer from GLPI. GLPI reports errors as
// a two element JSON array: [code, message].
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("glpi: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// NewClient creates a new GLPI client
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("glpi: base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("glpi: invalid base URL %q: %w", cfg.BaseURL, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	limit := cfg.ListLimit
	if limit <= 0 {
		limit = defaultListLimit
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		appToken:   cfg.AppToken,
		httpClient: httpClient,
		listLimit:  limit,
	}, nil
}

// Authenticate opens a GLPI session with user's credentials
func (c *Client) Authenticate(ctx context.Context, login, password string) (string, error) {
	header := http.Header{}
	credentials := base64.StdEncoding.EncodeToString([]byte(login + ":" + password))
	header.Set("Authorization", "Basic "+credentials)

	body, err := c.do(ctx, http.MethodGet, "/initSession", header, nil, nil)
	if err != nil {
		if hasStatus(err, http.StatusUnauthorized) {
			return "", ticketing.ErrInvalidCredentials
		}
		return "", fmt.Errorf("glpi: init session: %w", err)
	}

	token := gjson.GetBytes(body, "session_token").String()
	if token == "" {
		return "", fmt.Errorf("glpi: init session returned no session token")
	}
	return token, nil
}

// Logout closes the GLPI session
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodGet, "/killSession", sessionHeader(token), nil, nil)
	if err != nil {
		if hasStatus(err, http.StatusUnauthorized) {
			// already expired
			return nil
		}
		return fmt.Errorf("glpi: kill session: %w", err)
	}
	return nil
}

// CreateTicket submits a new ticket and returns its id
func (c *Client) CreateTicket(ctx context.Context, token string, ticket domain.Ticket) (int, error) {
	payload, err := ticketPayload(ticket)
	if err != nil {
		return 0, fmt.Errorf("glpi: encode ticket: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/Ticket", sessionHeader(token), nil, payload)
	if err != nil {
		if hasStatus(err, http.StatusUnauthorized) {
			return 0, fmt.Errorf("glpi: create ticket: %w", ticketing.ErrUnauthorized)
		}
		return 0, fmt.Errorf("glpi: create ticket: %w", err)
	}

	id := gjson.GetBytes(body, "id").Int()
	if id <= 0 {
		return 0, fmt.Errorf("glpi: create ticket returned no id: %s", truncate(body))
	}
	return int(id), nil
}

// ListTickets returns tickets visible to the session, newest first
func (c *Client) ListTickets(ctx context.Context, token string) ([]domain.TicketSummary, error) {
	query := url.Values{}
	query.Set("range", "0-"+strconv.Itoa(c.listLimit-1))
	query.Set("sort", "id")
	query.Set("order", "DESC")

	body, err := c.do(ctx, http.MethodGet, "/Ticket", sessionHeader(token), query, nil)
	if err != nil {
		if hasStatus(err, http.StatusUnauthorized) {
			return nil, fmt.Errorf("glpi: list tickets: %w", ticketing.ErrUnauthorized)
		}
		return nil, fmt.Errorf("glpi: list tickets: %w", err)
	}

	result := gjson.ParseBytes(body)
	if !result.IsArray() {
		return nil, fmt.Errorf("glpi: unexpected ticket list: %s", truncate(body))
	}

	tickets := make([]domain.TicketSummary, 0, len(result.Array()))
	result.ForEach(func(_, item gjson.Result) bool {
		tickets = append(tickets, domain.TicketSummary{
			ID:        int(item.Get("id").Int()),
			Title:     item.Get("name").String(),
			Status:    domain.TicketStatus(item.Get("status").Int()),
			Priority:  domain.Priority(item.Get("priority").Int()),
			UpdatedAt: parseDate(item.Get("date_mod").String()),
		})
		return true
	})

	return tickets, nil
}

// do performs a request against GLPI.
// On 2xx returns the body, otherwise an *APIError.
func (c *Client) do(ctx context.Context, method, path string, header http.Header, query url.Values, body []byte) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range header {
		req.Header[key] = values
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.appToken != "" {
		req.Header.Set("App-Token", c.appToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	parsed := gjson.ParseBytes(respBody)
	if parsed.IsArray() {
		apiErr.Code = parsed.Get("0").String()
		apiErr.Message = parsed.Get("1").String()
	} else {
		apiErr.Message = truncate(respBody)
	}
	return nil, apiErr
}

func ticketPayload(ticket domain.Ticket) ([]byte, error) {
	payload := []byte(`{}`)
	var err error
	if payload, err = sjson.SetBytes(payload, "input.name", ticket.Title); err != nil {
		return nil, err
	}
	if payload, err = sjson.SetBytes(payload, "input.content", ticket.Description); err != nil {
		return nil, err
	}
	return sjson.SetBytes(payload, "input.priority", int(ticket.Priority))
}

func sessionHeader(token string) http.Header {
	header := http.Header{}
	header.Set("Session-Token", token)
	return header
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

func parseDate(value string) time.Time {
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

func truncate(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
