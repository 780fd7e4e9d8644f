// Package api wraps outbound calls to the authentication and transaction
// services behind a single client. It attaches bearer credentials, tags each
// request, and normalizes every failure into the APIError/NetworkError shapes
// the rest of the client acts on. It never retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Azaziop/systeme-detect-fraude/internal/core"
)

// TokenProvider returns the current bearer credential, or "" when the client
// is not authenticated.
type TokenProvider func() string

type Client struct {
	authURL string
	txnURL  string
	http    *http.Client
	token   TokenProvider
}

func NewClient(authURL, txnURL string, token TokenProvider) *Client {
	return &Client{
		authURL: strings.TrimRight(authURL, "/"),
		txnURL:  strings.TrimRight(txnURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   token,
	}
}

type (
	loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	loginResponse struct {
		Access string `json:"access"`
	}

	registerRequest struct {
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"password_confirm"`
	}

	// CreateTransactionRequest is the authoritative create payload. The
	// provisional ID is never sent; the backend assigns its own.
	CreateTransactionRequest struct {
		UserID      string  `json:"user_id"`
		Amount      float64 `json:"amount"`
		Merchant    string  `json:"merchant"`
		Category    string  `json:"category"`
		Description string  `json:"description"`
		Timestamp   string  `json:"timestamp"`
	}

	listResponse struct {
		Transactions []core.Transaction `json:"transactions"`
	}
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	err := c.call(ctx, http.MethodPost, c.authURL+"/token", loginRequest{
		Username: username,
		Password: password,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Access, nil
}

// Register creates a new account. A successful response carries no data the
// client needs; the user logs in afterwards.
func (c *Client) Register(ctx context.Context, username, email, password, passwordConfirm string) error {
	return c.call(ctx, http.MethodPost, c.authURL+"/register", registerRequest{
		Username:        username,
		Email:           email,
		Password:        password,
		PasswordConfirm: passwordConfirm,
	}, nil)
}

// CreateTransaction submits a transaction for scoring and returns the
// authoritative classified record.
func (c *Client) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (core.Transaction, error) {
	var tx core.Transaction
	if err := c.call(ctx, http.MethodPost, c.txnURL+"/transactions", req, &tx); err != nil {
		return core.Transaction{}, err
	}
	tx.Normalize()
	return tx, nil
}

// ListTransactions fetches the full transaction list. The service answers
// either {"transactions": [...]} or a bare array; both are accepted.
func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var raw json.RawMessage
	if err := c.call(ctx, http.MethodGet, c.txnURL+"/transactions", nil, &raw); err != nil {
		return nil, err
	}

	var txs []core.Transaction
	if err := json.Unmarshal(raw, &txs); err != nil {
		var wrapped listResponse
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, &APIError{StatusCode: http.StatusOK, Message: "unexpected transaction list shape"}
		}
		txs = wrapped.Transactions
	}
	for i := range txs {
		txs[i].Normalize()
	}
	return txs, nil
}

func (c *Client) call(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.DebugContext(ctx, "Request transport failure", "method", method, "url", url, "error", err)
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: normalizeErrorBody(data, resp.StatusCode)}
		slog.DebugContext(ctx, "Request rejected", "method", method, "url", url,
			"status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "malformed response body"}
	}
	return nil
}

// normalizeErrorBody flattens a service error payload into one message.
// Preference order: a single "detail"/"message" field, then a mapping of
// field name to message(s), then the raw HTTP status line.
func normalizeErrorBody(body []byte, status int) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || len(payload) == 0 {
		return statusMessage(status)
	}

	if msg, ok := payload["detail"].(string); ok && msg != "" {
		return msg
	}
	if msg, ok := payload["message"].(string); ok && msg != "" {
		return msg
	}

	fields := make([]string, 0, len(payload))
	for field := range payload {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		switch v := payload[field].(type) {
		case string:
			parts = append(parts, fmt.Sprintf("%s: %s", field, v))
		case []any:
			msgs := make([]string, 0, len(v))
			for _, m := range v {
				if s, ok := m.(string); ok {
					msgs = append(msgs, s)
				}
			}
			if len(msgs) > 0 {
				parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, ", ")))
			}
		}
	}
	if len(parts) == 0 {
		return statusMessage(status)
	}
	return strings.Join(parts, "; ")
}
