package offlinequeue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// StatusUpdate is the body sent to PUT /shipments/:id/status.
type StatusUpdate struct {
	Phase          string     `json:"phase"`
	DropID         *string    `json:"drop_id,omitempty"`
	Remarks        *string    `json:"remarks,omitempty"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	OccurredAt     *time.Time `json:"occurred_at,omitempty"`
	ClientActionID string     `json:"client_action_id"`
}

// StatusSnapshot mirrors the payload of GET /shipments/:id/status.
type StatusSnapshot struct {
	ShipmentID    string  `json:"shipment_id"`
	CurrentStatus string  `json:"current_status"`
	CurrentDropID *string `json:"current_drop_id"`
	DropSeq       int     `json:"drop_seq"`
	IsArchived    bool    `json:"is_archived"`
}

// UpdateResult is the subset of the status update response the queue reads.
type UpdateResult struct {
	Applied       bool   `json:"applied"`
	CurrentStatus string `json:"current_status"`
	Completed     bool   `json:"completed"`
}

// Client talks to the shipment status endpoints.
//
//go:generate mockgen -source=client.go -destination=mock/client_mock.go -package=mock
type Client interface {
	UpdateStatus(ctx context.Context, shipmentID string, body StatusUpdate) (UpdateResult, error)
	GetStatus(ctx context.Context, shipmentID string) (StatusSnapshot, error)
}

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api returned %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Permanent reports whether retrying the same request cannot succeed.
func (e *StatusError) Permanent() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 &&
		e.StatusCode != http.StatusRequestTimeout && e.StatusCode != http.StatusTooManyRequests
}

// IsPermanent reports whether err is a 4xx rejection.
func IsPermanent(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Permanent()
}

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewHTTPClient targets an API base such as http://host:3000/api/v1.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) UpdateStatus(ctx context.Context, shipmentID string, body StatusUpdate) (UpdateResult, error) {
	var out UpdateResult
	err := c.do(ctx, http.MethodPut, "/shipments/"+url.PathEscape(shipmentID)+"/status", body, &out)
	return out, err
}

func (c *HTTPClient) GetStatus(ctx context.Context, shipmentID string) (StatusSnapshot, error) {
	var out StatusSnapshot
	err := c.do(ctx, http.MethodGet, "/shipments/"+url.PathEscape(shipmentID)+"/status", nil, &out)
	return out, err
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Client-Type", "MOBILE")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	var env envelope
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{StatusCode: resp.StatusCode}
		if env.Error != nil {
			se.Code = env.Error.Code
			se.Message = env.Error.Message
		}
		return se
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
