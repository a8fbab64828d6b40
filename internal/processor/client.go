// Package processor talks to the external service that executes a loading
// request (the "processor").
//
// This package implements:
//   - A pooled HTTP client with a hard per-call bound
//   - Request encoding: record fields (null when empty), chat_id and the
//     opaque message_key of the originating command
//   - Tolerant response decoding: only "status", "processed_data",
//     "message" and "error" are looked at
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	apperr "loadbot/internal/errors"
	"loadbot/internal/record"
	"loadbot/internal/transport"
)

const (
	// DefaultURL is where the processor listens unless configured otherwise.
	DefaultURL = "http://localhost:5000/process-data"

	// DefaultTimeout bounds a single processor call.
	DefaultTimeout = 5 * time.Minute

	// maxResponseSize caps how much of a response body is read (1MB)
	maxResponseSize = 1 << 20
)

// requestFields is the wire order of record fields in the request body.
var requestFields = []string{
	"driver_name",
	"driver_license",
	"vehicle_num",
	"destination",
	"weight",
	"so_no",
	"phone_num",
	"product_type",
}

// Client sends records to the processor.
//
// Thread-safety:
//   - http.Client is safe for concurrent use
//   - Client holds no other mutable state
type Client struct {
	url     string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates a processor client.
//
// Parameters:
//   - url: Processor endpoint (DefaultURL when empty)
//   - timeout: Upper bound of one call (DefaultTimeout when <= 0)
//
// Returns:
//   - *Client: Ready-to-use client
func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:     url,
		timeout: timeout,
		http:    NewHTTPClient(timeout),
	}
}

// NewHTTPClient creates an HTTP client with connection pooling.
//
// Connection pool configuration:
//   - MaxIdleConns: 100 total, 10 per host
//   - IdleConnTimeout: 90 seconds
//   - Keep-alive enabled
//
// Parameters:
//   - timeout: Maximum time for a complete request (including reading response)
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}

// Result is a successful processor answer.
//
// Fields:
//   - Raw: Full response body
//   - ProcessedData: Raw JSON of "processed_data" ("" when absent)
//   - RequestedWeight: Weight that was sent
//   - ActualWeight: processed_data.actual_quantity, else processed_data.weight,
//     else the requested weight
type Result struct {
	Raw             string
	ProcessedData   string
	RequestedWeight string
	ActualWeight    string
}

// EncodeRequest builds the JSON request body for one record.
//
// Empty record fields are sent as null. message_key is the JSON form of the
// originating message reference and is opaque to the processor.
func EncodeRequest(chatID string, rec record.Record, origin transport.MessageRef) ([]byte, error) {
	body := []byte(`{}`)
	var err error

	for _, f := range requestFields {
		if v := rec.Get(f); v != "" {
			body, err = sjson.SetBytes(body, f, v)
		} else {
			body, err = sjson.SetRawBytes(body, f, []byte("null"))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", f, err)
		}
	}

	if body, err = sjson.SetBytes(body, "chat_id", chatID); err != nil {
		return nil, fmt.Errorf("failed to encode chat_id: %w", err)
	}

	key, err := json.Marshal(origin)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message key: %w", err)
	}
	if body, err = sjson.SetRawBytes(body, "message_key", key); err != nil {
		return nil, fmt.Errorf("failed to encode message_key: %w", err)
	}

	return body, nil
}

// Process sends one record and waits for the processor's verdict.
//
// The call is bounded by the client timeout; cancellation of ctx is ignored
// once the request is issued.
//
// Returns:
//   - *Result: Parsed success response
//   - error: *errors.DispatchError for every failure (transport, non-2xx,
//     status other than "success")
func (c *Client) Process(ctx context.Context, chatID string, rec record.Record, origin transport.MessageRef) (*Result, error) {
	body, err := EncodeRequest(chatID, rec, origin)
	if err != nil {
		return nil, apperr.NewDispatchError("failed to encode request", err.Error(), err)
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.NewDispatchError("failed to create request", err.Error(), err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.NewDispatchError("processor request failed", err.Error(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, apperr.NewDispatchError("failed to read processor response", err.Error(), err)
	}

	return ParseResponse(resp.StatusCode, raw, rec.Weight)
}

// ParseResponse interprets a processor response.
//
// Success requires a 2xx status code and "status":"success". Failure detail
// is taken from "message" when status is "error", else from "error", else a
// generic description of the status code.
func ParseResponse(statusCode int, body []byte, requestedWeight string) (*Result, error) {
	doc := gjson.ParseBytes(body)
	status := doc.Get("status").String()

	if statusCode >= 200 && statusCode < 300 && status == "success" {
		pd := doc.Get("processed_data")
		actual := requestedWeight
		if v := pd.Get("actual_quantity"); v.Exists() && v.String() != "" {
			actual = v.String()
		} else if v := pd.Get("weight"); v.Exists() && v.String() != "" {
			actual = v.String()
		}
		return &Result{
			Raw:             string(body),
			ProcessedData:   pd.Raw,
			RequestedWeight: requestedWeight,
			ActualWeight:    actual,
		}, nil
	}

	var detail string
	switch {
	case status == "error" && doc.Get("message").String() != "":
		detail = doc.Get("message").String()
	case doc.Get("error").String() != "":
		detail = doc.Get("error").String()
	case statusCode < 200 || statusCode >= 300:
		detail = fmt.Sprintf("Request failed with status code %d", statusCode)
	default:
		detail = "Unexpected response from processor"
	}

	return nil, apperr.NewDispatchError(fmt.Sprintf("processor returned status %d", statusCode), detail, nil)
}
