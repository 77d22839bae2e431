package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/listify/internal/models"
	"github.com/desertthunder/listify/internal/shared"
)

const defaultBaseURL string = "http://127.0.0.1:5000"

// Identity supplies credentials for outgoing requests.
type Identity interface {
	oauth2.TokenSource
	UserNo() int
}

// APIService makes raw HTTP requests to the backend and normalizes the responses.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	identity   Identity
	logger     *log.Logger
}

// NewAPIService creates a new API service instance for the backend at baseURL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// SetIdentity attaches the credential source used for every subsequent request.
func (a *APIService) SetIdentity(id Identity) { a.identity = id }

// SetLogger enables debug logging of requests.
func (a *APIService) SetLogger(l *log.Logger) { a.logger = l }

// BaseURL returns the backend address requests are sent to.
func (a *APIService) BaseURL() string { return a.baseURL }

// APIResponse represents a raw API response with its normalized envelope.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	Envelope   models.Envelope[json.RawMessage]
}

// Do sends a request and normalizes the response into an envelope.
//
// body is JSON-encoded when non-nil. The returned error wraps [shared.ErrTransport]
// and is only set when no response could be obtained.
func (a *APIService) Do(ctx context.Context, method, path string, body any) (*APIResponse, error) {
	var tokens oauth2.TokenSource
	userNo := 0
	if a.identity != nil {
		tokens = a.identity
		userNo = a.identity.UserNo()
	}
	return a.send(ctx, method, path, body, tokens, userNo)
}

// DoWithToken sends a request authorized by token instead of the attached identity.
func (a *APIService) DoWithToken(ctx context.Context, token, method, path string, body any) (*APIResponse, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return a.send(ctx, method, path, body, ts, 0)
}

func (a *APIService) send(ctx context.Context, method, path string, body any, tokens oauth2.TokenSource, userNo int) (*APIResponse, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to encode body: %v", shared.ErrTransport, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrTransport, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if tokens != nil {
		if tok, err := tokens.Token(); err == nil && tok.AccessToken != "" {
			tok.SetAuthHeader(req)
		}
	}
	if userNo > 0 {
		req.Header.Set("X-User-No", strconv.Itoa(userNo))
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrTransport, err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}
	apiResp.IsJSON, apiResp.Envelope = normalize(resp.StatusCode, data)

	if a.logger != nil {
		a.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "success", apiResp.Envelope.Success)
	}

	return apiResp, nil
}

// normalize turns any body into an envelope. Bodies that are not JSON or that
// lack a success field become a failure carrying the status text.
func normalize(status int, body []byte) (bool, models.Envelope[json.RawMessage]) {
	var raw struct {
		Success *bool           `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(body, &raw); err != nil {
		return false, models.Envelope[json.RawMessage]{Success: false, Message: statusText(status)}
	}

	if raw.Success == nil {
		return true, models.Envelope[json.RawMessage]{Success: false, Message: statusText(status)}
	}

	return true, models.Envelope[json.RawMessage]{Success: *raw.Success, Message: raw.Message, Data: raw.Data}
}

func statusText(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}

// EnvelopeError is a server-reported failure (success=false).
type EnvelopeError struct {
	StatusCode int
	Message    string
}

func (e *EnvelopeError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (status %d)", shared.ErrEnvelope, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", shared.ErrEnvelope, e.Message)
}

func (e *EnvelopeError) Unwrap() error { return shared.ErrEnvelope }

// Decode narrows the envelope data into T.
//
// A success=false envelope yields an [*EnvelopeError]. Missing or null data decodes to the zero value.
func Decode[T any](resp *APIResponse) (T, error) {
	var out T

	if !resp.Envelope.Success {
		return out, &EnvelopeError{StatusCode: resp.StatusCode, Message: resp.Envelope.Message}
	}

	data := resp.Envelope.Data
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return out, nil
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode response data: %w", err)
	}
	return out, nil
}

// Check reports a success=false envelope as an error and discards any data.
func Check(resp *APIResponse) error {
	if resp.Envelope.Success {
		return nil
	}
	return &EnvelopeError{StatusCode: resp.StatusCode, Message: resp.Envelope.Message}
}

// Message extracts a human-readable reason from err, preferring the server's message.
func Message(err error) string {
	var envErr *EnvelopeError
	if errors.As(err, &envErr) && envErr.Message != "" {
		return envErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// NotFound reports whether err is a 404 envelope failure.
func NotFound(err error) bool {
	var envErr *EnvelopeError
	return errors.As(err, &envErr) && envErr.StatusCode == http.StatusNotFound
}
