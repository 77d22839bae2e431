package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/listify/internal/shared"
	tu "github.com/desertthunder/listify/internal/testing"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com", customClient)

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected baseURL 'http://example.com', got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.BaseURL() != defaultBaseURL {
				t.Errorf("expected default baseURL %s, got %s", defaultBaseURL, srv.BaseURL())
			}
		})

		t.Run("With Nil Client", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)

			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Do", func(t *testing.T) {
		t.Run("Envelope Is Taken As Is", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/music" {
					t.Errorf("expected path '/music', got %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"success": true, "message": "ok", "data": [1, 2]}`))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Do(context.Background(), http.MethodGet, "/music", nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.IsJSON {
				t.Error("expected response to be JSON")
			}
			if !resp.Envelope.Success || resp.Envelope.Message != "ok" {
				t.Errorf("unexpected envelope: %+v", resp.Envelope)
			}
			if string(resp.Envelope.Data) != "[1, 2]" {
				t.Errorf("expected raw data to be preserved, got %s", resp.Envelope.Data)
			}
		})

		t.Run("Failure Envelope Keeps Server Message", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"success": false, "message": "not your playlist"}`))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Do(context.Background(), http.MethodDelete, "/playlist/1", nil)
			if err != nil {
				t.Fatalf("expected no transport error, got %v", err)
			}
			if resp.Envelope.Success {
				t.Error("expected success=false")
			}
			if resp.Envelope.Message != "not your playlist" {
				t.Errorf("expected server message, got %q", resp.Envelope.Message)
			}
		})

		t.Run("Non-JSON Body Becomes Failure With Status Text", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte("<html>bad gateway</html>"))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Do(context.Background(), http.MethodGet, "/music", nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected response to not be JSON")
			}
			if resp.Envelope.Success {
				t.Error("expected success=false")
			}
			if resp.Envelope.Message != "Bad Gateway" {
				t.Errorf("expected status text, got %q", resp.Envelope.Message)
			}
			if string(resp.Body) != "<html>bad gateway</html>" {
				t.Errorf("expected raw body to be preserved, got %s", resp.Body)
			}
		})

		t.Run("JSON Without Success Field Becomes Failure", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status": "fine"}`))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Do(context.Background(), http.MethodGet, "/music", nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.IsJSON {
				t.Error("expected body to be detected as JSON")
			}
			if resp.Envelope.Success || resp.Envelope.Message != "OK" {
				t.Errorf("unexpected envelope: %+v", resp.Envelope)
			}
		})

		t.Run("Encodes Body As JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected Content-Type 'application/json', got %s", r.Header.Get("Content-Type"))
				}

				body, _ := io.ReadAll(r.Body)
				var data map[string]string
				if err := json.Unmarshal(body, &data); err != nil {
					t.Errorf("failed to unmarshal request body: %v", err)
				}
				if data["title"] != "Drive" {
					t.Errorf("expected title 'Drive', got %v", data)
				}
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"success": true}`))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Do(context.Background(), http.MethodPost, "/playlist", map[string]string{"title": "Drive"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusCreated {
				t.Errorf("expected status 201, got %d", resp.StatusCode)
			}
		})

		t.Run("No Body Sends No Content-Type", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				if len(body) != 0 {
					t.Errorf("expected empty body, got %d bytes", len(body))
				}
				if ct := r.Header.Get("Content-Type"); ct != "" {
					t.Errorf("expected no Content-Type, got %s", ct)
				}
				w.Write([]byte(`{"success": true}`))
			}))
			defer server.Close()

			if _, err := NewAPIService(server.URL, nil).Do(context.Background(), http.MethodGet, "/music", nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Attaches Identity Headers", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
					t.Errorf("expected bearer header, got %q", got)
				}
				if got := r.Header.Get("X-User-No"); got != "7" {
					t.Errorf("expected X-User-No 7, got %q", got)
				}
				w.Write([]byte(`{"success": true}`))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			srv.SetIdentity(tu.StaticIdentity{AccessToken: "tok-1", User: 7})
			if _, err := srv.Do(context.Background(), http.MethodGet, "/playlist/user/7", nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Omits Headers Without Token", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "" {
					t.Errorf("expected no Authorization header, got %q", got)
				}
				if got := r.Header.Get("X-User-No"); got != "" {
					t.Errorf("expected no X-User-No header, got %q", got)
				}
				w.Write([]byte(`{"success": true}`))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			srv.SetIdentity(tu.StaticIdentity{})
			if _, err := srv.Do(context.Background(), http.MethodGet, "/music", nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("DoWithToken Overrides Identity", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer explicit" {
					t.Errorf("expected explicit bearer header, got %q", got)
				}
				w.Write([]byte(`{"success": true}`))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			srv.SetIdentity(tu.StaticIdentity{AccessToken: "stored", User: 1})
			if _, err := srv.DoWithToken(context.Background(), "explicit", http.MethodGet, "/auth/verify", nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)
			_, err := srv.Do(context.Background(), http.MethodGet, "/test\x00invalid", nil)

			if !errors.Is(err, shared.ErrTransport) {
				t.Errorf("expected transport error, got %v", err)
			}
			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			_, err := NewAPIService("http://example.com", client).Do(context.Background(), http.MethodGet, "/music", nil)
			if !errors.Is(err, shared.ErrTransport) {
				t.Errorf("expected transport error, got %v", err)
			}
			if err == nil || !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected 'request failed' error, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			_, err := NewAPIService("http://example.com", client).Do(context.Background(), http.MethodGet, "/music", nil)
			if !errors.Is(err, shared.ErrTransport) {
				t.Errorf("expected transport error, got %v", err)
			}
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := NewAPIService(server.URL, nil).Do(ctx, http.MethodGet, "/music", nil)
			if !errors.Is(err, shared.ErrTransport) {
				t.Errorf("expected transport error for canceled context, got %v", err)
			}
		})

		t.Run("Response Headers Are Preserved", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Request-Id", "test-value")
				w.Write([]byte(`{"success": true}`))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Do(context.Background(), http.MethodGet, "/music", nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.Headers.Get("X-Request-Id") != "test-value" {
				t.Errorf("expected custom header 'test-value', got %s", resp.Headers.Get("X-Request-Id"))
			}
		})
	})
}

func TestDecode(t *testing.T) {
	t.Run("Typed Data", func(t *testing.T) {
		resp := &APIResponse{StatusCode: 200}
		resp.Envelope.Success = true
		resp.Envelope.Data = json.RawMessage(`{"access_token": "abc", "token_type": "Bearer"}`)

		type creds struct {
			AccessToken string `json:"access_token"`
		}
		got, err := Decode[creds](resp)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.AccessToken != "abc" {
			t.Errorf("expected abc, got %s", got.AccessToken)
		}
	})

	t.Run("Null Data Is Zero Value", func(t *testing.T) {
		resp := &APIResponse{StatusCode: 200}
		resp.Envelope.Success = true
		resp.Envelope.Data = json.RawMessage(`null`)

		got, err := Decode[[]int](resp)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil slice, got %v", got)
		}
	})

	t.Run("Failure Envelope", func(t *testing.T) {
		resp := &APIResponse{StatusCode: 401}
		resp.Envelope.Message = "bad credentials"

		_, err := Decode[[]int](resp)
		if !errors.Is(err, shared.ErrEnvelope) {
			t.Fatalf("expected ErrEnvelope, got %v", err)
		}

		var envErr *EnvelopeError
		if !errors.As(err, &envErr) {
			t.Fatalf("expected *EnvelopeError, got %T", err)
		}
		if envErr.StatusCode != 401 || envErr.Message != "bad credentials" {
			t.Errorf("unexpected envelope error: %+v", envErr)
		}
		if Message(err) != "bad credentials" {
			t.Errorf("expected server message, got %q", Message(err))
		}
	})

	t.Run("Malformed Data", func(t *testing.T) {
		resp := &APIResponse{StatusCode: 200}
		resp.Envelope.Success = true
		resp.Envelope.Data = json.RawMessage(`"not a list"`)

		if _, err := Decode[[]int](resp); err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("Message Falls Back To Error Text", func(t *testing.T) {
		err := errors.New("boom")
		if Message(err) != "boom" {
			t.Errorf("expected boom, got %q", Message(err))
		}
		if Message(nil) != "" {
			t.Errorf("expected empty message for nil")
		}
	})
}

func TestNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"404 envelope", &EnvelopeError{StatusCode: 404, Message: "playlist not found"}, true},
		{"wrapped 404 envelope", fmt.Errorf("reload: %w", &EnvelopeError{StatusCode: 404}), true},
		{"403 envelope", &EnvelopeError{StatusCode: 403}, false},
		{"transport", shared.ErrTransport, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NotFound(tt.err); got != tt.want {
				t.Errorf("NotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}
