package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExpoPushProviderSendSuccess(t *testing.T) {
	t.Parallel()

	var gotBody expoPushRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}

		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{"status":"ok","id":"ticket-42"}}`))
	}))
	defer server.Close()

	p, err := NewExpoPushProvider(server.URL)
	if err != nil {
		t.Fatalf("NewExpoPushProvider() error = %v", err)
	}

	msg := PushMessage{
		To:    "ExponentPushToken[abc]",
		Title: "500mg Amoxicillin sekarang!",
		Body:  "Waktunya minum obatmu!",
		Data:  map[string]string{"logId": "log-1"},
	}

	receipt, err := p.Send(context.Background(), msg)
	if err != nil {
		t.Fatalf("Send() unexpected error: %v", err)
	}

	if receipt.StatusCode != http.StatusOK {
		t.Fatalf("StatusCode = %d, want %d", receipt.StatusCode, http.StatusOK)
	}
	if receipt.TicketID != "ticket-42" {
		t.Fatalf("TicketID = %q, want ticket-42", receipt.TicketID)
	}

	if gotBody.To != msg.To {
		t.Errorf("request To = %q, want %q", gotBody.To, msg.To)
	}
	if gotBody.Title != msg.Title {
		t.Errorf("request Title = %q, want %q", gotBody.Title, msg.Title)
	}
	if gotBody.Sound != "default" {
		t.Errorf("request Sound = %q, want default", gotBody.Sound)
	}
	if gotBody.Priority != "high" {
		t.Errorf("request Priority = %q, want high", gotBody.Priority)
	}
}

func TestExpoPushProviderSendWithoutTokenNeverCallsGateway(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p, err := NewExpoPushProvider(server.URL)
	if err != nil {
		t.Fatalf("NewExpoPushProvider() error = %v", err)
	}

	_, err = p.Send(context.Background(), PushMessage{To: "  ", Title: "title"})
	if err == nil {
		t.Fatal("Send() error = nil, want missing token error")
	}
	if IsTransient(err) {
		t.Fatal("missing token classified as transient, want permanent")
	}
	if calls != 0 {
		t.Fatalf("gateway called %d times, want 0", calls)
	}
}

func TestExpoPushProviderHTTPStatusClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status        int
		wantTransient bool
	}{
		{status: http.StatusBadRequest, wantTransient: false},
		{status: http.StatusUnauthorized, wantTransient: false},
		{status: http.StatusTooManyRequests, wantTransient: true},
		{status: http.StatusInternalServerError, wantTransient: true},
		{status: http.StatusServiceUnavailable, wantTransient: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			p, err := NewExpoPushProvider(server.URL)
			if err != nil {
				t.Fatalf("NewExpoPushProvider() error = %v", err)
			}

			_, err = p.Send(context.Background(), PushMessage{To: "token", Title: "title"})
			if err == nil {
				t.Fatalf("Send() error = nil, want gateway error for status %d", tt.status)
			}

			var providerErr *ProviderError
			if !errors.As(err, &providerErr) {
				t.Fatalf("error type = %T, want *ProviderError", err)
			}
			if providerErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", providerErr.StatusCode, tt.status)
			}
			if IsTransient(err) != tt.wantTransient {
				t.Errorf("IsTransient() = %v, want %v", IsTransient(err), tt.wantTransient)
			}
		})
	}
}

func TestExpoPushProviderTicketErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		ticketError   string
		wantTransient bool
	}{
		{name: "device not registered", ticketError: ticketErrDeviceNotRegistered, wantTransient: false},
		{name: "rate exceeded", ticketError: ticketErrMessageRateExceeded, wantTransient: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				body := fmt.Sprintf(`{"data":{"status":"error","details":{"error":%q}}}`, tt.ticketError)
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			p, err := NewExpoPushProvider(server.URL)
			if err != nil {
				t.Fatalf("NewExpoPushProvider() error = %v", err)
			}

			_, err = p.Send(context.Background(), PushMessage{To: "token", Title: "title"})
			if err == nil {
				t.Fatal("Send() error = nil, want ticket error")
			}
			if IsTransient(err) != tt.wantTransient {
				t.Errorf("IsTransient() = %v, want %v", IsTransient(err), tt.wantTransient)
			}
		})
	}
}

func TestNewExpoPushProviderValidatesEndpoint(t *testing.T) {
	t.Parallel()

	if _, err := NewExpoPushProvider(""); err == nil {
		t.Fatal("NewExpoPushProvider(\"\") error = nil, want error")
	}
	if _, err := NewExpoPushProvider("not a url"); err == nil {
		t.Fatal("NewExpoPushProvider(invalid) error = nil, want error")
	}
}
