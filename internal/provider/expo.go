package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultPushTimeout = 10 * time.Second

// Expo ticket errors that indicate an unusable token.
const (
	ticketErrDeviceNotRegistered = "DeviceNotRegistered"
	ticketErrMessageRateExceeded = "MessageRateExceeded"
)

type expoPushRequest struct {
	To       string            `json:"to"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Sound    string            `json:"sound"`
	Priority string            `json:"priority"`
}

type expoPushTicket struct {
	Status  string `json:"status"`
	ID      string `json:"id"`
	Message string `json:"message"`
	Details struct {
		Error string `json:"error"`
	} `json:"details"`
}

type expoPushResponse struct {
	Data expoPushTicket `json:"data"`
}

// ExpoPushProvider sends notifications to an Expo-compatible push gateway.
type ExpoPushProvider struct {
	client   *resty.Client
	endpoint string
}

func NewExpoPushProvider(endpoint string) (*ExpoPushProvider, error) {
	client := resty.New()
	client.SetTimeout(defaultPushTimeout)
	client.SetRetryCount(0)

	return NewExpoPushProviderWithClient(endpoint, client)
}

func NewExpoPushProviderWithClient(endpoint string, client *resty.Client) (*ExpoPushProvider, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("push gateway endpoint is required")
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid push gateway endpoint: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultPushTimeout)
	}
	client.SetRetryCount(0)

	return &ExpoPushProvider{
		client:   client,
		endpoint: trimmedEndpoint,
	}, nil
}

// Send delivers one push message. A missing delivery address fails before any
// gateway call is made.
func (p *ExpoPushProvider) Send(ctx context.Context, msg PushMessage) (*PushReceipt, error) {
	if p == nil || p.client == nil {
		return nil, fmt.Errorf("provider is not initialized")
	}
	if strings.TrimSpace(msg.To) == "" {
		return nil, &ProviderError{
			Message:   "push token is required",
			Transient: false,
		}
	}
	if strings.TrimSpace(msg.Title) == "" {
		return nil, &ProviderError{
			Message:   "push title is required",
			Transient: false,
		}
	}

	reqBody := expoPushRequest{
		To:       msg.To,
		Title:    msg.Title,
		Body:     msg.Body,
		Data:     msg.Data,
		Sound:    "default",
		Priority: "high",
	}

	var parsed expoPushResponse
	response, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBody(reqBody).
		SetResult(&parsed).
		Post(p.endpoint)
	if err != nil {
		return nil, &ProviderError{
			Message:   "push gateway request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}
	if response == nil {
		return nil, &ProviderError{
			Message:   "push gateway returned empty response",
			Transient: true,
		}
	}

	statusCode := response.StatusCode()
	responseBody := strings.TrimSpace(response.String())

	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return nil, &ProviderError{
			StatusCode: statusCode,
			Message:    gatewayErrorMessage(statusCode, responseBody),
			Transient:  isTransientHTTPStatus(statusCode),
		}
	}

	ticket := parsed.Data
	if strings.EqualFold(ticket.Status, "error") {
		return nil, &ProviderError{
			StatusCode: statusCode,
			Message:    ticketErrorMessage(ticket),
			Transient:  ticket.Details.Error == ticketErrMessageRateExceeded,
		}
	}

	return &PushReceipt{
		StatusCode: statusCode,
		TicketID:   ticket.ID,
		Body:       responseBody,
	}, nil
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}

func gatewayErrorMessage(statusCode int, body string) string {
	base := fmt.Sprintf("push gateway returned status %d", statusCode)
	if body == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, body)
}

func ticketErrorMessage(ticket expoPushTicket) string {
	if ticket.Details.Error != "" {
		return fmt.Sprintf("delivery rejected: %s", ticket.Details.Error)
	}
	if strings.TrimSpace(ticket.Message) != "" {
		return fmt.Sprintf("delivery rejected: %s", ticket.Message)
	}
	return "delivery rejected"
}
