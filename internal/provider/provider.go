package provider

import "context"

// PushProvider is the outbound push delivery port. Implementations do not
// retry; classifying the failure is their whole job.
type PushProvider interface {
	Send(ctx context.Context, msg PushMessage) (*PushReceipt, error)
}

// PushMessage is one push notification addressed to one device.
type PushMessage struct {
	To    string
	Title string
	Body  string
	Data  map[string]string
}

// PushReceipt stores gateway call metadata for logging.
type PushReceipt struct {
	StatusCode int
	TicketID   string
	Body       string
}
