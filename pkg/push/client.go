package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ErrGone marks a permanent delivery failure: the push service reports the
// endpoint no longer exists, so its registry entry should be removed.
var ErrGone = errors.New("push endpoint gone")

type Client struct {
	Subject    string
	PublicKey  string
	PrivateKey string
	TTL        int
	HTTPClient *http.Client
}

// Payload is the notification body shown to the user.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// Target identifies one delivery channel: the endpoint plus the encryption
// keys the browser handed out at subscription time.
type Target struct {
	Endpoint string
	P256dh   string
	Auth     string
}

func NewClient(subject, publicKey, privateKey string) *Client {
	return &Client{
		Subject:    subject,
		PublicKey:  publicKey,
		PrivateKey: privateKey,
		TTL:        60,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Send delivers one notification to one target. It returns nil on success,
// ErrGone (wrapped) when the push service reports the subscription expired,
// and any other error for transient failures.
func (c *Client) Send(ctx context.Context, target Target, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	sub := &webpush.Subscription{
		Endpoint: target.Endpoint,
		Keys: webpush.Keys{
			P256dh: target.P256dh,
			Auth:   target.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, sub, &webpush.Options{
		HTTPClient:      c.HTTPClient,
		Subscriber:      c.Subject,
		VAPIDPublicKey:  c.PublicKey,
		VAPIDPrivateKey: c.PrivateKey,
		TTL:             c.TTL,
	})
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("endpoint %s: %w", target.Endpoint, ErrGone)
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}
