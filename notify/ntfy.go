// Package notify pushes scheduler outcomes to an ntfy channel.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultEndpoint = "https://ntfy.sh"

// Ntfy publishes to a single ntfy topic. A zero Channel disables
// delivery.
type Ntfy struct {
	Channel  string
	Endpoint string
	Logger   *slog.Logger

	client *http.Client
}

func NewNtfy(channel string, l *slog.Logger) *Ntfy {
	return &Ntfy{
		Channel:  channel,
		Endpoint: defaultEndpoint,
		Logger:   l,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Send publishes a message. Delivery failure is logged, never
// propagated; notifications are best-effort.
func (n *Ntfy) Send(ctx context.Context, title, message string) {
	if n.Channel == "" {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		n.Endpoint+"/"+n.Channel, strings.NewReader(message))
	if err != nil {
		n.Logger.Error("failed to build notification", "err", err)
		return
	}
	req.Header.Set("Title", title)

	resp, err := n.client.Do(req)
	if err != nil {
		n.Logger.Error("failed to send notification", "err", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.Logger.Error("notification rejected",
			"err", fmt.Sprintf("status %d", resp.StatusCode))
	}
}
