package backend

import (
	"context"
	"log"
	"time"
)

const telemetryTimeout = 5 * time.Second

// Telemetry adapts the client's fire-and-forget endpoints to the playback
// Effects interface. Failures are logged and swallowed; they never reach the
// player and never block a transition.
type Telemetry struct {
	client  *Client
	timeout time.Duration
}

func NewTelemetry(client *Client) *Telemetry {
	return &Telemetry{client: client, timeout: telemetryTimeout}
}

// ReportAttempt implements playback.Effects.
func (t *Telemetry) ReportAttempt(questionID string, correct bool) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		if err := t.client.ReportAttempt(ctx, questionID, correct); err != nil {
			log.Printf("swallowed attempt report error: %v", err)
		}
	}()
}

// TrackView records a content view at session start.
func (t *Telemetry) TrackView(contentID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		if err := t.client.TrackView(ctx, contentID); err != nil {
			log.Printf("swallowed view track error: %v", err)
		}
	}()
}
