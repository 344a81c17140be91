// Package monitoring posts run outcomes to a team webhook so scheduled
// scrape and outreach runs are visible without tailing logs.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// EventType identifies the kind of notification.
type EventType string

const (
	EventBatchComplete   EventType = "batch_complete"
	EventHighFailureRate EventType = "high_failure_rate"
)

// Event is a single webhook notification.
type Event struct {
	Type      EventType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Config controls webhook delivery. An empty WebhookURL disables the
// notifier entirely.
type Config struct {
	WebhookURL string

	// FailureRateThreshold raises a high-severity event when the share
	// of failed records in a batch exceeds it. Zero disables the check.
	FailureRateThreshold float64
}

// Notifier turns batch summaries into webhook events.
type Notifier struct {
	cfg    Config
	client *http.Client
	now    func() time.Time
}

// NewNotifier creates a Notifier with the given config.
func NewNotifier(cfg Config) *Notifier {
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
	}
}

// Evaluate builds the events for one batch: always a completion event,
// plus a failure-rate event when the threshold is breached.
func (n *Notifier) Evaluate(sum model.BatchSummary) []Event {
	now := n.now().UTC()

	events := []Event{{
		Type:     EventBatchComplete,
		Severity: "info",
		Message: fmt.Sprintf("%s batch: %d in, %d persisted, %d duplicates, %d failed",
			sum.Source, sum.TotalInput, sum.Persisted, sum.DuplicatesSkipped, sum.Failed),
		Details: map[string]any{
			"source":             sum.Source,
			"total_input":        sum.TotalInput,
			"persisted":          sum.Persisted,
			"duplicates_skipped": sum.DuplicatesSkipped,
			"failed":             sum.Failed,
		},
		Timestamp: now,
	}}

	attempted := sum.Persisted + sum.Failed
	if n.cfg.FailureRateThreshold > 0 && attempted > 0 {
		rate := float64(sum.Failed) / float64(attempted)
		if rate > n.cfg.FailureRateThreshold {
			events = append(events, Event{
				Type:     EventHighFailureRate,
				Severity: "high",
				Message: fmt.Sprintf("%s batch failure rate %.1f%% exceeds threshold %.1f%% (%d failed / %d attempted)",
					sum.Source, rate*100, n.cfg.FailureRateThreshold*100, sum.Failed, attempted),
				Details: map[string]any{
					"source":       sum.Source,
					"failure_rate": rate,
					"threshold":    n.cfg.FailureRateThreshold,
					"errors":       sum.Errors,
				},
				Timestamp: now,
			})
		}
	}

	return events
}

// NotifyBatch evaluates and delivers events for a batch summary.
// Returns the number of events successfully sent; delivery failures
// are logged, never fatal.
func (n *Notifier) NotifyBatch(ctx context.Context, sum model.BatchSummary) int {
	if n.cfg.WebhookURL == "" {
		return 0
	}

	sent := 0
	for _, ev := range n.Evaluate(sum) {
		if err := n.send(ctx, ev); err != nil {
			zap.L().Error("monitoring: failed to send event",
				zap.String("type", string(ev.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: event sent",
			zap.String("type", string(ev.Type)),
			zap.String("severity", ev.Severity),
		)
		sent++
	}
	return sent
}

func (n *Notifier) send(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal event")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
