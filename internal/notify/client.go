// Package notify calls the external notification collaborator. Delivery is
// fire-and-forget: failures are logged and counted, never propagated to the
// owning request.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fieldhq/dispatch-engine/pkg/log"
	"github.com/fieldhq/dispatch-engine/pkg/metrics"
)

const (
	TypeOfferSent    = "offer_sent"
	TypeOfferAccept  = "offer_accepted"
	TypeOfferDecline = "offer_declined"
	TypeJobCompleted = "job_completed"

	defaultTimeout = 3 * time.Second
)

// Notifier is what the dispatch services see; the HTTP client and the no-op
// dev client both satisfy it.
type Notifier interface {
	NotifyPro(ctx context.Context, jobID, proID uuid.UUID, notificationType string)
}

type notification struct {
	JobID uuid.UUID `json:"job_id"`
	ProID uuid.UUID `json:"pro_id"`
	Type  string    `json:"type"`
}

type Client struct {
	endpoint string
	client   *http.Client
	logger   *log.StructuredLogger
}

var _ Notifier = (*Client)(nil)

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   log.NewDebugLogger("notifier"),
	}
}

// NotifyPro posts the notification and absorbs every failure.
func (c *Client) NotifyPro(ctx context.Context, jobID, proID uuid.UUID, notificationType string) {
	tracer := c.logger.WithContext(ctx).Operation("notify_pro").
		WithUUID("job_id", jobID).
		WithUUID("pro_id", proID).
		WithString("type", notificationType).
		Build()

	body, err := json.Marshal(notification{JobID: jobID, ProID: proID, Type: notificationType})
	if err != nil {
		tracer.Error(err).Log()
		metrics.IncreaseNotifyFailuresMetric()
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		tracer.Error(err).Log()
		metrics.IncreaseNotifyFailuresMetric()
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		tracer.Error(err).Log()
		metrics.IncreaseNotifyFailuresMetric()
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		tracer.Error(fmt.Errorf("notifier returned status %d", resp.StatusCode)).Log()
		metrics.IncreaseNotifyFailuresMetric()
		return
	}

	tracer.Success().Log()
}

// NoopNotifier is used when no notifier endpoint is configured.
type NoopNotifier struct{}

var _ Notifier = (*NoopNotifier)(nil)

func (NoopNotifier) NotifyPro(ctx context.Context, jobID, proID uuid.UUID, notificationType string) {
}
