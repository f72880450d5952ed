// internal/service/alerts.go
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

const EventFlagCreated = "flag.created"

// Alerter is notified after a flag is stored.
type Alerter interface {
	FlagCreated(ctx context.Context, flag *models.Flag)
}

type AlertEnvelope struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`
	Source        string    `json:"source"`
	Data          FlagAlert `json:"data"`
}

type FlagAlert struct {
	FlagID   string          `json:"flag_id"`
	Title    string          `json:"title"`
	Severity models.Severity `json:"severity"`
	Risk     string          `json:"risk"`
	Category string          `json:"category"`
	Evidence int             `json:"evidence_count"`
}

// AlertPublisher logs every High or Critical flag and, when a webhook is
// configured, posts it there. Delivery failures never fail the caller.
type AlertPublisher struct {
	source     string
	webhookURL string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewAlertPublisher(source, webhookURL string, logger *zap.Logger) *AlertPublisher {
	return &AlertPublisher{
		source:     source,
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 3 * time.Second},
		logger:     logger,
	}
}

func (p *AlertPublisher) FlagCreated(ctx context.Context, flag *models.Flag) {
	if !flag.Severity.AtLeast(models.SeverityHigh) {
		return
	}
	p.logger.Warn("high-severity flag created",
		zap.String("flag_id", flag.ID),
		zap.String("severity", string(flag.Severity)),
		zap.String("title", flag.Title),
		zap.Int("evidence", len(flag.Evidence)))

	if p.webhookURL == "" {
		return
	}
	envelope := AlertEnvelope{
		EventID:       "evt_" + uuid.New().String(),
		EventType:     EventFlagCreated,
		SchemaVersion: "1.0",
		Timestamp:     time.Now().UTC(),
		Source:        p.source,
		Data: FlagAlert{
			FlagID:   flag.ID,
			Title:    flag.Title,
			Severity: flag.Severity,
			Risk:     flag.Risk,
			Category: flag.Category,
			Evidence: len(flag.Evidence),
		},
	}
	if err := p.send(ctx, envelope); err != nil {
		p.logger.Warn("alert webhook failed",
			zap.String("flag_id", flag.ID),
			zap.Error(err))
	}
}

func (p *AlertPublisher) send(ctx context.Context, envelope AlertEnvelope) error {
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-ID", envelope.EventID)
	req.Header.Set("X-Event-Type", envelope.EventType)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
