// internal/service/models_gateway.go
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/inference"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/metrics"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

// ModelGateway fans out to the classifier and degrades every failure to a
// missing score plus a warning.
type ModelGateway struct {
	classifier inference.Classifier
	logger     *zap.Logger
}

func NewModelGateway(classifier inference.Classifier, logger *zap.Logger) *ModelGateway {
	return &ModelGateway{classifier: classifier, logger: logger}
}

// Score runs the requested model calls in parallel. A nil request skips
// that modality. partial is true when any requested call failed.
func (g *ModelGateway) Score(ctx context.Context, subject string, text *inference.TextRequest, image *inference.ImageRequest) (scores models.ModelScores, warnings []string, partial bool) {
	if g == nil || g.classifier == nil {
		return scores, nil, false
	}

	var (
		eg                  errgroup.Group
		textWarn, imageWarn string
		textScore           *models.TextModelScore
		imageScore          *models.ImageModelScore
	)
	if text != nil {
		eg.Go(func() error {
			res, err := g.classifier.ClassifyText(ctx, *text)
			if err != nil {
				textWarn = g.degrade("text", subject, err)
				return nil
			}
			textScore = res
			return nil
		})
	}
	if image != nil {
		eg.Go(func() error {
			res, err := g.classifier.ScoreImage(ctx, *image)
			if err != nil {
				imageWarn = g.degrade("image", subject, err)
				return nil
			}
			imageScore = res
			return nil
		})
	}
	_ = eg.Wait()

	scores = models.ModelScores{Text: textScore, Image: imageScore}
	for _, w := range []string{textWarn, imageWarn} {
		if w != "" {
			warnings = append(warnings, w)
			partial = true
		}
	}
	return scores, warnings, partial
}

// degrade logs and counts a failed call and returns the warning to surface,
// or "" when the model simply does not support the modality.
func (g *ModelGateway) degrade(model, subject string, err error) string {
	if errors.Is(err, inference.ErrUnsupported) {
		return ""
	}
	reason := "error"
	if errors.Is(err, models.ErrCollaboratorTimeout) || errors.Is(err, context.DeadlineExceeded) {
		reason = "timeout"
	}
	metrics.CollaboratorFailures.WithLabelValues(model, reason).Inc()
	g.logger.Warn("model call failed, continuing without score",
		zap.String("model", model),
		zap.String("subject", subject),
		zap.String("reason", reason),
		zap.Error(err))
	return fmt.Sprintf("partial analysis: %s model unavailable (%s)", model, reason)
}
