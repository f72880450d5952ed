// internal/inference/classifier.go
package inference

import (
	"context"
	"errors"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

// ErrUnsupported is returned by classifiers that cannot score a modality.
var ErrUnsupported = errors.New("inference: modality not supported")

type TextRequest struct {
	Text    string `json:"text"`
	Title   string `json:"title,omitempty"`
	Subject string `json:"subject,omitempty"`
}

type ImageRequest struct {
	ImageURL     string `json:"image_url"`
	ReferenceURL string `json:"reference_url,omitempty"`
	BrandName    string `json:"brand_name,omitempty"`
	ProductTitle string `json:"product_title,omitempty"`
}

// Classifier is the model collaborator. Implementations must honour ctx
// cancellation so callers can bound every call.
type Classifier interface {
	ClassifyText(ctx context.Context, req TextRequest) (*models.TextModelScore, error)
	ScoreImage(ctx context.Context, req ImageRequest) (*models.ImageModelScore, error)
}
