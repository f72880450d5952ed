// internal/repository/fixtures.go
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

// FlagSource supplies pre-existing flags, e.g. to seed the registry.
type FlagSource interface {
	List(ctx context.Context) ([]*models.Flag, error)
	Get(ctx context.Context, id string) (*models.Flag, error)
}

// ReviewSource supplies stored reviews for batch analysis.
type ReviewSource interface {
	List(ctx context.Context, productID string) ([]models.Review, error)
	Get(ctx context.Context, id string) (*models.Review, error)
}

type JSONFlagSource struct {
	flags []*models.Flag
}

// LoadFlagFixtures reads a JSON array of flags.
func LoadFlagFixtures(path string) (*JSONFlagSource, error) {
	var flags []*models.Flag
	if err := readJSON(path, &flags); err != nil {
		return nil, err
	}
	for i, f := range flags {
		if f.ID == "" {
			return nil, fmt.Errorf("%s: flag %d has no id", path, i)
		}
		if !f.Severity.Valid() {
			return nil, fmt.Errorf("%s: flag %s has invalid severity %q", path, f.ID, f.Severity)
		}
		if f.Severity.AtLeast(models.SeverityMedium) && len(f.Evidence) == 0 {
			return nil, fmt.Errorf("%s: flag %s is %s with no evidence", path, f.ID, f.Severity)
		}
	}
	return &JSONFlagSource{flags: flags}, nil
}

func (s *JSONFlagSource) List(ctx context.Context) ([]*models.Flag, error) {
	_ = ctx
	out := make([]*models.Flag, len(s.flags))
	for i, f := range s.flags {
		out[i] = f.Clone()
	}
	return out, nil
}

func (s *JSONFlagSource) Get(ctx context.Context, id string) (*models.Flag, error) {
	_ = ctx
	for _, f := range s.flags {
		if f.ID == id {
			return f.Clone(), nil
		}
	}
	return nil, models.ErrNotFound
}

type JSONReviewSource struct {
	reviews []models.Review
}

// LoadReviewFixtures reads a JSON array of reviews.
func LoadReviewFixtures(path string) (*JSONReviewSource, error) {
	var reviews []models.Review
	if err := readJSON(path, &reviews); err != nil {
		return nil, err
	}
	return &JSONReviewSource{reviews: reviews}, nil
}

// NewReviewSource wraps an in-memory review set.
func NewReviewSource(reviews []models.Review) *JSONReviewSource {
	return &JSONReviewSource{reviews: reviews}
}

func (s *JSONReviewSource) List(ctx context.Context, productID string) ([]models.Review, error) {
	_ = ctx
	var out []models.Review
	for _, r := range s.reviews {
		if r.ProductID == productID {
			r.Images = append([]string(nil), r.Images...)
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *JSONReviewSource) Get(ctx context.Context, id string) (*models.Review, error) {
	_ = ctx
	for _, r := range s.reviews {
		if r.ID == id {
			out := r
			out.Images = append([]string(nil), r.Images...)
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixtures: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
