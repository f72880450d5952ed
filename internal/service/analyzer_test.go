package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/inference"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/repository"
)

func newGateway(c inference.Classifier) *ModelGateway {
	return NewModelGateway(c, zap.NewNop())
}

func TestModelGatewayDegrades(t *testing.T) {
	ctx := context.Background()
	text := &inference.TextRequest{Text: "hello"}
	image := &inference.ImageRequest{ImageURL: "img://a"}

	t.Run("timeout is partial", func(t *testing.T) {
		g := newGateway(&fakeClassifier{
			textErr: fmt.Errorf("classify text: %w", models.ErrCollaboratorTimeout),
			image:   &models.ImageModelScore{Authenticity: 0.9},
		})
		scores, warnings, partial := g.Score(ctx, "s", text, image)
		assert.True(t, partial)
		assert.Nil(t, scores.Text)
		require.NotNil(t, scores.Image)
		assert.Equal(t, []string{"partial analysis: text model unavailable (timeout)"}, warnings)
	})

	t.Run("unsupported is not partial", func(t *testing.T) {
		g := newGateway(inference.NewLinearModel())
		scores, warnings, partial := g.Score(ctx, "s", text, image)
		assert.False(t, partial)
		assert.Empty(t, warnings)
		assert.NotNil(t, scores.Text)
		assert.Nil(t, scores.Image)
	})

	t.Run("nil requests skip the call", func(t *testing.T) {
		g := newGateway(&fakeClassifier{textErr: fmt.Errorf("boom")})
		_, warnings, partial := g.Score(ctx, "s", nil, nil)
		assert.False(t, partial)
		assert.Empty(t, warnings)
	})
}

func TestReviewAnalyzer(t *testing.T) {
	ctx := context.Background()

	t.Run("promotional review raises a critical flag", func(t *testing.T) {
		reg, alerts, _ := newTestRegistry()
		a := NewReviewAnalyzer(newGateway(&fakeClassifier{text: &models.TextModelScore{FakeProbability: 0.9}}), reg, nil, zap.NewNop())

		res, err := a.Analyze(ctx, &models.ReviewAnalysisRequest{
			ReviewID:   "r-1",
			ProductID:  "p-1",
			Reviewer:   "deals4u",
			ReviewText: "Best price, huge discount, click here!!",
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, res.TrustScore)
		assert.Equal(t, 1.0, res.RiskScore)
		assert.Equal(t, models.SeverityCritical, res.Severity)
		assert.Equal(t, models.FakeStatusFake, res.Status)
		assert.InDelta(t, 0.9, res.FakeProbability, 1e-9)
		assert.Nil(t, res.ImageScore)
		assert.Contains(t, res.Recommendation, "Issues detected")
		require.NotEmpty(t, res.FlagID)

		flag, err := reg.Get(ctx, res.FlagID)
		require.NoError(t, err)
		assert.Equal(t, "Suspicious review detected", flag.Title)
		assert.Equal(t, models.SeverityCritical, flag.Severity)
		assert.NotEmpty(t, flag.Evidence)
		assert.Equal(t, "deals4u", flag.Account.Username)
		assert.Equal(t, 1, alerts.count())
	})

	t.Run("clean verified review is queued at medium", func(t *testing.T) {
		reg, _, _ := newTestRegistry()
		a := NewReviewAnalyzer(newGateway(&fakeClassifier{text: &models.TextModelScore{FakeProbability: 0.1}}), reg, nil, zap.NewNop())

		res, err := a.Analyze(ctx, &models.ReviewAnalysisRequest{
			ReviewText: "Battery lasts all day and the case fits well.",
			Verified:   true,
			Rating:     4,
		})
		require.NoError(t, err)
		assert.Equal(t, 70.0, res.TrustScore)
		assert.Equal(t, models.BadgeMediumTrust, res.Badge)
		assert.Equal(t, models.SeverityMedium, res.Severity)
		assert.Equal(t, models.FakeStatusGenuine, res.Status)
		assert.Equal(t, "Trust Score: 70%. No issues detected.", res.Recommendation)
		require.NotEmpty(t, res.FlagID)

		flag, err := reg.Get(ctx, res.FlagID)
		require.NoError(t, err)
		assert.Equal(t, models.SeverityMedium, flag.Severity)
		assert.NotEmpty(t, flag.Evidence)
	})

	t.Run("unverified clean review is flagged high", func(t *testing.T) {
		reg, alerts, _ := newTestRegistry()
		a := NewReviewAnalyzer(newGateway(&fakeClassifier{text: &models.TextModelScore{FakeProbability: 0.1}}), reg, nil, zap.NewNop())

		res, err := a.Analyze(ctx, &models.ReviewAnalysisRequest{
			ReviewText: "Battery lasts all day and the case fits well.",
			Rating:     4,
		})
		require.NoError(t, err)
		assert.Equal(t, 30.0, res.TrustScore)
		assert.Equal(t, models.BadgeLowTrust, res.Badge)
		assert.Equal(t, models.SeverityHigh, res.Severity)
		require.Len(t, res.Evidence, 2)
		require.NotEmpty(t, res.FlagID)

		flag, err := reg.Get(ctx, res.FlagID)
		require.NoError(t, err)
		assert.Equal(t, models.SeverityHigh, flag.Severity)
		assert.Contains(t, flag.AISummary, "Reviewer is not a verified purchaser")
		assert.Equal(t, 1, alerts.count())
	})

	t.Run("verified review without a model score has nothing to queue", func(t *testing.T) {
		reg, _, _ := newTestRegistry()
		a := NewReviewAnalyzer(newGateway(nil), reg, nil, zap.NewNop())

		res, err := a.Analyze(ctx, &models.ReviewAnalysisRequest{
			ReviewText: "Battery lasts all day.",
			Verified:   true,
		})
		require.NoError(t, err)
		assert.Equal(t, models.SeverityMedium, res.Severity)
		assert.Empty(t, res.Evidence)
		assert.Empty(t, res.FlagID)

		flags, err := reg.List(ctx, models.FlagQuery{})
		require.NoError(t, err)
		assert.Empty(t, flags)
	})

	t.Run("model timeout still scores", func(t *testing.T) {
		reg, _, _ := newTestRegistry()
		a := NewReviewAnalyzer(newGateway(&fakeClassifier{textErr: models.ErrCollaboratorTimeout}), reg, nil, zap.NewNop())

		res, err := a.Analyze(ctx, &models.ReviewAnalysisRequest{
			ReviewText: "Battery lasts all day.",
			Verified:   true,
		})
		require.NoError(t, err)
		assert.True(t, res.PartialAnalysis)
		assert.Len(t, res.Warnings, 1)
		assert.Equal(t, 70.0, res.TrustScore)
		assert.InDelta(t, res.RiskScore, res.FakeProbability, 1e-9)
	})

	t.Run("mismatched image", func(t *testing.T) {
		reg, _, _ := newTestRegistry()
		a := NewReviewAnalyzer(newGateway(&fakeClassifier{}), reg, nil, zap.NewNop())

		res, err := a.Analyze(ctx, &models.ReviewAnalysisRequest{
			ReviewText:      "Great shoes",
			ProductImageURL: "https://cdn.example.com/p/1.jpg",
			ReviewImageURL:  "https://cdn.example.com/r/9.jpg",
		})
		require.NoError(t, err)
		require.NotNil(t, res.ImageScore)
		assert.Equal(t, 20.0, *res.ImageScore)
		assert.True(t, res.ImageAnalysis.ManipulationDetected)
		require.NotNil(t, res.ImageAnalysis.SimilarityScore)
		assert.InDelta(t, 0.2, *res.ImageAnalysis.SimilarityScore, 1e-9)
		assert.Equal(t, models.SeverityCritical, res.Severity)
		assert.NotEmpty(t, res.FlagID)
	})

	t.Run("blank text", func(t *testing.T) {
		reg, _, _ := newTestRegistry()
		a := NewReviewAnalyzer(newGateway(&fakeClassifier{}), reg, nil, zap.NewNop())
		_, err := a.Analyze(ctx, &models.ReviewAnalysisRequest{ReviewText: "  "})
		assert.True(t, models.IsValidation(err))
	})
}

func TestAnalyzeProduct(t *testing.T) {
	ctx := context.Background()
	reg, _, _ := newTestRegistry()
	src := repository.NewReviewSource([]models.Review{
		{ID: "a", ProductID: "p-1", Text: "Solid build quality.", Verified: true, Rating: 5},
		{ID: "b", ProductID: "p-1", Text: "Click here for a huge discount", Rating: 5},
		{ID: "c", ProductID: "p-2", Text: "Fine", Verified: true},
	})
	a := NewReviewAnalyzer(newGateway(nil), reg, src, zap.NewNop())

	got, err := a.AnalyzeProduct(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, got.Reviews, 2)
	// 70 and 30 - 30 - 10 = 0
	assert.Equal(t, 35.0, got.AverageTrustScore)
	assert.Equal(t, 1, got.Distribution[models.BadgeMediumTrust])
	assert.Equal(t, 1, got.Distribution[models.BadgeLowTrust])
	assert.Equal(t, 0, got.Distribution[models.BadgeHighTrust])

	flags, err := reg.List(ctx, models.FlagQuery{})
	require.NoError(t, err)
	assert.Empty(t, flags)

	_, err = a.AnalyzeProduct(ctx, "p-404")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStepMonitorSession(t *testing.T) {
	ctx := context.Background()
	m := NewStepMonitor(newGateway(nil), repository.NewMemoryMonitoringStore(), zap.NewNop())

	first, err := m.Monitor(ctx, &models.StepMonitorRequest{
		ProductID:  "p-1",
		StepNumber: 3,
		StepData:   map[string]interface{}{"price": "3.50", "category": "electronics", "brandName": "Replica Co"},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.8, first.RiskScore, 1e-9)
	assert.Equal(t, models.RiskLevelCritical, first.RiskLevel)
	assert.Len(t, first.Warnings, 2)
	assert.Len(t, first.Recommendations, 2)
	assert.Equal(t, 1, first.StepsRecorded)

	second, err := m.Monitor(ctx, &models.StepMonitorRequest{
		ProductID:  "p-1",
		StepNumber: 7,
		StepData:   map[string]interface{}{"shippingWeight": 2.5},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, second.RiskScore)
	assert.Empty(t, second.Warnings)
	assert.InDelta(t, 0.4, second.OverallRiskScore, 1e-9)
	assert.Equal(t, models.RiskLevelMedium, second.OverallRiskLevel)
	assert.Equal(t, 2, second.StepsRecorded)

	session, err := m.Session(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, session.Results, 2)
	assert.Equal(t, 3, session.Results[0].Step)
	assert.InDelta(t, 0.4, session.OverallRiskScore, 1e-9)

	_, err = m.Session(ctx, "p-unknown")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = m.Monitor(ctx, &models.StepMonitorRequest{ProductID: "p-1", StepNumber: 8, StepData: map[string]interface{}{}})
	assert.True(t, models.IsValidation(err))
}

func TestListingAnalyzer(t *testing.T) {
	ctx := context.Background()

	t.Run("clean listing is approved", func(t *testing.T) {
		reg, _, _ := newTestRegistry()
		a := NewListingAnalyzer(newGateway(&fakeClassifier{
			text:  &models.TextModelScore{FakeProbability: 0.1},
			image: &models.ImageModelScore{Authenticity: 0.95},
		}), reg, zap.NewNop())

		res, err := a.Analyze(ctx, &models.ListingSubmitRequest{ListingData: models.ListingData{
			BrandName:          "Acme",
			ProductTitle:       "Acme wireless headphone with charger",
			ProductDescription: "Over-ear wireless headphone with a 30 hour battery and a USB-C charger in the box.",
			Price:              79.99,
			Category:           "Electronics",
			MainImage:          "img://main",
		}})
		require.NoError(t, err)
		assert.Equal(t, models.RiskLevelLow, res.RiskLevel)
		assert.Equal(t, ListingApproved, res.Status)
		assert.Empty(t, res.FlagID)
		assert.NotEmpty(t, res.ProductID)
	})

	t.Run("replica listing is flagged", func(t *testing.T) {
		reg, _, _ := newTestRegistry()
		a := NewListingAnalyzer(newGateway(nil), reg, zap.NewNop())

		res, err := a.Analyze(ctx, &models.ListingSubmitRequest{
			ProductID: "p-9",
			SellerID:  "s-1",
			ListingData: models.ListingData{
				BrandName:          "Fake Rolex",
				ProductTitle:       "Luxury replica watch",
				ProductDescription: "lorem ipsum",
				Price:              1,
				Category:           "Clothing, Shoes & Jewelry",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, models.RiskLevelCritical, res.RiskLevel)
		assert.Equal(t, ListingRejected, res.Status)
		require.NotEmpty(t, res.FlagID)

		flag, err := reg.Get(ctx, res.FlagID)
		require.NoError(t, err)
		assert.Equal(t, "High Risk Product Listing - Fake Rolex", flag.Title)
		assert.Equal(t, models.SeverityCritical, flag.Severity)
		assert.Equal(t, "p-9", flag.Product.ID)
		assert.Equal(t, "s-1", flag.Seller.ID)
	})
}

func TestVerificationScanner(t *testing.T) {
	ctx := context.Background()

	t.Run("authentic", func(t *testing.T) {
		reg, _, _ := newTestRegistry()
		s := NewVerificationScanner(newGateway(&fakeClassifier{image: &models.ImageModelScore{Authenticity: 0.95}}), reg, zap.NewNop())
		res, err := s.Scan(ctx, &models.VerificationRequest{
			OrderID:          "o-1",
			CapturedImageURL: "img://p",
			ExpectedImageURL: "img://p",
			ExpectedBarcode:  "0123",
			DecodedBarcode:   "0123",
		})
		require.NoError(t, err)
		assert.Equal(t, models.VerificationAuthentic, res.Result)
		assert.Equal(t, 100.0, res.Score.TrustScore)
		assert.Empty(t, res.FlagID)
	})

	t.Run("wrong item", func(t *testing.T) {
		reg, alerts, _ := newTestRegistry()
		s := NewVerificationScanner(newGateway(nil), reg, zap.NewNop())
		res, err := s.Scan(ctx, &models.VerificationRequest{
			OrderID:          "o-2",
			CapturedImageURL: "img://q",
			ExpectedImageURL: "img://p",
			ExpectedBarcode:  "0123",
			DecodedBarcode:   "9999",
		})
		require.NoError(t, err)
		assert.Equal(t, models.VerificationCounterfeit, res.Result)
		assert.Equal(t, models.SeverityCritical, res.Severity)
		require.NotEmpty(t, res.FlagID)

		flag, err := reg.Get(ctx, res.FlagID)
		require.NoError(t, err)
		assert.Equal(t, "Counterfeit Product Detected", flag.Title)
		assert.Equal(t, models.SeverityCritical, flag.Severity)
		assert.Equal(t, 1, alerts.count())
	})

	t.Run("missing order id", func(t *testing.T) {
		reg, _, _ := newTestRegistry()
		s := NewVerificationScanner(newGateway(nil), reg, zap.NewNop())
		_, err := s.Scan(ctx, &models.VerificationRequest{CapturedImageURL: "img://q"})
		assert.True(t, models.IsValidation(err))
	})
}
