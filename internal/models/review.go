// internal/models/review.go
package models

// ReviewerHistory summarizes a reviewer's past activity. Every field is optional.
type ReviewerHistory struct {
	TotalReviews   int `json:"total_reviews"`
	FlaggedReviews int `json:"flagged_reviews"`
	AccountAgeDays int `json:"account_age_days"`
}

type ReviewAnalysisRequest struct {
	ReviewID           string           `json:"review_id"`
	ProductID          string           `json:"product_id"`
	Reviewer           string           `json:"reviewer"`
	ReviewText         string           `json:"review_text" binding:"required"`
	ProductImageURL    string           `json:"product_image_url"`
	ReviewImageURL     string           `json:"review_image_url"`
	Verified           bool             `json:"verified"`
	Rating             int              `json:"ratings" binding:"omitempty,min=0,max=5"`
	ReviewerHistory    *ReviewerHistory `json:"reviewer_history"`
	ProductTitle       string           `json:"product_title"`
	ProductDescription string           `json:"product_description"`
	ProductCategory    string           `json:"product_category"`
}

type ImageAnalysis struct {
	ManipulationDetected bool     `json:"manipulation_detected"`
	SimilarityScore      *float64 `json:"similarity_score"`
}

type ReviewAnalysisResponse struct {
	ReviewID        string        `json:"review_id,omitempty"`
	TrustScore      float64       `json:"trust_score"`
	RiskScore       float64       `json:"risk_score"`
	TextScore       float64       `json:"text_score"`
	ImageScore      *float64      `json:"image_score"`
	Badge           Badge         `json:"badge"`
	Severity        Severity      `json:"severity"`
	FakeProbability float64       `json:"fake_probability"`
	Status          FakeStatus    `json:"status"`
	Recommendation  string        `json:"recommendation"`
	ImageAnalysis   ImageAnalysis `json:"image_analysis"`
	Evidence        []Evidence    `json:"evidence"`
	PartialAnalysis bool          `json:"partial_analysis"`
	Warnings        []string      `json:"warnings"`
	FlagID          string        `json:"flag_id,omitempty"`
}

// Review is a stored product review used by fixture-backed batch analysis.
type Review struct {
	ID           string   `json:"id"`
	ProductID    string   `json:"product_id"`
	ProductImage string   `json:"product_image,omitempty"`
	Reviewer     string   `json:"reviewer"`
	Text         string   `json:"text"`
	Rating       int      `json:"rating"`
	Verified     bool     `json:"verified"`
	Images       []string `json:"images,omitempty"`
}

// ProductReviewsAnalysis summarizes every review of a product.
type ProductReviewsAnalysis struct {
	ProductID         string                    `json:"product_id"`
	AverageTrustScore float64                   `json:"average_trust_score"`
	Distribution      map[Badge]int             `json:"distribution"`
	Reviews           []*ReviewAnalysisResponse `json:"reviews"`
}
