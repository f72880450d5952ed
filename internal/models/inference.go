// internal/models/inference.go
package models

// TextModelScore is the text classifier's verdict on a piece of text.
type TextModelScore struct {
	FakeProbability float64 `json:"fake_probability"`
	Label           string  `json:"label,omitempty"`
	Model           string  `json:"model,omitempty"`
}

// ImageModelScore is the image model's verdict on a candidate image.
// Similarity is nil when no reference image was compared.
type ImageModelScore struct {
	Authenticity         float64  `json:"authenticity"`
	Similarity           *float64 `json:"similarity,omitempty"`
	ManipulationDetected bool     `json:"manipulation_detected"`
	AIGenerated          bool     `json:"ai_generated"`
	StockPhoto           bool     `json:"stock_photo"`
	Model                string   `json:"model,omitempty"`
}

// ModelScores carries whatever the collaborators returned. Nil fields mean
// the model was not consulted or did not answer in time.
type ModelScores struct {
	Text  *TextModelScore
	Image *ImageModelScore
}
