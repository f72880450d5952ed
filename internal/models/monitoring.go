// internal/models/monitoring.go
package models

import "time"

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// Severity maps a risk level onto the flag severity scale.
func (l RiskLevel) Severity() Severity {
	switch l {
	case RiskLevelCritical:
		return SeverityCritical
	case RiskLevelHigh:
		return SeverityHigh
	case RiskLevelMedium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

const (
	FirstStep = 1
	LastStep  = 7
)

type StepMonitorRequest struct {
	StepData   map[string]interface{} `json:"step_data" binding:"required"`
	StepNumber int                    `json:"step_number" binding:"required,min=1,max=7"`
	ProductID  string                 `json:"product_id" binding:"required"`
}

type MonitoringResult struct {
	Step            int        `json:"step"`
	ProductID       string     `json:"product_id"`
	Timestamp       time.Time  `json:"timestamp"`
	Warnings        []string   `json:"warnings"`
	RiskScore       float64    `json:"risk_score"`
	RiskLevel       RiskLevel  `json:"risk_level"`
	Recommendations []string   `json:"recommendations"`
	Evidence        []Evidence `json:"evidence,omitempty"`
	PartialAnalysis bool       `json:"partial_analysis"`
}

// MonitoringSession is the accumulated history of one listing session.
type MonitoringSession struct {
	ProductID        string              `json:"product_id"`
	Results          []*MonitoringResult `json:"results"`
	OverallRiskScore float64             `json:"overall_risk_score"`
	OverallRiskLevel RiskLevel           `json:"overall_risk_level"`
}

type StepMonitorResponse struct {
	*MonitoringResult
	OverallRiskScore float64   `json:"overall_risk_score"`
	OverallRiskLevel RiskLevel `json:"overall_risk_level"`
	StepsRecorded    int       `json:"steps_recorded"`
}
