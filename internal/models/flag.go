// internal/models/flag.go
package models

import "time"

type Severity string
type FlagStatus string
type Outcome string
type TriageAction string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"

	FlagStatusOpen          FlagStatus = "Open"
	FlagStatusInvestigating FlagStatus = "Investigating"
	FlagStatusResolved      FlagStatus = "Resolved"

	OutcomeSuspended Outcome = "suspended"
	OutcomeWarned    Outcome = "warned"
	OutcomeDismissed Outcome = "dismissed"

	ActionSuspend TriageAction = "Suspend"
	ActionWarn    TriageAction = "Warn"
	ActionDismiss TriageAction = "Dismiss"
)

// FlagDateLayout is the calendar-day format of Flag.FlaggedOn.
const FlagDateLayout = "2006-01-02"

// Severities lists every bucket from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Rank orders severities; a higher rank is more severe. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// AtLeast reports whether s is as severe as other or more.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// Outcome maps a resolving action to the outcome it records.
func (a TriageAction) Outcome() (Outcome, bool) {
	switch a {
	case ActionSuspend:
		return OutcomeSuspended, true
	case ActionWarn:
		return OutcomeWarned, true
	case ActionDismiss:
		return OutcomeDismissed, true
	default:
		return "", false
	}
}

type Evidence struct {
	Type     Category `json:"type" bson:"type"`
	Message  string   `json:"message" bson:"message"`
	Image    string   `json:"image,omitempty" bson:"image,omitempty"`
	Label    Marker   `json:"label,omitempty" bson:"label,omitempty"`
	Severity Severity `json:"severity,omitempty" bson:"severity,omitempty"`
}

type ProductRef struct {
	ID        string   `json:"id,omitempty" bson:"id,omitempty"`
	Title     string   `json:"title" bson:"title"`
	Price     float64  `json:"price" bson:"price"`
	Category  string   `json:"category" bson:"category"`
	Images    []string `json:"images,omitempty" bson:"images,omitempty"`
	Rating    float64  `json:"rating,omitempty" bson:"rating,omitempty"`
	Reviews   int      `json:"totalReviews,omitempty" bson:"total_reviews,omitempty"`
	MarketAvg float64  `json:"marketAvg,omitempty" bson:"market_avg,omitempty"`
}

type SellerRef struct {
	ID         string  `json:"id,omitempty" bson:"id,omitempty"`
	Name       string  `json:"name" bson:"name"`
	Rating     float64 `json:"rating" bson:"rating"`
	TotalSales int     `json:"totalSales" bson:"total_sales"`
	AccountAge string  `json:"accountAge" bson:"account_age"`
}

type AccountRef struct {
	Username  string `json:"username" bson:"username"`
	LastLogin string `json:"lastLogin" bson:"last_login"`
	Location  string `json:"location" bson:"location"`
}

// Note is one append-only operator or system entry on a flag.
type Note struct {
	Author    string    `json:"author" bson:"author"`
	Text      string    `json:"text" bson:"text"`
	Action    string    `json:"action,omitempty" bson:"action,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type Flag struct {
	ID           string                 `json:"id" bson:"id"`
	Title        string                 `json:"title" bson:"title"`
	Severity     Severity               `json:"severity" bson:"severity"`
	Status       FlagStatus             `json:"status" bson:"status"`
	Outcome      Outcome                `json:"outcome,omitempty" bson:"outcome,omitempty"`
	FlaggedOn    string                 `json:"flaggedOn" bson:"flagged_on"`
	Risk         string                 `json:"risk" bson:"risk"`
	Category     string                 `json:"category" bson:"category"`
	Evidence     []Evidence             `json:"evidence" bson:"evidence"`
	AISummary    string                 `json:"aiSummary" bson:"ai_summary"`
	AIAnalysis   string                 `json:"ai_analysis,omitempty" bson:"ai_analysis,omitempty"`
	Product      *ProductRef            `json:"product,omitempty" bson:"product,omitempty"`
	Seller       *SellerRef             `json:"seller,omitempty" bson:"seller,omitempty"`
	Account      *AccountRef            `json:"account,omitempty" bson:"account,omitempty"`
	UserUpload   map[string]interface{} `json:"user_upload,omitempty" bson:"user_upload,omitempty"`
	OperatorNote string                 `json:"operatorNote" bson:"operator_note"`
	Notes        []Note                 `json:"notes" bson:"notes"`
	Version      int                    `json:"version" bson:"version"`
	CreatedAt    time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at" bson:"updated_at"`
}

// Clone returns a copy that shares no slices or pointers with f.
func (f *Flag) Clone() *Flag {
	if f == nil {
		return nil
	}
	out := *f
	out.Evidence = append([]Evidence(nil), f.Evidence...)
	out.Notes = append([]Note(nil), f.Notes...)
	if f.Product != nil {
		p := *f.Product
		p.Images = append([]string(nil), f.Product.Images...)
		out.Product = &p
	}
	if f.Seller != nil {
		s := *f.Seller
		out.Seller = &s
	}
	if f.Account != nil {
		a := *f.Account
		out.Account = &a
	}
	if f.UserUpload != nil {
		out.UserUpload = make(map[string]interface{}, len(f.UserUpload))
		for k, v := range f.UserUpload {
			out.UserUpload[k] = v
		}
	}
	return &out
}

// NewFlag is the input for registering a flag.
type NewFlag struct {
	Title      string                 `json:"title" binding:"required"`
	Severity   Severity               `json:"severity" binding:"required,oneof=Critical High Medium Low"`
	Risk       string                 `json:"risk"`
	Category   string                 `json:"category"`
	Evidence   []Evidence             `json:"evidence"`
	AISummary  string                 `json:"aiSummary"`
	Product    *ProductRef            `json:"product"`
	Seller     *SellerRef             `json:"seller"`
	Account    *AccountRef            `json:"account"`
	UserUpload map[string]interface{} `json:"user_upload"`
	Note       string                 `json:"note"`
}

// FlagQuery filters and orders the triage queue.
type FlagQuery struct {
	Text   string
	Status FlagStatus
	Sort   string
}

const (
	SortBySeverity = "severity"
	SortByDate     = "date"
	SortByID       = "id"
)

type ActionRequest struct {
	Action TriageAction `json:"action" binding:"required,oneof=Suspend Warn Dismiss"`
	Note   string       `json:"note"`
}

type NoteRequest struct {
	Note string `json:"note" binding:"required"`
}

// AnalysisSource says where a flag's displayed analysis came from.
type AnalysisSource string

const (
	AnalysisNarrative AnalysisSource = "narrative"
	AnalysisSummary   AnalysisSource = "summary"
	AnalysisNone      AnalysisSource = "none"
)

// NoAnalysisText is shown when neither a narrative nor a summary exists.
const NoAnalysisText = "No analysis available"

type Analysis struct {
	Source AnalysisSource `json:"source"`
	Text   string         `json:"text"`
}

// FlagDetail is a flag together with its resolved analysis block.
type FlagDetail struct {
	*Flag
	Analysis Analysis `json:"analysis"`
}

type SeverityCounts map[Severity]int

// TrendSeries holds one count per label for every severity.
type TrendSeries struct {
	Labels []string           `json:"labels"`
	Data   map[Severity][]int `json:"data"`
}
