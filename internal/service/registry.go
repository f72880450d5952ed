// internal/service/registry.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/metrics"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/repository"
)

const systemAuthor = "system"

// FlagRegistry owns the triage queue. All writes to one flag go through
// mutate, which serializes them per id and guards the store with a
// version check.
type FlagRegistry struct {
	store    repository.FlagStore
	alerts   Alerter
	narrator *Narrator
	logger   *zap.Logger
	now      func() time.Time
	locks    sync.Map
}

func NewFlagRegistry(store repository.FlagStore, alerts Alerter, logger *zap.Logger) *FlagRegistry {
	return &FlagRegistry{
		store:  store,
		alerts: alerts,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the time source.
func (r *FlagRegistry) WithClock(now func() time.Time) *FlagRegistry {
	r.now = now
	return r
}

// WithNarrator enables generated narratives on flag detail.
func (r *FlagRegistry) WithNarrator(n *Narrator) *FlagRegistry {
	r.narrator = n
	return r
}

// Create registers a flag produced by a scoring path.
func (r *FlagRegistry) Create(ctx context.Context, in models.NewFlag) (*models.Flag, error) {
	if err := validateNewFlag(in); err != nil {
		return nil, err
	}
	return r.insert(ctx, in, systemAuthor)
}

// Escalate registers a flag raised by an operator. An operator note stands
// in as evidence when none was attached.
func (r *FlagRegistry) Escalate(ctx context.Context, in models.NewFlag, operator string) (*models.Flag, error) {
	if len(in.Evidence) == 0 && strings.TrimSpace(in.Note) != "" {
		in.Evidence = []models.Evidence{{
			Type:     models.CategoryOther,
			Message:  "Manually escalated: " + strings.TrimSpace(in.Note),
			Severity: in.Severity,
		}}
	}
	if err := validateNewFlag(in); err != nil {
		return nil, err
	}
	return r.insert(ctx, in, operatorName(operator))
}

func validateNewFlag(in models.NewFlag) error {
	if strings.TrimSpace(in.Title) == "" {
		return models.NewValidationError("title", "required")
	}
	if !in.Severity.Valid() {
		return models.NewValidationError("severity", fmt.Sprintf("unknown severity %q", in.Severity))
	}
	if in.Severity.AtLeast(models.SeverityMedium) && len(in.Evidence) == 0 {
		return models.NewValidationError("evidence", "required for severity Medium or above")
	}
	return nil
}

func (r *FlagRegistry) insert(ctx context.Context, in models.NewFlag, author string) (*models.Flag, error) {
	now := r.now()
	flag := &models.Flag{
		ID:         uuid.New().String(),
		Title:      strings.TrimSpace(in.Title),
		Severity:   in.Severity,
		Status:     models.FlagStatusOpen,
		FlaggedOn:  now.Format(models.FlagDateLayout),
		Risk:       in.Risk,
		Category:   in.Category,
		Evidence:   append([]models.Evidence(nil), in.Evidence...),
		AISummary:  in.AISummary,
		Product:    in.Product,
		Seller:     in.Seller,
		Account:    in.Account,
		UserUpload: in.UserUpload,
		Notes:      []models.Note{},
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if note := strings.TrimSpace(in.Note); note != "" {
		appendNote(flag, author, note, "", now)
	}

	if err := r.store.Insert(ctx, flag); err != nil {
		return nil, fmt.Errorf("store flag: %w", err)
	}
	metrics.FlagsCreated.WithLabelValues(string(flag.Severity)).Inc()
	r.logger.Info("flag created",
		zap.String("flag_id", flag.ID),
		zap.String("severity", string(flag.Severity)),
		zap.String("category", flag.Category))

	if r.alerts != nil {
		r.alerts.FlagCreated(ctx, flag)
	}
	return flag, nil
}

// Seed loads existing flags verbatim. Ids already present are skipped.
func (r *FlagRegistry) Seed(ctx context.Context, src repository.FlagSource) (int, error) {
	flags, err := src.List(ctx)
	if err != nil {
		return 0, err
	}
	for _, f := range flags {
		if err := validateNewFlag(models.NewFlag{Title: f.Title, Severity: f.Severity, Evidence: f.Evidence}); err != nil {
			return 0, fmt.Errorf("seed flag %s: %w", f.ID, err)
		}
	}
	n := 0
	for _, f := range flags {
		if f.Version == 0 {
			f.Version = 1
		}
		if f.Status == "" {
			f.Status = models.FlagStatusOpen
		}
		if f.Notes == nil {
			f.Notes = []models.Note{}
		}
		err := r.store.Insert(ctx, f)
		if errors.Is(err, models.ErrConflict) {
			continue
		}
		if err != nil {
			return n, fmt.Errorf("seed flag %s: %w", f.ID, err)
		}
		n++
	}
	return n, nil
}

func (r *FlagRegistry) Get(ctx context.Context, id string) (*models.Flag, error) {
	return r.store.Get(ctx, id)
}

// Detail resolves the analysis block: stored or generated narrative first,
// then the structured summary, then an explicit placeholder.
func (r *FlagRegistry) Detail(ctx context.Context, id string) (*models.FlagDetail, error) {
	flag, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &models.FlagDetail{Flag: flag}

	narrative := strings.TrimSpace(flag.AIAnalysis)
	if narrative == "" && r.narrator != nil {
		text, err := r.narrator.Narrate(ctx, flag)
		if err != nil {
			r.logger.Warn("narrative unavailable, falling back to summary",
				zap.String("flag_id", flag.ID),
				zap.Error(err))
		}
		narrative = strings.TrimSpace(text)
	}

	switch {
	case narrative != "":
		detail.Analysis = models.Analysis{Source: models.AnalysisNarrative, Text: narrative}
	case strings.TrimSpace(flag.AISummary) != "":
		detail.Analysis = models.Analysis{Source: models.AnalysisSummary, Text: flag.AISummary}
	default:
		detail.Analysis = models.Analysis{Source: models.AnalysisNone, Text: models.NoAnalysisText}
	}
	return detail, nil
}

// List filters by a case-insensitive substring of id or title and by status.
func (r *FlagRegistry) List(ctx context.Context, q models.FlagQuery) ([]*models.Flag, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]*models.Flag, 0, len(all))
	for _, f := range all {
		if q.Status != "" && f.Status != q.Status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(f.ID), needle) &&
			!strings.Contains(strings.ToLower(f.Title), needle) {
			continue
		}
		out = append(out, f)
	}
	sortFlags(out, q.Sort)
	return out, nil
}

func sortFlags(flags []*models.Flag, by string) {
	sort.SliceStable(flags, func(i, j int) bool {
		a, b := flags[i], flags[j]
		switch by {
		case models.SortByID:
			return a.ID < b.ID
		case models.SortByDate:
			if a.FlaggedOn != b.FlaggedOn {
				return a.FlaggedOn > b.FlaggedOn
			}
			if a.Severity.Rank() != b.Severity.Rank() {
				return a.Severity.Rank() > b.Severity.Rank()
			}
			return a.ID < b.ID
		default:
			if a.Severity.Rank() != b.Severity.Rank() {
				return a.Severity.Rank() > b.Severity.Rank()
			}
			if a.FlaggedOn != b.FlaggedOn {
				return a.FlaggedOn > b.FlaggedOn
			}
			return a.ID < b.ID
		}
	})
}

// MarkInvestigating moves an Open flag to Investigating. Repeating it is a
// no-op; a Resolved flag cannot go back.
func (r *FlagRegistry) MarkInvestigating(ctx context.Context, id, operator string) (*models.Flag, error) {
	return r.mutate(ctx, id, func(f *models.Flag, now time.Time) (bool, error) {
		switch f.Status {
		case models.FlagStatusInvestigating:
			return false, nil
		case models.FlagStatusResolved:
			return false, fmt.Errorf("flag %s is resolved: %w", id, models.ErrConflict)
		}
		f.Status = models.FlagStatusInvestigating
		appendNote(f, operatorName(operator), "", "Investigate", now)
		return true, nil
	})
}

// SeverityCounts always reports all four buckets.
func (r *FlagRegistry) SeverityCounts(ctx context.Context) (models.SeverityCounts, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	counts := models.SeverityCounts{}
	for _, s := range models.Severities {
		counts[s] = 0
	}
	for _, f := range all {
		if f.Severity.Valid() {
			counts[f.Severity]++
		}
	}
	return counts, nil
}

// Trends counts flags per severity for every date that has at least one
// flag, in ascending date order.
func (r *FlagRegistry) Trends(ctx context.Context) (*models.TrendSeries, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var labels []string
	for _, f := range all {
		if !seen[f.FlaggedOn] {
			seen[f.FlaggedOn] = true
			labels = append(labels, f.FlaggedOn)
		}
	}
	sort.Strings(labels)

	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	series := &models.TrendSeries{Labels: labels, Data: map[models.Severity][]int{}}
	if series.Labels == nil {
		series.Labels = []string{}
	}
	for _, s := range models.Severities {
		series.Data[s] = make([]int, len(labels))
	}
	for _, f := range all {
		if counts, ok := series.Data[f.Severity]; ok {
			counts[index[f.FlaggedOn]]++
		}
	}
	return series, nil
}

// mutate applies fn to the current flag under the flag's lock and writes it
// back only if fn reports a change.
func (r *FlagRegistry) mutate(ctx context.Context, id string, fn func(*models.Flag, time.Time) (bool, error)) (*models.Flag, error) {
	lock := r.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	flag, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := flag.Version
	now := r.now()

	changed, err := fn(flag, now)
	if err != nil {
		return nil, err
	}
	if !changed {
		return flag, nil
	}
	flag.UpdatedAt = now
	if err := r.store.Update(ctx, flag, expected); err != nil {
		return nil, err
	}
	return flag, nil
}

func (r *FlagRegistry) lockFor(id string) *sync.Mutex {
	l, _ := r.locks.LoadOrStore(id, &sync.Mutex{})
	return l.(*sync.Mutex)
}

func appendNote(f *models.Flag, author, text, action string, at time.Time) {
	f.Notes = append(f.Notes, models.Note{Author: author, Text: text, Action: action, CreatedAt: at})
	if text == "" {
		return
	}
	if f.OperatorNote == "" {
		f.OperatorNote = text
	} else {
		f.OperatorNote += "\n" + text
	}
}

func operatorName(operator string) string {
	if s := strings.TrimSpace(operator); s != "" {
		return s
	}
	return "operator"
}
