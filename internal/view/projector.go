// Package view derives the rendered view model and aggregate statistics from
// a ledger snapshot. Everything here is a pure function of its inputs; the UI
// layer binds the view model separately, so the core stays testable without a
// rendering environment.
package view

import (
	"fmt"
	"time"

	"github.com/Azaziop/systeme-detect-fraude/internal/core"
	"github.com/Azaziop/systeme-detect-fraude/internal/ledger"
)

type (
	// Row is one display-ready transaction entry.
	Row struct {
		ID          string
		Merchant    string
		Category    string
		Description string
		Amount      float64
		Timestamp   string
		Status      core.Status
		StatusLabel string
		ScoreLabel  string
		// Provisional marks a placeholder still waiting for its score.
		Provisional bool
		Fraudulent  bool
	}

	// Stats are the dashboard aggregates derived from the snapshot.
	Stats struct {
		Total       int
		FraudCount  int
		TotalAmount float64
	}

	// Model is the rendered view: filtered rows plus aggregates. Aggregates
	// are always computed over the full snapshot, not the filtered rows,
	// matching the dashboard's behavior.
	Model struct {
		Rows  []Row
		Stats Stats
	}
)

// Render projects a ledger snapshot through a filter into a view model.
func Render(snapshot []core.Transaction, f ledger.Filter) Model {
	m := Model{Rows: make([]Row, 0, len(snapshot))}
	for _, t := range snapshot {
		m.Stats.Total++
		m.Stats.TotalAmount += t.Amount
		if t.Fraudulent() {
			m.Stats.FraudCount++
		}
		if !f.Matches(t) {
			continue
		}
		m.Rows = append(m.Rows, Row{
			ID:          t.ID,
			Merchant:    t.Merchant,
			Category:    t.Category,
			Description: t.Description,
			Amount:      t.Amount,
			Timestamp:   t.Timestamp,
			Status:      t.Status,
			StatusLabel: statusLabel(t),
			ScoreLabel:  scoreLabel(t.FraudScore),
			Provisional: core.IsProvisional(t.ID),
			Fraudulent:  t.Fraudulent(),
		})
	}
	return m
}

func statusLabel(t core.Transaction) string {
	if t.IsFraud {
		return "FRAUD"
	}
	switch t.Status {
	case core.StatusApproved:
		return "Approved"
	case core.StatusBlocked:
		return "Blocked"
	case core.StatusPending:
		return "Scoring..."
	default:
		return "Unknown"
	}
}

func scoreLabel(score *float64) string {
	if score == nil {
		return ""
	}
	return fmt.Sprintf("%.1f%%", *score*100)
}

// AnimateSteps returns the intermediate values a stat counter passes through
// when transitioning from one displayed value to another, one value per
// frame, ending exactly at the target. Purely cosmetic smoothing.
func AnimateSteps(from, to float64, duration, frame time.Duration) []float64 {
	if frame <= 0 || duration <= 0 {
		return []float64{to}
	}
	frames := int(duration / frame)
	if frames < 1 {
		frames = 1
	}
	increment := (to - from) / float64(frames)
	steps := make([]float64, 0, frames)
	current := from
	for i := 0; i < frames-1; i++ {
		current += increment
		steps = append(steps, current)
	}
	return append(steps, to)
}
