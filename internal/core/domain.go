package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusBlocked  Status = "BLOCKED"

	// HighRiskThreshold is the fraud-score cutoff above which a risk alert
	// is raised even when the transaction is not outright blocked.
	HighRiskThreshold = 0.7
)

type (
	Status string

	// Transaction is a single scored (or not-yet-scored) financial transaction.
	// FraudScore is nil while the scoring service has not classified it.
	Transaction struct {
		ID          string   `json:"id"`
		UserID      string   `json:"user_id"`
		Amount      float64  `json:"amount"`
		Merchant    string   `json:"merchant"`
		Category    string   `json:"category"`
		Description string   `json:"description,omitempty"`
		Timestamp   string   `json:"timestamp"`
		Status      Status   `json:"status"`
		IsFraud     bool     `json:"is_fraud"`
		FraudScore  *float64 `json:"fraud_score"`
	}

	// Session is the single active authenticated session of the client.
	Session struct {
		Username   string
		Credential string
	}
)

var (
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrEmptyMerchant   = errors.New("empty merchant")
	ErrEmptyCategory   = errors.New("empty category")
	ErrNoActiveSession = errors.New("no active session")
)

// NormalizeStatus maps a case-insensitive wire status onto the canonical
// uppercase form. Unknown values default to PENDING, matching how the
// backend reports records that are still being scored.
func NormalizeStatus(s string) Status {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "APPROVED":
		return StatusApproved
	case "BLOCKED":
		return StatusBlocked
	default:
		return StatusPending
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusBlocked:
		return true
	}
	return false
}

// Validate checks a transaction draft before it is submitted.
func (t Transaction) Validate() error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Merchant) == "" {
		return ErrEmptyMerchant
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Fraudulent reports whether the record counts toward the fraud statistics:
// flagged by the model or blocked outright.
func (t Transaction) Fraudulent() bool {
	return t.IsFraud || t.Status == StatusBlocked
}

// HighRisk reports whether the fraud score exceeds the alert threshold.
func (t Transaction) HighRisk() bool {
	return t.FraudScore != nil && *t.FraudScore > HighRiskThreshold
}

// Normalize canonicalizes wire data in place: status casing and a timestamp
// fallback for backends that omit it.
func (t *Transaction) Normalize() {
	t.Status = NormalizeStatus(string(t.Status))
	if t.Timestamp == "" {
		t.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
}

func (s Session) Active() bool {
	return s.Credential != ""
}
