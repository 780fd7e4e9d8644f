package core

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// ProvisionalPrefix marks locally synthesized transaction IDs. The backend
// never issues IDs with this prefix, so a prefix match is sufficient to tell
// a placeholder apart from an authoritative record.
const ProvisionalPrefix = "temp-"

var provisionalSeq atomic.Uint64

// NewProvisionalID returns a fresh placeholder ID. The monotonic counter keeps
// IDs unique even when several submissions land within the same millisecond.
func NewProvisionalID() string {
	return fmt.Sprintf("%s%d-%d", ProvisionalPrefix, time.Now().UnixMilli(), provisionalSeq.Add(1))
}

// IsProvisional reports whether id carries the reserved placeholder prefix.
func IsProvisional(id string) bool {
	return strings.HasPrefix(id, ProvisionalPrefix)
}

// NewProvisional builds the optimistic placeholder shown while the scoring
// service has not yet answered.
func NewProvisional(userID string, amount float64, merchant, category, description string) Transaction {
	return Transaction{
		ID:          NewProvisionalID(),
		UserID:      userID,
		Amount:      amount,
		Merchant:    merchant,
		Category:    category,
		Description: description,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Status:      StatusPending,
		IsFraud:     false,
		FraudScore:  nil,
	}
}
