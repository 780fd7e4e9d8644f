package core

import (
	"errors"
	"strings"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		tx      Transaction
		wantErr error
	}{
		{
			name:    "valid",
			tx:      Transaction{Amount: 150.00, Merchant: "Acme", Category: "retail"},
			wantErr: nil,
		},
		{
			name:    "negative amount",
			tx:      Transaction{Amount: -5, Merchant: "Acme", Category: "retail"},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "zero amount",
			tx:      Transaction{Amount: 0, Merchant: "Acme", Category: "retail"},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "missing merchant",
			tx:      Transaction{Amount: 10, Merchant: "  ", Category: "retail"},
			wantErr: ErrEmptyMerchant,
		},
		{
			name:    "missing category",
			tx:      Transaction{Amount: 10, Merchant: "Acme"},
			wantErr: ErrEmptyCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"approved", StatusApproved},
		{"APPROVED", StatusApproved},
		{"Blocked", StatusBlocked},
		{"blocked", StatusBlocked},
		{"pending", StatusPending},
		{"", StatusPending},
		{"whatever", StatusPending},
		{"  approved ", StatusApproved},
	}

	for _, tt := range tests {
		if got := NormalizeStatus(tt.in); got != tt.want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFraudulent(t *testing.T) {
	if (Transaction{Status: StatusApproved}).Fraudulent() {
		t.Error("approved transaction should not count as fraudulent")
	}
	if !(Transaction{Status: StatusBlocked}).Fraudulent() {
		t.Error("blocked transaction should count as fraudulent")
	}
	if !(Transaction{Status: StatusApproved, IsFraud: true}).Fraudulent() {
		t.Error("is_fraud transaction should count as fraudulent")
	}
}

func TestHighRisk(t *testing.T) {
	score := func(v float64) *float64 { return &v }

	if (Transaction{}).HighRisk() {
		t.Error("unscored transaction should not be high risk")
	}
	if (Transaction{FraudScore: score(0.7)}).HighRisk() {
		t.Error("score at the threshold should not be high risk")
	}
	if !(Transaction{FraudScore: score(0.71)}).HighRisk() {
		t.Error("score above the threshold should be high risk")
	}
}

func TestProvisionalIDs(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewProvisionalID()
		if !strings.HasPrefix(id, ProvisionalPrefix) {
			t.Fatalf("provisional ID %q missing prefix %q", id, ProvisionalPrefix)
		}
		if !IsProvisional(id) {
			t.Fatalf("IsProvisional(%q) = false", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate provisional ID %q", id)
		}
		seen[id] = struct{}{}
	}

	if IsProvisional("42") {
		t.Error("server ID should not look provisional")
	}
}

func TestNewProvisional(t *testing.T) {
	p := NewProvisional("alice", 99.90, "Acme", "retail", "gadgets")

	if p.Status != StatusPending {
		t.Errorf("status = %q, want PENDING", p.Status)
	}
	if p.IsFraud {
		t.Error("provisional record must not be flagged as fraud")
	}
	if p.FraudScore != nil {
		t.Error("provisional record must be unscored")
	}
	if p.Timestamp == "" {
		t.Error("provisional record must carry a timestamp")
	}
	if !IsProvisional(p.ID) {
		t.Errorf("ID %q is not provisional", p.ID)
	}
}
