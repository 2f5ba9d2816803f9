package tx

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewNativePayment(t *testing.T) {
	p, err := NewNativePayment("rSender", "rReceiver", "100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Amount.IsNative() {
		t.Error("expected a native amount")
	}
	if p.Amount.Value != "100000000" {
		t.Errorf("drops = %q, want \"100000000\"", p.Amount.Value)
	}
	if p.Fee != StandardFee {
		t.Errorf("Fee = %q, want %q", p.Fee, StandardFee)
	}
	if got := p.Summary(); got != "Sent 100 XRP" {
		t.Errorf("summary = %q, want \"Sent 100 XRP\"", got)
	}

	// wire form carries the drops string, not a nested object
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"Amount":"100000000"`) {
		t.Errorf("wire form missing drops string: %s", data)
	}
}

func TestPaymentIssuanceDetection(t *testing.T) {
	tests := []struct {
		name       string
		account    string
		issuer     string
		isIssuance bool
		summary    string
	}{
		{
			name:       "self-issued amount is an issuance",
			account:    "rColdWallet",
			issuer:     "rColdWallet",
			isIssuance: true,
			summary:    "Issued 500 USD",
		},
		{
			name:    "third-party issued amount is a transfer",
			account: "rHotWallet",
			issuer:  "rColdWallet",
			summary: "Sent 500 USD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewIssuedPayment(tt.account, "rDest", "USD", tt.issuer, "500")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.IsIssuance() != tt.isIssuance {
				t.Errorf("IsIssuance() = %v, want %v", p.IsIssuance(), tt.isIssuance)
			}
			if got := p.Summary(); got != tt.summary {
				t.Errorf("summary = %q, want %q", got, tt.summary)
			}
		})
	}
}

func TestPaymentValidation(t *testing.T) {
	tests := []struct {
		name        string
		build       func() (*Payment, error)
		expectError bool
	}{
		{
			name:  "valid native",
			build: func() (*Payment, error) { return NewNativePayment("rA", "rB", "1.5") },
		},
		{
			name:  "valid issued",
			build: func() (*Payment, error) { return NewIssuedPayment("rA", "rB", "EUR", "rIssuer", "250") },
		},
		{
			name:        "zero native amount",
			build:       func() (*Payment, error) { return NewNativePayment("rA", "rB", "0") },
			expectError: true,
		},
		{
			name:        "excess native precision",
			build:       func() (*Payment, error) { return NewNativePayment("rA", "rB", "0.0000001") },
			expectError: true,
		},
		{
			name:        "missing destination",
			build:       func() (*Payment, error) { return NewNativePayment("rA", "", "5") },
			expectError: true,
		},
		{
			name:        "negative issued amount",
			build:       func() (*Payment, error) { return NewIssuedPayment("rA", "rB", "EUR", "rIssuer", "-1") },
			expectError: true,
		},
		{
			name:        "bad currency code",
			build:       func() (*Payment, error) { return NewIssuedPayment("rA", "rB", "eur", "rIssuer", "1") },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if tt.expectError && err == nil {
				t.Error("expected an error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestPaymentOptionalFields(t *testing.T) {
	p, err := NewIssuedPayment("rA", "rB", "USD", "rIssuer", "100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.WithSendMax(NewIssuedAmount("105", "USD", "rIssuer")).
		WithDeliverMin(NewIssuedAmount("95", "USD", "rIssuer"))

	if err := p.Validate(); err != nil {
		t.Fatalf("validate with optional fields: %v", err)
	}

	p.SendMax = &Amount{Value: "-1", Currency: "USD", Issuer: "rIssuer"}
	if err := p.Validate(); err == nil {
		t.Error("expected error for negative SendMax")
	}
}
