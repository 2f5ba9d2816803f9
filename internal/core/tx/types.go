package tx

import "fmt"

// Type represents a transaction type code
type Type uint16

// Transaction type codes matching the ledger protocol
const (
	TypeInvalid Type = 0xFFFF // Invalid/unknown type

	TypePayment     Type = 0  // ttPAYMENT
	TypeAccountSet  Type = 3  // ttACCOUNT_SET
	TypeOfferCreate Type = 7  // ttOFFER_CREATE
	TypeTrustSet    Type = 20 // ttTRUST_SET
	TypeClawback    Type = 30 // ttCLAWBACK
	TypeAMMCreate   Type = 35 // ttAMM_CREATE
	TypeAMMDeposit  Type = 36 // ttAMM_DEPOSIT
	TypeAMMWithdraw Type = 37 // ttAMM_WITHDRAW
)

var typeNames = map[Type]string{
	TypePayment:     "Payment",
	TypeAccountSet:  "AccountSet",
	TypeOfferCreate: "OfferCreate",
	TypeTrustSet:    "TrustSet",
	TypeClawback:    "Clawback",
	TypeAMMCreate:   "AMMCreate",
	TypeAMMDeposit:  "AMMDeposit",
	TypeAMMWithdraw: "AMMWithdraw",
}

var typesByName = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, name := range typeNames {
		m[name] = t
	}
	return m
}()

// String returns the canonical wire name of the transaction type
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint16(t))
}

// TypeFromName resolves a wire name back to its type code
func TypeFromName(name string) (Type, bool) {
	t, ok := typesByName[name]
	return t, ok
}
