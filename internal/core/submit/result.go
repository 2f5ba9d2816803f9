package submit

// Result is a transaction engine result code
type Result int

// Result codes, rippled naming. tes = success, tec = claimed-cost failure.
const (
	TesSUCCESS Result = 0

	TecFROZEN           Result = 137
	TecNO_PERMISSION    Result = 139
	TecOBJECT_NOT_FOUND Result = 160
	TecUNFUNDED_PAYMENT Result = 104
	TecAMM_BALANCE      Result = 163
	TecDUPLICATE        Result = 149
)

var resultNames = map[Result]string{
	TesSUCCESS:          "tesSUCCESS",
	TecFROZEN:           "tecFROZEN",
	TecNO_PERMISSION:    "tecNO_PERMISSION",
	TecOBJECT_NOT_FOUND: "tecOBJECT_NOT_FOUND",
	TecUNFUNDED_PAYMENT: "tecUNFUNDED_PAYMENT",
	TecAMM_BALANCE:      "tecAMM_BALANCE",
	TecDUPLICATE:        "tecDUPLICATE",
}

// String returns the canonical result code name
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "tecFAILED_PROCESSING"
}

// OK reports whether the result is a success
func (r Result) OK() bool {
	return r == TesSUCCESS
}
