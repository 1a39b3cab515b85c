package allowance

import (
	"math/big"

	"github.com/dmagro/allowcheck/internal/token"
)

// Outcome is the comparison verdict for a check.
type Outcome string

const (
	// OutcomeNone means no expectation was supplied.
	OutcomeNone Outcome = "none"
	// OutcomeMatch means the on-chain allowance equals the expectation.
	OutcomeMatch Outcome = "match"
	// OutcomeMismatch means they differ. Not an error, but the CLI exits
	// non-zero so automation notices.
	OutcomeMismatch Outcome = "mismatch"
)

// Comparison is the result of holding a snapshot against an expectation.
type Comparison struct {
	Outcome       Outcome
	ExpectedHuman string   // normalized to the token's scale, empty for none
	ExpectedRaw   *big.Int // nil for none
}

// Compare tests the fetched allowance against an expected human-units
// value exactly: the expectation is scaled to base units and the two
// integers are compared, so "1000" matches "1000.000000000000000000" and
// no float ever enters the picture. An expectation that cannot exist at
// the token's scale ("0.0000005" on a 6-decimals token) is rejected.
func Compare(snap *Snapshot, expected string) (*Comparison, error) {
	if expected == "" {
		return &Comparison{Outcome: OutcomeNone}, nil
	}

	raw, err := token.ParseUnits(expected, snap.Decimals)
	if err != nil {
		return nil, failf(FailInvalidAmount, "expected amount: %v", err)
	}

	cmp := &Comparison{
		ExpectedHuman: token.FormatUnits(raw, snap.Decimals),
		ExpectedRaw:   raw,
	}
	if snap.Raw.Cmp(raw) == 0 {
		cmp.Outcome = OutcomeMatch
	} else {
		cmp.Outcome = OutcomeMismatch
	}
	return cmp, nil
}
