package engine

import (
	"github.com/openrlce/routelock/pkg"
	"github.com/openrlce/routelock/pkg/datastructure"
	"github.com/openrlce/routelock/pkg/util"
)

// LegitimacyChecks are the three sub-checks run against an out-of-window
// serving candidate. Kept as named booleans so each contribution can be
// asserted on independently of the total.
type LegitimacyChecks struct {
	PLMNMatch     bool `json:"plmn_match"`
	TACContinuity bool `json:"tac_continuity"`
	ARFCNAllowed  bool `json:"arfcn_allowed"`
}

// Score is the number of passed sub-checks, always in [0, 3].
func (c LegitimacyChecks) Score() int {
	score := 0
	if c.PLMNMatch {
		score++
	}
	if c.TACContinuity {
		score++
	}
	if c.ARFCNAllowed {
		score++
	}
	return score
}

// CheckLegitimacy compares the candidate against the route operator and the
// last accepted serving tower. prior == nil (no tower accepted yet) passes
// the TAC continuity check.
func CheckLegitimacy(candidate, prior *datastructure.CellTower, operatorPLMN string) LegitimacyChecks {
	return LegitimacyChecks{
		PLMNMatch:     candidate.PLMN == operatorPLMN,
		TACContinuity: prior == nil || util.Abs(candidate.TAC-prior.TAC) <= 1,
		ARFCNAllowed:  pkg.AllowedARFCN[candidate.Tech][candidate.ARFCN],
	}
}
