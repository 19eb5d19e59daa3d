package instructions

import (
	"github.com/Machine-Labz/cloak-sub000/internal/onchain"
	"github.com/Machine-Labz/cloak-sub000/internal/pouw"
)

// ConsumeClaimForWithdraw invokes the claim-consumption CPI from inside a
// withdraw instruction. The caller is always the withdrawal program itself
// at this call site, so isCPIFromWithdrawalProgram is always true here; the
// parameter still exists on pouw.ConsumeClaim because that function is also
// reachable from a misconfigured or malicious direct call, which must be
// rejected there regardless of who calls it.
func ConsumeClaimForWithdraw(claim *onchain.Claim, currentSlot uint64) error {
	return pouw.ConsumeClaim(claim, true, currentSlot)
}
