package workflow

import (
	"slices"

	"strot/pkg/types"
)

func HasRole(user *types.User, roles ...types.Role) bool {
	if user == nil {
		return false
	}
	return slices.Contains(roles, user.Role)
}

// CanActAsCommunityHead is true only for an active community head record
// belonging to user.
func CanActAsCommunityHead(user *types.User, head *types.CommunityHead) bool {
	if user == nil || head == nil {
		return false
	}
	return user.Role == types.RoleCommunityHead &&
		head.UserID == user.ID &&
		head.Status == types.CommunityHeadStatusActive
}

// CanRegisterAs reports whether role may be chosen at sign up.
func CanRegisterAs(role types.Role) bool {
	return slices.Contains(types.SelfServiceRoles, role)
}

// CSRBalance sums a business ledger.
func CSRBalance(entries []*types.CSRTransaction) int64 {
	var balance int64
	for _, e := range entries {
		balance += e.SignedAmount()
	}
	return balance
}

// CanDisburse rejects a disbursement that would take the balance negative.
func CanDisburse(balance, amount int64) error {
	if amount <= 0 || amount > balance {
		return types.ErrInsufficientFunds
	}
	return nil
}
