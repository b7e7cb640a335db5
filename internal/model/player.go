package model

import "time"

// Transaction types.
const (
	TransactionDeposit    = "deposit"
	TransactionWithdrawal = "withdrawal"
)

// Player is a club member tracked in the ledger.  The totals are derived
// from player_transactions and never written back.
type Player struct {
	ID               uint64    `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Nickname         string    `json:"nickname" db:"nickname"`
	Email            string    `json:"email" db:"email"`
	Phone            string    `json:"phone" db:"phone"`
	Notes            string    `json:"notes" db:"notes"`
	TotalDeposits    int64     `json:"totalDeposits" db:"total_deposits"`
	TotalWithdrawals int64     `json:"totalWithdrawals" db:"total_withdrawals"`
	Balance          int64     `json:"balance" db:"balance"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// Transaction is one ledger entry.  Amount is always positive; Type decides the sign.
type Transaction struct {
	ID        uint64    `json:"id" db:"id"`
	PlayerID  uint64    `json:"playerId" db:"player_id"`
	Type      string    `json:"type" db:"type"`
	Amount    int64     `json:"amount" db:"amount"`
	Note      string    `json:"note" db:"note"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
