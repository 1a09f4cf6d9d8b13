package model

import (
	"time"
)

type TransactionType string

const (
	TransactionDeposit TransactionType = "deposit"
	TransactionPayout  TransactionType = "payout"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionConfirmed TransactionStatus = "confirmed"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction is the audit trail for every on-chain transfer the ledger
// knows about. A confirmed deposit row with a still-pending player row is
// the signal for manual reconciliation.
type Transaction struct {
	Id        string            `gorm:"primaryKey" json:"id"`
	GameId    string            `json:"gameId"`
	PlayerId  string            `json:"playerId"`
	Type      TransactionType   `json:"type"`
	Amount    int64             `json:"amount"`
	TxHash    *string           `json:"txHash,omitempty"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

func (Transaction) TableName() string {
	return "transaction"
}
