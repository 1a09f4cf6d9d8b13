package buyin

import (
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/pubsub"
)

const ledgerEventsTopic = "escrow.poker.events"

// EventPublisher decouples the coordinator from the pubsub singleton so
// tests can capture what would be published.
type EventPublisher interface {
	Publish(message pubsub.Publishable)
}

type PubsubPublisher struct{}

func (PubsubPublisher) Publish(message pubsub.Publishable) {
	pubsub.Publish(message)
}

type DepositConfirmed struct {
	GameId   string `json:"gameId"`
	PlayerId string `json:"playerId"`
	Fid      int64  `json:"fid"`
	Amount   int64  `json:"amount"`
	TxHash   string `json:"txHash"`
	Rebuy    bool   `json:"rebuy"`
}

func (DepositConfirmed) GetEventTopicName() string {
	return ledgerEventsTopic
}

// DepositUnrecorded flags a confirmed on-chain deposit whose ledger write
// kept failing. Consumers route it to manual reconciliation.
type DepositUnrecorded struct {
	GameId   string `json:"gameId"`
	PlayerId string `json:"playerId"`
	Fid      int64  `json:"fid"`
	Amount   int64  `json:"amount"`
	TxHash   string `json:"txHash"`
}

func (DepositUnrecorded) GetEventTopicName() string {
	return ledgerEventsTopic
}
