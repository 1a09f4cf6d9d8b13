package model

type PlayerStatus string

const (
	// PlayerPending marks a row created before the deposit transaction is
	// confirmed on-chain. Pending rows never count towards the pot.
	PlayerPending PlayerStatus = "pending"
	// PlayerDeposited marks a row whose deposit has been confirmed.
	PlayerDeposited PlayerStatus = "deposited"
)
