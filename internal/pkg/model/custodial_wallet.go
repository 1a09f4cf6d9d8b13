package model

// CustodialWallet holds the KMS key backing a player's on-chain address.
// ResourceId is the fully qualified KMS crypto key version name.
type CustodialWallet struct {
	Id         string `gorm:"primaryKey" json:"id"`
	ResourceId string `json:"resourceId"`
	PublicKey  string `json:"publicKey"`
	Address    string `json:"address"`
}

func (CustodialWallet) TableName() string {
	return "custodial_wallet"
}
