package model

type User struct {
	Id                string `gorm:"primaryKey" json:"id"`
	Fid               int64  `gorm:"uniqueIndex" json:"fid"`
	Username          string `json:"username"`
	CustodialWalletId string `json:"custodialWalletId"`
	GoogleIdentityId  string `json:"-"`
}

func (User) TableName() string {
	return "pokernight_user"
}
