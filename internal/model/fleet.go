package model

import "time"

// Invite は従業員を会社に招待するための一回限りの招待を表す。
// Usedがtrueになった招待は二度と受諾できない。
type Invite struct {
	ID        string
	CompanyID string
	Email     string
	Role      Role
	Token     string
	Used      bool
	CreatedAt time.Time
}

// Vehicle は会社が保有する車両を表す。
type Vehicle struct {
	ID               string
	CompanyID        string
	Plate            string
	Label            *string
	LimitDaily       float64
	GeofenceRequired bool
	CreatedAt        time.Time
}

// Transaction は給油カードの取引を表す。APIからは参照のみ。
type Transaction struct {
	ID        string
	CompanyID string
	VehicleID *string
	Merchant  string
	Kind      string
	Amount    float64
	When      time.Time
	Plate     string
}

// Invoice は請求書を表す。現状はデモデータのみで永続化しない。
type Invoice struct {
	ID       string
	Period   string
	Amount   float64
	Status   string
	IssuedAt time.Time
}
