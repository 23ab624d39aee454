// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限種別を表す。
type Role string

const (
	// RoleAdmin は会社の管理者。会社登録時に作成される。
	RoleAdmin Role = "admin"
	// RoleEmployee は招待から参加した従業員。
	RoleEmployee Role = "employee"
)

// Valid は定義済みのロールかどうかを返す。
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// Company はテナント（データ分離の単位）を表す。作成後は変更しない。
type Company struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// User は会社に所属するユーザーを表す。
// メールアドレスはシステム全体で一意。
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string
	Role         Role
	FirstName    *string
	LastName     *string
	CreatedAt    time.Time
}

// Claims はセッショントークンに埋め込まれる認証情報。
type Claims struct {
	UserID    string
	CompanyID string
	Role      Role
}
