// Package repository はデータ永続化のインターフェースとPostgreSQL実装を提供する。
package repository

import (
	"context"
	"database/sql"

	"github.com/Fuelgo-app/fuelgo-api/internal/model"
)

// AccountRepository は会社と管理者ユーザーの登録を扱う。
type AccountRepository interface {
	// CreateCompanyWithAdmin は会社と管理者ユーザーを同一トランザクションで作成する。
	// メールアドレスが既に使われている場合はErrEmailExistsを返し、何も作成しない。
	CreateCompanyWithAdmin(ctx context.Context, company *model.Company, admin *model.User) error
}

// UserRepository はユーザーデータの参照インターフェース。
type UserRepository interface {
	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// InviteRepository は招待データの永続化インターフェース。
type InviteRepository interface {
	// Create は招待を作成する。
	Create(ctx context.Context, invite *model.Invite) error

	// FindOpen はtokenとemailが一致する未使用の招待を取得する。見つからない場合はnilを返す。
	FindOpen(ctx context.Context, token, email string) (*model.Invite, error)

	// Accept は未使用の招待をロックし、招待先の会社に従業員ユーザーを作成して招待を使用済みにする。
	// userのCompanyIDとRoleは招待の内容で上書きされる。
	// 該当する招待がない（使用済みを含む）場合はErrInviteNotFound、
	// メールアドレスが既に使われている場合はErrEmailExistsを返す。
	Accept(ctx context.Context, token, email string, user *model.User) (*model.Invite, error)
}

// VehicleRepository は車両データの永続化インターフェース。
type VehicleRepository interface {
	// ListByCompany は会社の車両を作成日時の降順で返す。
	ListByCompany(ctx context.Context, companyID string) ([]*model.Vehicle, error)

	// Create は車両を作成する。
	Create(ctx context.Context, vehicle *model.Vehicle) error
}

// TransactionRepository は給油取引データの永続化インターフェース。
type TransactionRepository interface {
	// ListByCompany は会社の取引を取引日時の降順で返す。
	ListByCompany(ctx context.Context, companyID string) ([]*model.Transaction, error)

	// CreateBatch は取引をまとめて同一トランザクションで作成する（デモデータ投入用）。
	CreateBatch(ctx context.Context, txns []*model.Transaction) error
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
