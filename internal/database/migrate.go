// Package database はデータベース接続とマイグレーション管理を提供する。
package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDirtyDatabase は前回のマイグレーションが途中で失敗し、手動での修復が必要な状態を表す。
var ErrDirtyDatabase = errors.New("database schema is dirty")

// MigrationStatus はマイグレーション適用後のスキーマ状態。
type MigrationStatus struct {
	Version uint // 適用済みの最新バージョン。未適用の場合は0
	Dirty   bool
	Applied bool // 今回の実行で新たに適用したかどうか
}

// migrator はmigrate.Migrateのうちマイグレーション適用に使う操作。
type migrator interface {
	Up() error
	Version() (uint, bool, error)
}

// NewMigrator は埋め込みSQLを読むmigrateインスタンスを生成する。
// databaseURLはPostgreSQLの接続URLを指定する。
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("マイグレーションソースの作成に失敗しました: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("マイグレーターの作成に失敗しました: %w", err)
	}

	return m, nil
}

// RunMigrations は未適用のマイグレーションをすべて適用し、適用後のバージョンを返す。
// すでに最新の場合はApplied=falseで返る。dirtyなスキーマにはErrDirtyDatabaseを返し、何も適用しない。
func RunMigrations(databaseURL string) (*MigrationStatus, error) {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	return applyMigrations(m)
}

func applyMigrations(m migrator) (*MigrationStatus, error) {
	before, dirty, err := currentVersion(m)
	if err != nil {
		return nil, err
	}
	if dirty {
		return &MigrationStatus{Version: before, Dirty: true},
			fmt.Errorf("%w: version %d (migrate force で修復してください)", ErrDirtyDatabase, before)
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		// 失敗時もどこまで進んだかを返す
		status := &MigrationStatus{Version: before}
		if v, d, verr := currentVersion(m); verr == nil {
			status.Version, status.Dirty = v, d
		}
		return status, fmt.Errorf("マイグレーションの適用に失敗しました: %w", upErr)
	}

	after, dirty, err := currentVersion(m)
	if err != nil {
		return nil, err
	}

	return &MigrationStatus{
		Version: after,
		Dirty:   dirty,
		Applied: upErr == nil && after != before,
	}, nil
}

// currentVersion は適用済みバージョンを返す。未適用の場合は0を返す。
func currentVersion(m migrator) (uint, bool, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("スキーマバージョンの取得に失敗しました: %w", err)
	}
	return v, dirty, nil
}
