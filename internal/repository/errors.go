package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrEmailExists はメールアドレスの一意制約違反を表す。
	ErrEmailExists = errors.New("email already exists")
	// ErrInviteNotFound は受諾可能な招待が存在しないことを表す。
	ErrInviteNotFound = errors.New("open invite not found")
)

// uniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const uniqueViolation = "23505"

// usersEmailConstraint はusers.emailの一意制約名。
const usersEmailConstraint = "users_email_key"

// isUniqueViolation はerrが指定した制約の一意制約違反かどうかを返す。
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == uniqueViolation && pqErr.Constraint == constraint
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
