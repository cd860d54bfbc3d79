package store

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Kind classifies a backend failure.
type Kind int

const (
	KindOther Kind = iota
	KindDuplicate
	KindNotNull
	KindNotFound
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindDuplicate:
		return "duplicate"
	case KindNotNull:
		return "not_null"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	}
	return "other"
}

// User-facing messages for classified failures.
const (
	MsgDuplicate   = "数据已存在，请检查重复性"
	MsgNotNull     = "必填字段不能为空"
	MsgGeneric     = "操作失败，请稍后重试"
	MsgUnavailable = "后端服务不可用，已使用本地数据"
	MsgNotFound    = "记录不存在"
)

// Error is a classified backend failure carrying a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors of the same kind, so a classified not-found
// error satisfies errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == nil && t.Kind == e.Kind
}

// ErrNotFound is returned when a record does not exist in the backend.
var ErrNotFound = &Error{Kind: KindNotFound, Message: MsgNotFound}

// ErrUnavailable is returned by the offline backend.
var ErrUnavailable = &Error{Kind: KindUnavailable, Message: MsgUnavailable}

// Classify maps a driver error to an *Error. Unique violations and not-null
// violations get fixed messages; anything else keeps its own message.
// Classify(nil) is nil.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Kind: KindNotFound, Message: MsgNotFound, Err: err}
	}
	switch kindOf(err) {
	case KindDuplicate:
		return &Error{Kind: KindDuplicate, Message: MsgDuplicate, Err: err}
	case KindNotNull:
		return &Error{Kind: KindNotNull, Message: MsgNotNull, Err: err}
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = MsgGeneric
	}
	return &Error{Kind: KindOther, Message: msg, Err: err}
}

// Message returns the user-facing message for err, or "" for nil.
func Message(err error) string {
	if se := Classify(err); se != nil {
		return se.Message
	}
	return ""
}

func kindOf(err error) Kind {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return KindDuplicate
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return KindDuplicate
		case "23502":
			return KindNotNull
		}
		return KindOther
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return KindDuplicate
		case 1048, 1364:
			return KindNotNull
		}
		return KindOther
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return KindDuplicate
		case sqlite3.ErrConstraintNotNull:
			return KindNotNull
		}
	}
	return KindOther
}
