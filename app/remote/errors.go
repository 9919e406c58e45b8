package remote

import (
	"errors"
	"fmt"
)

// Kind classifies a remote failure.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindAuth       Kind = "auth"
)

// Error is the single error type every backend returns. Callers branch on
// Kind via errors.As or the Is* helpers.
type Error struct {
	Kind  Kind
	Op    string
	Table string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Table != "" {
		return fmt.Sprintf("remote %s %s: %s", e.Op, e.Table, msg)
	}
	return fmt.Sprintf("remote %s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a typed remote error.
func NewError(kind Kind, op, table, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Table: table, Msg: msg, Err: err}
}

func kindOf(err error) (Kind, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return "", false
}

func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNotFound
}

func IsValidation(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindValidation
}

func IsAuth(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindAuth
}

func IsNetwork(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNetwork
}
