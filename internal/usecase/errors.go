package usecase

import (
	"errors"
	"fmt"

	"littlelemon/internal/repository"
)

type ErrorKind string

const (
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindInvalidInput ErrorKind = "INVALID_INPUT"
	KindInvalidState ErrorKind = "INVALID_STATE"
	KindForbidden    ErrorKind = "FORBIDDEN"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindConflict     ErrorKind = "CONFLICT"
	KindInternal     ErrorKind = "INTERNAL"
)

// usecaseが返すエラー。HTTPのステータスへの変換はhandlerがやる
type Error struct {
	Kind    ErrorKind
	Message string
	// INTERNALの原因（ログ用。クライアントには出さない）
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, message string) error {
	return &Error{Kind: kind, Message: message}
}

func internalError(err error) error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

func AsError(err error) (*Error, bool) {
	var ue *Error
	ok := errors.As(err, &ue)
	return ue, ok
}

// errがnilなら""
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if ue, ok := AsError(err); ok {
		return ue.Kind
	}
	return KindInternal
}

// repositoryのエラーをusecaseのエラーに寄せる
func fromRepoError(err error, notFoundMessage string) error {
	if err == nil {
		return nil
	}
	if _, ok := AsError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrUserNotFound):
		return NewError(KindNotFound, notFoundMessage)
	case errors.Is(err, repository.ErrConflict):
		return NewError(KindConflict, "concurrent update, please retry")
	case errors.Is(err, repository.ErrDuplicate):
		return NewError(KindConflict, "already exists")
	case errors.Is(err, repository.ErrOutOfRange):
		return NewError(KindInvalidInput, "value out of range")
	}
	return internalError(err)
}
