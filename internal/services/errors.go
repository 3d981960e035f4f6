package services

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindFetchFailure
	KindBadRequest
	KindUnauthorized
)

// ServiceError carries a message that is safe to show to a chat user or API
// caller. Cause is kept for logs only.
type ServiceError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Cause   error
}

func (e ServiceError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e ServiceError) Unwrap() error {
	return e.Cause
}

func ErrNotFound(msg string) error {
	return ServiceError{Kind: KindNotFound, Status: 404, Message: msg}
}

func ErrBadRequest(msg string) error {
	return ServiceError{Kind: KindBadRequest, Status: 400, Message: msg}
}

func ErrUnauthorized(msg string) error {
	return ServiceError{Kind: KindUnauthorized, Status: 401, Message: msg}
}

// ErrFetch marks a failed read against the project store. Every aggregation
// aborts on the first one.
func ErrFetch(op string, err error) error {
	return ServiceError{
		Kind:    KindFetchFailure,
		Status:  500,
		Message: MsgFetchFailed,
		Cause:   fmt.Errorf("%s: %w", op, err),
	}
}

func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// IsKind reports whether err is a ServiceError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var serr ServiceError
	if errors.As(err, &serr) {
		return serr.Kind == kind
	}
	return false
}

// UserMessage returns the text shown to the user for err.
func UserMessage(err error) string {
	var serr ServiceError
	if errors.As(err, &serr) {
		return serr.Message
	}
	return MsgFetchFailed
}

const (
	MsgGroupHasNoProject  = "⚠️ 本群組尚未建立任何專案"
	MsgNoProjectInGroup   = "⚠️ 找不到群組中的專案，請先建立一個專案"
	MsgProjectNotFound    = "⚠️ 找不到該專案"
	MsgFetchFailed        = "❌ 讀取專案資料失敗，請稍後再試"
	MsgReportBuildFailed  = "❌ 生成報表失敗，請稍後再試"
	MsgMissingPushTargets = "缺少 project_id 或 group_id"
)
