package services

import "errors"

// ValidationError は入力不備を表し、メッセージはそのままフォームに表示できます。
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError は新しいValidationErrorを作成します。
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// IsValidation は err が ValidationError を含むかを判定します。
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	ErrUsernameTaken    = NewValidationError("Username already exists")
	ErrPasswordMismatch = NewValidationError("Passwords do not match")

	// ErrAuthFailed は認証失敗全般です。画面には理由を出し分けません。
	ErrAuthFailed         = errors.New("authentication failed")
	ErrUserNotFound       = &authError{reason: "user not found"}
	ErrInvalidCredentials = &authError{reason: "invalid credentials"}

	ErrTaskNotFound = errors.New("task not found")
)

type authError struct {
	reason string
}

func (e *authError) Error() string { return e.reason }

func (e *authError) Unwrap() error { return ErrAuthFailed }
