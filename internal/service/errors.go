package service

import "fmt"

const (
	CodeNotFound            = "NOT_FOUND"
	CodeValidation          = "VALIDATION_ERROR"
	CodeTransitionForbidden = "TRANSITION_FORBIDDEN"
	CodeDeleteForbidden     = "DELETE_FORBIDDEN"
	CodeVersionConflict     = "VERSION_CONFLICT"
	CodeIdentityRejected    = "IDENTITY_REJECTED"
	CodeEmailTaken          = "EMAIL_TAKEN"
)

const MsgOnlyOwnerCanDelete = "Only the task owner can delete this task"

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

// Wrap attaches the underlying cause; it is logged but never shown to clients.
func (b *BusinessError) Wrap(err error) *BusinessError {
	b.Err = err
	return b
}

func NewNotFound(resource, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

// NewValidationError reports the first field that failed validation.
func NewValidationError(field, message string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: message,
		Details: map[string]any{
			"field": field,
		},
	}
}

func NewVersionConflict(id string) *BusinessError {
	return &BusinessError{
		Code:    CodeVersionConflict,
		Message: "Task was modified by another request, reload and try again",
		Details: map[string]any{
			"id": id,
		},
	}
}
