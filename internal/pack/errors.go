package pack

import "errors"

// Kind classifies why an operation was rejected.
type Kind string

const (
	KindMissingQuestionText    Kind = "missing_question_text"
	KindTooFewOptions          Kind = "too_few_options"
	KindNoCorrectOption        Kind = "no_correct_option"
	KindMultipleCorrectOptions Kind = "multiple_correct_options"
	KindMissingName            Kind = "missing_name"
	KindMissingCategory        Kind = "missing_category"
	KindNoQuestions            Kind = "no_questions"
	KindInvalidField           Kind = "invalid_field"

	KindNotFound          Kind = "not_found"
	KindMinOptionsReached Kind = "min_options_reached"
	KindMaxOptionsReached Kind = "max_options_reached"
	KindNoActiveDraft     Kind = "no_active_draft"
	KindUnknownOperation  Kind = "unknown_operation"
)

// Error is the typed rejection returned by every session operation.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on Kind so wrapped or field-annotated errors still compare
// equal to the sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrMissingQuestionText    = &Error{Kind: KindMissingQuestionText, Field: "text", Message: "question text is required"}
	ErrTooFewOptions          = &Error{Kind: KindTooFewOptions, Field: "options", Message: "at least 2 options with text are required"}
	ErrNoCorrectOption        = &Error{Kind: KindNoCorrectOption, Field: "options", Message: "one option must be marked correct"}
	ErrMultipleCorrectOptions = &Error{Kind: KindMultipleCorrectOptions, Field: "options", Message: "only one option may be marked correct"}
	ErrMissingName            = &Error{Kind: KindMissingName, Field: "name", Message: "name is required"}
	ErrMissingCategory        = &Error{Kind: KindMissingCategory, Field: "category_id", Message: "category is required"}
	ErrNoQuestions            = &Error{Kind: KindNoQuestions, Field: "questions", Message: "at least one question is required"}
	ErrInvalidField           = &Error{Kind: KindInvalidField, Message: "invalid field value"}

	ErrNotFound          = &Error{Kind: KindNotFound, Field: "question_id", Message: "question not found"}
	ErrMinOptionsReached = &Error{Kind: KindMinOptionsReached, Field: "options", Message: "a question needs at least 2 options"}
	ErrMaxOptionsReached = &Error{Kind: KindMaxOptionsReached, Field: "options", Message: "a question can have at most 6 options"}
	ErrNoActiveDraft     = &Error{Kind: KindNoActiveDraft, Message: "no question draft is open"}
	ErrUnknownOperation  = &Error{Kind: KindUnknownOperation, Field: "op", Message: "unknown operation"}
)

func invalidField(field, message string) *Error {
	return &Error{Kind: KindInvalidField, Field: field, Message: message}
}

// IsValidation reports whether err is one of the validation kinds.
func IsValidation(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindMissingQuestionText, KindTooFewOptions, KindNoCorrectOption, KindMultipleCorrectOptions,
		KindMissingName, KindMissingCategory, KindNoQuestions, KindInvalidField:
		return true
	}
	return false
}

// KindOf extracts the Kind of err, or "" when err is not a pack error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
