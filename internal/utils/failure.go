package utils

type ErrorType int

const (
	ErrInternal ErrorType = iota
	ErrNotAllowed
	ErrNotFound
)

func (t ErrorType) String() string {
	switch t {
	case ErrInternal:
		return "internal"
	case ErrNotAllowed:
		return "not_allowed"
	case ErrNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Failure is a user-facing error. Message is safe to show; Data is only logged.
type Failure struct {
	Type    ErrorType
	Message string
	Data    map[string]any
}

func (f Failure) Error() string {
	return f.Message
}
