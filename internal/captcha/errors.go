package captcha

import "errors"

// Kind classifies why a submission was rejected.
type Kind int

const (
	// MissingCookies means no challenge was found for the client, usually
	// because it does not keep cookies.
	MissingCookies Kind = iota + 1
	// Mismatch means the submission was not the expected answer, or the answer
	// was already checked during this request.
	Mismatch
)

func (k Kind) String() string {
	switch k {
	case MissingCookies:
		return "missing_cookies"
	case Mismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

var (
	ErrMissingCookies = errors.New("captcha: no challenge for this client")
	ErrMismatch       = errors.New("captcha: incorrect answer")
)

// InvalidError is returned by [Validate]. Every kind is recoverable: issue a
// new challenge and ask again.
type InvalidError struct {
	Kind Kind
}

func (e *InvalidError) Error() string {
	return e.sentinel().Error()
}

// Is lets callers match with errors.Is against the package sentinels.
func (e *InvalidError) Is(target error) bool {
	return target == e.sentinel()
}

// Message is the text shown to the person filling in the form.
func (e *InvalidError) Message() string {
	if e.Kind == MissingCookies {
		return "You must enable cookies."
	}

	return "Incorrect! Try again."
}

func (e *InvalidError) sentinel() error {
	switch e.Kind {
	case MissingCookies:
		return ErrMissingCookies
	default:
		return ErrMismatch
	}
}
