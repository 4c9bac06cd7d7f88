package backend

import "errors"

var (
	// ErrSessionExpired covers both a locally-detected expired token and a
	// 401 from the backend; callers must clear the session and send the
	// user back to the login view.
	ErrSessionExpired = errors.New("session expired")

	// ErrForbidden is a 403: the session is valid but does not own the
	// entity and is not an admin.
	ErrForbidden = errors.New("not authorized for this action")

	ErrNotFound = errors.New("not found")
)

// ValidationError carries a backend-supplied message verbatim, to be shown
// to the user as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AsValidation unwraps a ValidationError if err carries one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
