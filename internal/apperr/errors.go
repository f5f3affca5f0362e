// Package apperr defines the error taxonomy shared by the store, the services and
// both front-ends.
package apperr

import "errors"

var (
	// ErrConnectivity means the store could not be reached.
	ErrConnectivity = errors.New("store unreachable")
	// ErrStorage means a unit of work failed inside the store and was rolled back.
	ErrStorage = errors.New("storage error")
	// ErrValidation means the input was rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means a referenced task, employee or admin does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict means the row changed since it was loaded.
	ErrConflict = errors.New("conflict")
	// ErrExternalService means a best-effort collaborator (photo host, chat API) failed.
	ErrExternalService = errors.New("external service error")
)

var domain = []error{ErrConnectivity, ErrStorage, ErrValidation, ErrNotFound, ErrForbidden, ErrConflict, ErrExternalService}

// IsDomain reports whether err already carries one of the sentinels above.
func IsDomain(err error) bool {
	for _, d := range domain {
		if errors.Is(err, d) {
			return true
		}
	}
	return false
}
