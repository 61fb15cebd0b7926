package gitobj

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the branch, commit, tree or file does not exist
	// on the remote. Often expected and handled by callers.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a non-fast-forward ref update: the branch moved
	// since its head was read. Never retried here.
	ErrConflict = errors.New("conflict")

	ErrBranchNotFound = fmt.Errorf("branch %w", ErrNotFound)
	ErrCommitNotFound = fmt.Errorf("commit %w", ErrNotFound)
	ErrTreeNotFound   = fmt.Errorf("tree %w", ErrNotFound)

	ErrUnsupportedEncoding = errors.New("unsupported encoding")
)

// RemoteError carries a non-2xx response verbatim for diagnosis: auth
// failures, rate limits and anything else outside the NotFound/Conflict
// taxonomy.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote returned %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is (or wraps) ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
