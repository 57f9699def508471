package ballot

import "github.com/pkg/errors"

// Rejections returned by ballot operations. A rejected call leaves the
// ballot exactly as it was.
var (
	ErrUnauthorized      = errors.New("caller is not the ballot manager")
	ErrInvalidTransition = errors.New("ballot is closed and cannot advance")
	ErrWrongPhase        = errors.New("operation not allowed in the current phase")
	ErrNotRegistered     = errors.New("caller is not registered")
	ErrAlreadyRegistered = errors.New("caller is already registered")
	ErrAlreadyVoted      = errors.New("caller has already voted")
	ErrInvalidChoice     = errors.New("choice must be A or B")
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrUnauthorized, "Unauthorized"},
	{ErrInvalidTransition, "InvalidTransition"},
	{ErrWrongPhase, "WrongPhase"},
	{ErrNotRegistered, "NotRegistered"},
	{ErrAlreadyRegistered, "AlreadyRegistered"},
	{ErrAlreadyVoted, "AlreadyVoted"},
	{ErrInvalidChoice, "InvalidChoice"},
}

// Kind names the rejection carried by err, or "" when err is not a ballot
// rejection.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}
