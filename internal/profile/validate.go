package profile

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidName is wrapped by ValidateName failures.
var ErrInvalidName = errors.New("invalid profile name")

// Names become directory names under BaseDir. A leading '-' would read as a
// flag on the command line.
var namePattern = regexp.MustCompile(`^[a-z0-9_][a-z0-9_-]{0,63}$`)

// ValidateName reports whether name can be used as a profile.
func ValidateName(name string) error {
	if namePattern.MatchString(name) {
		return nil
	}
	return fmt.Errorf("%w %q: use 1-64 of a-z, 0-9, '_' or '-', not starting with '-'", ErrInvalidName, name)
}
