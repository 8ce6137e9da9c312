package util

import (
	"errors"
	"strings"
)

// ErrPublic is an error whose message can be echoed as-is to an user.
type ErrPublic string

func (e ErrPublic) Error() string {
	return string(e)
}

// Is allows errors.Is(err, util.ErrPublic("")) to match any public error.
func (e ErrPublic) Is(v error) bool {
	_, ok := v.(ErrPublic)
	return ok
}

// IsPublic returns true if the error chain contains an ErrPublic.
func IsPublic(err error) bool {
	return errors.Is(err, ErrPublic(""))
}

func ConcatErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	filtered := make([]string, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err.Error())
		}
	}

	if len(filtered) == 0 {
		return nil
	}

	return errors.New(strings.Join(filtered, "; "))
}
