package service

import "errors"

var ErrNotFound = errors.New("not found")

// InvalidError is a rejected request; its text is shown to the client as is.
type InvalidError string

func (e InvalidError) Error() string { return string(e) }

func IsInvalid(err error) bool {
	var ie InvalidError
	return errors.As(err, &ie)
}
