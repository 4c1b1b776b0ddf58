package frontend

import "errors"

var (
	ErrRequesterRequired = errors.New("requester required")
	ErrHostRequired      = errors.New("host required")
)
