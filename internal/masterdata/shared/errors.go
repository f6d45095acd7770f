package shared

import "errors"

var (
	ErrUnknownEntity = errors.New("masterdata: unknown entity")
	ErrInvalidID     = errors.New("masterdata: invalid ID")
)
