package references

import "errors"

var (
	ErrIncompleteReference = errors.New("incomplete reference")
	ErrUnknownKind         = errors.New("unknown reference kind")
	ErrUnresolvable        = errors.New("cannot resolve identifier")
)
