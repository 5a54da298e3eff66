package opdomain

import "errors"

var (
	ErrOperationNotFound      = errors.New("operation not found")
	ErrOperationAlreadyExists = errors.New("operation already exists")
	ErrOperationAlreadyDone   = errors.New("operation already reached a terminal state")
	ErrInvalidOperationName   = errors.New("invalid operation name")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrInvalidPageToken       = errors.New("invalid page token")
)
