package store

import "errors"

// The error taxonomy shared by all store operations. Handlers match these
// with errors.Is and map them to HTTP statuses; the messages are what the
// client sees.
var (
	ErrNotFound               = errors.New("not found")
	ErrNotMember              = errors.New("you are not a member of this server")
	ErrInsufficientPermission = errors.New("your role doesn't allow this action")
	ErrDuplicateEmail         = errors.New("email is already registered")
	ErrDuplicateChannel       = errors.New("a channel with this name already exists")
	ErrProtectedChannel       = errors.New("the general channel can't be deleted")
	ErrInvalidRole            = errors.New("invalid role")
	ErrInvalidInput           = errors.New("missing or invalid input")
)
