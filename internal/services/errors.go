package services

import "errors"

// Stable error kinds surfaced to the HTTP layer. Handlers map each to its own
// status and error code so clients can tell them apart.
var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrLastAdmin     = errors.New("cannot remove the last admin from the circle")
	ErrAlreadyMember = errors.New("user is already a member of this circle")
	ErrNotFriends    = errors.New("users must be friends before inviting")
)
