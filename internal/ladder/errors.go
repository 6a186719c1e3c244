package ladder

import "errors"

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidWinner  = errors.New("winner must be one of the two players")
	ErrSelfMatch      = errors.New("cannot report a match against yourself")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrConflict       = errors.New("conflicting report in flight, try again")
)
