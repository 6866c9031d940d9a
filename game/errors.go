package game

import "errors"

// ErrInvalidTopology is returned for graphs the game cannot be played on.
var ErrInvalidTopology = errors.New("invalid topology")
