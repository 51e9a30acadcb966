package slogrelay

import "errors"

var ErrRelayNil = errors.New("slogrelay: relay cannot be nil")
