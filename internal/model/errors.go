package model

import "errors"

var (
	ErrNoGroup       = errors.New("no group selected")
	ErrUnknownRating = errors.New("unknown rating")
	ErrGraded        = errors.New("reading already graded")
	ErrNotLoaded     = errors.New("session not loaded")
)
