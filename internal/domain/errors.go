package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnknownExchange = errors.New("unknown exchange")
	ErrUpstream        = errors.New("upstream exchange error")
	ErrUnauthorized    = errors.New("unauthorized")
)
