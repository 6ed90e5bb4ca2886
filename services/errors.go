package services

import "errors"

var (
	ErrNoUsernames       = errors.New("no usernames to process")
	ErrRegistryDisabled  = errors.New("channel registry is not configured")
	ErrInvalidCacheScope = errors.New("invalid cache scope")
)
