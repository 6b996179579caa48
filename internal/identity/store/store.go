package store

import (
	"civicdesk/pkg/platform/sentinel"
)

var (
	ErrNotFound    = sentinel.ErrNotFound
	ErrEmailExists = sentinel.ErrAlreadyUsed
)
