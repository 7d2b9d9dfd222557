package service

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrAuthExpired        = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
)
