package employee

import "errors"

var (
	ErrInvalidID                   = errors.New("employee: invalid id")
	ErrEmployeeNotFound            = errors.New("employee: not found")
	ErrEmployeeNumberAlreadyExists = errors.New("employee: employee number already exists")
)
