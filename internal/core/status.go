package core

import (
	"errors"
	"fmt"
)

var (
	ErrConnection = errors.New("failed to connect")
	// ErrSchemaAlreadyExists is informational, the table is usable.
	ErrSchemaAlreadyExists = errors.New("table 'images' already exists")
	ErrSchema              = errors.New("failed to create table")
	ErrValidation          = errors.New("rejected")
	ErrNotConnected        = fmt.Errorf("%w: must connect to the database first", ErrValidation)
	ErrIO                  = errors.New("failed to read file")
	ErrInsert              = errors.New("failed to add image to the database")
	ErrNotFound            = errors.New("image not found")
)

type StatusKind string

const (
	StatusIdle     StatusKind = "idle"
	StatusOK       StatusKind = "ok"
	StatusInfo     StatusKind = "info"
	StatusRejected StatusKind = "rejected"
	StatusError    StatusKind = "error"
)

// Status is the outcome of the most recent operation.
type Status struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message"`
}

func (s Status) String() string {
	return fmt.Sprintf("%s: %s", s.Kind, s.Message)
}

// StatusFromError renders an operation error as a single status. A nil error
// yields an ok status carrying success.
func StatusFromError(err error, success string) Status {
	switch {
	case err == nil:
		return Status{Kind: StatusOK, Message: success}
	case errors.Is(err, ErrSchemaAlreadyExists):
		return Status{Kind: StatusInfo, Message: ErrSchemaAlreadyExists.Error()}
	case errors.Is(err, ErrValidation):
		return Status{Kind: StatusRejected, Message: err.Error()}
	default:
		return Status{Kind: StatusError, Message: err.Error()}
	}
}

func validationError(prompt string) error {
	return fmt.Errorf("%w: %s", ErrValidation, prompt)
}
