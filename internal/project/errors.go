package project

import "errors"

var (
	// ErrNoSession is returned when an operation needs an active project and there is none.
	ErrNoSession = errors.New("no active project")
	// ErrInvalidPhase is returned when an operation doesn't apply to the current phase.
	ErrInvalidPhase = errors.New("not valid in current phase")
	// ErrNotValid is returned when the input of an operation is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrActiveProject is returned when creating a project while another one is unfinished.
	ErrActiveProject = errors.New("a project is already active")
	// ErrSavedProjectPending is returned while a saved project waits to be recovered or discarded.
	ErrSavedProjectPending = errors.New("saved project must be recovered or discarded first")
	// ErrNoSavedProject is returned when there is no usable saved project.
	ErrNoSavedProject = errors.New("no saved project")
)
