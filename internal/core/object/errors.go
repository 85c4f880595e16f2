package object

import "errors"

// Recoverable failures surfaced to callers. Everything else in this package
// is a programmer-error invariant violation and panics instead.
var (
	ErrAlreadyInitialized  = errors.New("object runtime already initialized")
	ErrInvalidName         = errors.New("object name is empty")
	ErrInvalidOwner        = errors.New("owner package is nil")
	ErrObjectRegistered    = errors.New("object is already registered")
	ErrObjectNotRegistered = errors.New("object is not registered")
	ErrDuplicateObjectPath = errors.New("object path already registered")
	ErrDuplicateChildName  = errors.New("package already owns a child with this name")
	ErrUnownedObject       = errors.New("object has no owner package")
)
