package gorem

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration signals a programmer error in a model or relation declaration
	ErrConfiguration = errors.New("configuration error")
	// ErrInternal signals an unexpected failure inside gorem itself
	ErrInternal = errors.New("internal error")
	// ErrConnection covers transport level failures talking to the remote store
	ErrConnection = errors.New("connection error")
	// ErrNotFound is reported when the remote store does not know the requested object
	ErrNotFound = errors.New("object not found")
)

// remoteCodeObjectNotFound is the store's wire code for a missing object
const remoteCodeObjectNotFound = 101

// RemoteError is any failure the remote store surfaced during a save, fetch or
// query. It is propagated unchanged, gorem does not retry or suppress.
type RemoteError struct {
	// Code is the store's own error code
	Code int
	// StatusCode is the http status the store responded with
	StatusCode int
	Message    string
}

func (r *RemoteError) Error() string {
	return fmt.Sprintf("remote store error %d (http %d): %s", r.Code, r.StatusCode, r.Message)
}

// Is lets errors.Is(err, ErrNotFound) match the store's object-not-found code
func (r *RemoteError) Is(target error) bool {
	return target == ErrNotFound && r.Code == remoteCodeObjectNotFound
}

type InvalidRelationError struct {
	Relation string
	Issue    string
}

func NewInvalidRelationError(issue, relation string) *InvalidRelationError {
	return &InvalidRelationError{
		Issue:    issue,
		Relation: relation,
	}
}

func (i *InvalidRelationError) Error() string {
	return fmt.Sprintf("issue: %s. occured on relation '%s'", i.Issue, i.Relation)
}

func (i *InvalidRelationError) Unwrap() error {
	return ErrConfiguration
}
