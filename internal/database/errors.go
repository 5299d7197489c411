package database

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

// ErrorKind classifies a failed gateway operation.
type ErrorKind int

const (
	// KindConnection means the session could not be established or was lost.
	KindConnection ErrorKind = iota + 1
	// KindStore is any other failure reported by MongoDB or the driver.
	KindStore
	// KindNotFound means no document matched the id.
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection error"
	case KindStore:
		return "store error"
	case KindNotFound:
		return "not found"
	}
	return "unknown error"
}

var (
	// ErrNotFound is wrapped by every KindNotFound error.
	ErrNotFound = errors.New("field not found")
	// ErrInvalidID is wrapped when an id is not a valid ObjectID hex string.
	ErrInvalidID = errors.New("invalid field id")
	// ErrNotConnected is returned while a failed reconnect is cooling down.
	ErrNotConnected = errors.New("not connected to MongoDB")
)

// Error is the single error type returned by the gateway.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConnection:
		return fmt.Sprintf("MongoDB connection failed: %v", e.Err)
	case KindNotFound:
		return "Field not found"
	}
	if e.Op == "" {
		return fmt.Sprintf("MongoDB error: %v", e.Err)
	}
	return fmt.Sprintf("Error %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func kindOf(err error) ErrorKind {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return 0
}

// IsNotFound reports whether err means the id matched no document.
func IsNotFound(err error) bool {
	return kindOf(err) == KindNotFound
}

// IsConnection reports whether err is a session or transport failure.
func IsConnection(err error) bool {
	return kindOf(err) == KindConnection
}

// IsStore reports whether err is a store-side failure other than not found.
func IsStore(err error) bool {
	return kindOf(err) == KindStore
}

func notFound(op string) error {
	return &Error{Kind: KindNotFound, Op: op, Err: ErrNotFound}
}

// classify wraps a driver error into the gateway taxonomy.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if kindOf(err) != 0 {
		return err
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound(op)
	}
	if isConnectionError(err) {
		return &Error{Kind: KindConnection, Op: op, Err: err}
	}
	return &Error{Kind: KindStore, Op: op, Err: err}
}

func isConnectionError(err error) bool {
	var selErr topology.ServerSelectionError
	var connErr topology.ConnectionError
	var netErr net.Error
	switch {
	case mongo.IsNetworkError(err), mongo.IsTimeout(err):
		return true
	case errors.Is(err, mongo.ErrClientDisconnected), errors.Is(err, context.DeadlineExceeded):
		return true
	case errors.As(err, &selErr), errors.As(err, &connErr), errors.As(err, &netErr):
		return true
	}
	return false
}
