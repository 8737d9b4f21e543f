package models

import (
	"errors"
	"fmt"
	"net/http"
)

// FaultKind classifies engine failures. Callers match on the kind, never on
// the message text.
type FaultKind string

const (
	FaultInvalidInput         FaultKind = "invalid_input"
	FaultNotFound             FaultKind = "not_found"
	FaultInsufficientFunds    FaultKind = "insufficient_funds"
	FaultInsufficientHoldings FaultKind = "insufficient_holdings"
	FaultUpstreamUnavailable  FaultKind = "upstream_data_unavailable"
	FaultUpstreamTransport    FaultKind = "upstream_transport_failure"
)

// Fault is a typed domain error. Available/Requested carry the shortfall
// amounts for the business-rule kinds.
type Fault struct {
	Kind      FaultKind `json:"kind"`
	Message   string    `json:"message"`
	Available float64   `json:"available,omitempty"`
	Requested float64   `json:"requested,omitempty"`
	Err       error     `json:"-"`
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// NewFault creates a Fault with a formatted message.
func NewFault(kind FaultKind, format string, args ...interface{}) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapFault creates a Fault wrapping an underlying cause.
func WrapFault(kind FaultKind, err error, format string, args ...interface{}) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the FaultKind from an error chain. Unclassified errors
// report as upstream transport failures.
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return FaultUpstreamTransport
}

// HTTPStatus maps a fault kind to its response status code.
func (k FaultKind) HTTPStatus() int {
	switch k {
	case FaultInvalidInput, FaultInsufficientFunds, FaultInsufficientHoldings:
		return http.StatusBadRequest
	case FaultNotFound, FaultUpstreamUnavailable:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
