// Package invoker executes one composed request against an SDK client and
// normalizes its failures. It never retries; the SDK retryer owns that.
package invoker

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/aws/smithy-go"
)

// ErrCanceled matches every invocation abandoned because its context ended.
var ErrCanceled = errors.New("invocation canceled")

// Kind classifies a normalized failure.
type Kind int

const (
	KindConnectivity Kind = iota // endpoint could not be resolved or reached
	KindCanceled                 // caller aborted before the call completed
)

func (k Kind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a failure the invoker rewrote. Service faults are never wrapped in
// an Error; they reach the caller exactly as the SDK returned them.
type Error struct {
	Operation string
	Kind      Kind
	Message   string
	Err       error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes canceled invocations match ErrCanceled.
func (e *Error) Is(target error) bool {
	return target == ErrCanceled && e.Kind == KindCanceled
}

// Call is a single SDK operation with its client already bound.
type Call[In, Out any] func(ctx context.Context, in *In) (*Out, error)

// Invoke runs call once. A context that has already ended short-circuits
// without touching the network.
func Invoke[In, Out any](ctx context.Context, operation string, call Call[In, Out], in *In) (*Out, error) {
	if err := ctx.Err(); err != nil {
		return nil, canceled(operation, err)
	}
	out, err := call(ctx, in)
	if err != nil {
		return nil, Normalize(ctx, operation, err)
	}
	return out, nil
}

// Normalize classifies err returned by operation.
func Normalize(ctx context.Context, operation string, err error) error {
	var canceledErr *smithy.CanceledError
	if errors.As(err, &canceledErr) || errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return canceled(operation, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return err
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{
			Operation: operation,
			Kind:      KindConnectivity,
			Message: fmt.Sprintf("%s: could not resolve endpoint host %q; check the region and endpoint settings",
				operation, dnsErr.Name),
			Err: err,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		addr := "the service endpoint"
		if opErr.Addr != nil {
			addr = opErr.Addr.String()
		}
		return &Error{
			Operation: operation,
			Kind:      KindConnectivity,
			Message:   fmt.Sprintf("%s: could not connect to %s; check network access and proxy settings", operation, addr),
			Err:       err,
		}
	}

	return err
}

func canceled(operation string, err error) *Error {
	return &Error{
		Operation: operation,
		Kind:      KindCanceled,
		Message:   fmt.Sprintf("%s: canceled before the service responded", operation),
		Err:       err,
	}
}
