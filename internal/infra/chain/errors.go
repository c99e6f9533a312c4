package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Kind classifies why a balance fetch failed.
type Kind string

const (
	KindConnection Kind = "connection" // endpoint unreachable or dial failed
	KindQuery      Kind = "query"      // endpoint answered with an error
	KindParse      Kind = "parse"      // bad address or malformed response
	KindTimeout    Kind = "timeout"    // per-query deadline exceeded
	KindConfig     Kind = "config"     // no adapter for the network
)

// FetchError is the typed failure of a (wallet, network) balance fetch.
type FetchError struct {
	Kind    Kind
	Op      string
	Network string
	Wallet  string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Network == "" {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("[%s] %s on %s: %v", e.Kind, e.Op, e.Network, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Wrap tags err with a failure kind. A context deadline always becomes
// KindTimeout regardless of the requested kind.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &FetchError{Kind: kind, Op: op, Err: err}
}

// KindOf returns the failure kind of err, defaulting to KindQuery.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindQuery
}

// Classify maps a transport-level error to a failure kind: network errors are
// connection failures, JSON decoding errors are parse failures, anything else
// is treated as the endpoint rejecting the query.
func Classify(err error) Kind {
	var (
		urlErr    *url.Error
		netErr    net.Error
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return KindParse
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		if netErr != nil && netErr.Timeout() {
			return KindTimeout
		}
		return KindConnection
	default:
		return KindQuery
	}
}
