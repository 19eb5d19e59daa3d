package common

import "errors"

// Kind classifies an error into the taxonomy of the error-handling design:
// structural, authorization, state, cryptographic, economic, operational, or
// configuration. The relay HTTP layer maps Kind to an HTTP status class.
type Kind uint8

const (
	KindStructural Kind = iota
	KindAuthorization
	KindState
	KindCryptographic
	KindEconomic
	KindOperational
	KindConfiguration
)

// String names a Kind for logging.
func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindAuthorization:
		return "authorization"
	case KindState:
		return "state"
	case KindCryptographic:
		return "cryptographic"
	case KindEconomic:
		return "economic"
	case KindOperational:
		return "operational"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Classified pairs an error with its Kind so callers at a service boundary
// (relay HTTP handlers, ledger instruction dispatch) can decide retriability
// and status code without string-matching the error.
type Classified struct {
	Err  error
	Kind Kind
}

func (c *Classified) Error() string { return c.Err.Error() }
func (c *Classified) Unwrap() error { return c.Err }

// Classify wraps err with a Kind. A nil err yields a nil error.
func Classify(err error, kind Kind) error {
	if err == nil {
		return nil
	}
	return &Classified{Err: err, Kind: kind}
}

// KindOf extracts the Kind of a Classified error, defaulting to
// KindOperational for unclassified errors (conservative: retry rather than
// surface a hard 4xx for something we don't recognize).
func KindOf(err error) Kind {
	var c *Classified
	if errors.As(err, &c) {
		return c.Kind
	}
	return KindOperational
}

// Retriable reports whether an error's Kind warrants retry with backoff
// rather than immediate dead-lettering (spec §7: only Operational failures
// are locally retried).
func Retriable(err error) bool {
	return KindOf(err) == KindOperational
}

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)
