package rdap

import (
	"bytes"
	"fmt"
	"time"
)

// Availability is the outcome of a registry lookup. The zero value is
// Unknown, which must never be read as either free or taken.
type Availability int

const (
	Unknown Availability = iota
	Available
	Taken
)

func (a Availability) String() string {
	switch a {
	case Available:
		return "available"
	case Taken:
		return "taken"
	default:
		return "unknown"
	}
}

// Known reports whether the registry gave a definitive answer.
func (a Availability) Known() bool {
	return a == Available || a == Taken
}

// MarshalJSON encodes Available as true, Taken as false and Unknown as null.
func (a Availability) MarshalJSON() ([]byte, error) {
	switch a {
	case Available:
		return []byte("true"), nil
	case Taken:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (a *Availability) UnmarshalJSON(b []byte) error {
	switch string(bytes.TrimSpace(b)) {
	case "true":
		*a = Available
	case "false":
		*a = Taken
	case "null":
		*a = Unknown
	default:
		return fmt.Errorf("rdap: invalid availability %s", b)
	}
	return nil
}

// Reasons a lookup ended Unknown.
const (
	ReasonUnsupported = "unsupported_suffix"
	ReasonTimeout     = "timeout"
	ReasonTransport   = "transport"
	ReasonRateLimited = "rate_limited"
	ReasonBadRequest  = "bad_request"
	ReasonPanic       = "panic"
)

// DomainResult is the outcome of checking one label under one suffix.
type DomainResult struct {
	Domain    string       `json:"domain"`
	Suffix    string       `json:"tld"`
	Available Availability `json:"available"`
	// Reason says why Available is Unknown; empty otherwise.
	Reason     string        `json:"reason,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`
	Duration   time.Duration `json:"-"`
}
