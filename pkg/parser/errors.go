package parser

import (
	"errors"
	"fmt"
)

// Kind identifies why a signal could not be produced. Callers branch on the
// kind; Message is presentation text.
type Kind int

const (
	// KindNoDirection means no token resolved to LONG or SHORT
	KindNoDirection Kind = iota
	// KindNoAsset means no token or substring resolved to a known asset
	KindNoAsset
	// KindNoTimeframe means no token resolved to a known timeframe
	KindNoTimeframe
	// KindUnsupportedTimeframe means the timeframe resolved but the asset
	// does not configure it
	KindUnsupportedTimeframe
	// KindUnknownRule means an (asset, timeframe) pair has no level rule;
	// reported by the level calculator when called outside the parse flow
	KindUnknownRule
)

// String returns the kind's name in the form used for metric labels
func (k Kind) String() string {
	switch k {
	case KindNoDirection:
		return "no_direction"
	case KindNoAsset:
		return "no_asset"
	case KindNoTimeframe:
		return "no_timeframe"
	case KindUnsupportedTimeframe:
		return "unsupported_timeframe"
	case KindUnknownRule:
		return "unknown_rule"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a parse or calculation failure with a machine-readable kind
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface
func (e *Error) Error() string { return e.Message }

// NewError builds an Error of the given kind
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is (or wraps) an Error of the given kind
func IsKind(err error, kind Kind) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.Kind == kind
}
