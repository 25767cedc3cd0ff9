package metrics

import "strings"

// ErrorKind classifies an attempt that failed before a usable response existed.
type ErrorKind string

const (
	ErrorKindTimeout    ErrorKind = "timeout"
	ErrorKindConnection ErrorKind = "connection"
	ErrorKindRequest    ErrorKind = "request"
	ErrorKindUnexpected ErrorKind = "unexpected"
)

// errorKindOrder is the classification priority, also used for stable output.
var errorKindOrder = map[ErrorKind]int{
	ErrorKindTimeout:    0,
	ErrorKindConnection: 1,
	ErrorKindRequest:    2,
	ErrorKindUnexpected: 3,
}

var friendlyKinds = map[ErrorKind]string{
	ErrorKindTimeout:    "Timeout",
	ErrorKindConnection: "Connection error",
	ErrorKindRequest:    "Request error",
	ErrorKindUnexpected: "Unexpected error",
}

// Valid reports whether k is one of the known kinds.
func (k ErrorKind) Valid() bool {
	_, ok := errorKindOrder[k]
	return ok
}

// FriendlyName returns a human-friendly label for the kind.
func (k ErrorKind) FriendlyName() string {
	if name, ok := friendlyKinds[k]; ok {
		return name
	}
	cleaned := strings.TrimSpace(string(k))
	if cleaned == "" {
		return "Unknown error"
	}
	return cleaned
}

func kindRank(k ErrorKind) int {
	if rank, ok := errorKindOrder[k]; ok {
		return rank
	}
	return len(errorKindOrder)
}
