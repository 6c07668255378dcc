// Copyright 2024 Jack Bister
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package clf

// ParseErrorKind identifies which field parser failed. The set is closed:
// every error returned by this package has one of these kinds.
type ParseErrorKind int

const (
	// FieldNotFound means a required delimiter or terminator was missing and the
	// field was not explicitly marked absent with a dash.
	FieldNotFound ParseErrorKind = 0
	// IPAddrParse means the host field did not contain a valid IPv4 or IPv6 address.
	IPAddrParse = 1
	// DateTimeParse means the bracketed timestamp could not be parsed.
	DateTimeParse = 2
	// StatusCodeParse means the status code field was not an integer in the range 100-599.
	StatusCodeParse = 3
	// SizeParse means the object size field was not a non-negative integer.
	SizeParse = 4
)

func (k ParseErrorKind) String() string {
	switch k {
	case FieldNotFound:
		return "field not found"
	case IPAddrParse:
		return "invalid IP address"
	case DateTimeParse:
		return "invalid timestamp"
	case StatusCodeParse:
		return "invalid status code"
	case SizeParse:
		return "invalid object size"
	}
	return "unknown error"
}

// ParseError is the error type returned by Parse and the peel functions.
// Cause holds the underlying low-level parse failure when there is one,
// for diagnostic purposes. It is nil for FieldNotFound.
type ParseError struct {
	Kind  ParseErrorKind
	Cause error
}

func (e *ParseError) Error() string {
	msg := "error parsing log entry: " + e.Kind.String()
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
