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

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// clfTimeLayout is the timestamp form traditionally found between the brackets
// in a CLF line, e.g. "19/Dec/1996:16:39:57 -0800".
const clfTimeLayout = "02/Jan/2006:15:04:05 -0700"

// Each peel function takes one field from the start of line and returns the
// parsed value, the unconsumed remainder with leading whitespace stripped, and
// an error. A nil value with a nil error means the field was marked absent with
// a dash. The remainder is only meaningful when the error is nil, so the peel
// functions can be chained without the caller managing whitespace. The dash
// check happens before any delimiter validation, so an absent field does not
// need to look like a valid quoted or bracketed field.

func trimLeadingSpace(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}

// peelBare cuts a whitespace-bounded field from the start of line. It handles
// the empty-input and dash-absence cases shared by all the unbracketed fields.
func peelBare(line string) (field string, rem string, absent bool, err error) {
	if line == "" {
		return "", line, false, &ParseError{Kind: FieldNotFound}
	}
	firstSpace := strings.IndexRune(line, ' ')
	if firstSpace == -1 {
		firstSpace = len(line)
	}
	rem = trimLeadingSpace(line[firstSpace:])
	if line[0] == '-' {
		return "", rem, true, nil
	}
	return line[:firstSpace], rem, false, nil
}

// PeelIP takes an IP address (dotted-decimal or colon-hex form) from the start
// of line, bounded by the first space or the end of the line.
func PeelIP(line string) (*netip.Addr, string, error) {
	field, rem, absent, err := peelBare(line)
	if err != nil {
		return nil, line, err
	}
	if absent {
		return nil, rem, nil
	}
	addr, err := netip.ParseAddr(field)
	if err != nil {
		return nil, line, &ParseError{Kind: IPAddrParse, Cause: err}
	}
	return &addr, rem, nil
}

// PeelString takes a bare token from the start of line, bounded by the first
// space or the end of the line.
func PeelString(line string) (*string, string, error) {
	field, rem, absent, err := peelBare(line)
	if err != nil {
		return nil, line, err
	}
	if absent {
		return nil, rem, nil
	}
	return &field, rem, nil
}

// PeelQuotedString takes a double-quote delimited string from the start of
// line. The quotes are not part of the returned value. The value may contain
// spaces. There is no escape mechanism, the field ends at the first closing
// quote.
func PeelQuotedString(line string) (*string, string, error) {
	if line == "" {
		return nil, line, &ParseError{Kind: FieldNotFound}
	}
	if line[0] == '-' {
		return nil, trimLeadingSpace(line[1:]), nil
	}
	if line[0] != '"' {
		return nil, line, &ParseError{Kind: FieldNotFound}
	}
	rest := line[1:]
	end := strings.IndexRune(rest, '"')
	if end == -1 {
		return nil, line, &ParseError{Kind: FieldNotFound}
	}
	field := rest[:end]
	return &field, trimLeadingSpace(rest[end+1:]), nil
}

// PeelTimestamp takes a bracket-delimited timestamp from the start of line and
// converts it to UTC. The content between the brackets may be RFC 3339 or the
// native CLF form "02/Jan/2006:15:04:05 -0700". A missing opening or closing
// bracket fails with FieldNotFound, unparseable content between the brackets
// fails with DateTimeParse.
func PeelTimestamp(line string) (*time.Time, string, error) {
	if line == "" {
		return nil, line, &ParseError{Kind: FieldNotFound}
	}
	if line[0] == '-' {
		return nil, trimLeadingSpace(line[1:]), nil
	}
	if line[0] != '[' {
		return nil, line, &ParseError{Kind: FieldNotFound}
	}
	end := strings.IndexRune(line, ']')
	if end == -1 {
		return nil, line, &ParseError{Kind: FieldNotFound}
	}
	field := line[1:end]
	t, err := time.Parse(time.RFC3339, field)
	if err != nil {
		var clfErr error
		t, clfErr = time.Parse(clfTimeLayout, field)
		if clfErr != nil {
			return nil, line, &ParseError{Kind: DateTimeParse, Cause: err}
		}
	}
	utc := t.UTC()
	return &utc, trimLeadingSpace(line[end+1:]), nil
}

func validStatusCode(code int) bool {
	return code >= 100 && code <= 599
}

// PeelStatusCode takes an HTTP status code from the start of line, bounded by
// the first space or the end of the line. Codes outside the range 100-599 fail
// with StatusCodeParse.
func PeelStatusCode(line string) (*int, string, error) {
	field, rem, absent, err := peelBare(line)
	if err != nil {
		return nil, line, err
	}
	if absent {
		return nil, rem, nil
	}
	code, err := strconv.Atoi(field)
	if err != nil {
		return nil, line, &ParseError{Kind: StatusCodeParse, Cause: err}
	}
	if !validStatusCode(code) {
		return nil, line, &ParseError{Kind: StatusCodeParse, Cause: fmt.Errorf("status code %v is outside the range 100-599", code)}
	}
	return &code, rem, nil
}

// PeelSize takes a non-negative integer from the start of line, bounded by the
// first space or the end of the line.
func PeelSize(line string) (*uint64, string, error) {
	field, rem, absent, err := peelBare(line)
	if err != nil {
		return nil, line, err
	}
	if absent {
		return nil, rem, nil
	}
	size, err := strconv.ParseUint(field, 10, 64)
	if err != nil {
		return nil, line, &ParseError{Kind: SizeParse, Cause: err}
	}
	return &size, rem, nil
}
