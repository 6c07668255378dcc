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

// Package clf parses single lines in the Common Log Format, the fixed-order
// access log format written by most web servers:
//
//	127.0.0.1 user-identifier frank [1996-12-19T16:39:57-08:00] "GET /apache_pb.gif HTTP/1.0" 200 2326
//
// Any field may be replaced with a dash, meaning the value was not recorded.
// Parsing is a single left-to-right pass with no state shared between calls,
// so any number of lines can be parsed concurrently.
package clf

import (
	"encoding/json"
	"net/netip"
	"time"
)

// LogEntry is a parsed log line. A nil field means the line contained a dash
// in that position.
type LogEntry struct {
	Host        *netip.Addr `json:"host"`
	Ident       *string     `json:"ident"`
	AuthUser    *string     `json:"authuser"`
	Time        *time.Time  `json:"time"`
	RequestLine *string     `json:"request_line"`
	StatusCode  *int        `json:"status_code"`
	ObjectSize  *uint64     `json:"object_size"`
}

// Parse parses one line in Common Log Format. The first field that fails to
// parse aborts the whole line, there is no partial result. Text remaining
// after the object size field is ignored.
func Parse(line string) (*LogEntry, error) {
	host, rem, err := PeelIP(line)
	if err != nil {
		return nil, err
	}
	ident, rem, err := PeelString(rem)
	if err != nil {
		return nil, err
	}
	authUser, rem, err := PeelString(rem)
	if err != nil {
		return nil, err
	}
	t, rem, err := PeelTimestamp(rem)
	if err != nil {
		return nil, err
	}
	requestLine, rem, err := PeelQuotedString(rem)
	if err != nil {
		return nil, err
	}
	statusCode, rem, err := PeelStatusCode(rem)
	if err != nil {
		return nil, err
	}
	objectSize, _, err := PeelSize(rem)
	if err != nil {
		return nil, err
	}

	return &LogEntry{
		Host:        host,
		Ident:       ident,
		AuthUser:    authUser,
		Time:        t,
		RequestLine: requestLine,
		StatusCode:  statusCode,
		ObjectSize:  objectSize,
	}, nil
}

// UnmarshalJSON decodes a LogEntry. A status_code outside the range 100-599
// becomes absent instead of an error. This leniency only exists on the JSON
// side - Parse rejects out of range status codes.
func (e *LogEntry) UnmarshalJSON(b []byte) error {
	type alias LogEntry
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if a.StatusCode != nil && !validStatusCode(*a.StatusCode) {
		a.StatusCode = nil
	}
	*e = LogEntry(a)
	return nil
}
