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

package entries

import (
	"time"

	"github.com/jackbister/clf/pkg/clf"
)

// Entry is a parsed access log line together with information about where it
// was read from.
type Entry struct {
	Raw      string `json:"raw"`
	Source   string `json:"source"`
	SourceId string `json:"sourceId"`
	Offset   int64  `json:"offset"`

	// Timestamp orders the entry in the repository. It is the record's time
	// field when present, otherwise the time the line was read.
	Timestamp time.Time `json:"timestamp"`

	Record clf.LogEntry `json:"record"`
}

// EntryWithId is an Entry that has been stored in a Repository.
type EntryWithId struct {
	Id int64 `json:"id"`
	Entry
}
