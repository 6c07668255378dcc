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
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/jackbister/clf/pkg/clf"

	_ "github.com/mattn/go-sqlite3"
)

const testLine = "127.0.0.1 user-identifier frank [1996-12-19T16:39:57-08:00] \"GET /apache_pb.gif HTTP/1.0\" 200 2326"

func testEntry(t *testing.T, offset int64) Entry {
	t.Helper()
	record, err := clf.Parse(testLine)
	if err != nil {
		t.Fatalf("got error when parsing test line: %v", err)
	}
	return Entry{
		Raw:       testLine,
		Source:    "access.log",
		SourceId:  "test-source-id",
		Offset:    offset,
		Timestamp: *record.Time,
		Record:    *record,
	}
}

func TestAddBatchAndGetByIds(t *testing.T) {
	repo := createRepo(t)

	err := repo.AddBatch([]Entry{testEntry(t, 0)})
	if err != nil {
		t.Fatalf("got error when adding entry batch: %v", err)
	}

	entries, err := repo.GetByIds([]int64{1})
	if err != nil {
		t.Fatalf("got error when retrieving entry: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got unexpected number of entries, expected 1 entry but got %v", len(entries))
	}
	e := entries[0]
	if e.Raw != testLine {
		t.Errorf("raw line does not match, expected='%v' got='%v'", testLine, e.Raw)
	}
	if e.Record.StatusCode == nil || *e.Record.StatusCode != 200 {
		t.Errorf("stored record's status code does not match, expected=200 got=%v", e.Record.StatusCode)
	}
	if e.Record.Host == nil || e.Record.Host.String() != "127.0.0.1" {
		t.Errorf("stored record's host does not match, expected=127.0.0.1 got=%v", e.Record.Host)
	}
}

func TestAddBatchIgnoresDuplicates(t *testing.T) {
	repo := createRepo(t)

	err := repo.AddBatch([]Entry{testEntry(t, 0), testEntry(t, 0)})
	if err != nil {
		t.Fatalf("got error when adding entry batch with duplicates: %v", err)
	}

	entries, err := repo.Filter(nil, nil, "")
	if err != nil {
		t.Fatalf("got error when filtering entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected duplicate entry to be ignored, expected 1 entry but got %v", len(entries))
	}
}

func TestFilterByTimeWindow(t *testing.T) {
	repo := createRepo(t)

	inside := testEntry(t, 0)
	outside := testEntry(t, 100)
	outside.Timestamp = outside.Timestamp.Add(48 * time.Hour)
	err := repo.AddBatch([]Entry{inside, outside})
	if err != nil {
		t.Fatalf("got error when adding entry batch: %v", err)
	}

	startTime := inside.Timestamp.Add(-1 * time.Hour)
	endTime := inside.Timestamp.Add(1 * time.Hour)
	entries, err := repo.Filter(&startTime, &endTime, "")
	if err != nil {
		t.Fatalf("got error when filtering entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry inside the time window but got %v", len(entries))
	}
	if entries[0].Offset != 0 {
		t.Errorf("got the wrong entry back, expected offset=0 got offset=%v", entries[0].Offset)
	}
}

func TestFilterByHost(t *testing.T) {
	repo := createRepo(t)

	err := repo.AddBatch([]Entry{testEntry(t, 0)})
	if err != nil {
		t.Fatalf("got error when adding entry batch: %v", err)
	}

	entries, err := repo.Filter(nil, nil, "127.0.0.1")
	if err != nil {
		t.Fatalf("got error when filtering entries by host: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry for host=127.0.0.1 but got %v", len(entries))
	}

	entries, err = repo.Filter(nil, nil, "10.0.0.1")
	if err != nil {
		t.Fatalf("got error when filtering entries by host: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected 0 entries for host=10.0.0.1 but got %v", len(entries))
	}
}

func TestFilterOrdersByTimestampDescending(t *testing.T) {
	repo := createRepo(t)

	older := testEntry(t, 0)
	newer := testEntry(t, 100)
	newer.Timestamp = newer.Timestamp.Add(1 * time.Hour)
	err := repo.AddBatch([]Entry{older, newer})
	if err != nil {
		t.Fatalf("got error when adding entry batch: %v", err)
	}

	entries, err := repo.Filter(nil, nil, "")
	if err != nil {
		t.Fatalf("got error when filtering entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries but got %v", len(entries))
	}
	if entries[0].Offset != 100 {
		t.Errorf("expected the newest entry first but got offset=%v", entries[0].Offset)
	}
}

func createRepo(t *testing.T) Repository {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("got error when creating in-memory SQLite database: %v", err)
	}
	repo, err := SqliteRepository(db, slog.Default())
	if err != nil {
		t.Fatalf("got error when creating entries repo: %v", err)
	}
	return repo
}
