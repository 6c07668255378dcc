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
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const filterPageSize = 1000

type sqliteRepository struct {
	db *sql.DB

	logger *slog.Logger
}

// SqliteRepository creates a Repository backed by the given SQLite database.
// The schema is created if it does not exist. The parsed record is stored as
// JSON next to the raw line, so the indexed columns only exist for filtering
// and ordering.
func SqliteRepository(db *sql.DB, logger *slog.Logger) (Repository, error) {
	_, err := db.Exec("CREATE TABLE IF NOT EXISTS Entries (id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT, source TEXT NOT NULL, source_id TEXT NOT NULL, offset BIGINT NOT NULL, timestamp DATETIME NOT NULL, host TEXT NULL, raw TEXT NOT NULL, record TEXT NOT NULL, UNIQUE(source, offset, timestamp));")
	if err != nil {
		return nil, fmt.Errorf("error creating entries table: %w", err)
	}
	_, err = db.Exec("CREATE INDEX IF NOT EXISTS IX_Entries_Timestamp ON Entries(timestamp);")
	if err != nil {
		return nil, fmt.Errorf("error creating entries timestamp index: %w", err)
	}
	return &sqliteRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (repo *sqliteRepository) AddBatch(entries []Entry) error {
	startTime := time.Now()
	tx, err := repo.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction for adding entry batch: %w", err)
	}
	added := int64(0)
	for _, e := range entries {
		record, err := json.Marshal(&e.Record)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("error serializing record for source=%v, offset=%v: %w", e.Source, e.Offset, err)
		}
		var host interface{}
		if e.Record.Host != nil {
			host = e.Record.Host.String()
		}
		res, err := tx.Exec("INSERT OR IGNORE INTO Entries (source, source_id, offset, timestamp, host, raw, record) VALUES (?, ?, ?, ?, ?, ?, ?);",
			e.Source, e.SourceId, e.Offset, e.Timestamp, host, e.Raw, string(record))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("error executing add statement: %w", err)
		}
		if inserted, err := res.RowsAffected(); err == nil {
			added += inserted
		}
	}
	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("error committing entry batch: %w", err)
	}
	if skipped := int64(len(entries)) - added; skipped > 0 {
		repo.logger.Info("Skipped adding entries as they appear to be duplicates (same source, offset and timestamp as an existing entry)",
			slog.Int64("numEntries", skipped))
	}
	repo.logger.Info("added entries",
		slog.Int("numEntries", len(entries)),
		slog.Duration("duration", time.Now().Sub(startTime)))
	return nil
}

func (repo *sqliteRepository) Filter(startTime, endTime *time.Time, host string) ([]EntryWithId, error) {
	stmt := "SELECT id, source, source_id, offset, timestamp, raw, record FROM Entries WHERE 1=1"
	args := make([]interface{}, 0, 3)
	if startTime != nil {
		stmt += " AND timestamp >= ?"
		args = append(args, *startTime)
	}
	if endTime != nil {
		stmt += " AND timestamp <= ?"
		args = append(args, *endTime)
	}
	if host != "" {
		stmt += " AND host = ?"
		args = append(args, host)
	}
	stmt += " ORDER BY timestamp DESC LIMIT " + strconv.Itoa(filterPageSize)

	res, err := repo.db.Query(stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing Filter query: %w", err)
	}
	defer res.Close()
	return scanEntries(res)
}

func (repo *sqliteRepository) GetByIds(ids []int64) ([]EntryWithId, error) {
	if len(ids) == 0 {
		return []EntryWithId{}, nil
	}
	var sb strings.Builder
	sb.WriteString("SELECT id, source, source_id, offset, timestamp, raw, record FROM Entries WHERE id IN (")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		if i != len(ids)-1 {
			sb.WriteString("?, ")
		} else {
			sb.WriteString("?")
		}
		args[i] = id
	}
	sb.WriteString(");")

	res, err := repo.db.Query(sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("error executing GetByIds query: %w", err)
	}
	defer res.Close()
	return scanEntries(res)
}

func scanEntries(res *sql.Rows) ([]EntryWithId, error) {
	ret := make([]EntryWithId, 0, filterPageSize)
	for res.Next() {
		var e EntryWithId
		var record string
		err := res.Scan(&e.Id, &e.Source, &e.SourceId, &e.Offset, &e.Timestamp, &e.Raw, &record)
		if err != nil {
			return nil, fmt.Errorf("error when scanning row: %w", err)
		}
		err = json.Unmarshal([]byte(record), &e.Record)
		if err != nil {
			return nil, fmt.Errorf("error when deserializing record for entryId=%v: %w", e.Id, err)
		}
		ret = append(ret, e)
	}
	return ret, nil
}
