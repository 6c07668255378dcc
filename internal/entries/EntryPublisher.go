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
	"log/slog"
	"time"
)

const maxBufferedEntries = 5000

type Publisher interface {
	Publish(entry Entry)
}

type batchedRepositoryPublisher struct {
	repo Repository

	adder chan Entry

	logger *slog.Logger
}

// BatchedRepositoryPublisher returns a Publisher which accumulates entries and
// writes them to repo in batches, either when the buffer fills up or once per
// second, whichever comes first.
func BatchedRepositoryPublisher(repo Repository, logger *slog.Logger) Publisher {
	adder := make(chan Entry, maxBufferedEntries)

	go func() {
		accumulated := make([]Entry, 0, maxBufferedEntries)
		timeout := time.After(1 * time.Second)
		for {
			select {
			case <-timeout:
				if len(accumulated) > 0 {
					err := repo.AddBatch(accumulated)
					if err != nil {
						logger.Error("error when adding entries",
							slog.Any("error", err))
					}
					accumulated = accumulated[:0]
				}
				timeout = time.After(1 * time.Second)
			case entry := <-adder:
				accumulated = append(accumulated, entry)
				if len(accumulated) >= maxBufferedEntries {
					err := repo.AddBatch(accumulated)
					if err != nil {
						logger.Error("error when adding entries",
							slog.Any("error", err))
					}
					accumulated = accumulated[:0]
					timeout = time.After(1 * time.Second)
				}
			}
		}
	}()

	return &batchedRepositoryPublisher{
		repo: repo,

		adder: adder,

		logger: logger,
	}
}

func (ep *batchedRepositoryPublisher) Publish(entry Entry) {
	if entry.Timestamp.IsZero() {
		if entry.Record.Time != nil {
			entry.Timestamp = *entry.Record.Time
		} else {
			entry.Timestamp = time.Now()
		}
	}
	ep.adder <- entry
}

type nopPublisher struct {
}

func NopPublisher() Publisher {
	return &nopPublisher{}
}

func (ep *nopPublisher) Publish(_ Entry) {}
