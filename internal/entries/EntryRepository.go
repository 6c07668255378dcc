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

import "time"

type Repository interface {
	AddBatch(entries []Entry) error
	// Filter returns entries in descending timestamp order. startTime, endTime
	// and host are optional, a nil/empty value means the dimension is not
	// filtered on.
	Filter(startTime, endTime *time.Time, host string) ([]EntryWithId, error)
	GetByIds(ids []int64) ([]EntryWithId, error)
}
