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

package files

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackbister/clf/internal/entries"
	"github.com/jackbister/clf/pkg/clf"

	"github.com/fsnotify/fsnotify"
)

// FileWatcherCommand is a command that can be sent to a FileWatcher to tell it to perform various actions
type FileWatcherCommand int

const (
	// CommandReopen closes the file and opens it again
	CommandReopen FileWatcherCommand = 1
	// CommandStop stops the watcher
	CommandStop FileWatcherCommand = 2
)

// One fsnotify.Watcher per directory, shared between GlobWatchers whose globs
// point into the same directory.
var fsWatchers = map[string]*fsnotify.Watcher{}
var fsWatchersLock = sync.Mutex{}

// GlobWatcher watches a glob pattern to find access log files. When a log file is found it will create a FileWatcher to read the file.
type GlobWatcher struct {
	m   map[string]*FileWatcher
	ctx context.Context

	Cancel func()

	logger *slog.Logger
}

// FileWatcher reads an access log file as it is written to, parses each
// completed line and publishes the parsed entries. Lines that fail to parse
// are logged and skipped - a bad line never stops the watcher.
type FileWatcher struct {
	readInterval time.Duration
	ctx          context.Context

	filename string

	commands  chan FileWatcherCommand
	publisher entries.Publisher
	file      io.Reader

	currentSourceId string
	currentOffset   int64
	readBuf         []byte
	workingBuf      []byte

	logger *slog.Logger
}

// NewGlobWatcher creates a new watcher. The watcher will find any log files matching the glob pattern and create new FileWatchers for them.
// The FileWatchers will publish parsed entries to the given publisher.
func NewGlobWatcher(
	glob string,
	readInterval time.Duration,
	publisher entries.Publisher,
	ctx context.Context,
	logger *slog.Logger,
) (*GlobWatcher, error) {
	absGlob, err := filepath.Abs(glob)
	if err != nil {
		return nil, fmt.Errorf("error getting absGlob for glob=%s: %w", glob, err)
	}
	dir, err := filepath.Abs(filepath.Dir(glob))
	if err != nil {
		return nil, fmt.Errorf("error getting directory for glob=%s: %w", glob, err)
	}
	fsWatchersLock.Lock()
	defer fsWatchersLock.Unlock()
	var watcher *fsnotify.Watcher
	if w, ok := fsWatchers[dir]; ok {
		watcher = w
	} else {
		watcher, err = fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("error creating fsnotify watcher for dir=%s, glob=%s: %w", dir, glob, err)
		}
		err = watcher.Add(dir)
		if err != nil {
			return nil, fmt.Errorf("error adding dir to fsnotify watcher for dir=%s, glob=%s: %w", dir, glob, err)
		}
		fsWatchers[dir] = watcher
	}

	gwCtx, cancel := context.WithCancel(ctx)

	gw := &GlobWatcher{
		m:      map[string]*FileWatcher{},
		ctx:    gwCtx,
		Cancel: cancel,

		logger: logger,
	}

	initial, err := filepath.Glob(glob)
	if err != nil {
		return nil, fmt.Errorf("got error when globbing using glob=%s: %w", glob, err)
	}
	for _, file := range initial {
		absPath, err := filepath.Abs(file)
		if err != nil {
			logger.Warn("got error when performing filepath.Abs(file)",
				slog.String("dir", dir),
				slog.String("file", file),
				slog.Any("error", err))
			continue
		}
		fw := NewFileWatcher(absPath, readInterval, publisher, gwCtx, logger)
		go fw.Start()
		gw.m[absPath] = fw
	}

	go func() {
		for {
			select {
			case <-gw.ctx.Done():
				return
			case evt := <-watcher.Events:
				if evt.Op&(fsnotify.Create|fsnotify.Remove) == 0 {
					continue
				}
				path := evt.Name
				matched, err := filepath.Match(absGlob, path)
				if err != nil {
					logger.Warn("got error when matching glob against path",
						slog.String("glob", glob),
						slog.String("path", path),
						slog.Any("error", err))
					continue
				}
				if !matched {
					continue
				}

				absPath, err := filepath.Abs(path)
				if err != nil {
					logger.Warn("got error when performing filepath.Abs(path) after receiving fsnotify event",
						slog.String("dir", dir),
						slog.String("evtName", evt.Name),
						slog.Any("error", err))
					continue
				}

				if fw, ok := gw.m[absPath]; ok {
					fw.commands <- CommandReopen
				} else {
					fw := NewFileWatcher(absPath, readInterval, publisher, gwCtx, logger)
					go fw.Start()
					gw.m[absPath] = fw
				}
			}
		}
	}()

	return gw, nil
}

// NewFileWatcher returns a FileWatcher which will read the given file and publish parsed entries as lines are appended to it
func NewFileWatcher(
	filename string,
	readInterval time.Duration,
	publisher entries.Publisher,
	ctx context.Context,
	logger *slog.Logger,
) *FileWatcher {
	return &FileWatcher{
		readInterval: readInterval,
		ctx:          ctx,

		filename: filename,

		commands:  make(chan FileWatcherCommand),
		publisher: publisher,
		file:      nil,

		currentOffset: 0,
		readBuf:       make([]byte, 4096),
		workingBuf:    make([]byte, 0, 4096),

		logger: logger,
	}
}

// Start begins watching the file. It blocks until the context is cancelled or
// CommandStop is received.
func (fw *FileWatcher) Start() {
	ticker := time.NewTicker(fw.readInterval)
	defer ticker.Stop()
	for {
		select {
		case <-fw.ctx.Done():
			fw.closeFile()
			return
		case cmd := <-fw.commands:
			if cmd == CommandStop {
				fw.closeFile()
				return
			}
			if cmd == CommandReopen && fw.file != nil {
				fw.readToEnd()
				fw.closeFile()
			}
		case <-ticker.C: // Proceed
		}
		if fw.file == nil {
			f, err := os.Open(fw.filename)
			if err != nil {
				fw.logger.Warn("error opening file, will retry later",
					slog.String("fileName", fw.filename),
					slog.Any("error", err))
			} else {
				fw.file = f
				fw.currentSourceId = uuid.NewString()
				fw.currentOffset = 0
				fw.workingBuf = fw.workingBuf[:0]
				fw.logger.Info("opened file",
					slog.String("fileName", fw.filename),
					slog.String("sourceId", fw.currentSourceId))
			}
		}
		if fw.file != nil {
			fw.readToEnd()
		}
	}
}

func (fw *FileWatcher) closeFile() {
	if c, ok := fw.file.(io.Closer); ok {
		c.Close()
	}
	fw.file = nil
}

func (fw *FileWatcher) readToEnd() {
	for read, err := fw.file.Read(fw.readBuf); read != 0; read, err = fw.file.Read(fw.readBuf) {
		if err != nil && err != io.EOF {
			fw.logger.Error("Unexpected error, will abort FileWatcher",
				slog.String("fileName", fw.filename),
				slog.Any("error", err))
			break
		}
		fw.workingBuf = append(fw.workingBuf, fw.readBuf[:read]...)
		fw.handleLines()
	}
}

// handleLines parses and publishes any completed lines in the working buffer.
// Anything after the last newline is kept for the next read.
func (fw *FileWatcher) handleLines() {
	s := string(fw.workingBuf)
	lines := strings.Split(s, "\n")
	for _, line := range lines[:len(lines)-1] {
		lineLen := int64(len(line)) + 1
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			fw.currentOffset += lineLen
			continue
		}
		record, err := clf.Parse(line)
		if err != nil {
			fw.logger.Warn("skipping line that could not be parsed",
				slog.String("fileName", fw.filename),
				slog.Int64("offset", fw.currentOffset),
				slog.Any("error", err))
		} else {
			fw.publisher.Publish(entries.Entry{
				Raw:      line,
				Source:   fw.filename,
				SourceId: fw.currentSourceId,
				Offset:   fw.currentOffset,
				Record:   *record,
			})
		}
		fw.currentOffset += lineLen
	}
	remainder := lines[len(lines)-1]
	fw.workingBuf = fw.workingBuf[:0]
	fw.workingBuf = append(fw.workingBuf, []byte(remainder)...)
}
