package files

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jackbister/clf/internal/entries"
)

const testLine = "127.0.0.1 - frank [1996-12-19T16:39:57-08:00] \"GET /apache_pb.gif HTTP/1.0\" 200 2326"

type testPublisher struct {
	entries []entries.Entry
}

func (tp *testPublisher) Publish(entry entries.Entry) {
	tp.entries = append(tp.entries, entry)
}

func newTestWatcher(publisher entries.Publisher, initialContent string) *FileWatcher {
	fw := NewFileWatcher("testlog", time.Millisecond, publisher, context.Background(), slog.Default())
	fw.file = bytes.NewBufferString(initialContent)
	return fw
}

func TestFileWatcher_PublishesInitialEntry(t *testing.T) {
	publisher := testPublisher{entries: make([]entries.Entry, 0)}
	fw := newTestWatcher(&publisher, testLine+"\n")

	fw.readToEnd()

	if len(publisher.entries) != 1 {
		t.Fatal("FileWatcher did not publish an entry for the initial log content")
	}

	entry := publisher.entries[0]
	if entry.Raw != testLine {
		t.Error("Published entry did not contain the correct raw string, expected=", testLine, "got=", entry.Raw)
	}
	if entry.Source != "testlog" {
		t.Error("Published entry's Source does not match, expected=testlog got=", entry.Source)
	}
	if entry.Record.StatusCode == nil || *entry.Record.StatusCode != 200 {
		t.Error("Published entry's parsed status code does not match, expected=200 got=", entry.Record.StatusCode)
	}
}

func TestFileWatcher_PublishesLaterEntry(t *testing.T) {
	publisher := testPublisher{entries: make([]entries.Entry, 0)}
	fw := newTestWatcher(&publisher, testLine+"\n")
	buffer := fw.file.(*bytes.Buffer)

	fw.readToEnd()
	buffer.WriteString(testLine + "\n")
	fw.readToEnd()

	if len(publisher.entries) != 2 {
		t.Fatal("Expected 2 entries to be published but got", len(publisher.entries))
	}

	entry := publisher.entries[1]
	if entry.Offset != int64(len(testLine))+1 {
		t.Error("Published entry's Offset does not match, expected=", len(testLine)+1, "got=", entry.Offset)
	}
}

func TestFileWatcher_SkipsUnparseableLines(t *testing.T) {
	publisher := testPublisher{entries: make([]entries.Entry, 0)}
	fw := newTestWatcher(&publisher, "this is not a CLF line\n"+testLine+"\n")

	fw.readToEnd()

	if len(publisher.entries) != 1 {
		t.Fatal("Expected the unparseable line to be skipped and 1 entry to be published but got", len(publisher.entries))
	}
	if publisher.entries[0].Raw != testLine {
		t.Error("Published entry did not contain the correct raw string, got=", publisher.entries[0].Raw)
	}
}

func TestFileWatcher_BuffersPartialLines(t *testing.T) {
	publisher := testPublisher{entries: make([]entries.Entry, 0)}
	half := len(testLine) / 2
	fw := newTestWatcher(&publisher, testLine[:half])
	buffer := fw.file.(*bytes.Buffer)

	fw.readToEnd()
	if len(publisher.entries) != 0 {
		t.Fatal("Expected no entries to be published before the line is complete but got", len(publisher.entries))
	}

	buffer.WriteString(testLine[half:] + "\n")
	fw.readToEnd()
	if len(publisher.entries) != 1 {
		t.Fatal("Expected 1 entry to be published after the line was completed but got", len(publisher.entries))
	}
	if publisher.entries[0].Raw != testLine {
		t.Error("Published entry did not contain the correct raw string, got=", publisher.entries[0].Raw)
	}
}

func TestFileWatcher_StopsWhenAsked(t *testing.T) {
	fw := newTestWatcher(entries.NopPublisher(), testLine+"\n")
	go fw.Start()

	fw.commands <- CommandStop
	// If the watcher is broken, this test will time out
}
