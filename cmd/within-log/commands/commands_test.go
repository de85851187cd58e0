package commands

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/within-protocol/within-go/pkg/log"
	"github.com/within-protocol/within-go/pkg/wire"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.wlog")
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return path
}

func ptr[T any](v T) *T { return &v }

// purchaseEvents is a selectService exchange followed by a session close.
func purchaseEvents() []log.Event {
	ts := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	conn := "0c4f8a2e-61b7-4bd2-9a3e-5d0f7c1b2a90"
	session := "7e2d4c1a-0b9f-4e8d-a6c5-3f2e1d0c9b8a"
	return []log.Event{
		{
			Timestamp: ts, ConnectionID: conn, SessionID: session,
			Direction: log.DirectionOut, Layer: log.LayerTransport, Category: log.CategoryMessage,
			Frame: &log.FrameEvent{Size: 24, Data: []byte{0xa3, 0x01}},
		},
		{
			Timestamp: ts, ConnectionID: conn, SessionID: session,
			Direction: log.DirectionOut, Layer: log.LayerWire, Category: log.CategoryMessage,
			Message: &log.MessageEvent{Kind: log.MessageCall, MessageID: 7, Method: ptr(wire.MethodSelectService), PayloadSize: 12},
		},
		{
			Timestamp: ts.Add(3 * time.Millisecond), ConnectionID: conn, SessionID: session,
			Direction: log.DirectionIn, Layer: log.LayerWire, Category: log.CategoryMessage,
			Message: &log.MessageEvent{
				Kind: log.MessageReply, MessageID: 7, Method: ptr(wire.MethodSelectService),
				Status: ptr(wire.StatusNotFound), ErrorMessage: "no price 9", Elapsed: ptr(3 * time.Millisecond),
			},
		},
		{
			Timestamp: ts.Add(2 * time.Second), SessionID: session,
			Layer: log.LayerSession, Category: log.CategoryState,
			StateChange: &log.StateChangeEvent{Entity: log.StateEntitySession, OldState: "Connected", NewState: "Closed"},
		},
		{
			Timestamp: ts.Add(2 * time.Second), SessionID: session,
			Layer: log.LayerSession, Category: log.CategoryError,
			Error: &log.ErrorEventData{Layer: log.LayerSession, Message: "handler failed", Context: "dispatch errorEvent"},
		},
	}
}

func TestViewFormatsEvents(t *testing.T) {
	path := createTestLogFile(t, purchaseEvents())

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"2026-03-02T09:30:00.000000Z [conn:0c4f8a2e] OUT TRANSPORT Frame",
		"Data: a301",
		"OUT WIRE CALL",
		"Method: selectService (0x0d)",
		"Status: NOT_FOUND (2)",
		"Error: no price 9",
		"Duration: 3.000ms",
		"Connected -> Closed",
		"Context: dispatch errorEvent",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestViewFilters(t *testing.T) {
	path := createTestLogFile(t, purchaseEvents())

	tests := []struct {
		name   string
		filter ViewFilter
		count  int
	}{
		{"none", ViewFilter{}, 5},
		{"wire layer", ViewFilter{Layer: ptr(log.LayerWire)}, 2},
		{"incoming", ViewFilter{Direction: ptr(log.DirectionIn)}, 3},
		{"state", ViewFilter{Category: ptr(log.CategoryState)}, 1},
		{"method", ViewFilter{Method: ptr(wire.MethodSelectService)}, 2},
		{"other method", ViewFilter{Method: ptr(wire.MethodMakePayment)}, 0},
		{"other session", ViewFilter{SessionID: "nope"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := RunView(path, tt.filter, &buf); err != nil {
				t.Fatalf("RunView failed: %v", err)
			}
			if got := strings.Count(buf.String(), "[conn:"); got != tt.count {
				t.Errorf("got %d events, want %d", got, tt.count)
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	if l, err := ParseLayerFlag("Session"); err != nil || l != log.LayerSession {
		t.Errorf("ParseLayerFlag(Session) = %v, %v", l, err)
	}
	if _, err := ParseLayerFlag("service"); err == nil {
		t.Error("expected error for unknown layer")
	}
	if d, err := ParseDirectionFlag("OUT"); err != nil || d != log.DirectionOut {
		t.Errorf("ParseDirectionFlag(OUT) = %v, %v", d, err)
	}
	if _, err := ParseCategoryFlag("control"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestStats(t *testing.T) {
	path := createTestLogFile(t, purchaseEvents())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events: 5",
		"Sessions:     1",
		"TRANSPORT:",
		"SESSION:",
		"selectService:",
		"calls=1 failures=1 avg=3.000ms",
		"Connections: 1",
		"[0c4f8a2e] 3 events",
		"Errors: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestStatsEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestFilterWritesMatchingEvents(t *testing.T) {
	path := createTestLogFile(t, purchaseEvents())
	out := filepath.Join(t.TempDir(), "filtered.wlog")

	n, err := RunFilter(path, FilterOptions{Output: out, Layer: "wire", Method: "selectService"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("filtered %d events, want 2", n)
	}

	reader, err := log.NewReader(out)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if event.Message == nil || *event.Message.Method != wire.MethodSelectService {
			t.Errorf("unexpected event %+v", event)
		}
		count++
	}
	if count != 2 {
		t.Errorf("read %d events, want 2", count)
	}
}

func TestFilterTimeRange(t *testing.T) {
	path := createTestLogFile(t, purchaseEvents())
	out := filepath.Join(t.TempDir(), "late.wlog")

	n, err := RunFilter(path, FilterOptions{Output: out, TimeStart: "2026-03-02T09:30:01Z"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("filtered %d events, want 2", n)
	}
}

func TestFilterOptionErrors(t *testing.T) {
	tests := []FilterOptions{
		{TimeStart: "yesterday"},
		{TimeEnd: "tomorrow"},
		{Layer: "service"},
		{Direction: "sideways"},
		{Category: "snapshot"},
		{Method: "transfer"},
	}
	for _, opts := range tests {
		if _, err := opts.Filter(); err == nil {
			t.Errorf("expected error for %+v", opts)
		}
	}
}

func TestExportCSV(t *testing.T) {
	path := createTestLogFile(t, purchaseEvents())
	out := filepath.Join(t.TempDir(), "events.csv")

	if err := RunExport(path, "csv", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("got %d rows, want 6", len(rows))
	}
	reply := rows[3]
	if reply[6] != "REPLY" || reply[7] != "7" || reply[8] != "selectService" || reply[9] != "NOT_FOUND" {
		t.Errorf("unexpected reply row %v", reply)
	}
}

func TestExportJSONL(t *testing.T) {
	path := createTestLogFile(t, purchaseEvents())
	out := filepath.Join(t.TempDir(), "events.jsonl")

	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Errorf("got %d lines, want 5", len(lines))
	}
	if !strings.Contains(lines[2], `"ErrorMessage":"no price 9"`) {
		t.Errorf("unexpected line %s", lines[2])
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, purchaseEvents())
	if err := RunExport(path, "xml", ""); err == nil {
		t.Error("expected error for unknown format")
	}
}
