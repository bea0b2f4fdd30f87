package htmlsnapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tacticmm/internal/reactor"
	"tacticmm/pkg/types"
)

func TestWriteProducesReadableFileAtomically(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "status.html")

	w, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	status := reactor.Status{
		Generation:  3,
		BlendedFair: types.FairReading{FairPrice: 101.5},
		LocalBBO:    types.BBO{Bid: types.BBOSide{Price: 100, Size: 5}, Ask: types.BBOSide{Price: 110, Size: 5}, Ok: true},
		LiveBidID:   "order-1",
	}
	if err := w.Write(status); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "order-1") {
		t.Error("expected rendered output to contain the live bid order id")
	}
	if !strings.Contains(out, "101.5000") {
		t.Error("expected rendered output to contain the blended fair price")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Errorf("leftover temp file after Write: %s", e.Name())
		}
	}
}

func TestWriteOverwritesPreviousSnapshot(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "status.html")
	w, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := w.Write(reactor.Status{Generation: 1}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write(reactor.Status{Generation: 2}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "2") {
		t.Error("expected second write to overwrite the first")
	}
}
