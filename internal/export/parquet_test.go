package export

import (
	"path/filepath"
	"testing"
	"time"

	"gomt5/internal/domain"
)

func TestPaths(t *testing.T) {
	s := NewStore("/data")

	bp := s.barPath("eurusd", domain.TimeframeH1, 2024)
	wantBarPath := filepath.Join("/data", "bars", "EURUSD", "H1", "2024.parquet")
	if bp != wantBarPath {
		t.Errorf("barPath mismatch:\n  got  %s\n  want %s", bp, wantBarPath)
	}

	tp := s.tickPath("XAUUSD", "2024-06-15")
	wantTickPath := filepath.Join("/data", "ticks", "XAUUSD", "2024-06-15.parquet")
	if tp != wantTickPath {
		t.Errorf("tickPath mismatch:\n  got  %s\n  want %s", tp, wantTickPath)
	}
}

func TestWriteReadBars(t *testing.T) {
	s := NewStore(t.TempDir())

	bars := []domain.Bar{
		{Time: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC).Unix(), Open: 1.10, High: 1.11, Low: 1.09, Close: 1.105, TickVolume: 1200, Spread: 2},
		{Time: time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC).Unix(), Open: 1.105, High: 1.12, Low: 1.10, Close: 1.118, TickVolume: 900, Spread: 2},
		{Time: time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC).Unix(), Open: 1.118, High: 1.12, Low: 1.11, Close: 1.112, TickVolume: 700, Spread: 3},
	}
	if err := s.WriteBars("EURUSD", domain.TimeframeH1, bars); err != nil {
		t.Fatalf("WriteBars returned error: %v", err)
	}

	got, err := s.ReadBars("EURUSD", domain.TimeframeH1,
		time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ReadBars returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadBars returned %d bars, want 2", len(got))
	}
	if got[0].Close != 1.105 {
		t.Errorf("got[0].Close = %v, want 1.105", got[0].Close)
	}
	if got[1].TimeDT.IsZero() {
		t.Error("ReadBars did not fill TimeDT")
	}
}

func TestWriteBarsMergesAndDeduplicates(t *testing.T) {
	s := NewStore(t.TempDir())
	ts := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	first := []domain.Bar{{Time: ts.Unix(), Close: 1.10}}
	if err := s.WriteBars("EURUSD", domain.TimeframeH1, first); err != nil {
		t.Fatalf("WriteBars returned error: %v", err)
	}

	// Rewriting the same bar replaces it, and new bars append.
	second := []domain.Bar{
		{Time: ts.Unix(), Close: 1.20},
		{Time: ts.Add(time.Hour).Unix(), Close: 1.21},
	}
	if err := s.WriteBars("EURUSD", domain.TimeframeH1, second); err != nil {
		t.Fatalf("WriteBars returned error: %v", err)
	}

	got, err := s.ReadBars("EURUSD", domain.TimeframeH1, ts, ts.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("ReadBars returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadBars returned %d bars, want 2", len(got))
	}
	if got[0].Close != 1.20 {
		t.Errorf("merged bar Close = %v, want the rewritten 1.20", got[0].Close)
	}
}

func TestWriteReadTicks(t *testing.T) {
	s := NewStore(t.TempDir())
	base := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

	ticks := []domain.Tick{
		{Time: base.Unix(), TimeMsc: base.UnixMilli(), Bid: 1.0850, Ask: 1.0852},
		{Time: base.Unix(), TimeMsc: base.UnixMilli() + 250, Bid: 1.0851, Ask: 1.0853},
	}
	if err := s.WriteTicks("EURUSD", ticks); err != nil {
		t.Fatalf("WriteTicks returned error: %v", err)
	}

	got, err := s.ReadTicks("EURUSD", base.Add(-time.Minute), base.Add(time.Minute))
	if err != nil {
		t.Fatalf("ReadTicks returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadTicks returned %d ticks, want 2", len(got))
	}
	if got[1].Bid != 1.0851 {
		t.Errorf("got[1].Bid = %v, want 1.0851", got[1].Bid)
	}
}

func TestListSymbols(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.WriteBars("GBPUSD", domain.TimeframeD1, []domain.Bar{{Time: 1700000000}}); err != nil {
		t.Fatalf("WriteBars returned error: %v", err)
	}
	if err := s.WriteBars("EURUSD", domain.TimeframeD1, []domain.Bar{{Time: 1700000000}}); err != nil {
		t.Fatalf("WriteBars returned error: %v", err)
	}

	symbols, err := s.ListSymbols()
	if err != nil {
		t.Fatalf("ListSymbols returned error: %v", err)
	}
	if len(symbols) != 2 || symbols[0] != "EURUSD" || symbols[1] != "GBPUSD" {
		t.Errorf("ListSymbols = %v, want [EURUSD GBPUSD]", symbols)
	}
}
