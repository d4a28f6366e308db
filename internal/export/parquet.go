// Package export writes market history fetched from the terminal to Parquet
// files on disk, for analysis outside the platform.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"gomt5/internal/domain"
)

// Store reads and writes Parquet files under a data directory.
type Store struct {
	DataDir string
}

// NewStore creates a Store rooted at the given data directory.
func NewStore(dataDir string) *Store {
	return &Store{DataDir: dataDir}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// BarRecord is the Parquet schema for candle data.
type BarRecord struct {
	Symbol     string  `parquet:"symbol"`
	Timeframe  string  `parquet:"timeframe"`
	Timestamp  int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open       float64 `parquet:"open"`
	High       float64 `parquet:"high"`
	Low        float64 `parquet:"low"`
	Close      float64 `parquet:"close"`
	TickVolume int64   `parquet:"tick_volume"`
	Spread     int32   `parquet:"spread"`
	RealVolume int64   `parquet:"real_volume"`
}

// TickRecord is the Parquet schema for raw tick data.
type TickRecord struct {
	Symbol     string  `parquet:"symbol"`
	Timestamp  int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Bid        float64 `parquet:"bid"`
	Ask        float64 `parquet:"ask"`
	Last       float64 `parquet:"last"`
	Volume     int64   `parquet:"volume"`
	Flags      int64   `parquet:"flags"`
	VolumeReal float64 `parquet:"volume_real"`
}

// ---------------------------------------------------------------------------
// Bars
// ---------------------------------------------------------------------------

// WriteBars writes bars to Parquet files grouped by year, merging with any
// records already on disk.
// Layout: <DataDir>/bars/<SYMBOL>/<TF>/<YYYY>.parquet
func (s *Store) WriteBars(symbol string, tf domain.Timeframe, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	groups := make(map[int][]BarRecord)
	for _, b := range bars {
		ts := time.Unix(b.Time, 0).UTC()
		groups[ts.Year()] = append(groups[ts.Year()], BarRecord{
			Symbol:     symbol,
			Timeframe:  tf.String(),
			Timestamp:  ts.UnixMilli(),
			Open:       b.Open,
			High:       b.High,
			Low:        b.Low,
			Close:      b.Close,
			TickVolume: b.TickVolume,
			Spread:     int32(b.Spread),
			RealVolume: b.RealVolume,
		})
	}

	for year, records := range groups {
		path := s.barPath(symbol, tf, year)
		existing, _ := readParquetFile[BarRecord](path)
		merged := mergeRecords(existing, records, func(r BarRecord) int64 { return r.Timestamp })
		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing bars for %s/%d: %w", symbol, year, err)
		}
	}
	return nil
}

// ReadBars reads bars back for the given symbol, timeframe and time range.
func (s *Store) ReadBars(symbol string, tf domain.Timeframe, start, end time.Time) ([]domain.Bar, error) {
	var bars []domain.Bar
	for year := start.Year(); year <= end.Year(); year++ {
		records, err := readParquetFile[BarRecord](s.barPath(symbol, tf, year))
		if err != nil {
			// No file for this year.
			continue
		}
		for _, r := range records {
			ts := time.UnixMilli(r.Timestamp)
			if !ts.Before(start) && !ts.After(end) {
				bars = append(bars, domain.Bar{
					Time:       ts.Unix(),
					Open:       r.Open,
					High:       r.High,
					Low:        r.Low,
					Close:      r.Close,
					TickVolume: r.TickVolume,
					Spread:     int(r.Spread),
					RealVolume: r.RealVolume,
				})
			}
		}
	}
	for i := range bars {
		bars[i].FillTimes()
	}
	return bars, nil
}

// ListSymbols lists all symbols that have exported bar data.
func (s *Store) ListSymbols() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.DataDir, "bars"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// ---------------------------------------------------------------------------
// Ticks
// ---------------------------------------------------------------------------

// WriteTicks writes ticks to Parquet files grouped by day, merging with any
// records already on disk.
// Layout: <DataDir>/ticks/<SYMBOL>/<YYYY-MM-DD>.parquet
func (s *Store) WriteTicks(symbol string, ticks []domain.Tick) error {
	if len(ticks) == 0 {
		return nil
	}

	groups := make(map[string][]TickRecord)
	for _, t := range ticks {
		ts := time.UnixMilli(t.TimeMsc).UTC()
		day := ts.Format("2006-01-02")
		groups[day] = append(groups[day], TickRecord{
			Symbol:     symbol,
			Timestamp:  t.TimeMsc,
			Bid:        t.Bid,
			Ask:        t.Ask,
			Last:       t.Last,
			Volume:     t.Volume,
			Flags:      int64(t.Flags),
			VolumeReal: t.VolumeReal,
		})
	}

	for day, records := range groups {
		path := s.tickPath(symbol, day)
		existing, _ := readParquetFile[TickRecord](path)
		merged := mergeRecords(existing, records, func(r TickRecord) int64 { return r.Timestamp })
		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing ticks for %s/%s: %w", symbol, day, err)
		}
	}
	return nil
}

// ReadTicks reads ticks back for the given symbol and time range.
func (s *Store) ReadTicks(symbol string, start, end time.Time) ([]domain.Tick, error) {
	var ticks []domain.Tick
	for d := start.UTC().Truncate(24 * time.Hour); !d.After(end); d = d.AddDate(0, 0, 1) {
		records, err := readParquetFile[TickRecord](s.tickPath(symbol, d.Format("2006-01-02")))
		if err != nil {
			continue
		}
		for _, r := range records {
			ts := time.UnixMilli(r.Timestamp)
			if !ts.Before(start) && !ts.After(end) {
				ticks = append(ticks, domain.Tick{
					Time:       ts.Unix(),
					TimeMsc:    r.Timestamp,
					Bid:        r.Bid,
					Ask:        r.Ask,
					Last:       r.Last,
					Volume:     r.Volume,
					Flags:      uint32(r.Flags),
					VolumeReal: r.VolumeReal,
				})
			}
		}
	}
	for i := range ticks {
		ticks[i].FillTimes()
	}
	return ticks, nil
}

// ---------------------------------------------------------------------------
// Path and file helpers
// ---------------------------------------------------------------------------

func (s *Store) barPath(symbol string, tf domain.Timeframe, year int) string {
	return filepath.Join(s.DataDir, "bars", strings.ToUpper(symbol), tf.String(),
		fmt.Sprintf("%d.parquet", year))
}

func (s *Store) tickPath(symbol, day string) string {
	return filepath.Join(s.DataDir, "ticks", strings.ToUpper(symbol), day+".parquet")
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	return parquet.ReadFile[T](path)
}

// mergeRecords deduplicates by timestamp key, preferring incoming records
// over existing ones. Results are sorted by the key.
func mergeRecords[T any](existing, incoming []T, key func(T) int64) []T {
	seen := make(map[int64]T, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key(r)] = r
	}
	for _, r := range incoming {
		seen[key(r)] = r
	}
	merged := make([]T, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return key(merged[i]) < key(merged[j])
	})
	return merged
}
