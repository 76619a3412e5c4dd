// Package store archives refreshed quote snapshots to Parquet files on
// disk, one file per calendar day. The archive is append-only history for
// offline analysis; the dashboard never reads it back.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"coinwatch/internal/domain"
)

// QuoteRecord is the Parquet schema for one archived quote.
type QuoteRecord struct {
	AssetID      string  `parquet:"asset_id"`
	Symbol       string  `parquet:"symbol"`
	Name         string  `parquet:"name"`
	Price        float64 `parquet:"price"`
	PctChange24h float64 `parquet:"pct_change_24h"`
	MarketCap    float64 `parquet:"market_cap"`
	Volume24h    float64 `parquet:"volume_24h"`
	Rank         int32   `parquet:"rank"`
	FetchedAt    int64   `parquet:"fetched_at,timestamp(millisecond)"` // Unix ms
}

// QuoteArchive writes quote snapshots under <DataDir>/quotes/<YYYY-MM-DD>.parquet.
type QuoteArchive struct {
	DataDir string
}

// NewQuoteArchive creates an archive rooted at the given data directory.
func NewQuoteArchive(dataDir string) *QuoteArchive {
	return &QuoteArchive{DataDir: dataDir}
}

// WriteSnapshot appends one refreshed snapshot to the day file for
// fetchedAt, merging with any records already on disk. Records are
// deduplicated by (asset id, fetched time), new over old.
func (a *QuoteArchive) WriteSnapshot(quotes []domain.AssetQuote, fetchedAt time.Time) error {
	if len(quotes) == 0 {
		return nil
	}

	ms := fetchedAt.UnixMilli()
	incoming := make([]QuoteRecord, len(quotes))
	for i, q := range quotes {
		incoming[i] = QuoteRecord{
			AssetID:      q.ID,
			Symbol:       q.Symbol,
			Name:         q.Name,
			Price:        q.Price,
			PctChange24h: q.PctChange24h,
			MarketCap:    q.MarketCap,
			Volume24h:    q.Volume24h,
			Rank:         int32(q.Rank),
			FetchedAt:    ms,
		}
	}

	path := a.dayPath(fetchedAt)
	existing, _ := readParquetFile[QuoteRecord](path)
	merged := mergeQuoteRecords(existing, incoming)

	if err := writeParquetFile(path, merged); err != nil {
		return fmt.Errorf("writing quote archive %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadDay returns all archived records for the given day, sorted by fetch
// time then rank.
func (a *QuoteArchive) ReadDay(day time.Time) ([]QuoteRecord, error) {
	records, err := readParquetFile[QuoteRecord](a.dayPath(day))
	if err != nil {
		return nil, fmt.Errorf("reading quote archive: %w", err)
	}
	return records, nil
}

func (a *QuoteArchive) dayPath(t time.Time) string {
	return filepath.Join(a.DataDir, "quotes", t.UTC().Format("2006-01-02")+".parquet")
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeQuoteRecords deduplicates records by (asset id, fetched time),
// preferring new records over existing ones. Results are sorted by fetch
// time, then rank.
func mergeQuoteRecords(existing, incoming []QuoteRecord) []QuoteRecord {
	type key struct {
		id string
		ts int64
	}
	seen := make(map[key]QuoteRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.AssetID, r.FetchedAt}] = r
	}
	for _, r := range incoming {
		seen[key{r.AssetID, r.FetchedAt}] = r
	}

	merged := make([]QuoteRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].FetchedAt != merged[j].FetchedAt {
			return merged[i].FetchedAt < merged[j].FetchedAt
		}
		return merged[i].Rank < merged[j].Rank
	})
	return merged
}
