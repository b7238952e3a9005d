// Package store persists the per-campaign daily series and the derived
// summary artifacts. The engine owns the series only for the duration of
// a merge; this package gives it an atomic read-modify-write cycle
// against plain files.
package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "mediapulse/internal/errors"
	"mediapulse/pkg/contracts/domain"
)

// SeriesStore loads and saves the persisted daily series of a campaign.
type SeriesStore interface {
	// Load returns the persisted series, or an empty slice when none
	// exists yet. A corrupt artifact returns a STORAGE-typed error; the
	// caller decides whether to degrade.
	Load(ctx context.Context, campaign string) ([]domain.DailyRecord, error)
	// Save atomically replaces the persisted series.
	Save(ctx context.Context, campaign string, series []domain.DailyRecord) error
}

const seriesDateFormat = "2006-01-02"

var seriesHeaders = []string{
	"Date", "Channel", "Creative", "Publisher", "Spend",
	"Impressions", "Clicks", "Starts", "Q25", "Q50", "Q75", "Q100",
}

// CSVStore keeps one CSV file per campaign under a data directory.
type CSVStore struct {
	dir    string
	logger *slog.Logger
}

// NewCSVStore creates a file-backed series store rooted at dir.
func NewCSVStore(dir string, logger *slog.Logger) *CSVStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVStore{dir: dir, logger: logger}
}

func (s *CSVStore) path(campaign string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_daily.csv", campaign))
}

// Load reads the persisted series. A missing file is an empty series; a
// file whose header does not match the schema is corrupt.
func (s *CSVStore) Load(ctx context.Context, campaign string) ([]domain.DailyRecord, error) {
	path := s.path(campaign)

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open persisted series", err)
	}
	defer file.Close()

	reader := csv.NewReader(skipBOM(file))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read series header", err)
	}
	if len(header) != len(seriesHeaders) || !strings.EqualFold(strings.TrimSpace(header[0]), "date") {
		return nil, apperrors.NewStorageError(
			fmt.Sprintf("unexpected series header: %v", header), nil)
	}

	var series []domain.DailyRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read series row %d", line), err)
		}
		record, err := recordFromRow(row)
		if err != nil {
			return nil, apperrors.NewStorageError(fmt.Sprintf("malformed series row %d", line), err)
		}
		series = append(series, record)
	}

	s.logger.InfoContext(ctx, "loaded persisted series",
		slog.String("campaign", campaign),
		slog.Int("rows", len(series)))

	return series, nil
}

// Save writes the series to a temp file and renames it over the old
// artifact, so a failed run never destroys the previous series.
func (s *CSVStore) Save(ctx context.Context, campaign string, series []domain.DailyRecord) error {
	path := s.path(campaign)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create series directory", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return apperrors.NewStorageError("failed to create temp series file", err)
	}
	defer os.Remove(tmp.Name())

	// UTF-8 BOM so analysts opening the artifact in Excel see accents
	if _, err := tmp.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		tmp.Close()
		return apperrors.NewStorageError("failed to write BOM", err)
	}

	writer := csv.NewWriter(tmp)
	if err := writer.Write(seriesHeaders); err != nil {
		tmp.Close()
		return apperrors.NewStorageError("failed to write series header", err)
	}
	for i, record := range series {
		if err := writer.Write(rowFromRecord(record)); err != nil {
			tmp.Close()
			return apperrors.NewStorageError(fmt.Sprintf("failed to write series row %d", i), err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return apperrors.NewStorageError("failed to flush series file", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewStorageError("failed to close temp series file", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return apperrors.NewStorageError("failed to replace series file", err)
	}

	s.logger.InfoContext(ctx, "saved persisted series",
		slog.String("campaign", campaign),
		slog.String("path", path),
		slog.Int("rows", len(series)))

	return nil
}

func rowFromRecord(r domain.DailyRecord) []string {
	return []string{
		r.Date.Format(seriesDateFormat),
		r.Channel,
		r.Creative,
		r.Publisher,
		r.Spend.String(),
		strconv.FormatInt(r.Impressions, 10),
		strconv.FormatInt(r.Clicks, 10),
		strconv.FormatInt(r.Starts, 10),
		strconv.FormatInt(r.Q25, 10),
		strconv.FormatInt(r.Q50, 10),
		strconv.FormatInt(r.Q75, 10),
		strconv.FormatInt(r.Q100, 10),
	}
}

func recordFromRow(row []string) (domain.DailyRecord, error) {
	if len(row) != len(seriesHeaders) {
		return domain.DailyRecord{}, fmt.Errorf("expected %d fields, got %d", len(seriesHeaders), len(row))
	}

	date, err := time.Parse(seriesDateFormat, row[0])
	if err != nil {
		return domain.DailyRecord{}, fmt.Errorf("bad date %q: %w", row[0], err)
	}
	spend, err := decimal.NewFromString(row[4])
	if err != nil {
		return domain.DailyRecord{}, fmt.Errorf("bad spend %q: %w", row[4], err)
	}

	counts := make([]int64, 7)
	for i, raw := range row[5:] {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.DailyRecord{}, fmt.Errorf("bad count %q: %w", raw, err)
		}
		counts[i] = v
	}

	return domain.DailyRecord{
		Date:        date,
		Channel:     row[1],
		Creative:    row[2],
		Publisher:   row[3],
		Spend:       spend,
		Impressions: counts[0],
		Clicks:      counts[1],
		Starts:      counts[2],
		Q25:         counts[3],
		Q50:         counts[4],
		Q75:         counts[5],
		Q100:        counts[6],
	}, nil
}

// skipBOM drops a leading UTF-8 BOM if present.
func skipBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, _ := io.ReadFull(r, buf)
	if n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(strings.NewReader(string(buf[:n])), r)
}
