package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	apperrors "stocksense/internal/errors"
	"stocksense/internal/models"
)

// csvCandle is the row shape for OHLCV CSV files.
type csvCandle struct {
	Timestamp string  `csv:"timestamp"`
	Open      float64 `csv:"open"`
	High      float64 `csv:"high"`
	Low       float64 `csv:"low"`
	Close     float64 `csv:"close"`
	Volume    int64   `csv:"volume"`
}

// timestampLayouts are tried in order when parsing candle timestamps.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// loadCandlesCSV reads an OHLCV CSV file into candles, oldest first.
func loadCandlesCSV(path string) ([]models.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewDataError("csv", path, "cannot open file", err)
	}
	defer f.Close()

	var rows []*csvCandle
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, apperrors.NewDataError("csv", path, "cannot parse file", err)
	}

	candles := make([]models.Candle, 0, len(rows))
	for i, row := range rows {
		ts, err := parseTimestamp(row.Timestamp)
		if err != nil {
			return nil, apperrors.NewDataError("csv", path, fmt.Sprintf("row %d: bad timestamp %q", i+1, row.Timestamp), err)
		}
		c := models.Candle{
			Timestamp: ts,
			Open:      row.Open,
			High:      row.High,
			Low:       row.Low,
			Close:     row.Close,
			Volume:    row.Volume,
		}
		if !c.Valid() {
			return nil, apperrors.NewDataError("csv", path, fmt.Sprintf("row %d: invalid OHLCV values", i+1), nil)
		}
		candles = append(candles, c)
	}

	return candles, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format")
}

// loadFundamentals reads an optional fundamentals JSON file.
func loadFundamentals(path string) (*models.Fundamentals, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewDataError("fundamentals", path, "cannot read file", err)
	}

	var f models.Fundamentals
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, apperrors.NewDataError("fundamentals", path, "cannot parse JSON", err)
	}
	return &f, nil
}
