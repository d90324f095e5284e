package prices

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/napolitain/solver-simco/internal/models"
)

// dailyAverageMarker ends the hourly section of an exchange tracker export
const dailyAverageMarker = "DAILY AVERAGE"

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
}

// CSVOptions controls how an exchange tracker export is read
type CSVOptions struct {
	// SkipRows is the number of preamble rows before the header row
	SkipRows int
	// TimestampColumn is the index of the timestamp column; price columns follow it
	TimestampColumn int
}

// ReadCSV parses an exchange tracker export. The header row names the
// resource of every price column after the timestamp column. Empty price
// cells are treated as missing, and reading stops at the daily average section.
func ReadCSV(r io.Reader, opts CSVOptions) ([]models.PriceSnapshot, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("skip preamble row %d: %w", i+1, err)
		}
	}

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	tsCol := opts.TimestampColumn
	if tsCol < 0 || tsCol >= len(header) {
		return nil, fmt.Errorf("timestamp column %d out of range", tsCol)
	}
	columns := make([]models.ResourceID, len(header))
	for i := tsCol + 1; i < len(header); i++ {
		columns[i] = models.ResourceID(strings.TrimSpace(header[i]))
	}

	var snapshots []models.PriceSnapshot
	line := opts.SkipRows + 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) <= tsCol {
			continue
		}
		cell := strings.TrimSpace(record[tsCol])
		if strings.Contains(strings.ToUpper(cell), dailyAverageMarker) {
			break
		}
		if cell == "" {
			continue
		}

		ts, err := parseTimestamp(cell)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		snap := models.PriceSnapshot{Timestamp: ts, Prices: make(map[models.ResourceID]float64)}
		for i := tsCol + 1; i < len(record) && i < len(columns); i++ {
			raw := strings.TrimSpace(record[i])
			if raw == "" || columns[i] == "" {
				continue
			}
			price, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, columns[i], err)
			}
			if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
				return nil, fmt.Errorf("line %d column %s: invalid price %q", line, columns[i], raw)
			}
			snap.Prices[columns[i]] = price
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
