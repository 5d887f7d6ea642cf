package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/esuzuk/fx-backtest/pkg/types"
)

// CSVColumnMapping describes where each bar field lives in a CSV row.
type CSVColumnMapping struct {
	TimestampCol int
	OpenCol      int
	HighCol      int
	LowCol       int
	CloseCol     int
	VolumeCol    int
	MinColumns   int
	DateFormat   string
	HasHeader    bool
}

// DefaultCSVFormat matches the common export layout:
// timestamp,open,high,low,close,volume with RFC 3339 timestamps.
var DefaultCSVFormat = CSVColumnMapping{
	TimestampCol: 0,
	OpenCol:      1,
	HighCol:      2,
	LowCol:       3,
	CloseCol:     4,
	VolumeCol:    5,
	MinColumns:   6,
	DateFormat:   time.RFC3339,
	HasHeader:    true,
}

// CSVProvider loads bar series from CSV files. Malformed rows are logged
// and skipped rather than failing the whole load.
type CSVProvider struct {
	format CSVColumnMapping
}

// NewCSVProvider returns a provider using DefaultCSVFormat.
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{format: DefaultCSVFormat}
}

// NewCSVProviderWithFormat returns a provider with a custom column layout.
func NewCSVProviderWithFormat(format CSVColumnMapping) *CSVProvider {
	return &CSVProvider{format: format}
}

// Name returns the provider's display name.
func (p *CSVProvider) Name() string { return "CSV Provider" }

// LoadBars reads and parses the CSV file at source.
func (p *CSVProvider) LoadBars(source string, pair types.CurrencyPair) ([]types.Bar, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("data: open %s: %w", source, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	lineNum := 0
	if p.format.HasHeader {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("data: read header: %w", err)
		}
		lineNum = 1
	}

	var bars []types.Bar
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("data: read line %d: %w", lineNum+1, err)
		}
		lineNum++

		if len(record) < p.format.MinColumns {
			log.Printf("data: line %d has %d columns, need %d, skipping", lineNum, len(record), p.format.MinColumns)
			continue
		}
		bar, err := p.parseRow(record, pair)
		if err != nil {
			log.Printf("data: line %d: %v, skipping", lineNum, err)
			continue
		}
		bars = append(bars, bar)
	}

	if err := ValidateBars(bars); err != nil {
		return nil, err
	}
	return bars, nil
}

func (p *CSVProvider) parseRow(record []string, pair types.CurrencyPair) (types.Bar, error) {
	f := p.format
	ts, err := time.Parse(f.DateFormat, record[f.TimestampCol])
	if err != nil {
		return types.Bar{}, fmt.Errorf("bad timestamp %q: %w", record[f.TimestampCol], err)
	}
	fields := [4]float64{}
	for i, col := range []int{f.OpenCol, f.HighCol, f.LowCol, f.CloseCol} {
		v, err := strconv.ParseFloat(record[col], 64)
		if err != nil {
			return types.Bar{}, fmt.Errorf("bad price %q: %w", record[col], err)
		}
		fields[i] = v
	}
	volume := 0.0
	if f.VolumeCol < len(record) {
		volume, _ = strconv.ParseFloat(record[f.VolumeCol], 64)
	}

	bar := types.Bar{
		Pair:      pair,
		Timestamp: ts,
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    volume,
	}
	if err := bar.Validate(); err != nil {
		return types.Bar{}, err
	}
	return bar, nil
}
