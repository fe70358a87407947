package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"loadwatch/domain/core"
	"loadwatch/domain/session"
	"loadwatch/ports"
)

// Input column layout, fixed: Date, Player, Position, Team Name, then the
// twelve raw metrics in session.RawMetrics() order.
const (
	colDate = iota
	colPlayer
	colPosition
	colTeam
	metricColOffset
)

const inputDateFormat = "02/01/2006"

// columnCount is 4 identity columns plus the raw metric set.
var columnCount = metricColOffset + len(session.RawMetrics())

// SessionReader reads the raw session table from CSV or XLSX files.
type SessionReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

var _ ports.SessionReader = (*SessionReader)(nil)

// NewSessionReader creates a reader for the given file; the extension
// selects the format.
func NewSessionReader(filePath string) *SessionReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &SessionReader{filePath: filePath, fileType: fileType}
}

// ReadSessions loads and coerces the session table. Rows with a
// non-numeric metric cell are rejected and logged; the batch continues.
// A row with an invalid Player or Date aborts the read, since downstream
// keys would be meaningless.
func (r *SessionReader) ReadSessions(ctx context.Context) ([]session.Record, *ports.ReadReport, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("%w: %s needs a header row and at least one data row", core.ErrEmptyInput, r.filePath)
	}

	return r.processRows(ctx, rows)
}

func (r *SessionReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Short rows are handled per-row so one bad line cannot kill the read.
	reader.FieldsPerRecord = -1

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[SessionReader] CSV file read in %.2fms (%d rows)",
		float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *SessionReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	readStart := time.Now()
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	log.Printf("[SessionReader] Sheet1 read in %.2fms (%d rows)",
		float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// processRows converts raw string rows into session records, skipping the
// header row.
func (r *SessionReader) processRows(ctx context.Context, rows [][]string) ([]session.Record, *ports.ReadReport, error) {
	report := &ports.ReadReport{TotalRows: len(rows) - 1}
	records := make([]session.Record, 0, len(rows)-1)

	for i, row := range rows[1:] {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}
		line := i + 2 // 1-based, after the header

		rec, err := r.parseRow(line, row)
		if err != nil {
			if isKeyError(err) {
				return nil, nil, err
			}
			log.Printf("[SessionReader] rejecting row %d: %v", line, err)
			report.Rejected++
			report.Rejections = append(report.Rejections, err.Error())
			continue
		}
		records = append(records, rec)
		report.Accepted++
	}

	log.Printf("[SessionReader] accepted %d/%d rows (%d rejected)",
		report.Accepted, report.TotalRows, report.Rejected)
	return records, report, nil
}

func (r *SessionReader) parseRow(line int, row []string) (session.Record, error) {
	if len(row) != columnCount {
		return session.Record{}, core.NewRowError(line,
			fmt.Errorf("%w: %d columns, want %d", core.ErrMalformedRow, len(row), columnCount))
	}

	date, err := time.Parse(inputDateFormat, strings.TrimSpace(row[colDate]))
	if err != nil {
		return session.Record{}, core.NewRowError(line,
			fmt.Errorf("%w: unparseable date %q", core.ErrInvalidKey, row[colDate]))
	}
	player := strings.TrimSpace(row[colPlayer])
	if player == "" {
		return session.Record{}, core.NewRowError(line,
			fmt.Errorf("%w: empty player", core.ErrInvalidKey))
	}

	rec := session.NewRecord(session.Identity{
		Player:   player,
		Position: strings.TrimSpace(row[colPosition]),
		Team:     strings.TrimSpace(row[colTeam]),
	}, core.DayOf(date))

	for j, name := range session.RawMetrics() {
		value, err := coerceMetric(row[metricColOffset+j])
		if err != nil {
			// Zero is a real physical value, so a cell that fails to
			// parse must fail loudly rather than coerce to zero.
			return session.Record{}, core.NewRowError(line, fmt.Errorf("%s: %w", name, err))
		}
		rec.Metrics[name] = value
	}
	return rec, nil
}
