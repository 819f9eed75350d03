// Package dataset turns CSV, TSV and Excel files into records.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/spacesedan/sentidash/internal/models"
	"github.com/xuri/excelize/v2"
)

var (
	ErrMissingTextColumn  = errors.New("dataset has no text column")
	ErrUnsupportedFormat  = errors.New("unsupported dataset format")
	ErrEmpty              = errors.New("dataset is empty")
	ErrFetch              = errors.New("failed to fetch dataset")
	ErrTooLarge           = errors.New("dataset is too large")
	columnSeparatorRegexp = regexp.MustCompile(`[^a-z0-9]+`)
)

const (
	ColumnText               = "text"
	ColumnDate               = "date"
	ColumnEmotion            = "emotion"
	ColumnPredictedSentiment = "predicted_sentiment"
	ColumnLabel              = "label"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
}

// Parse decodes content according to the extension of name.
func Parse(name string, content []byte) ([]models.Record, error) {
	headers, rows, err := parseTable(name, content)
	if err != nil {
		return nil, err
	}
	return toRecords(headers, rows)
}

func parseTable(name string, content []byte) ([]string, [][]string, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv", "":
		return parseCSV(content, ',')
	case ".tsv":
		return parseCSV(content, '\t')
	case ".xlsx", ".xlsm":
		return parseExcel(content)
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

func parseCSV(content []byte, comma rune) ([]string, [][]string, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))))
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) == 0 {
		return nil, nil, ErrEmpty
	}
	return allRows[0], allRows[1:], nil
}

func parseExcel(content []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrEmpty
	}

	allRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(allRows) == 0 {
		return nil, nil, ErrEmpty
	}
	return allRows[0], allRows[1:], nil
}

// NormalizeColumnName lowercases a header and joins its words with underscores.
func NormalizeColumnName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = columnSeparatorRegexp.ReplaceAllString(n, "_")
	return strings.Trim(n, "_")
}

func toRecords(rawHeaders []string, rows [][]string) ([]models.Record, error) {
	headers := make([]string, len(rawHeaders))
	textIdx := -1
	for i, h := range rawHeaders {
		headers[i] = NormalizeColumnName(h)
		if headers[i] == ColumnText && textIdx < 0 {
			textIdx = i
		}
	}
	if textIdx < 0 {
		return nil, fmt.Errorf("%w (columns: %s)", ErrMissingTextColumn, strings.Join(headers, ", "))
	}

	records := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}

		rec := models.Record{Row: len(records)}
		for i, h := range headers {
			if i >= len(row) {
				break
			}
			value := strings.TrimSpace(row[i])
			switch {
			case i == textIdx:
				rec.Text = value
			case h == ColumnDate:
				rec.Date = parseDate(value)
			case h == ColumnEmotion:
				rec.Emotion = value
			case h == ColumnPredictedSentiment:
				rec.PredictedSentiment = value
			case h == ColumnLabel:
				rec.Label = value
			case h != "":
				if rec.Extra == nil {
					rec.Extra = make(map[string]string)
				}
				rec.Extra[h] = value
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseDate(value string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
