package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spacesedan/sentidash/internal/models"
)

// WriteCSV writes records with the columns the original data carried followed
// by clean_text, the label column for mode and confidence.
func WriteCSV(w io.Writer, records []models.Record, mode models.Mode) error {
	extras := extraColumns(records, mode)
	hasDate, hasLabel, hasPredicted, hasEmotion := false, false, false, false
	for _, r := range records {
		hasDate = hasDate || r.HasDate()
		hasLabel = hasLabel || r.Label != ""
		hasPredicted = hasPredicted || r.PredictedSentiment != ""
		hasEmotion = hasEmotion || (mode != models.ModeEmotion && r.Emotion != "")
	}

	header := []string{ColumnText}
	if hasDate {
		header = append(header, ColumnDate)
	}
	if hasLabel {
		header = append(header, ColumnLabel)
	}
	if hasPredicted {
		header = append(header, ColumnPredictedSentiment)
	}
	if hasEmotion {
		header = append(header, ColumnEmotion)
	}
	header = append(header, extras...)
	header = append(header, "clean_text", string(mode), "confidence")

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range records {
		row := []string{r.Text}
		if hasDate {
			day := ""
			if r.HasDate() {
				day = r.Date.Format("2006-01-02")
			}
			row = append(row, day)
		}
		if hasLabel {
			row = append(row, r.Label)
		}
		if hasPredicted {
			row = append(row, r.PredictedSentiment)
		}
		if hasEmotion {
			row = append(row, r.Emotion)
		}
		for _, col := range extras {
			row = append(row, r.Extra[col])
		}
		row = append(row, r.CleanText, r.LabelFor(mode), strconv.FormatFloat(r.Confidence, 'f', 4, 64))

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", r.Row, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// extraColumns lists the carried-over columns, minus any that the written
// output columns would duplicate.
func extraColumns(records []models.Record, mode models.Mode) []string {
	seen := map[string]bool{"clean_text": true, string(mode): true, "confidence": true}
	var cols []string
	for _, r := range records {
		for k := range r.Extra {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	return cols
}
