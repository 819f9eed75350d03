package dataset

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/spacesedan/sentidash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	records := []models.Record{
		{Row: 0, Text: "Great!", Date: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), CleanText: "great", Sentiment: "positive", Confidence: 0.91234, Extra: map[string]string{"source": "web"}},
		{Row: 1, Text: "Bad.", CleanText: "bad", Sentiment: "negative", Confidence: 0.5},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records, models.ModeSentiment))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"text", "date", "source", "clean_text", "sentiment", "confidence"},
		{"Great!", "2024-05-06", "web", "great", "positive", "0.9123"},
		{"Bad.", "", "", "bad", "negative", "0.5000"},
	}, rows)
}

func TestWriteCSV_EmotionMode(t *testing.T) {
	records := []models.Record{{Text: "yay", CleanText: "yay", Emotion: "joy", Sentiment: "positive", Confidence: 1}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records, models.ModeEmotion))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"text", "clean_text", "emotion", "confidence"}, rows[0])
	assert.Equal(t, []string{"yay", "yay", "joy", "1.0000"}, rows[1])
}

func TestWriteCSV_RelabelledInputHasNoDuplicateColumns(t *testing.T) {
	records, err := Parse("labelled.csv", []byte("text,clean_text,sentiment,confidence,source\nGreat!,old,negative,0.1,web\n"))
	require.NoError(t, err)
	records[0].CleanText = "great"
	records[0].Sentiment = "positive"
	records[0].Confidence = 0.9

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records, models.ModeSentiment))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"text", "source", "clean_text", "sentiment", "confidence"},
		{"Great!", "web", "great", "positive", "0.9000"},
	}, rows)
}
