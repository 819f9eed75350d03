package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParse_CSV(t *testing.T) {
	content := []byte("\xef\xbb\xbfText,Date,Predicted Sentiment,source\n" +
		"\"I love it, really\",2024-03-01,POSITIVE,web\n" +
		",,,\n" +
		"Meh,not a date,NEGATIVE,app\n")

	records, err := Parse("reviews.csv", content)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 0, records[0].Row)
	assert.Equal(t, "I love it, really", records[0].Text)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), records[0].Date)
	assert.Equal(t, "POSITIVE", records[0].PredictedSentiment)
	assert.Equal(t, map[string]string{"source": "web"}, records[0].Extra)

	assert.Equal(t, 1, records[1].Row)
	assert.False(t, records[1].HasDate())
}

func TestParse_ShortRows(t *testing.T) {
	records, err := Parse("x.csv", []byte("id,text,emotion\n1,hello\n2,bye,sadness\n"))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "hello", records[0].Text)
	assert.Equal(t, "", records[0].Emotion)
	assert.Equal(t, "sadness", records[1].Emotion)
}

func TestParse_TSV(t *testing.T) {
	records, err := Parse("x.tsv", []byte("text\tlabel\ngood stuff\tpositive\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "positive", records[0].Label)
}

func TestParse_MissingTextColumn(t *testing.T) {
	_, err := Parse("x.csv", []byte("review,score\ngreat,5\n"))
	assert.ErrorIs(t, err, ErrMissingTextColumn)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse("x.csv", []byte(""))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := Parse("x.parquet", []byte("PAR1"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParse_Excel(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"TEXT", "Emotion"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"so happy today", "joy"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	records, err := Parse("upload.xlsx", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "so happy today", records[0].Text)
	assert.Equal(t, "joy", records[0].Emotion)
}

func TestNormalizeColumnName(t *testing.T) {
	tests := map[string]string{
		" Text ":              "text",
		"Predicted Sentiment": "predicted_sentiment",
		"predicted-sentiment": "predicted_sentiment",
		"__Date__":            "date",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeColumnName(in))
	}
}
