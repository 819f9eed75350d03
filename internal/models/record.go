package models

import (
	"strings"
	"time"
)

type Mode string

const (
	ModeSentiment Mode = "sentiment"
	ModeEmotion   Mode = "emotion"
)

// ParseMode maps user input to a Mode, defaulting to sentiment.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeEmotion)) {
		return ModeEmotion
	}
	return ModeSentiment
}

// Record is one CSV row. Row is its 0-based position in the source and the
// only identity a record has.
type Record struct {
	Row  int       `json:"row" dynamodbav:"row"`
	Text string    `json:"text" dynamodbav:"text"`
	Date time.Time `json:"date,omitempty" dynamodbav:"date,omitempty"`

	// Label is the ground-truth column, used only for evaluation.
	Label              string `json:"label,omitempty" dynamodbav:"label,omitempty"`
	PredictedSentiment string `json:"predicted_sentiment,omitempty" dynamodbav:"predicted_sentiment,omitempty"`

	CleanText  string  `json:"clean_text" dynamodbav:"clean_text"`
	Sentiment  string  `json:"sentiment,omitempty" dynamodbav:"sentiment,omitempty"`
	Emotion    string  `json:"emotion,omitempty" dynamodbav:"emotion,omitempty"`
	Confidence float64 `json:"confidence" dynamodbav:"confidence"`

	Extra map[string]string `json:"extra,omitempty" dynamodbav:"-"`
}

// LabelFor returns the label carried for the given mode.
func (r Record) LabelFor(mode Mode) string {
	if mode == ModeEmotion {
		return r.Emotion
	}
	return r.Sentiment
}

// SetLabel stores a label for the given mode.
func (r *Record) SetLabel(mode Mode, label string) {
	if mode == ModeEmotion {
		r.Emotion = label
		return
	}
	r.Sentiment = label
}

// Precomputed returns a label that arrived with the source data for the mode.
func (r Record) Precomputed(mode Mode) string {
	if mode == ModeEmotion {
		return r.Emotion
	}
	return r.PredictedSentiment
}

// HasDate reports whether the source row carried a parseable date.
func (r Record) HasDate() bool {
	return !r.Date.IsZero()
}
