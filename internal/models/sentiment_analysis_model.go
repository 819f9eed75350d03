package models

// Prediction is what a classifier returns for one text.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}
