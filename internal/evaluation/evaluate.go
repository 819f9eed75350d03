// Package evaluation scores predicted labels against ground truth.
package evaluation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spacesedan/sentidash/internal/models"
)

var (
	ErrLengthMismatch = errors.New("truth and prediction lengths differ")
	ErrNoSamples      = errors.New("nothing to evaluate")
)

// Evaluate returns accuracy and support-weighted precision, recall and F1.
// Labels are compared exactly; a metric whose denominator is zero is 0.
func Evaluate(yTrue, yPred []string) (models.EvaluationReport, error) {
	if len(yTrue) != len(yPred) {
		return models.EvaluationReport{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return models.EvaluationReport{}, ErrNoSamples
	}

	tp := map[string]int{}
	predicted := map[string]int{}
	support := map[string]int{}
	correct := 0

	for i := range yTrue {
		support[yTrue[i]]++
		predicted[yPred[i]]++
		if yTrue[i] == yPred[i] {
			tp[yTrue[i]]++
			correct++
		}
	}

	labels := make([]string, 0, len(support)+len(predicted))
	for l := range support {
		labels = append(labels, l)
	}
	for l := range predicted {
		if _, ok := support[l]; !ok {
			labels = append(labels, l)
		}
	}
	sort.Strings(labels)

	n := float64(len(yTrue))
	report := models.EvaluationReport{Accuracy: float64(correct) / n}

	for _, l := range labels {
		p := ratio(tp[l], predicted[l])
		r := ratio(tp[l], support[l])
		f1 := 0.0
		if p+r > 0 {
			f1 = 2 * p * r / (p + r)
		}

		w := float64(support[l]) / n
		report.Precision += w * p
		report.Recall += w * r
		report.F1 += w * f1

		report.PerLabel = append(report.PerLabel, models.LabelMetrics{
			Label:     l,
			Precision: p,
			Recall:    r,
			F1:        f1,
			Support:   support[l],
		})
	}

	return report, nil
}

// EvaluateRecords compares the truth column to the predicted label for mode,
// ignoring case. Rows without a truth label are skipped.
func EvaluateRecords(records []models.Record, mode models.Mode) (models.EvaluationReport, error) {
	var yTrue, yPred []string
	for _, r := range records {
		if r.Label == "" {
			continue
		}
		yTrue = append(yTrue, strings.ToLower(r.Label))
		yPred = append(yPred, strings.ToLower(r.LabelFor(mode)))
	}
	return Evaluate(yTrue, yPred)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
