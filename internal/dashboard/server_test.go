package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spacesedan/sentidash/internal/analysis"
	"github.com/spacesedan/sentidash/internal/dataset"
	"github.com/spacesedan/sentidash/internal/models"
	"github.com/spacesedan/sentidash/internal/predict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reviewsCSV = `text,date,label
I love this product so much,2024-01-01,positive
This is terrible and I hate it,2024-01-01,negative
Absolutely wonderful experience,2024-01-02,positive
`

type fakeLoader struct {
	files map[string]string
	errs  map[string]error
	calls int
}

func (f *fakeLoader) Load(_ context.Context, source string) ([]models.Record, error) {
	f.calls++
	if err, ok := f.errs[source]; ok {
		return nil, err
	}
	content, ok := f.files[source]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", source)
	}
	return dataset.Parse(source, []byte(content))
}

func (f *fakeLoader) LoadReader(name string, r io.Reader) ([]models.Record, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return dataset.Parse(name, content)
}

// emotionPredictor labels everything joy.
type emotionPredictor struct{}

func (emotionPredictor) Name() string { return "joyful" }

func (emotionPredictor) Predict(_ context.Context, texts []string) ([]models.Prediction, error) {
	out := make([]models.Prediction, len(texts))
	for i := range out {
		out[i] = models.Prediction{Label: "joy", Confidence: 0.8}
	}
	return out, nil
}

func newTestServer(t *testing.T) (*Server, *fakeLoader) {
	t.Helper()
	return newTestServerWith(t, Options{})
}

func newTestServerWith(t *testing.T, opts Options) (*Server, *fakeLoader) {
	t.Helper()
	loader := &fakeLoader{
		files: map[string]string{"reviews.csv": reviewsCSV},
		errs: map[string]error{
			"notext.csv":            fmt.Errorf("notext.csv: %w", dataset.ErrMissingTextColumn),
			"https://x.test/a.csv": fmt.Errorf("%w: status 500", dataset.ErrFetch),
		},
	}
	reg := prometheus.NewRegistry()
	analyzer := analysis.New(
		map[models.Mode]predict.Predictor{
			models.ModeSentiment: predict.NewVader(predict.DefaultVaderThreshold),
			models.ModeEmotion:   emotionPredictor{},
		},
		analysis.Options{},
		analysis.NewMetrics(reg),
	)
	opts.DefaultSource = "reviews.csv"
	opts.PreviewRows = 2
	if opts.AllowedSources == nil {
		opts.AllowedSources = []string{"notext.csv", "https://x.test/a.csv"}
	}
	return New(loader, analyzer, reg, opts), loader
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Positive")
	assert.Contains(t, body, "66.7%")
	assert.Contains(t, body, "/charts/distribution.svg?")
	assert.Contains(t, body, "/charts/trend.svg?")
	assert.Contains(t, body, "Accuracy")
	assert.Contains(t, body, "3 matching rows")
}

func TestIndex_Search(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/?q=terrible")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 matching rows")
	assert.Contains(t, rec.Body.String(), "this is terrible and i hate it")
}

func TestIndex_Errors(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/?source=notext.csv")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "must contain a &#39;text&#39; column")
	assert.NotContains(t, rec.Body.String(), "/charts/")

	rec = get(t, s, "/?source=https://x.test/a.csv")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestIndex_RejectsUnlistedSources(t *testing.T) {
	secret := filepath.Join(t.TempDir(), "payroll.csv")
	require.NoError(t, os.WriteFile(secret, []byte("text,salary\nAlice 123-45-6789,100\n"), 0o600))

	internalHits := 0
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		internalHits++
		_, _ = io.WriteString(w, "text\nsecret\n")
	}))
	defer internal.Close()

	s, loader := newTestServer(t)
	for _, target := range []string{
		"/?source=" + url.QueryEscape(secret),
		"/?source=" + url.QueryEscape(internal.URL+"/admin"),
		"/api/summary?source=" + url.QueryEscape(secret),
		"/charts/confidence.svg?source=" + url.QueryEscape(internal.URL),
	} {
		rec := get(t, s, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.NotContains(t, rec.Body.String(), "123-45-6789")
	}
	assert.Zero(t, loader.calls)
	assert.Zero(t, internalHits)
}

func TestIndex_AllowedSource(t *testing.T) {
	s, loader := newTestServerWith(t, Options{AllowedSources: []string{"more.csv"}})
	loader.files["more.csv"] = "text\nhappy happy day\n"

	rec := get(t, s, "/?source=more.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<option value="more.csv" selected>`)
}

func TestIndex_EmotionModeSkipsEvaluation(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/?mode=emotion")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Joy")
	assert.NotContains(t, rec.Body.String(), "Accuracy")

	rec = get(t, s, "/api/summary?mode=emotion")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp summaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Evaluation)
	assert.Equal(t, "joy", resp.Summary.Dominant)
}

func TestDatasetCache(t *testing.T) {
	s, loader := newTestServer(t)

	get(t, s, "/")
	get(t, s, "/charts/distribution.svg")
	get(t, s, "/api/summary")
	assert.Equal(t, 1, loader.calls)
}

func TestSummaryAPI(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp summaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "reviews.csv", resp.Source)
	assert.Equal(t, 3, resp.Summary.Total)
	assert.Equal(t, "positive", resp.Summary.Dominant)
	require.NotNil(t, resp.Evaluation)
	assert.InDelta(t, 1.0, resp.Evaluation.Accuracy, 1e-9)
}

func TestCharts(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{
		"/charts/distribution.svg?kind=pie",
		"/charts/distribution.svg?kind=bar",
		"/charts/confidence.svg",
		"/charts/trend.svg",
	} {
		t.Run(path, func(t *testing.T) {
			rec := get(t, s, path)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), "<svg")
		})
	}
}

func TestUpload(t *testing.T) {
	s, loader := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "mine.csv")
	require.NoError(t, err)
	_, err = io.WriteString(fw, "text\nwhat a great day\n")
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("mode", "sentiment"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "what a great day")
	assert.Zero(t, loader.calls)

	// chart links for the upload resolve from the cache
	start := strings.Index(rec.Body.String(), "/charts/confidence.svg?")
	require.Positive(t, start)
	end := strings.Index(rec.Body.String()[start:], `"`)
	link := strings.ReplaceAll(rec.Body.String()[start:start+end], "&amp;", "&")
	assert.Equal(t, http.StatusOK, get(t, s, link).Code)
}

func TestUpload_TooLarge(t *testing.T) {
	s, _ := newTestServerWith(t, Options{MaxUploadSize: 64})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "big.csv")
	require.NoError(t, err)
	_, err = io.WriteString(fw, "text\n"+strings.Repeat("a fine row\n", 20))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.NotContains(t, rec.Body.String(), "a fine row")
}

func TestUpload_NoFile(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUnknownUploadSource(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/charts/confidence.svg?source=upload:abc/x.csv").Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	get(t, s, "/")
	rec = get(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sentidash_http_requests_total")
	assert.Contains(t, rec.Body.String(), "sentidash_records_labelled_total")
}
