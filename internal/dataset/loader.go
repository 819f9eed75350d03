package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spacesedan/sentidash/internal/models"
)

// MaxSize caps how much of a remote or uploaded dataset is read.
const MaxSize = 100 * 1024 * 1024

// ObjectGetter is the part of the S3 client the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader resolves a source string to records. Sources are local paths,
// http(s) URLs or s3://bucket/key URLs.
type Loader struct {
	HTTP *http.Client
	S3   ObjectGetter
}

func NewLoader(httpClient *http.Client, s3Client ObjectGetter) *Loader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Loader{HTTP: httpClient, S3: s3Client}
}

func (l *Loader) Load(ctx context.Context, source string) ([]models.Record, error) {
	start := time.Now()

	content, err := l.read(ctx, source)
	if err != nil {
		return nil, err
	}

	records, err := Parse(nameOf(source), content)
	if err != nil {
		return nil, err
	}

	slog.Info("[Dataset] Loaded dataset",
		slog.String("source", source),
		slog.Int("rows", len(records)),
		slog.Duration("elapsed", time.Since(start)))
	return records, nil
}

// LoadReader parses an uploaded file.
func (l *Loader) LoadReader(name string, r io.Reader) ([]models.Record, error) {
	content, err := readLimited(r)
	if err != nil {
		return nil, err
	}
	return Parse(name, content)
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return l.downloadFromURL(ctx, source)
	case strings.HasPrefix(source, "s3://"):
		return l.downloadFromS3(ctx, source)
	default:
		content, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", source, err)
		}
		return content, nil
	}
}

func (l *Loader) downloadFromURL(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := l.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrFetch, rawURL, resp.StatusCode)
	}

	content, err := readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return content, nil
}

func (l *Loader) downloadFromS3(ctx context.Context, rawURL string) ([]byte, error) {
	if l.S3 == nil {
		return nil, fmt.Errorf("%w: no S3 client configured for %s", ErrFetch, rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || len(u.Path) < 2 {
		return nil, fmt.Errorf("%w: invalid S3 URL %q", ErrFetch, rawURL)
	}

	out, err := l.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(strings.TrimPrefix(u.Path, "/")),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer out.Body.Close()

	content, err := readLimited(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return content, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	return ReadLimited(r, MaxSize)
}

// ReadLimited reads all of r, failing with ErrTooLarge instead of truncating
// when r holds more than limit bytes.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if int64(len(content)) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, limit)
	}
	return content, nil
}

func nameOf(source string) string {
	if u, err := url.Parse(source); err == nil && u.Scheme != "" {
		return u.Path
	}
	return source
}
