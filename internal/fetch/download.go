package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Minute
	// DefaultRetries is the default number of download retries
	DefaultRetries = 3
	// MaxRetries caps the number of download retries
	MaxRetries = 10
	// maxBackoff caps a single retry delay
	maxBackoff = 5 * time.Minute
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "ffsetup/1.0"
	// maxRedirects caps the redirect chain followed by the client
	maxRedirects = 10
)

var (
	// ErrNoFilename is returned when the final URL has no usable last path segment.
	ErrNoFilename = errors.New("failed to extract filename from URL")
)

// StatusError reports a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// Result describes a completed download.
type Result struct {
	// Path is the absolute location of the downloaded file
	Path string
	// Filename is the name derived from the final URL
	Filename string
	// FinalURL is the URL after redirects
	FinalURL string
	// Size is the number of bytes written
	Size int64
	// ContentLength is the advertised length, -1 if unknown
	ContentLength int64
	Duration      time.Duration
}

// Options configures a Downloader. Zero values select defaults, except
// Retries where zero means a single attempt.
type Options struct {
	Timeout   time.Duration
	Retries   int
	UserAgent string
	Progress  Progress
	// Backoff is the first retry delay, doubled for each further attempt.
	Backoff time.Duration
}

// Downloader handles HTTP downloads with retry logic
type Downloader struct {
	client    *http.Client
	userAgent string
	retries   int
	backoff   time.Duration
	progress  Progress
}

// NewDownloader creates a new downloader
func NewDownloader(opts Options) *Downloader {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Retries > MaxRetries {
		opts.Retries = MaxRetries
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Progress == nil {
		opts.Progress = NopProgress{}
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}

	return &Downloader{
		client: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		retries:   opts.Retries,
		backoff:   opts.Backoff,
		progress:  opts.Progress,
	}
}

// Fetch downloads rawURL into destDir, naming the file after the last path
// segment of the final URL.
func (d *Downloader) Fetch(ctx context.Context, rawURL, destDir string) (*Result, error) {
	var result *Result
	err := d.retry(ctx, func() error {
		r, err := d.fetchOnce(ctx, rawURL, destDir, "", d.progress)
		if err == nil {
			result = r
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DownloadToFile downloads a URL to a specific file path without progress
// reporting. Used for small companion files such as checksums.
func (d *Downloader) DownloadToFile(ctx context.Context, rawURL, destPath string) error {
	return d.retry(ctx, func() error {
		_, err := d.fetchOnce(ctx, rawURL, filepath.Dir(destPath), filepath.Base(destPath), NopProgress{})
		return err
	})
}

// retry runs fn up to retries+1 times with exponential backoff.
func (d *Downloader) retry(ctx context.Context, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= d.retries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt > 0 {
			select {
			case <-time.After(d.delay(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		// A URL without a filename will not grow one on retry.
		if errors.Is(err, ErrNoFilename) || isPermanent(err) {
			return err
		}
	}

	return fmt.Errorf("download failed after %d retries: %w", d.retries, lastErr)
}

// delay returns the wait before the given retry attempt (1-based).
func (d *Downloader) delay(attempt int) time.Duration {
	delay := d.backoff
	for i := 1; i < attempt && delay < maxBackoff; i++ {
		delay *= 2
	}
	return min(delay, maxBackoff)
}

// isPermanent reports whether err is a client error status that a retry
// cannot fix.
func isPermanent(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	switch se.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return se.StatusCode >= 400 && se.StatusCode < 500
}

// fetchOnce performs a single download attempt. An empty name means the
// filename is derived from the final URL.
func (d *Downloader) fetchOnce(ctx context.Context, rawURL, destDir, name string, progress Progress) (*Result, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	if name == "" {
		name, err = FilenameFromURL(finalURL)
		if err != nil {
			return nil, err
		}
	}

	destDir, err = filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("resolve dest dir: %w", err)
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("create dest dir: %w", err)
	}

	destPath := filepath.Join(destDir, name)
	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	progress.Start(resp.ContentLength)
	written, err := io.Copy(tmpFile, &progressReader{r: resp.Body, p: progress})
	if err != nil {
		return nil, fmt.Errorf("copy response body: %w", err)
	}
	progress.Finish()

	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return nil, fmt.Errorf("rename temp file: %w", err)
	}
	cleanupNeeded = false

	return &Result{
		Path:          destPath,
		Filename:      name,
		FinalURL:      finalURL,
		Size:          written,
		ContentLength: resp.ContentLength,
		Duration:      time.Since(start),
	}, nil
}

// FilenameFromURL returns the last path segment of rawURL.
func FilenameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("%w: %s", ErrNoFilename, rawURL)
	}
	return name, nil
}
