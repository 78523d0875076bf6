// Package imagesource downloads screenshot bytes from attachment URLs.
package imagesource

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// FetchError reports a non-success transport status from the image host.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

type Fetcher struct {
	client *fasthttp.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// Fetch downloads the image at url. No retries; a failed fetch fails the
// whole ingestion.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if deadline, ok := ctx.Deadline(); ok {
		if err := f.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
	} else {
		if err := f.client.Do(req, resp); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &FetchError{URL: url, Status: resp.StatusCode()}
	}

	// The response buffer is reused after release; copy out.
	body := resp.Body()
	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}
