package fetcher

import "context"

// PageFetcher retrieves the raw HTML of one station page.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}
