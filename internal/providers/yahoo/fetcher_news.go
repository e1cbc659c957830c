package yahoo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/seenimoa/fundalens/internal/news"
	"github.com/seenimoa/fundalens/internal/provider"
)

// --- CompanyNews fetcher ---

type newsFetcher struct {
	provider.BaseFetcher
	client *news.Client
}

// The news client carries its own cache and limiter, so the base
// fetcher's defaults are left alone.
func newNewsFetcher(source news.Source) *newsFetcher {
	return &newsFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelCompanyNews,
			"Company headlines from the Yahoo Finance RSS feed",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamLimit},
		),
		client: news.NewClient(source),
	}
}

func (f *newsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	limit := news.DefaultLimit
	if raw := params[provider.ParamLimit]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("yahoo news %s: invalid limit %q", symbol, raw)
		}
		limit = n
	}

	articles, err := f.client.Headlines(ctx, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("yahoo news %s: %w", symbol, err)
	}
	return newResult(articles), nil
}
