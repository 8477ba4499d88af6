package mftplus

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"course-mirror/internal/concurrency"
	"course-mirror/internal/domain"
	"course-mirror/internal/httpx"
)

const (
	DefaultAPIURL        = "https://mftplus.com/ajax/default/calendar"
	DefaultReferer       = "https://mftplus.com/calendar"
	DefaultUserAgent     = "Mozilla/5.0"
	DefaultPageSize      = 9
	DefaultConcurrency   = 5
	DefaultMaxEmptyPages = 2
	DefaultPageDelay     = 200 * time.Millisecond
)

type Client struct {
	APIURL    string
	Referer   string
	UserAgent string
	HTTP      *http.Client

	PageSize      int
	Concurrency   int
	MaxEmptyPages int
	MaxPages      int           // <=0 means no cap
	PageDelay     time.Duration // pause between batches
	Retry         httpx.RetryConfig

	Log *slog.Logger
}

func New(apiURL string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	tr := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: DefaultConcurrency * 2,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		APIURL:        apiURL,
		Referer:       DefaultReferer,
		UserAgent:     DefaultUserAgent,
		HTTP:          &http.Client{Timeout: 30 * time.Second, Transport: tr},
		PageSize:      DefaultPageSize,
		Concurrency:   DefaultConcurrency,
		MaxEmptyPages: DefaultMaxEmptyPages,
		PageDelay:     DefaultPageDelay,
		Retry:         httpx.NoRetry(),
	}
}

func (c *Client) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("User-Agent", c.UserAgent)
	h.Set("X-Requested-With", "XMLHttpRequest")
	h.Set("Referer", c.Referer)
	h.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	h.Set("Accept-Encoding", httpx.AcceptEncoding)
	return h
}

func (c *Client) endpoint(need string) string {
	return c.APIURL + "?need=" + url.QueryEscape(need)
}

// SearchForm is the form body of one search page.
func SearchForm(f domain.Filter, skip int) url.Values {
	form := url.Values{}
	form.Set("term", f.Term)
	form.Set("sort", f.Sort)
	form.Set("skip", strconv.Itoa(skip))
	form.Set("pSkip", "0")
	form.Set("type", "all")
	for key, ids := range map[string][]string{
		"place[]":      f.Places,
		"department[]": f.Departments,
		"group[]":      f.Groups,
		"course[]":     f.Courses,
		"month[]":      f.Months,
	} {
		for _, id := range ids {
			form.Add(key, id)
		}
	}
	return form
}

// SearchPage fetches the page of results starting at skip.
func (c *Client) SearchPage(ctx context.Context, f domain.Filter, skip int) ([]RawCourse, error) {
	_, body, err := httpx.Do(ctx, c.HTTP, httpx.PostForm(c.endpoint("search"), SearchForm(f, skip), c.headers()), c.Retry)
	if err != nil {
		return nil, fmt.Errorf("mftplus: search skip=%d: %w", skip, err)
	}
	courses, err := decodeList[RawCourse](body, func(i int, err error) {
		c.logger().Warn("mftplus: skipping undecodable course", "skip", skip, "index", i, "err", err)
	})
	if err != nil {
		return nil, fmt.Errorf("mftplus: decode search skip=%d: %w", skip, err)
	}
	return courses, nil
}

// FetchAll walks the search pages at increasing offsets until MaxEmptyPages
// consecutive pages come back empty. Pages are requested Concurrency at a time but
// evaluated strictly in offset order, and pages of a batch after the stop point are
// dropped, so the result matches a sequential walk. A page that fails is logged and
// counts as empty. Only context cancellation aborts the walk.
func (c *Client) FetchAll(ctx context.Context, f domain.Filter) ([]RawCourse, error) {
	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	batch := c.Concurrency
	if batch <= 0 {
		batch = DefaultConcurrency
	}
	maxEmpty := c.MaxEmptyPages
	if maxEmpty <= 0 {
		maxEmpty = DefaultMaxEmptyPages
	}
	log := c.logger()

	var out []RawCourse
	skip, empty, issued := 0, 0, 0
	for {
		n := batch
		if c.MaxPages > 0 {
			if left := c.MaxPages - issued; left < n {
				n = left
			}
			if n <= 0 {
				log.Warn("mftplus: page cap reached", "max_pages", c.MaxPages)
				return out, nil
			}
		}

		offsets := make([]int, n)
		for i := range offsets {
			offsets[i] = skip + i*pageSize
		}
		pages, errs := concurrency.ProcessParallel(ctx, offsets, concurrency.ParallelOptions{MaxWorkers: n},
			func(ctx context.Context, _ int, off int) ([]RawCourse, error) {
				return c.SearchPage(ctx, f, off)
			})
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("mftplus: fetch: %w", err)
		}
		issued += n

		for i, off := range offsets {
			if errs[i] != nil {
				log.Warn("mftplus: page failed, treating as empty", "skip", off, "err", errs[i])
			}
			if len(pages[i]) == 0 {
				empty++
				if empty >= maxEmpty {
					log.Info("mftplus: fetch done", "courses", len(out), "pages", issued)
					return out, nil
				}
				continue
			}
			empty = 0
			out = append(out, pages[i]...)
			log.Info("mftplus: page", "skip", off, "courses", len(pages[i]))
		}

		skip += n * pageSize
		if err := sleep(ctx, c.PageDelay); err != nil {
			return out, fmt.Errorf("mftplus: fetch: %w", err)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
