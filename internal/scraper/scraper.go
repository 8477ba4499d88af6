// Package scraper collects the long-form content of mftplus lesson pages.
//
// A lesson page is fetched once per lesson id (many class offerings share a
// lesson), parsed with goquery and cleaned with textclean before it is saved.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"

	"course-mirror/internal/concurrency"
	"course-mirror/internal/domain"
	"course-mirror/internal/normalize"
	"course-mirror/internal/textclean"
)

const (
	DefaultUserAgent = "Mozilla/5.0"
	DefaultTimeout   = 20 * time.Second
	DefaultDelay     = time.Second
	DefaultWorkers   = 1
)

// Section headings on the lesson page and the list each one feeds.
const (
	headingPrerequisites = "پیش نیاز"
	headingCurriculum    = "سرفصل"
	headingSkills        = "کسب توانایی"
	headingCareer        = "بازار کار"
)

type Scraper struct {
	HTTP *resty.Client
	// Workers caps concurrent page fetches. <=0 means DefaultWorkers.
	Workers int
	// Delay is slept by a worker after each page.
	Delay time.Duration
	Log   *slog.Logger
}

func New() *Scraper {
	client := resty.New()
	client.SetHeader("User-Agent", DefaultUserAgent)
	client.SetTimeout(DefaultTimeout)
	return &Scraper{
		HTTP:    client,
		Workers: DefaultWorkers,
		Delay:   DefaultDelay,
		Log:     slog.Default(),
	}
}

// UniqueLessonURLs returns one course link per lesson id, first occurrence wins.
// Links without a lesson id are skipped.
func UniqueLessonURLs(records []domain.CourseRecord) []string {
	seen := map[string]bool{}
	var urls []string
	for _, r := range records {
		link := strings.TrimSpace(r.CourseURL)
		id := normalize.LessonIDFromURL(link)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		urls = append(urls, link)
	}
	return urls
}

// ScrapeCourse fetches and parses one lesson page. The result is already cleaned.
func (s *Scraper) ScrapeCourse(ctx context.Context, url string) (domain.CourseDetails, error) {
	res, err := s.HTTP.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return domain.CourseDetails{}, fmt.Errorf("scraper: get %s: %w", url, err)
	}
	if res.IsError() {
		return domain.CourseDetails{}, fmt.Errorf("scraper: get %s: status %d", url, res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return domain.CourseDetails{}, fmt.Errorf("scraper: parse %s: %w", url, err)
	}
	d := Parse(doc)
	d.LessonID = normalize.LessonIDFromURL(url)
	d.URL = url
	return d, nil
}

// Parse extracts the lesson content from a parsed page.
func Parse(doc *goquery.Document) domain.CourseDetails {
	var d domain.CourseDetails

	title := doc.Find("h1").First()
	if title.Length() == 0 {
		title = doc.Find("title").First()
	}
	if title.Length() > 0 {
		d.Title = textclean.Clean(text(title))
	}

	if desc := doc.Find("div.forced-ellipsis p").First(); desc.Length() > 0 {
		d.Description = textclean.Clean(text(desc))
	}

	// headings and lists in document order, so each h2 can find the list after it
	var nodes []*goquery.Selection
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		if sel.Is("h2") || sel.Is("ul.custom-ul") {
			nodes = append(nodes, sel)
		}
	})

	for i, n := range nodes {
		if !n.Is("h2") {
			continue
		}
		ul := nextList(nodes[i+1:])
		if ul == nil {
			continue
		}

		var items []string
		ul.Find("li").Each(func(_ int, li *goquery.Selection) {
			items = append(items, text(li))
		})
		items = textclean.CleanList(items)

		heading := text(n)
		switch {
		case strings.Contains(heading, headingPrerequisites):
			d.Prerequisites = items
		case strings.Contains(heading, headingCurriculum):
			d.Curriculum = items
		case strings.Contains(heading, headingSkills):
			d.SkillsAcquired = items
		case strings.Contains(heading, headingCareer):
			d.CareerOpportunities = items
		}
	}
	return d
}

// ScrapeAll scrapes every url. Failed pages are logged and left out; the rest keep
// input order. Only a cancelled ctx is returned as an error.
func (s *Scraper) ScrapeAll(ctx context.Context, urls []string) ([]domain.CourseDetails, error) {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	workers := s.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results, errs := concurrency.ProcessParallel(ctx, urls, concurrency.ParallelOptions{MaxWorkers: workers},
		func(ctx context.Context, i int, url string) (domain.CourseDetails, error) {
			log.Info("scraping lesson page", "n", i+1, "total", len(urls), "url", url)
			d, err := s.ScrapeCourse(ctx, url)
			if s.Delay > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(s.Delay):
				}
			}
			return d, err
		})

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scraper: %w", err)
	}

	out := make([]domain.CourseDetails, 0, len(urls))
	for i, err := range errs {
		if err != nil {
			log.Warn("lesson page failed", "url", urls[i], "err", err)
			continue
		}
		out = append(out, results[i])
	}
	return out, nil
}

func nextList(rest []*goquery.Selection) *goquery.Selection {
	for _, n := range rest {
		if n.Is("ul.custom-ul") {
			return n
		}
	}
	return nil
}

// text joins the trimmed text nodes under sel with single spaces.
func text(sel *goquery.Selection) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
