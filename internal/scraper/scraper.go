// Package scraper collects trail listings from vancouvertrails.com.
// It is an offline collaborator: the serving path never imports it.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// RawTrail is one listing exactly as it appears on the site. Numeric
// columns stay as display strings ("1.5 - 2 hours", "7.5km") until the
// cleaner normalizes them.
type RawTrail struct {
	Name          string
	Rating        string
	Region        string
	Difficulty    string
	Time          string
	Distance      string
	Season        string
	DogFriendly   bool
	PublicTransit bool
	Camping       bool
	URL           string
	Description   string
}

const (
	defaultBaseURL   = "https://www.vancouvertrails.com"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	fetchTimeout     = 10 * time.Second

	// minParagraphLen drops boilerplate fragments when assembling a
	// trail description from page paragraphs.
	minParagraphLen = 30
)

// featureFilters maps a boolean trail attribute to the site's filter
// query. Each filtered list page enumerates exactly the trails that
// have the attribute.
var featureFilters = []struct {
	name   string
	filter string
}{
	{"dog_friendly", "dogs"},
	{"public_transit", "transit"},
	{"camping", "camping"},
}

// Config holds scraper settings.
type Config struct {
	BaseURL   string
	UserAgent string
	Delay     time.Duration // pause between page fetches
	Client    *http.Client
	Logger    *zap.Logger
}

// Scraper fetches and parses trail pages.
type Scraper struct {
	baseURL   string
	userAgent string
	delay     time.Duration
	client    *http.Client
	logger    *zap.Logger
}

// New creates a scraper. Zero-value config fields get defaults.
func New(cfg Config) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Delay <= 0 {
		cfg.Delay = time.Second
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: fetchTimeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Scraper{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		delay:     cfg.Delay,
		client:    cfg.Client,
		logger:    cfg.Logger,
	}
}

// ScrapeAll collects every trail not already present in existing
// (keyed by trail name), flags feature booleans from the filtered list
// pages, and fetches each new trail's description. limit > 0 caps the
// number of new trails, applied before description fetching.
func (s *Scraper) ScrapeAll(ctx context.Context, existing map[string]struct{}, limit int) ([]RawTrail, error) {
	features, err := s.featureSets(ctx)
	if err != nil {
		return nil, err
	}

	all, err := s.listTrails(ctx, s.baseURL+"/trails/")
	if err != nil {
		return nil, fmt.Errorf("list trails: %w", err)
	}
	s.logger.Info("fetched trail list", zap.Int("total", len(all)))

	fresh := make([]RawTrail, 0, len(all))
	for _, t := range all {
		if _, ok := existing[t.Name]; ok {
			continue
		}
		_, t.DogFriendly = features["dog_friendly"][t.Name]
		_, t.PublicTransit = features["public_transit"][t.Name]
		_, t.Camping = features["camping"][t.Name]
		fresh = append(fresh, t)
	}
	if len(fresh) == 0 {
		s.logger.Info("no new trails", zap.Int("existing", len(existing)))
		return nil, nil
	}
	if limit > 0 && len(fresh) > limit {
		fresh = fresh[:limit]
	}

	s.logger.Info("fetching descriptions", zap.Int("new_trails", len(fresh)))
	for i := range fresh {
		if err := s.sleep(ctx); err != nil {
			return nil, err
		}
		desc, err := s.description(ctx, fresh[i].URL)
		if err != nil {
			s.logger.Warn("description fetch failed",
				zap.String("trail", fresh[i].Name),
				zap.String("url", fresh[i].URL),
				zap.Error(err))
			continue
		}
		fresh[i].Description = desc
	}
	return fresh, nil
}

// featureSets scrapes each filtered list page and returns, per feature,
// the set of trail names carrying it. A failed filter page degrades to
// an empty set so a partial outage doesn't abort the whole run.
func (s *Scraper) featureSets(ctx context.Context) (map[string]map[string]struct{}, error) {
	sets := make(map[string]map[string]struct{}, len(featureFilters))
	for _, f := range featureFilters {
		pageURL := s.baseURL + "/trails/?filter=" + f.filter
		trails, err := s.listTrails(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("filter page failed",
				zap.String("feature", f.name), zap.Error(err))
			sets[f.name] = map[string]struct{}{}
			continue
		}
		names := make(map[string]struct{}, len(trails))
		for _, t := range trails {
			names[t.Name] = struct{}{}
		}
		sets[f.name] = names
		s.logger.Info("feature page scraped",
			zap.String("feature", f.name), zap.Int("trails", len(names)))
		if err := s.sleep(ctx); err != nil {
			return nil, err
		}
	}
	return sets, nil
}

// listTrails fetches a trail list page and parses its listings.
func (s *Scraper) listTrails(ctx context.Context, pageURL string) ([]RawTrail, error) {
	doc, err := s.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return parseTrailList(doc, s.baseURL), nil
}

// description fetches one trail page and extracts its prose description.
func (s *Scraper) description(ctx context.Context, pageURL string) (string, error) {
	doc, err := s.fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return parseDescription(doc), nil
}

func (s *Scraper) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}

func (s *Scraper) sleep(ctx context.Context) error {
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// parseTrailList extracts listings from the #trails-list structure.
// Items without a name are dropped.
func parseTrailList(doc *goquery.Document, baseURL string) []RawTrail {
	var trails []RawTrail
	doc.Find("#trails-list ul.traillist li.trail-listing").Each(func(_ int, item *goquery.Selection) {
		t := RawTrail{
			Name: strings.TrimSpace(item.Find("span.trailname").First().Text()),
		}
		if t.Name == "" {
			return
		}
		if href, ok := item.Find("a").First().Attr("href"); ok {
			t.URL = resolveURL(baseURL, href)
		}
		row := item.Find("ul.trail-row")
		if v, ok := row.Find("input.rating").First().Attr("value"); ok {
			t.Rating = strings.TrimSpace(v)
		}
		t.Region = strings.TrimSpace(row.Find("li.i-name").First().Text())
		t.Difficulty = strings.TrimSpace(row.Find("li.i-difficulty").First().Text())
		t.Time = strings.TrimSpace(row.Find("li.i-time").First().Text())
		t.Distance = strings.TrimSpace(row.Find("li.i-distance").First().Text())
		t.Season = strings.TrimSpace(row.Find("li.i-schedule").First().Text())
		trails = append(trails, t)
	})
	return trails
}

// parseDescription assembles a trail description from the page's
// div.trail-info paragraphs, skipping short fragments and social
// boilerplate. Pages without a trail-info block fall back to the first
// paragraphs of the main content area.
func parseDescription(doc *goquery.Document) string {
	var parts []string
	doc.Find("div.trail-info p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if len(text) > minParagraphLen && !isBoilerplate(text) {
			parts = append(parts, text)
		}
	})
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}

	content := doc.Find("div.content").First()
	if content.Length() == 0 {
		content = doc.Find("main").First()
	}
	if content.Length() == 0 {
		content = doc.Find("article").First()
	}
	content.Find("p").EachWithBreak(func(i int, p *goquery.Selection) bool {
		if i >= 5 {
			return false
		}
		text := strings.TrimSpace(p.Text())
		if len(text) > minParagraphLen {
			parts = append(parts, text)
		}
		return true
	})
	return strings.Join(parts, " ")
}

var boilerplateWords = []string{"share", "facebook", "twitter", "email"}

func isBoilerplate(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range boilerplateWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func resolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
