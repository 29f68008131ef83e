// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package feeds

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/curator/core"
)

const (
	maxPageBytes = 2 << 20
	maxBodyRunes = 3000

	defaultScrapePool = 10
)

// Page is what one article scrape yields.
type Page struct {
	Body  string
	Image string
}

// Scraper pulls article bodies and social-card images off the items' own
// pages, one HTTP round trip per item.
type Scraper struct {
	client   *http.Client
	logger   *slog.Logger
	poolSize int
}

// NewScraper creates an article scraper.
func NewScraper(opts ...Option) *Scraper {
	o := applyOptions(options{poolSize: defaultScrapePool}, opts...)
	return &Scraper{
		client:   o.client,
		logger:   o.logger.With("component", "feeds"),
		poolSize: o.poolSize,
	}
}

// Article fetches one page and extracts its paragraph text and lead image.
func (s *Scraper) Article(ctx context.Context, pageURL string) (Page, error) {
	if strings.TrimSpace(pageURL) == "" {
		return Page{}, ErrURLRequired
	}
	body, err := get(ctx, s.client, pageURL)
	if err != nil {
		return Page{}, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(body, maxPageBytes))
	if err != nil {
		return Page{}, fmt.Errorf("parse page: %w", err)
	}
	return Page{Body: pageBody(doc), Image: pageImage(doc)}, nil
}

// Enrich fills Body on every item and Image on items that arrived without
// one, scraping pages in parallel. A failed scrape leaves its item as it
// was; the item set itself is never reduced.
func (s *Scraper) Enrich(ctx context.Context, items []core.Item) error {
	if len(items) == 0 {
		return nil
	}
	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return fmt.Errorf("create scrape pool: %w", err)
	}
	defer pool.Release()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		bodies int
		images int
	)
	for i := range items {
		if items[i].URL == "" {
			continue
		}
		wg.Add(1)
		task := func() {
			defer wg.Done()
			page, err := s.Article(ctx, items[i].URL)
			if err != nil {
				return
			}
			items[i].Body = page.Body
			filledImage := false
			if items[i].Image == "" && page.Image != "" {
				items[i].Image = page.Image
				filledImage = true
			}
			mu.Lock()
			if page.Body != "" {
				bodies++
			}
			if filledImage {
				images++
			}
			mu.Unlock()
		}
		if err := pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	s.logger.Info("article enrichment complete",
		"items", len(items), "bodies", bodies, "images", images)
	return ctx.Err()
}

// pageImage reads the social-card metadata most publishers ship.
func pageImage(doc *goquery.Document) string {
	for _, sel := range []string{
		`meta[property="og:image"]`,
		`meta[name="twitter:image"]`,
	} {
		content, ok := doc.Find(sel).First().Attr("content")
		if !ok {
			continue
		}
		if u := usableImage(content); u != "" {
			return u
		}
	}
	return ""
}

// pageBody joins paragraph text, preferring paragraphs inside <article>
// when the page marks its main content up that way.
func pageBody(doc *goquery.Document) string {
	paras := doc.Find("article p")
	if paras.Length() == 0 {
		paras = doc.Find("p")
	}
	var parts []string
	paras.Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	text := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	return truncateRunes(text, maxBodyRunes)
}
