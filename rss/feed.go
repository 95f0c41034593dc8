// Package rss pulls a syndication feed and flattens its entries into
// title/link/published rows.
package rss

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
	feedatom "github.com/mmcdole/gofeed/atom"
	feedrss "github.com/mmcdole/gofeed/rss"
	log "github.com/sirupsen/logrus"
	"github.com/stockdesk/krfeed/model"
	"github.com/stockdesk/krfeed/utils"
	"resty.dev/v3"
)

const DefaultFeedURL = "https://finance.naver.com/news/news_list.naver?mode=RSS&section_id=101&section_type=industry"

// TimestampLayout is local ISO-8601 with microseconds and no zone.
const TimestampLayout = "2006-01-02T15:04:05.000000"

type Fetcher struct {
	client *resty.Client
	parser *gofeed.Parser
	now    func() time.Time
}

func NewFetcher(client *resty.Client) *Fetcher {
	return &Fetcher{
		client: client,
		parser: NewParser(),
		now:    time.Now,
	}
}

// NewParser returns a gofeed parser whose Published only carries an explicit
// publication date: RSS <pubDate> or Atom <published>. The stock
// translators fall back to <dc:date> and <updated>.
func NewParser() *gofeed.Parser {
	p := gofeed.NewParser()
	p.RSSTranslator = &rssTranslator{}
	p.AtomTranslator = &atomTranslator{}
	return p
}

type rssTranslator struct {
	gofeed.DefaultRSSTranslator
}

func (t *rssTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	out, err := t.DefaultRSSTranslator.Translate(feed)
	if err != nil {
		return nil, err
	}
	raw, ok := feed.(*feedrss.Feed)
	if !ok || len(raw.Items) != len(out.Items) {
		return nil, fmt.Errorf("unexpected rss translation result")
	}
	for i, item := range raw.Items {
		setPublished(out.Items[i], item.PubDate)
	}
	return out, nil
}

type atomTranslator struct {
	gofeed.DefaultAtomTranslator
}

func (t *atomTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	out, err := t.DefaultAtomTranslator.Translate(feed)
	if err != nil {
		return nil, err
	}
	raw, ok := feed.(*feedatom.Feed)
	if !ok || len(raw.Entries) != len(out.Items) {
		return nil, fmt.Errorf("unexpected atom translation result")
	}
	for i, entry := range raw.Entries {
		setPublished(out.Items[i], entry.Published)
	}
	return out, nil
}

func setPublished(item *gofeed.Item, published string) {
	if item == nil {
		return
	}
	item.Published = published
	if published == "" {
		item.PublishedParsed = nil
	}
}

// WithClock replaces the clock used for entries without a published value.
func (f *Fetcher) WithClock(now func() time.Time) *Fetcher {
	if now != nil {
		f.now = now
	}
	return f
}

// Fetch downloads feedURL and returns one entry per item in feed order.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]model.FeedEntry, error) {
	body, err := utils.Get(ctx, f.client, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", feedURL, err)
	}

	feed, err := f.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}
	log.WithFields(log.Fields{"title": feed.Title, "items": len(feed.Items)}).Debug("feed parsed")

	return ToEntries(feed, f.now), nil
}

// ToEntries keeps a published value verbatim and falls back to the current
// local time for items without one.
func ToEntries(feed *gofeed.Feed, now func() time.Time) []model.FeedEntry {
	entries := make([]model.FeedEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		published := item.Published
		if published == "" {
			published = now().Local().Format(TimestampLayout)
		}
		entries = append(entries, model.FeedEntry{
			Title:     item.Title,
			Link:      item.Link,
			Published: published,
		})
	}
	return entries
}

// WriteNewsCSV replaces path with the entries as plain UTF-8 with \r\n
// record endings.
func WriteNewsCSV(path string, entries []model.FeedEntry) error {
	if err := utils.WriteCSV(path, entries, utils.WithCRLF()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
