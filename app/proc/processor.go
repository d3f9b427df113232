// Package proc resolves the configured list, fetches its statuses
// and makes rss feed from them
package proc

import (
	"context"
	"io"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/syncs"

	"github.com/umputun/list-feed/app/feed"
	"github.com/umputun/list-feed/app/models"
)

// Processor makes feed of the configured list
type Processor struct {
	Conf   Conf
	Source Source
}

// Feed resolves the list, fetches its timeline and converts every status to rss item.
// Returns empty feed if no list matched. Any failure fails the whole feed, no partial results.
func (p *Processor) Feed(ctx context.Context) (*feed.Rss2, error) {
	rss := feed.NewRss2(p.Conf.RssTitle, p.Conf.RssURL, p.Conf.RssDescription)

	listID, found, err := ListResolver{Source: p.Source}.Resolve(ctx, p.Conf.Username, p.Conf.ListName)
	if err != nil {
		return nil, err
	}
	if !found {
		log.Printf("[WARN] list %q not found for %s, empty feed", p.Conf.ListName, p.Conf.Username)
		return rss, nil
	}

	statuses, err := TimelineFetcher{Source: p.Source}.Fetch(ctx, listID)
	if err != nil {
		return nil, err
	}
	log.Printf("[DEBUG] got %d statuses from list %q (%d)", len(statuses), p.Conf.ListName, listID)

	items, err := p.items(statuses)
	if err != nil {
		return nil, err
	}
	rss.ItemList = items
	return rss, nil
}

// Write makes the feed and writes it only after it is fully built
func (p *Processor) Write(ctx context.Context, w io.Writer) error {
	rss, err := p.Feed(ctx)
	if err != nil {
		return err
	}
	_, err = rss.WriteTo(w)
	return err
}

// items converts statuses concurrently, limited by Conf.Concurrent. Items keep statuses order
// and the first failed status (in that order) fails all of them.
func (p *Processor) items(statuses []models.Status) ([]feed.Item, error) {
	builder := feed.Builder{ShortLinks: p.Conf.ShortLinks, Sanitize: p.Conf.Sanitize}
	items := make([]feed.Item, len(statuses))
	errs := make([]error, len(statuses))

	concurrent := p.Conf.Concurrent
	if concurrent <= 0 {
		concurrent = 1
	}
	swg := syncs.NewSizedGroup(concurrent, syncs.Preemptive)
	for i := range statuses {
		i := i
		swg.Go(func(context.Context) {
			items[i], errs[i] = builder.Item(statuses[i])
		})
	}
	swg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}
