package scrape

import (
	"bytes"
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/narrativelab/narratives/internal/fetch"
)

// page owns the lazily fetched, parsed source document. The first accessor
// triggers exactly one network fetch; the outcome, success or failure, is
// cached for the lifetime of the extractor so repeated operations never
// refetch.
type page struct {
	url     string
	fetcher *fetch.Client
	log     zerolog.Logger

	fetched bool
	doc     *goquery.Document
}

func newPage(url string, fetcher *fetch.Client, log zerolog.Logger) *page {
	return &page{url: url, fetcher: fetcher, log: log}
}

// document returns the cached parsed document, or nil when the fetch already
// failed or fails now.
func (p *page) document(ctx context.Context) *goquery.Document {
	if p.fetched {
		return p.doc
	}
	p.fetched = true

	body, err := p.fetcher.Get(ctx, p.url)
	if err != nil {
		p.log.Warn().Err(err).Str("url", p.url).Msg("failed to retrieve document")
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		p.log.Error().Err(err).Str("url", p.url).Msg("failed to parse document")
		return nil
	}
	p.doc = doc
	return p.doc
}

// metaProperty reads the content attribute of a <meta property=...> tag.
func (p *page) metaProperty(ctx context.Context, property string) (string, bool) {
	doc := p.document(ctx)
	if doc == nil {
		return "", false
	}
	val, ok := doc.Find(`meta[property="` + property + `"]`).Attr("content")
	if !ok || val == "" {
		p.log.Warn().Str("url", p.url).Str("property", property).Msg("meta tag not found")
		return "", false
	}
	return val, true
}

// metaItemprop reads the content attribute of a <meta itemprop=...> tag.
func (p *page) metaItemprop(ctx context.Context, itemprop string) (string, bool) {
	doc := p.document(ctx)
	if doc == nil {
		return "", false
	}
	val, ok := doc.Find(`meta[itemprop="` + itemprop + `"]`).Attr("content")
	if !ok || val == "" {
		p.log.Warn().Str("url", p.url).Str("itemprop", itemprop).Msg("meta tag not found")
		return "", false
	}
	return val, true
}
