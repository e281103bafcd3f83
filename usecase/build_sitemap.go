package usecase

import (
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"time"

	"cms-search/domain"
	"cms-search/port"

	"golang.org/x/sync/errgroup"
)

const (
	sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xhtmlNamespace   = "http://www.w3.org/1999/xhtml"
)

type SitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	Xhtml   string       `xml:"xmlns:xhtml,attr"`
	URLs    []SitemapURL `xml:"url"`
}

type SitemapURL struct {
	Loc        string             `xml:"loc"`
	LastMod    string             `xml:"lastmod,omitempty"`
	Alternates []SitemapAlternate `xml:"xhtml:link"`
}

type SitemapAlternate struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// BuildSitemapUsecase renders the public sitemap of one organization.
type BuildSitemapUsecase struct {
	orgs     port.OrganizationRepository
	contents port.ContentRepository
	baseURL  string
	now      func() time.Time
}

func NewBuildSitemapUsecase(orgs port.OrganizationRepository, contents port.ContentRepository, baseURL string) *BuildSitemapUsecase {
	return &BuildSitemapUsecase{
		orgs:     orgs,
		contents: contents,
		baseURL:  baseURL,
		now:      time.Now,
	}
}

type sitemapVariant struct {
	locale    string
	url       string
	updatedAt time.Time
}

// Execute returns the encoded XML document, header included.
func (u *BuildSitemapUsecase) Execute(ctx context.Context, orgSlug string) ([]byte, error) {
	org, err := u.orgs.GetOrganizationBySlug(ctx, orgSlug)
	if err != nil {
		return nil, err
	}

	var pages, articles []*domain.Content
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pages, err = u.contents.ListContents(gctx, org.ID, port.ContentFilter{Type: domain.ContentTypePage, Status: domain.StatusPublished})
		return err
	})
	g.Go(func() error {
		var err error
		articles, err = u.contents.ListContents(gctx, org.ID, port.ContentFilter{Type: domain.ContentTypeArticle, Status: domain.StatusPublished})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list contents for sitemap: %w", err)
	}

	now := u.now()
	groupOrder := make([]string, 0)
	groups := make(map[string][]sitemapVariant)
	for _, c := range append(pages, articles...) {
		if !domain.IsCurrentlyPublished(c, now) {
			continue
		}
		key := string(c.Type) + ":" + c.ID
		if c.TranslationGroupID != "" {
			key = string(c.Type) + ":group:" + c.TranslationGroupID
		}
		if _, ok := groups[key]; !ok {
			groupOrder = append(groupOrder, key)
		}

		locale := c.Locale
		if locale == "" {
			locale = org.FallbackLocale()
		}
		groups[key] = append(groups[key], sitemapVariant{
			locale:    locale,
			url:       domain.NewSearchDocument(org, c, u.baseURL).URL,
			updatedAt: c.UpdatedAt,
		})
	}

	set := SitemapURLSet{Xmlns: sitemapNamespace, Xhtml: xhtmlNamespace, URLs: make([]SitemapURL, 0, len(groupOrder))}
	for _, key := range groupOrder {
		set.URLs = append(set.URLs, buildSitemapURL(groups[key], org.FallbackLocale()))
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func buildSitemapURL(variants []sitemapVariant, defaultLocale string) SitemapURL {
	sort.SliceStable(variants, func(i, j int) bool {
		return variants[i].locale < variants[j].locale
	})

	primary := variants[0]
	hasDefault := false
	for _, v := range variants {
		if v.locale == defaultLocale {
			primary = v
			hasDefault = true
			break
		}
	}

	entry := SitemapURL{Loc: primary.url}
	latest := time.Time{}
	for _, v := range variants {
		if v.updatedAt.After(latest) {
			latest = v.updatedAt
		}
	}
	if !latest.IsZero() {
		entry.LastMod = latest.UTC().Format("2006-01-02")
	}

	if len(variants) > 1 || hasDefault {
		for _, v := range variants {
			entry.Alternates = append(entry.Alternates, SitemapAlternate{Rel: "alternate", Hreflang: v.locale, Href: v.url})
		}
		if hasDefault {
			entry.Alternates = append(entry.Alternates, SitemapAlternate{Rel: "alternate", Hreflang: "x-default", Href: primary.url})
		}
	}
	return entry
}
