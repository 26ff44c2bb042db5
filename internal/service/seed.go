package service

import (
	"errors"
	"fmt"

	"github.com/blockpress/internal/db"
)

// SeedResult reports what SeedDefaults created.
type SeedResult struct {
	HomePage bool
	Header   bool
	Footer   bool
}

// SeedDefaults creates a starter home page, header and footer when they are missing.
func SeedDefaults(pages *PageService, blocks *BlockService, nav *NavigationService, settings *SettingsService) (SeedResult, error) {
	var result SeedResult

	site, err := settings.Get()
	if err != nil {
		return result, err
	}

	if _, err := pages.GetBySlug(HomeSlug); errors.Is(err, ErrPageNotFound) {
		hero, err := blocks.Create(BlockInput{
			Name: "Home hero",
			Type: BlockTypeHero,
			Content: db.LocalizedContent{site.Locale: {
				"title":    "Welcome to " + site.SiteName,
				"subtitle": site.DefaultDescription,
				"ctaLabel": "About us",
				"ctaUrl":   "/p/about",
			}},
		})
		if err != nil {
			return result, fmt.Errorf("seed hero block: %w", err)
		}
		intro, err := blocks.Create(BlockInput{
			Name: "Home introduction",
			Type: BlockTypeRichText,
			Content: db.LocalizedContent{site.Locale: {
				"body": "## Getting started\n\nEdit this page from the **admin** area.",
			}},
		})
		if err != nil {
			return result, fmt.Errorf("seed intro block: %w", err)
		}

		page, err := pages.Create(PageInput{Slug: HomeSlug, Title: "Home", Published: true})
		if err != nil {
			return result, fmt.Errorf("seed home page: %w", err)
		}
		if _, err := pages.SetBlocks(page.ID, []uint{hero.ID, intro.ID}); err != nil {
			return result, fmt.Errorf("seed home blocks: %w", err)
		}
		result.HomePage = true
	} else if err != nil {
		return result, err
	}

	if header, err := nav.GlobalHeader(); err != nil {
		return result, err
	} else if header == nil {
		if _, err := nav.CreateHeader(HeaderInput{
			Name:  "Main navigation",
			Links: []LinkInput{{Label: "Home", URL: "/"}, {Label: "About", URL: "/p/about"}},
		}); err != nil {
			return result, fmt.Errorf("seed header: %w", err)
		}
		result.Header = true
	}

	if footer, err := nav.GlobalFooter(); err != nil {
		return result, err
	} else if footer == nil {
		if _, err := nav.CreateFooter(FooterInput{
			Name:      "Site footer",
			Copyright: "© " + site.SiteName,
			Links:     []LinkInput{{Label: "Privacy", URL: "/p/privacy"}},
		}); err != nil {
			return result, fmt.Errorf("seed footer: %w", err)
		}
		result.Footer = true
	}

	return result, nil
}
