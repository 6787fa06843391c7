// Package pages holds the static content pages of the wedding site.
package pages

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"RSVPBot/model"
)

// Page ids every catalog must define.
const (
	Home       = "home"
	Location   = "location"
	FAQ        = "faq"
	Schedule   = "schedule"
	Gallery    = "gallery"
	ThingsToDo = "things-to-do"
	Registry   = "registry"
	RSVP       = "rsvp"
)

// RequiredIDs lists the site pages in menu order.
var RequiredIDs = []string{Home, Location, FAQ, Schedule, Gallery, ThingsToDo, Registry, RSVP}

//go:embed pages.yaml
var defaultCatalog []byte

type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

type Page struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
	Links []Link `yaml:"links"`
}

type Catalog struct {
	pages []Page
	byID  map[string]int
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading pages file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog and checks that every site page is present
// exactly once.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Pages []Page `yaml:"pages"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing pages: %w", err)
	}

	c := &Catalog{byID: make(map[string]int, len(doc.Pages))}
	for _, p := range doc.Pages {
		if p.ID == "" {
			return nil, fmt.Errorf("error parsing pages: page %q has no id", p.Title)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("error parsing pages: duplicate page %q", p.ID)
		}
		c.byID[p.ID] = len(c.pages)
		c.pages = append(c.pages, p)
	}
	for _, id := range RequiredIDs {
		if _, ok := c.byID[id]; !ok {
			return nil, fmt.Errorf("error parsing pages: missing page %q", id)
		}
	}
	return c, nil
}

// Get returns the page with id.
func (c *Catalog) Get(id string) (Page, error) {
	i, ok := c.byID[id]
	if !ok {
		return Page{}, fmt.Errorf("%w: %q", model.ErrPageNotFound, id)
	}
	return c.pages[i], nil
}

// All returns the pages in catalog order.
func (c *Catalog) All() []Page {
	out := make([]Page, len(c.pages))
	copy(out, c.pages)
	return out
}
