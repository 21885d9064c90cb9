// Package menu renders named, nested navigation menus.
//
// Menus are defined once (usually from a YAML file) as lists of labelled items,
// each pointing at a named route. A menu path such as "root venues new" shows
// the root menu with "venues" active, then the venues menu with "new" active.
package menu

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Reverser turns a route name into a URL.
type Reverser interface {
	URL(routeName string) (string, error)
}

// ReverserFunc adapts a plain function to a [Reverser].
type ReverserFunc func(routeName string) (string, error)

func (f ReverserFunc) URL(routeName string) (string, error) {
	return f(routeName)
}

type (
	// Definition is a single menu entry as it's written down.
	Definition struct {
		Label string `yaml:"label"`
		Route string `yaml:"route"`
	}

	// Item is an entry ready for rendering.
	Item struct {
		Label  string
		URL    string
		Route  string
		Active bool
	}

	// Bar is one rendered menu.
	Bar struct {
		Name  string
		Depth int
		Items []Item
	}
)

// Menus is the full set of menus, keyed by name.
type Menus struct {
	defs map[string][]Definition
	rev  Reverser
}

func New(defs map[string][]Definition, rev Reverser) Menus {
	if defs == nil {
		defs = map[string][]Definition{}
	}

	return Menus{defs: defs, rev: rev}
}

// Decode reads menu definitions from YAML of the form
//
//	root:
//	  - label: Venues
//	    route: venue_menu
func Decode(r io.Reader) (map[string][]Definition, error) {
	defs := map[string][]Definition{}
	if err := yaml.NewDecoder(r).Decode(&defs); err != nil && err != io.EOF {
		return nil, fmt.Errorf("error decoding menus: %w", err)
	}

	return defs, nil
}

// Load reads menu definitions from a YAML file.
func Load(path string) (map[string][]Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening menu file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Render builds a single menu, flagging the item whose route is active.
func (m Menus) Render(name string, depth int, active string) (Bar, error) {
	defs, ok := m.defs[name]
	if !ok {
		return Bar{}, fmt.Errorf("unknown menu %q", name)
	}

	bar := Bar{Name: name, Depth: depth, Items: make([]Item, 0, len(defs))}
	for _, def := range defs {
		u, err := m.rev.URL(def.Route)
		if err != nil {
			return Bar{}, fmt.Errorf("error reversing %q in menu %q: %w", def.Route, name, err)
		}
		bar.Items = append(bar.Items, Item{
			Label:  def.Label,
			URL:    u,
			Route:  def.Route,
			Active: def.Route == active,
		})
	}

	return bar, nil
}

// RenderPath renders every menu along path but the last element. Each element
// is the active item of the menu before it.
func (m Menus) RenderPath(path ...string) ([]Bar, error) {
	if len(path) < 2 {
		return []Bar{}, nil
	}

	bars := make([]Bar, 0, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		bar, err := m.Render(path[i], i, path[i+1])
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}

	return bars, nil
}
