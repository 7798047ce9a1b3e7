package components

import (
	"net/url"
	"strings"
)

// PageMeta describes one routable page: its title, description and the
// path it is served at. Path doubles as the nav entry to highlight.
type PageMeta struct {
	Title       string
	Description string
	Path        string
}

type NavLink struct {
	Label string
	Path  string
}

var navLinks = []NavLink{
	{Label: "Inventory", Path: "/"},
	{Label: "Activity", Path: "/activity"},
}

// canonicalURL resolves the page path against APP_URL. A missing or
// relative APP_URL yields the bare path.
func (m PageMeta) canonicalURL(appURL string) string {
	path := cleanPath(m.Path)
	base, err := url.Parse(strings.TrimSpace(appURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return path
	}
	return base.ResolveReference(&url.URL{Path: path}).String()
}

func (m PageMeta) fullTitle(appName string) string {
	title := strings.TrimSpace(m.Title)
	name := strings.TrimSpace(appName)
	switch {
	case title == "":
		return name
	case name == "", strings.EqualFold(title, name):
		return title
	}
	return title + " | " + name
}

func (m PageMeta) current(link NavLink) bool {
	return cleanPath(m.Path) == link.Path
}

func cleanPath(path string) string {
	return "/" + strings.Trim(strings.TrimSpace(path), "/")
}
