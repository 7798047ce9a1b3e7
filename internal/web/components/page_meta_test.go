package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageMetaCanonicalURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		appURL, path, want string
	}{
		{"https://stock.example.com", "/activity", "https://stock.example.com/activity"},
		{"https://stock.example.com/", "", "https://stock.example.com/"},
		{"https://stock.example.com/base/", "activity/", "https://stock.example.com/activity"},
		{"", "/activity", "/activity"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PageMeta{Path: tc.path}.canonicalURL(tc.appURL), "%s + %s", tc.appURL, tc.path)
	}
}

func TestPageMetaFullTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Inventory | Stock View", PageMeta{Title: "Inventory"}.fullTitle("Stock View"))
	assert.Equal(t, "Stock View", PageMeta{}.fullTitle("Stock View"))
	assert.Equal(t, "Inventory", PageMeta{Title: "Inventory"}.fullTitle(""))
	assert.Equal(t, "stock view", PageMeta{Title: "stock view"}.fullTitle("Stock View"))
}

func TestPageMetaCurrent(t *testing.T) {
	t.Parallel()

	assert.True(t, PageMeta{Path: ""}.current(navLinks[0]))
	assert.True(t, PageMeta{Path: "activity/"}.current(navLinks[1]))
	assert.False(t, PageMeta{Path: "/activity"}.current(navLinks[0]))
}
