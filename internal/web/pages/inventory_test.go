package pages

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/benpsk/stockview/internal/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestInventoryContentRendersOneRowPerItem(t *testing.T) {
	t.Parallel()

	html := renderString(t, InventoryContent(InventoryPageModel{
		CSRFToken: "tok",
		Items:     []inventory.Item{{ID: 1, Name: "Apple", Price: 100, Stock: 5}},
	}))

	assert.Equal(t, 1, strings.Count(html, `<tr data-item-id=`))
	assert.Contains(t, html, `<td>1</td><td>Apple</td><td>100</td><td>5</td>`)
	assert.Contains(t, html, `<input type="hidden" name="id" value="1">`)
	assert.Contains(t, html, `<input type="hidden" name="csrf_token" value="tok">`)
}

func TestInventoryContentKeepsOrderAndHeadersWhenEmpty(t *testing.T) {
	t.Parallel()

	html := renderString(t, InventoryContent(InventoryPageModel{
		Items: []inventory.Item{
			{ID: 9, Name: "Melon", Price: 900, Stock: 1},
			{ID: 2, Name: "Banana", Price: 50, Stock: 12},
		},
	}))
	assert.Less(t, strings.Index(html, "Melon"), strings.Index(html, "Banana"))
	assert.NotContains(t, html, `name="csrf_token"`)

	empty := renderString(t, InventoryContent(InventoryPageModel{}))
	assert.Contains(t, empty, `<th>ID</th><th>Name</th><th>Price</th><th>Stock</th>`)
	assert.Contains(t, empty, `<tbody></tbody>`)
}

func TestInventoryContentEscapesNames(t *testing.T) {
	t.Parallel()

	html := renderString(t, InventoryContent(InventoryPageModel{
		Items: []inventory.Item{{ID: 4, Name: `<script>alert("x")</script>`}},
	}))
	assert.NotContains(t, html, `<script>alert`)
	assert.Contains(t, html, `&lt;script&gt;`)
}

func TestInventoryFormFieldsAreRequired(t *testing.T) {
	t.Parallel()

	html := renderString(t, InventoryContent(InventoryPageModel{}))
	assert.Contains(t, html, `<input type="text" name="name" required>`)
	assert.Contains(t, html, `<input type="number" name="price" min="0" step="1" required>`)
	assert.Contains(t, html, `<input type="number" name="stock" min="0" step="1" required>`)
	assert.Contains(t, html, `action="/items/add"`)
}

func TestInventoryPageWrapsLayout(t *testing.T) {
	t.Parallel()

	html := renderString(t, InventoryPage(InventoryPageModel{
		AppName:  "Stock View",
		AppURL:   "https://stock.example.com",
		LoadedAt: time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
	}))
	assert.Contains(t, html, `<title>Inventory | Stock View</title>`)
	assert.Contains(t, html, `<link rel="canonical" href="https://stock.example.com/">`)
	assert.Contains(t, html, `<main id="content">`)
	assert.Contains(t, html, `datetime="2026-10-19T09:30:00Z"`)
}

func TestActivityContentStates(t *testing.T) {
	t.Parallel()

	off := renderString(t, ActivityContent(ActivityPageModel{}))
	assert.Contains(t, off, "journal is off")

	empty := renderString(t, ActivityContent(ActivityPageModel{Enabled: true}))
	assert.Contains(t, empty, "No mutations recorded yet.")

	itemID := int64(3)
	html := renderString(t, ActivityContent(ActivityPageModel{
		Enabled: true,
		Entries: []inventory.JournalEntry{{
			Kind:      inventory.MutationDelete,
			ItemID:    &itemID,
			Payload:   inventory.DeleteByID(3),
			Outcome:   inventory.PhaseFailed,
			Status:    500,
			Error:     "delete failed",
			CreatedAt: time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
		}},
	}))
	assert.Contains(t, html, `<tr data-outcome="failed">`)
	assert.Contains(t, html, `<td>delete</td><td>3</td><td>failed</td><td>500</td>`)
	assert.Contains(t, html, `<code>{&#34;id&#34;:3}</code>`)
}
