package pages

import (
	"encoding/json"
	"time"

	"github.com/benpsk/stockview/internal/inventory"
	"github.com/benpsk/stockview/internal/web/components"
)

type InventoryPageModel struct {
	AppName   string
	AppURL    string
	CSRFToken string
	Items     []inventory.Item
	LoadedAt  time.Time
}

var InventoryMeta = components.PageMeta{
	Title:       "Inventory",
	Description: "Current stock held by the inventory service.",
	Path:        "/",
}

var inventoryColumns = []string{"ID", "Name", "Price", "Stock", ""}

type ActivityPageModel struct {
	AppName string
	AppURL  string
	Enabled bool
	Entries []inventory.JournalEntry
}

var ActivityMeta = components.PageMeta{
	Title:       "Activity",
	Description: "Recent add and delete requests sent to the inventory service.",
	Path:        "/activity",
}

// payloadText is the compact JSON shown in the activity table.
func payloadText(payload any) string {
	if payload == nil {
		return ""
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(raw)
}
