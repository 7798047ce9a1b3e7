package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/benpsk/stockview/internal/inventory"
	"github.com/benpsk/stockview/internal/web/components"
	"github.com/benpsk/stockview/internal/web/pages"
	"github.com/sirupsen/logrus"
)

const activityLimit = 50

type handler struct {
	view     *inventory.View
	upstream inventory.Client
	db       Pinger
	appName  string
	appURL   string
	log      logrus.FieldLogger
}

func newHandler(deps Deps, appName, appURL string, log logrus.FieldLogger) handler {
	return handler{
		view:     deps.View,
		upstream: deps.Upstream,
		db:       deps.DB,
		appName:  appName,
		appURL:   appURL,
		log:      log,
	}
}

// inventoryPage mounts the view: one fetch of the collection per page load.
func (h handler) inventoryPage(w http.ResponseWriter, r *http.Request) {
	h.view.Mount(r.Context())
	h.renderInventory(w, r)
}

// addItem runs the add flow and renders the resulting state. Failures are
// only logged; the page renders as it stands.
func (h handler) addItem(w http.ResponseWriter, r *http.Request) {
	if !readForm(w, r) {
		return
	}
	h.view.SubmitForm(r.Context(), r.PostForm)
	h.renderInventory(w, r)
}

func (h handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if !readForm(w, r) {
		return
	}
	id, err := inventory.ParseItemID(r.PostForm.Get("id"))
	if err != nil {
		h.log.WithField("error", err).Warn("delete request without a valid id")
		h.renderInventory(w, r)
		return
	}
	h.view.Delete(r.Context(), id)
	h.renderInventory(w, r)
}

func (h handler) refreshItems(w http.ResponseWriter, r *http.Request) {
	_ = h.view.Refresh(r.Context())
	h.renderInventory(w, r)
}

func (h handler) activityPage(w http.ResponseWriter, r *http.Request) {
	entries, err := h.view.Activity(r.Context(), activityLimit)
	if err != nil {
		h.log.WithField("error", err).Error("list activity")
	}
	m := pages.ActivityPageModel{
		AppName: h.appName,
		AppURL:  h.appURL,
		Enabled: h.view.JournalEnabled(),
		Entries: entries,
	}
	if isHtmx(r) {
		h.renderPage(w, r, components.Content(components.FullTitle(h.appName, pages.ActivityMeta), pages.ActivityContent(m)))
		return
	}
	h.renderPage(w, r, pages.ActivityPage(m))
}

// apiItems returns the cached collection without fetching.
func (h handler) apiItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view.Items())
}

func (h handler) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	payload := map[string]any{"status": "ok", "database": "disabled", "inventory": "up"}
	status := http.StatusOK

	if h.db != nil {
		payload["database"] = "up"
		if err := h.db.Ping(ctx); err != nil {
			payload["status"] = "degraded"
			payload["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if h.upstream != nil {
		if _, err := h.upstream.FetchAll(ctx); err != nil {
			payload["status"] = "degraded"
			payload["inventory"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, payload)
}

func (h handler) renderInventory(w http.ResponseWriter, r *http.Request) {
	m := pages.InventoryPageModel{
		AppName:   h.appName,
		AppURL:    h.appURL,
		CSRFToken: csrfTokenFromContext(r),
		Items:     h.view.Items(),
		LoadedAt:  h.view.Collection().LoadedAt(),
	}
	if isHtmx(r) {
		h.renderPage(w, r, components.Content(components.FullTitle(h.appName, pages.InventoryMeta), pages.InventoryContent(m)))
		return
	}
	h.renderPage(w, r, pages.InventoryPage(m))
}

func isHtmx(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func (h handler) renderPage(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		h.log.WithField("error", err).Error("render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
