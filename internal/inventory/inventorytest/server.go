// Package inventorytest provides an in-memory inventory service for tests.
package inventorytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/benpsk/stockview/internal/inventory"
	"github.com/go-chi/chi/v5"
)

const Resource = "fruits"

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	items    []inventory.Item
	nextID   int64
	fail     map[string]int
	rawList  string
	hold     chan struct{}
	arrived  chan struct{}
	calls    map[string]int
	payloads map[string][]map[string]any
}

// NewServer starts a service seeded with items. Ids continue after the
// highest seeded id.
func NewServer(items ...inventory.Item) *Server {
	s := &Server{
		fail:     map[string]int{},
		calls:    map[string]int{},
		payloads: map[string][]map[string]any{},
	}
	for _, item := range items {
		s.items = append(s.items, item)
		if item.ID > s.nextID {
			s.nextID = item.ID
		}
	}

	r := chi.NewRouter()
	r.Get("/"+Resource, s.list)
	r.Get("/"+Resource+"/{id}", s.get)
	r.Post("/"+Resource+"/add", s.add)
	r.Post("/"+Resource+"/delete", s.delete)
	s.Server = httptest.NewServer(r)
	return s
}

// Endpoint is the collection URL a client should be pointed at.
func (s *Server) Endpoint() string {
	return s.URL + "/" + Resource
}

// FailWith makes every call to op ("list", "get", "add", "delete") answer
// with status until cleared with status 0.
func (s *Server) FailWith(op string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.fail, op)
		return
	}
	s.fail[op] = status
}

// ServeRawList replaces the list body with raw, e.g. to send invalid JSON.
func (s *Server) ServeRawList(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawList = raw
}

// HoldList parks every list request until release is called. arrived
// receives once per list request that reaches the handler.
func (s *Server) HoldList() (arrived <-chan struct{}, release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hold := make(chan struct{})
	s.hold = hold
	s.arrived = make(chan struct{}, 64)
	var once sync.Once
	return s.arrived, func() {
		once.Do(func() { close(hold) })
	}
}

func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Payloads returns the decoded bodies received by op, oldest first.
func (s *Server) Payloads(op string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, len(s.payloads[op]))
	copy(out, s.payloads[op])
	return out
}

func (s *Server) Items() []inventory.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]inventory.Item, len(s.items))
	copy(out, s.items)
	return out
}

// begin counts the call and reports an injected failure status.
func (s *Server) begin(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	return s.fail[op]
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	status := s.begin("list")
	s.mu.Lock()
	hold, arrived := s.hold, s.arrived
	s.mu.Unlock()
	if hold != nil {
		select {
		case arrived <- struct{}{}:
		default:
		}
		<-hold
	}
	if status != 0 {
		http.Error(w, "injected failure", status)
		return
	}
	s.mu.Lock()
	raw := s.rawList
	items := make([]inventory.Item, len(s.items))
	copy(items, s.items)
	s.mu.Unlock()

	if raw != "" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(raw))
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	if status := s.begin("get"); status != 0 {
		http.Error(w, "injected failure", status)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID == id {
			writeJSON(w, http.StatusOK, item)
			return
		}
	}
	http.Error(w, "not found", http.StatusNotFound)
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.decode(w, r, "add")
	if !ok {
		return
	}
	var in inventory.NewItemInput
	raw, _ := json.Marshal(payload)
	if err := json.Unmarshal(raw, &in); err != nil {
		http.Error(w, "invalid item", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.nextID++
	item := inventory.Item{ID: s.nextID, Name: in.Name, Price: in.Price, Stock: in.Stock}
	s.items = append(s.items, item)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.decode(w, r, "delete")
	if !ok {
		return
	}
	id, _ := payload["id"].(float64)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.ID == int64(id) {
			s.items = append(s.items[:i], s.items[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.Error(w, "not found", http.StatusNotFound)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, op string) (map[string]any, bool) {
	status := s.begin(op)
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return nil, false
	}
	s.mu.Lock()
	s.payloads[op] = append(s.payloads[op], payload)
	s.mu.Unlock()

	if status != 0 {
		http.Error(w, "injected failure", status)
		return nil, false
	}
	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "expected application/json", http.StatusUnsupportedMediaType)
		return nil, false
	}
	return payload, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
