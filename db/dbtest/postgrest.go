// Package dbtest provides an in-memory server speaking the subset of the
// PostgREST dialect used by db.RestStore.
package dbtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Server is an in-memory tabular REST store.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	tables   map[string][]map[string]any
	nextID   map[string]int64
	clock    time.Time
	failWith int
	requests []*http.Request
}

// NewServer starts a store with empty groups and expenses collections.
func NewServer() *Server {
	s := &Server{
		tables: map[string][]map[string]any{"groups": {}, "expenses": {}},
		nextID: map[string]int64{},
		clock:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// FailWith makes every following request fail with status. Zero restores
// normal behaviour.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = status
}

// Rows returns a copy of the rows of a collection.
func (s *Server) Rows(collection string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]map[string]any, len(s.tables[collection]))
	copy(rows, s.tables[collection])
	return rows
}

// Requests returns the requests received so far.
func (s *Server) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, r.Clone(r.Context()))

	if r.Header.Get("apikey") == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "No API key found in request"})
		return
	}
	if s.failWith != 0 {
		writeJSON(w, s.failWith, map[string]string{"message": "injected failure"})
		return
	}

	collection := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
	if collection == "" {
		writeJSON(w, http.StatusOK, map[string]any{"paths": []string{"/groups", "/expenses"}})
		return
	}
	if _, ok := s.tables[collection]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"code": "42P01", "message": "relation does not exist"})
		return
	}

	switch r.Method {
	case http.MethodPost:
		s.insert(w, r, collection)
	case http.MethodGet:
		s.selectRows(w, r, collection)
	case http.MethodDelete:
		s.delete(w, r, collection)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) insert(w http.ResponseWriter, r *http.Request, collection string) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var row map[string]any
	if err := dec.Decode(&row); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	if collection == "expenses" && !s.exists("groups", fmt.Sprint(row["group_id"])) {
		writeJSON(w, http.StatusConflict, map[string]string{"code": "23503", "message": "violates foreign key constraint"})
		return
	}

	s.nextID[collection]++
	s.clock = s.clock.Add(time.Second)
	stamp := s.clock.Format("2006-01-02T15:04:05.000000Z07:00")

	row["id"] = s.nextID[collection]
	row["created_at"] = stamp
	row["updated_at"] = stamp
	s.tables[collection] = append(s.tables[collection], row)

	if r.Header.Get("Prefer") == "return=representation" {
		writeJSON(w, http.StatusCreated, []map[string]any{row})
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) selectRows(w http.ResponseWriter, r *http.Request, collection string) {
	rows := []map[string]any{}
	for _, row := range s.tables[collection] {
		if matches(row, r) {
			rows = append(rows, row)
		}
	}

	if order := r.URL.Query().Get("order"); order != "" {
		field, dir, _ := strings.Cut(order, ".")
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := fmt.Sprint(rows[i][field]), fmt.Sprint(rows[j][field])
			if dir == "desc" {
				return a > b
			}
			return a < b
		})
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit < len(rows) {
		rows = rows[:limit]
	}

	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request, collection string) {
	kept := []map[string]any{}
	for _, row := range s.tables[collection] {
		if !matches(row, r) {
			kept = append(kept, row)
		}
	}
	s.tables[collection] = kept
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exists(collection, id string) bool {
	for _, row := range s.tables[collection] {
		if fmt.Sprint(row["id"]) == id {
			return true
		}
	}
	return false
}

// matches applies field=eq.value filters; other parameters are ignored.
func matches(row map[string]any, r *http.Request) bool {
	for field, values := range r.URL.Query() {
		switch field {
		case "select", "order", "limit":
			continue
		}
		want, ok := strings.CutPrefix(values[0], "eq.")
		if !ok {
			return false
		}
		if fmt.Sprint(row[field]) != want {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
