package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fastjson"

	"github.com/coffersTech/logfilter/internal/explain"
	"github.com/coffersTech/logfilter/internal/library"
	"github.com/coffersTech/logfilter/internal/pkg/filterql"
)

// handleHealth reports liveness. It is never authenticated.
// GET /healthz
func (s *FilterServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"filters": s.store.Len(),
	})
}

// handleParse explains one query, or a batch of them.
// GET  /api/parse?q=...&mode=...
// POST /api/parse  {"query": "...", "mode": "..."} or an array of those
func (s *FilterServer) handleParse(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		params := r.URL.Query()
		mode, err := filterql.ParseMode(params.Get("mode"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.writeJSON(w, r, http.StatusOK, s.explain(params.Get("q"), mode))

	case http.MethodPost:
		s.withJSONBody(w, r, func(v *fastjson.Value) {
			// Handle batch (Array) or single (Object)
			if v.Type() == fastjson.TypeArray {
				arr, _ := v.Array()
				out := make([]*explain.Explanation, 0, len(arr))
				for i, item := range arr {
					e, err := s.explainRequest(item)
					if err != nil {
						http.Error(w, fmt.Sprintf("item %d: %v", i, err), http.StatusBadRequest)
						return
					}
					out = append(out, e)
				}
				s.writeJSON(w, r, http.StatusOK, out)
				return
			}

			e, err := s.explainRequest(v)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			s.writeJSON(w, r, http.StatusOK, e)
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *FilterServer) explainRequest(v *fastjson.Value) (*explain.Explanation, error) {
	if v.Type() != fastjson.TypeObject {
		return nil, errors.New("expected an object")
	}
	query, ok, err := stringField(v, "query")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("query is required")
	}
	modeText, _, err := stringField(v, "mode")
	if err != nil {
		return nil, err
	}
	mode, err := filterql.ParseMode(modeText)
	if err != nil {
		return nil, err
	}
	return s.explain(query, mode), nil
}

// explain parses text with the server's parser options and records metrics.
func (s *FilterServer) explain(text string, mode filterql.Mode) *explain.Explanation {
	opts := s.parser
	opts.Mode = mode

	start := time.Now()
	q := opts.Parse(text)
	took := time.Since(start)

	e := explain.Build(q)
	s.metrics.ObserveParse(e.Mode, len(q.Tokens), len(e.Errors), took)
	s.logger.Debug("parsed query", "mode", e.Mode, "tokens", len(q.Tokens), "errors", len(e.Errors), "took", took.String())
	return e
}

// handleTokens returns the raw token stream of a query.
// GET /api/tokens?q=...
func (s *FilterServer) handleTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	text := r.URL.Query().Get("q")
	s.writeJSON(w, r, http.StatusOK, explain.Tokens(text, filterql.Tokenize(text).Tokens()))
}

// handleFilters lists or saves filters.
// GET  /api/filters
// POST /api/filters  {"name": "...", "query": "..."}
func (s *FilterServer) handleFilters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, r, http.StatusOK, s.store.List())

	case http.MethodPost:
		s.withJSONBody(w, r, func(v *fastjson.Value) {
			if v.Type() != fastjson.TypeObject {
				http.Error(w, "expected an object", http.StatusBadRequest)
				return
			}
			name, _, err := stringField(v, "name")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			s.putFilter(w, r, name, v)
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleFilterItem works on a single saved filter.
// GET    /api/filters/{name}
// PUT    /api/filters/{name}  {"query": "..."}
// DELETE /api/filters/{name}
func (s *FilterServer) handleFilterItem(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/filters/")
	if name == "" || strings.Contains(name, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		f, ok := s.store.Get(name)
		if !ok {
			http.Error(w, "Filter not found", http.StatusNotFound)
			return
		}
		s.writeJSON(w, r, http.StatusOK, f)

	case http.MethodPut:
		s.withJSONBody(w, r, func(v *fastjson.Value) {
			if v.Type() != fastjson.TypeObject {
				http.Error(w, "expected an object", http.StatusBadRequest)
				return
			}
			s.putFilter(w, r, name, v)
		})

	case http.MethodDelete:
		if err := s.store.Delete(name); err != nil {
			if errors.Is(err, library.ErrNotFound) {
				http.Error(w, "Filter not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.logger.Info("deleted filter", "name", name, "request_id", RequestID(r.Context()))
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// putFilter saves the "query" of v under name. A filter with diagnostics is
// still saved; they come back as warnings.
func (s *FilterServer) putFilter(w http.ResponseWriter, r *http.Request, name string, v *fastjson.Value) {
	query, ok, err := stringField(v, "query")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !ok {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	_, existed := s.store.Get(strings.TrimSpace(name))
	f, err := s.store.Put(name, query)
	if err != nil {
		if errors.Is(err, library.ErrInvalidName) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.logger.Info("saved filter",
		"name", f.Name,
		"id", f.ID,
		"warnings", len(f.Warnings),
		"request_id", RequestID(r.Context()),
	)

	status := http.StatusOK
	if !existed {
		status = http.StatusCreated
		w.Header().Set("Location", "/api/filters/"+f.Name)
	}
	s.writeJSON(w, r, status, f)
}

// withJSONBody reads and parses the request body, then calls fn with the
// parsed value. The value is only valid during fn.
func (s *FilterServer) withJSONBody(w http.ResponseWriter, r *http.Request, fn func(v *fastjson.Value)) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusRequestEntityTooLarge)
		return
	}
	defer r.Body.Close()

	p := s.jsonParser.Get()
	defer s.jsonParser.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	fn(v)
}

// stringField returns v[key] as a string. ok is false when the key is absent
// or null.
func stringField(v *fastjson.Value, key string) (value string, ok bool, err error) {
	f := v.Get(key)
	if f == nil || f.Type() == fastjson.TypeNull {
		return "", false, nil
	}
	b, err := f.StringBytes()
	if err != nil {
		return "", true, fmt.Errorf("%q must be a string", key)
	}
	return string(b), true, nil
}

func (s *FilterServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "err", err, "request_id", RequestID(r.Context()))
	}
}
