package proxyserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/doeshing/kgq/internal/domain"
)

const maxRequestBody = 1 << 20

type queryRequest struct {
	Sparql     string `json:"sparql"`
	Format     string `json:"format"`
	Endpoint   string `json:"endpoint"`
	Repository string `json:"repository"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

type connectionRequest struct {
	Endpoint   string `json:"endpoint"`
	Repository string `json:"repository"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

func (s *Server) target(endpoint, repository, username, password string) Target {
	t := Target{Endpoint: endpoint, Repository: repository, Username: username, Password: password}
	if strings.TrimSpace(t.Endpoint) == "" {
		t.Endpoint = s.cfg.GraphDBURL
	}
	if strings.TrimSpace(t.Repository) == "" {
		t.Repository = s.cfg.Repository
	}
	return t
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Sparql) == "" {
		writeDetail(w, http.StatusBadRequest, "sparql is required")
		return
	}

	target := s.target(req.Endpoint, req.Repository, req.Username, req.Password)
	form := domain.InferForm(req.Sparql)
	update := domain.IsUpdateRequest(req.Sparql)

	var (
		resp StoreResponse
		err  error
	)
	if update {
		resp, err = s.store.Update(r.Context(), target, req.Sparql)
	} else {
		resp, err = s.store.Query(r.Context(), target, req.Sparql, form)
	}
	if err != nil {
		s.metrics.ObserveStore(string(form), "error")
		s.warn("store request failed", map[string]interface{}{
			"request_id": middleware.GetReqID(r.Context()),
			"target":     target.repositoryURL(),
			"error":      err.Error(),
		})
		writeDetail(w, http.StatusBadGateway, "Connection error: "+err.Error())
		return
	}
	if !resp.OK() {
		s.metrics.ObserveStore(string(form), "rejected")
		writeDetail(w, resp.Status, "GraphDB query failed: "+strings.TrimSpace(string(resp.Body)))
		return
	}
	s.metrics.ObserveStore(string(form), "ok")

	if update {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "results": map[string]any{"updated": true}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "results": decodeStoreBody(resp.Body)})
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	var req connectionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	target := s.target(req.Endpoint, req.Repository, req.Username, req.Password)

	resp, err := s.store.Query(r.Context(), target, domain.ProbeQuery, domain.FormSelect)
	switch {
	case err != nil:
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Connection error: " + err.Error()})
	case !resp.OK():
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": fmt.Sprintf("GraphDB query failed: %s", strings.TrimSpace(string(resp.Body))),
		})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"message":     "Connection successful",
			"test_result": decodeStoreBody(resp.Body),
		})
	}
}

func (s *Server) handleRepositories(w http.ResponseWriter, r *http.Request) {
	target := s.target(r.URL.Query().Get("endpoint"), "", "", "")
	resp, err := s.store.Repositories(r.Context(), target)
	if err != nil {
		writeDetail(w, http.StatusBadGateway, "Connection error: "+err.Error())
		return
	}
	if !resp.OK() {
		writeDetail(w, resp.Status, "Failed to fetch repositories")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "repositories": decodeStoreBody(resp.Body)})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// decodeStoreBody returns parsed JSON, or the body text when the store
// answered in another serialization.
func decodeStoreBody(body []byte) any {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	return v
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
