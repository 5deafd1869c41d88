package http

import (
	"log/slog"
	"net/http"
)

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRules(w, r)
	case http.MethodPost:
		s.createRule(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.store.ListRules(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list rules", "error", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rulesToDTO(rules))
}

func (s *Server) createRule(w http.ResponseWriter, r *http.Request) {
	rule, err := decodeRule(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	id, err := s.store.CreateRule(r.Context(), rule)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create rule", "error", err, "label", rule.Label)
		writeDomainError(w, err)
		return
	}
	rule.ID = id
	s.invalidateReports()

	slog.InfoContext(r.Context(), "Rule created", "id", id, "label", rule.Label, "kind", rule.Kind)
	writeJSON(w, http.StatusCreated, ruleToDTO(rule))
}

func (s *Server) handleRuleByID(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r.URL.Path, "/rules/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		rule, err := s.store.GetRule(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ruleToDTO(rule))

	case http.MethodPut:
		rule, err := decodeRule(r)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		rule.ID = id
		if err := s.store.UpdateRule(r.Context(), rule); err != nil {
			slog.ErrorContext(r.Context(), "Failed to update rule", "error", err, "id", id)
			writeDomainError(w, err)
			return
		}
		s.invalidateReports()
		slog.InfoContext(r.Context(), "Rule updated", "id", id, "label", rule.Label)
		writeJSON(w, http.StatusOK, ruleToDTO(rule))

	case http.MethodDelete:
		if err := s.store.DeleteRule(r.Context(), id); err != nil {
			slog.ErrorContext(r.Context(), "Failed to delete rule", "error", err, "id", id)
			writeDomainError(w, err)
			return
		}
		s.invalidateReports()
		slog.InfoContext(r.Context(), "Rule deleted", "id", id)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	categories, err := s.store.ListCategories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list categories", "error", err)
		writeDomainError(w, err)
		return
	}

	out := make([]categoryDTO, len(categories))
	for i, c := range categories {
		out[i] = categoryDTO{ID: c.ID, Name: c.Name}
	}
	writeJSON(w, http.StatusOK, out)
}
