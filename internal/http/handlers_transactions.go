package http

import (
	"log/slog"
	"net/http"
)

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseWindow(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if to.Before(from.Time) {
		writeError(w, http.StatusBadRequest, "from must not be after to")
		return
	}

	txs, err := s.store.ListTransactionsByRange(r.Context(), from, to)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list transactions", "error", err)
		writeDomainError(w, err)
		return
	}

	out := make([]transactionDTO, len(txs))
	for i, tx := range txs {
		out[i] = transactionToDTO(tx)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := decodeTransaction(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.txWriter.CreateTransaction(r.Context(), tx)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create transaction", "error", err, "description", tx.Description)
		writeDomainError(w, err)
		return
	}
	tx.ID = id
	s.invalidateReports()

	slog.InfoContext(r.Context(), "Transaction created", "id", id, "amount_cents", tx.Amount.Cents)
	writeJSON(w, http.StatusCreated, transactionToDTO(tx))
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r.URL.Path, "/transactions/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		tx, err := s.store.GetTransaction(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, transactionToDTO(tx))

	case http.MethodDelete:
		if err := s.txWriter.DeleteTransaction(r.Context(), id); err != nil {
			slog.ErrorContext(r.Context(), "Failed to delete transaction", "error", err, "id", id)
			writeDomainError(w, err)
			return
		}
		s.invalidateReports()
		slog.InfoContext(r.Context(), "Transaction deleted", "id", id)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
