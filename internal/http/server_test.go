package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"budget/internal/core"
	"budget/internal/export/memory"
	"budget/internal/services"
	"budget/internal/storage"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	rules  map[int64]core.RecurrenceRule
	txs    map[int64]core.Transaction
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rules:  make(map[int64]core.RecurrenceRule),
		txs:    make(map[int64]core.Transaction),
		nextID: 1,
	}
}

func (f *fakeStore) CreateRule(_ context.Context, rule core.RecurrenceRule) (int64, error) {
	if err := rule.Validate(); err != nil {
		return 0, err
	}
	id := f.nextID
	f.nextID++
	rule.ID = id
	f.rules[id] = rule
	return id, nil
}

func (f *fakeStore) GetRule(_ context.Context, id int64) (core.RecurrenceRule, error) {
	rule, ok := f.rules[id]
	if !ok {
		return core.RecurrenceRule{}, fmt.Errorf("rule %d: %w", id, storage.ErrNotFound)
	}
	return rule, nil
}

func (f *fakeStore) ListRules(_ context.Context) ([]core.RecurrenceRule, error) {
	var out []core.RecurrenceRule
	for id := int64(1); id < f.nextID; id++ {
		if rule, ok := f.rules[id]; ok {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateRule(_ context.Context, rule core.RecurrenceRule) error {
	if _, ok := f.rules[rule.ID]; !ok {
		return fmt.Errorf("rule %d: %w", rule.ID, storage.ErrNotFound)
	}
	f.rules[rule.ID] = rule
	return nil
}

func (f *fakeStore) DeleteRule(_ context.Context, id int64) error {
	if _, ok := f.rules[id]; !ok {
		return fmt.Errorf("rule %d: %w", id, storage.ErrNotFound)
	}
	delete(f.rules, id)
	return nil
}

func (f *fakeStore) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	tx, ok := f.txs[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, storage.ErrNotFound)
	}
	return tx, nil
}

func (f *fakeStore) ListTransactionsByRange(_ context.Context, from, to core.Date) ([]core.Transaction, error) {
	var out []core.Transaction
	for id := int64(1); id < f.nextID; id++ {
		tx, ok := f.txs[id]
		if !ok {
			continue
		}
		if from.SameOrBefore(tx.Date) && tx.Date.SameOrBefore(to) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeStore) ListCategories(_ context.Context) ([]core.Category, error) {
	return []core.Category{{ID: 1, Name: "Housing"}, {ID: 2, Name: "Salary"}}, nil
}

// CreateTransaction/DeleteTransaction also make fakeStore a TransactionWriter.
func (f *fakeStore) CreateTransaction(_ context.Context, tx core.Transaction) (int64, error) {
	id := f.nextID
	f.nextID++
	tx.ID = id
	f.txs[id] = tx
	return id, nil
}

func (f *fakeStore) DeleteTransaction(_ context.Context, id int64) error {
	if _, ok := f.txs[id]; !ok {
		return fmt.Errorf("transaction %d: %w", id, storage.ErrNotFound)
	}
	delete(f.txs, id)
	return nil
}

func newTestServer(store *fakeStore, exporter *memory.Store) *Server {
	reports := services.NewReportService(store, store)
	if exporter == nil {
		return NewServer(":0", store, store, reports, nil, 16, time.Minute)
	}
	return NewServer(":0", store, store, reports, exporter, 16, time.Minute)
}

func doRequest(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(newFakeStore(), nil)
	defer s.Shutdown(context.Background())

	rec := doRequest(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz = %d, want 200", rec.Code)
	}
}

func TestCreateRule(t *testing.T) {
	s := newTestServer(newFakeStore(), nil)
	defer s.Shutdown(context.Background())

	body := `{"label":"Mortgage","kind":"monthly","flow":"expense","anchor_date":"2024-01-01","day_of_month":1,"amount":"3750.00","category_id":1}`
	rec := doRequest(t, s, http.MethodPost, "/rules", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /rules = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}

	var got ruleDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.ID == 0 || got.Label != "Mortgage" || got.Amount != "3750.00" {
		t.Errorf("unexpected rule response: %+v", got)
	}
}

func TestCreateRule_Invalid(t *testing.T) {
	s := newTestServer(newFakeStore(), nil)
	defer s.Shutdown(context.Background())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing label", `{"kind":"monthly","flow":"expense","anchor_date":"2024-01-01","day_of_month":1,"amount":"10.00"}`, http.StatusUnprocessableEntity},
		{"day out of range", `{"label":"X","kind":"monthly","flow":"expense","anchor_date":"2024-01-01","day_of_month":42,"amount":"10.00"}`, http.StatusUnprocessableEntity},
		{"unknown kind", `{"label":"X","kind":"hourly","flow":"expense","anchor_date":"2024-01-01","amount":"10.00"}`, http.StatusUnprocessableEntity},
		{"bad amount", `{"label":"X","kind":"once","flow":"expense","anchor_date":"2024-01-01","amount":"ten"}`, http.StatusUnprocessableEntity},
		{"not JSON", `label=X`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/rules", tt.body)
			if rec.Code != tt.want {
				t.Errorf("POST /rules = %d, want %d; body: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestRuleByID_NotFound(t *testing.T) {
	s := newTestServer(newFakeStore(), nil)
	defer s.Shutdown(context.Background())

	rec := doRequest(t, s, http.MethodGet, "/rules/99", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /rules/99 = %d, want 404", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/rules/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("GET /rules/abc = %d, want 400", rec.Code)
	}
}

func TestHandleReport(t *testing.T) {
	store := newFakeStore()
	store.rules[1] = core.RecurrenceRule{
		ID: 1, Label: "Salary", Kind: core.Monthly, Flow: core.Income,
		Anchor: core.NewDate(2024, 1, 1), DayOfMonth: 1,
		Amount: core.Money{Cents: 473900},
	}
	store.nextID = 2

	s := newTestServer(store, nil)
	defer s.Shutdown(context.Background())

	rec := doRequest(t, s, http.MethodGet, "/report?from=2025-02-01&to=2025-02-28&as_of=2025-02-10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /report = %d; body: %s", rec.Code, rec.Body.String())
	}

	var got reportDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if len(got.Occurred) != 1 || len(got.Pending) != 0 {
		t.Fatalf("report partition = %d occurred, %d pending; want 1, 0", len(got.Occurred), len(got.Pending))
	}
	if got.Occurred[0].Date != "2025-02-01" {
		t.Errorf("occurrence date = %s, want 2025-02-01", got.Occurred[0].Date)
	}
	if got.Totals.OccurredIncome != "4739.00" {
		t.Errorf("occurred income = %s, want 4739.00", got.Totals.OccurredIncome)
	}
}

func TestHandleReport_BadWindow(t *testing.T) {
	s := newTestServer(newFakeStore(), nil)
	defer s.Shutdown(context.Background())

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"missing from", "/report?to=2025-02-28", http.StatusBadRequest},
		{"malformed date", "/report?from=02/01/2025&to=2025-02-28", http.StatusBadRequest},
		{"inverted window", "/report?from=2025-03-01&to=2025-02-01", http.StatusBadRequest},
		{"bad as_of", "/report?from=2025-02-01&to=2025-02-28&as_of=later", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodGet, tt.target, "")
			if rec.Code != tt.want {
				t.Errorf("GET %s = %d, want %d", tt.target, rec.Code, tt.want)
			}
		})
	}
}

func TestCreateTransactionInvalidatesReportCache(t *testing.T) {
	store := newFakeStore()
	store.rules[1] = core.RecurrenceRule{
		ID: 1, Label: "Mortgage", Kind: core.Monthly, Flow: core.Expense,
		Anchor: core.NewDate(2024, 1, 1), DayOfMonth: 1, CategoryID: 1,
		Amount: core.Money{Cents: 375000},
	}
	store.nextID = 2

	s := newTestServer(store, nil)
	defer s.Shutdown(context.Background())

	target := "/report?from=2025-02-01&to=2025-02-28&as_of=2025-02-10"
	rec := doRequest(t, s, http.MethodGet, target, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("first GET /report = %d", rec.Code)
	}
	var before reportDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &before)
	if before.Occurred[0].MatchedTransactionID != 0 {
		t.Fatal("occurrence unexpectedly matched before posting")
	}

	body := `{"date":"2025-02-01","amount":"3750.00","flow":"expense","category_id":1,"description":"Mortgage feb"}`
	rec = doRequest(t, s, http.MethodPost, "/transactions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /transactions = %d; body: %s", rec.Code, rec.Body.String())
	}

	// The cached report must not be served stale: the new transaction now
	// reconciles against the mortgage occurrence.
	rec = doRequest(t, s, http.MethodGet, target, "")
	var after reportDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &after)
	if after.Occurred[0].MatchedTransactionID == 0 {
		t.Error("report still unmatched after posting transaction; cache not invalidated")
	}
}

func TestHandleReportExport(t *testing.T) {
	store := newFakeStore()
	store.rules[1] = core.RecurrenceRule{
		ID: 1, Label: "Salary", Kind: core.Monthly, Flow: core.Income,
		Anchor: core.NewDate(2024, 1, 1), DayOfMonth: 1,
		Amount: core.Money{Cents: 473900},
	}
	store.nextID = 2

	exporter := memory.New()
	s := newTestServer(store, exporter)
	defer s.Shutdown(context.Background())

	rec := doRequest(t, s, http.MethodPost, "/report/export?from=2025-02-01&to=2025-02-28&as_of=2025-02-10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /report/export = %d; body: %s", rec.Code, rec.Body.String())
	}

	rows := exporter.Rows()
	if len(rows) != 1 {
		t.Fatalf("exported %d rows, want 1", len(rows))
	}
	if rows[0].Description != "Salary" || rows[0].AmountCents != 473900 {
		t.Errorf("unexpected exported row: %+v", rows[0])
	}
}

func TestHandleReportExport_NoBackend(t *testing.T) {
	s := newTestServer(newFakeStore(), nil)
	defer s.Shutdown(context.Background())

	rec := doRequest(t, s, http.MethodPost, "/report/export?from=2025-02-01&to=2025-02-28", "")
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("POST /report/export = %d, want 501", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(newFakeStore(), nil)
	defer s.Shutdown(context.Background())

	tests := []struct {
		method string
		target string
	}{
		{http.MethodDelete, "/rules"},
		{http.MethodPut, "/transactions"},
		{http.MethodPost, "/categories"},
		{http.MethodPost, "/report"},
		{http.MethodGet, "/report/export"},
	}

	for _, tt := range tests {
		rec := doRequest(t, s, tt.method, tt.target, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s = %d, want 405", tt.method, tt.target, rec.Code)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d unexpectedly limited", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("request 61 should be limited")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("other client should not be limited")
	}
}
