package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"librental-backend/internal/service"
)

// LoanHandler serves loan lifecycle and query endpoints.
type LoanHandler struct {
	loans   service.LoanService
	queries service.LoanQueryService
}

func NewLoanHandler(loans service.LoanService, queries service.LoanQueryService) *LoanHandler {
	return &LoanHandler{loans: loans, queries: queries}
}

type createLoanRequest struct {
	ClientID int32                     `json:"client_id"`
	Items    []service.LoanItemRequest `json:"items"`
	Notes    string                    `json:"notes"`
}

func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.ClientID <= 0 {
		writeBadRequest(w, "client_id is required")
		return
	}

	loan, err := h.loans.Create(r.Context(), req.ClientID, req.Items, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

func (h *LoanHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.loans.Return(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *LoanHandler) ReturnItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}
	if err := h.loans.ReturnItem(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *LoanHandler) Outstanding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	amount, err := h.loans.OutstandingAmount(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int32{"outstanding_cents": amount})
}

func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	loan, err := h.queries.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	q := loanListQuery(r)
	loans, total, err := h.queries.List(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse{Items: loans, Total: total, Page: q.Page, PageSize: q.PageSize})
}

func (h *LoanHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	q := loanListQuery(r)
	loans, total, err := h.queries.ListActive(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse{Items: loans, Total: total, Page: q.Page, PageSize: q.PageSize})
}

func (h *LoanHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	q := loanListQuery(r)
	loans, total, err := h.queries.ListOverdue(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse{Items: loans, Total: total, Page: q.Page, PageSize: q.PageSize})
}

func (h *LoanHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "clientId")
	if !ok {
		return
	}
	q := loanListQuery(r)
	loans, total, err := h.queries.ListByClient(r.Context(), clientID, q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse{Items: loans, Total: total, Page: q.Page, PageSize: q.PageSize})
}

func loanListQuery(r *http.Request) service.LoanListQuery {
	q := service.LoanListQuery{
		Search:   r.URL.Query().Get("search"),
		SortBy:   r.URL.Query().Get("sort_by"),
		SortDesc: r.URL.Query().Get("sort_dir") == "desc",
	}
	q.Page, q.PageSize = pageParams(r)
	return q
}

// pathID parses a positive int32 path variable, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int32, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		writeBadRequest(w, "invalid "+name)
		return 0, false
	}
	return int32(id), true
}

func pageParams(r *http.Request) (page, pageSize int32) {
	page, pageSize = 1, 20
	if v, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("page_size"), 10, 32); err == nil && v > 0 && v <= 100 {
		pageSize = int32(v)
	}
	return page, pageSize
}
