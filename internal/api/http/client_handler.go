package http

import (
	"encoding/json"
	"net/http"

	"librental-backend/internal/domain"
	"librental-backend/internal/service"
)

type ClientHandler struct {
	clients service.ClientService
}

func NewClientHandler(clients service.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var client domain.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := h.clients.Create(r.Context(), &client); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	client, err := h.clients.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var client domain.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	client.ID = id
	if err := h.clients.Update(r.Context(), &client); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	clients, total, err := h.clients.List(r.Context(), r.URL.Query().Get("search"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse{Items: clients, Total: total, Page: page, PageSize: pageSize})
}

func (h *ClientHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.clients.Deactivate(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
