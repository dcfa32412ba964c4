package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vheiberg/aclstore"
)

type checkRequest struct {
	Public   string `json:"public"`
	Document string `json:"document"`
}

type checkResponse struct {
	Allowed bool `json:"allowed"`
}

type checkHandler struct {
	log     *slog.Logger
	storage aclstore.Storage
}

// NewCheckHandler serves permission checks as JSON over POST. Denials are a
// 200 with allowed=false; only resolution and transport failures are 500s.
func NewCheckHandler(log *slog.Logger, storage aclstore.Storage) http.Handler {
	return &checkHandler{log, storage}
}

func (h *checkHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := checkRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}
	public, err := aclstore.PublicFromHex(req.Public)
	if err != nil {
		http.Error(w, "malformed public key", http.StatusBadRequest)
		return
	}
	document, err := aclstore.DocumentAddressFromHex(req.Document)
	if err != nil {
		http.Error(w, "malformed document address", http.StatusBadRequest)
		return
	}

	allowed, err := h.storage.Check(r.Context(), public, document)
	if err != nil {
		h.log.Error("failed to check permissions", slog.String("public", public.String()), slog.String("document", document.String()), slog.Any("error", err))
		http.Error(w, "failed to check permissions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(checkResponse{Allowed: allowed})
}
