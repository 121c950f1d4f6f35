package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/profitpeek/shopsync/internal/syncer"
)

// Connector verifies and stores a tenant credential.
type Connector interface {
	Connect(ctx context.Context, input syncer.ConnectInput) syncer.ConnectResult
}

// SyncRunner executes a full sync for one tenant.
type SyncRunner interface {
	Run(ctx context.Context, clientID, startDate, endDate string) syncer.Result
}

// ShopifyHandler serves the connect and manual-sync endpoints.
type ShopifyHandler struct {
	connector Connector
	runner    SyncRunner
}

func NewShopifyHandler(connector Connector, runner SyncRunner) *ShopifyHandler {
	return &ShopifyHandler{connector: connector, runner: runner}
}

// Connect probes the store with the submitted credential and stores it on
// success. A failed probe stores nothing and reports ok=false.
func (h *ShopifyHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var input syncer.ConnectInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		RespondError(w, r, http.StatusBadRequest, "invalid-request", "invalid JSON body")
		return
	}
	input.ClientID = strings.TrimSpace(input.ClientID)
	if input.ClientID == "" || strings.TrimSpace(input.StoreDomain) == "" || input.AccessToken == "" {
		RespondError(w, r, http.StatusBadRequest, "invalid-request", "client_id, store_domain and access_token are required")
		return
	}

	res := h.connector.Connect(r.Context(), input)
	status := http.StatusOK
	if !res.OK {
		status = http.StatusBadGateway
	}
	RespondJSON(w, status, res)
}

type syncRequest struct {
	ClientID  string `json:"client_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Sync triggers a full sync for one tenant and returns the run summary. The
// summary carries ok=false on failure; the HTTP status stays 200 because the
// run itself was accepted and executed.
func (h *ShopifyHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "invalid-request", "invalid JSON body")
		return
	}
	req.ClientID = strings.TrimSpace(req.ClientID)
	if req.ClientID == "" {
		RespondError(w, r, http.StatusBadRequest, "invalid-request", "client_id is required")
		return
	}

	res := h.runner.Run(r.Context(), req.ClientID, req.StartDate, req.EndDate)
	RespondJSON(w, http.StatusOK, res)
}
