// Package api exposes the interface map over REST: the VPC list, the
// interface table, and an on-demand sync trigger.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"EagleEye/internal/model"
)

// Syncer triggers one full discovery pass.
type Syncer interface {
	FullSync(ctx context.Context) (model.SyncStats, error)
}

// Handler serves the REST endpoints.
type Handler struct {
	sink   model.Sink
	vpcs   model.VpcRegistry
	syncer Syncer
	log    *logrus.Entry
}

// NewHandler builds a handler. syncer may be nil, in which case POST /api/sync
// reports 503.
func NewHandler(sink model.Sink, vpcs model.VpcRegistry, syncer Syncer) *Handler {
	return &Handler{
		sink:   sink,
		vpcs:   vpcs,
		syncer: syncer,
		log:    logrus.WithField("component", "api"),
	}
}

// Router wires the routes.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/vpc", h.listVpcs).Methods(http.MethodGet)
	r.HandleFunc("/api/interfaces", h.listInterfaces).Methods(http.MethodGet)
	r.HandleFunc("/api/interfaces/{id}", h.getInterface).Methods(http.MethodGet)
	r.HandleFunc("/api/sync", h.triggerSync).Methods(http.MethodPost)
	return r
}

func (h *Handler) listVpcs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.vpcs.List(r.Context())
	if err != nil {
		h.serveError(w, err)
		return
	}
	if entries == nil {
		entries = []model.VpcEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) listInterfaces(w http.ResponseWriter, r *http.Request) {
	var (
		items []model.InterfaceItem
		err   error
	)
	if vpcID := r.URL.Query().Get("vpc_id"); vpcID != "" {
		items, err = h.sink.Query(r.Context(), "vpc_id", vpcID)
	} else {
		items, err = h.sink.Scan(r.Context())
	}
	if err != nil {
		h.serveError(w, err)
		return
	}
	if items == nil {
		items = []model.InterfaceItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) getInterface(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	item, ok, err := h.sink.Get(r.Context(), id)
	if err != nil {
		h.serveError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "interface not found"})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) triggerSync(w http.ResponseWriter, r *http.Request) {
	if h.syncer == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "sync not configured"})
		return
	}
	stats, err := h.syncer.FullSync(r.Context())
	if err != nil {
		h.serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) serveError(w http.ResponseWriter, err error) {
	h.log.WithError(err).Error("request failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
