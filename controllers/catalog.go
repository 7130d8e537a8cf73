package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"nevilwatch/adapters"
	"nevilwatch/models"
	"nevilwatch/store"
)

// CatalogController handles product catalog requests
type CatalogController struct {
	Catalog *adapters.Catalog
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalog *adapters.Catalog) *CatalogController {
	return &CatalogController{Catalog: catalog}
}

// GetWatches returns the current catalog state, optionally filtered by a
// free-text search query
func (cc *CatalogController) GetWatches(w http.ResponseWriter, r *http.Request) {
	state := cc.Catalog.State()

	if q := r.URL.Query().Get("q"); q != "" && state.Phase == adapters.PhaseSuccess {
		state.Watches = cc.Catalog.Search(q)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state)
}

// GetWatchByID retrieves a single watch
func (cc *CatalogController) GetWatchByID(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	watch, err := cc.Catalog.LoadByID(r.Context(), params["id"])
	if err != nil {
		if err == store.ErrNotFound {
			http.Error(w, "Watch not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching watch", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(watch)
}

// GetWatchesByCategory switches the live subscription to a category view and
// responds with the first snapshot of the new view
func (cc *CatalogController) GetWatchesByCategory(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	updates, cancel := cc.Catalog.Watch()
	defer cancel()

	if err := cc.Catalog.LoadByCategory(r.Context(), params["id"]); err != nil {
		http.Error(w, "Error loading category", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cc.awaitSettled(updates))
}

// RefreshWatches re-enters Loading, resubscribes to the full catalog, and
// responds with the first snapshot of the new view
func (cc *CatalogController) RefreshWatches(w http.ResponseWriter, r *http.Request) {
	updates, cancel := cc.Catalog.Watch()
	defer cancel()

	if err := cc.Catalog.Refresh(r.Context()); err != nil {
		http.Error(w, "Error refreshing catalog", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cc.awaitSettled(updates))
}

// awaitSettled waits for the resubscribed view to publish past Loading. The
// snapshot arrives asynchronously, so responding with State() right away
// would race between the Loading marker and the previous view's data. On
// timeout the latest published state is returned as-is.
func (cc *CatalogController) awaitSettled(updates <-chan adapters.CatalogState) adapters.CatalogState {
	timeout := time.After(2 * time.Second)
	for {
		select {
		case state := <-updates:
			if state.Phase != adapters.PhaseLoading {
				return state
			}
		case <-timeout:
			return cc.Catalog.State()
		}
	}
}

// GetCategories returns the static category set
func (cc *CatalogController) GetCategories(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.Categories())
}
