package adapters

import (
	"context"
	"strings"
	"sync"

	"nevilwatch/models"
	"nevilwatch/store"
	"nevilwatch/view"
)

// DefaultFeaturedBrand is the brand filter layered over category queries.
const DefaultFeaturedBrand = "Nevil sport"

// CatalogState is the published view of the catalog.
type CatalogState struct {
	Phase   Phase          `json:"phase"`
	Watches []models.Watch `json:"watches,omitempty"`
	Err     string         `json:"error,omitempty"`
}

// Catalog subscribes to the product collection and republishes the complete
// set on every change. Category loads apply a server-side equality filter
// plus a client-side brand filter; free-text search is a presentation-layer
// filter over the currently loaded set and is never persisted.
type Catalog struct {
	store         store.Store
	featuredBrand string
	state         *view.State[CatalogState]

	mu  sync.Mutex
	sub *store.Subscription
	gen int
}

// NewCatalog builds a catalog adapter. featuredBrand may be empty to disable
// the client-side brand filter on category loads.
func NewCatalog(s store.Store, featuredBrand string) *Catalog {
	return &Catalog{
		store:         s,
		featuredBrand: featuredBrand,
		state:         view.NewState(CatalogState{Phase: PhaseLoading}),
	}
}

// State returns the latest published catalog state.
func (c *Catalog) State() CatalogState { return c.state.Current() }

// Watch registers a watcher on published state changes.
func (c *Catalog) Watch() (<-chan CatalogState, func()) { return c.state.Watch() }

// LoadAll subscribes to the full product collection.
func (c *Catalog) LoadAll(ctx context.Context) error {
	return c.resubscribe(ctx, nil, "")
}

// LoadByCategory subscribes to the server-side filtered subset for the
// category, then applies the brand filter client-side. An empty result after
// filtering is an error state, not an empty success.
func (c *Catalog) LoadByCategory(ctx context.Context, categoryID string) error {
	return c.resubscribe(ctx, []store.Query{store.WhereEq("category", categoryID)}, c.featuredBrand)
}

// LoadByID reads a single product once.
func (c *Catalog) LoadByID(ctx context.Context, id string) (models.Watch, error) {
	data, err := c.store.Get(ctx, "watches", id)
	if err != nil {
		return models.Watch{}, err
	}
	return models.WatchFromDoc(id, data), nil
}

// Refresh re-enters Loading and resubscribes to the full collection.
func (c *Catalog) Refresh(ctx context.Context) error {
	return c.LoadAll(ctx)
}

// Search filters the currently loaded set by a case-insensitive name/brand
// substring match. It does not touch the backend or the published state.
func (c *Catalog) Search(query string) []models.Watch {
	cur := c.state.Current()
	if cur.Phase != PhaseSuccess {
		return nil
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return cur.Watches
	}
	var out []models.Watch
	for _, w := range cur.Watches {
		if strings.Contains(strings.ToLower(w.Name), q) || strings.Contains(strings.ToLower(w.Brand), q) {
			out = append(out, w)
		}
	}
	return out
}

// Stop closes the live subscription.
func (c *Catalog) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.sub != nil {
		c.sub.Close()
		c.sub = nil
	}
}

func (c *Catalog) resubscribe(ctx context.Context, queries []store.Query, brand string) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	if c.sub != nil {
		c.sub.Close()
		c.sub = nil
	}
	c.state.Publish(CatalogState{Phase: PhaseLoading})

	sub, err := c.store.Subscribe(ctx, "watches", queries...)
	if err != nil {
		c.mu.Unlock()
		c.state.Publish(CatalogState{Phase: PhaseError, Err: err.Error()})
		return err
	}
	c.sub = sub
	c.mu.Unlock()

	go c.run(sub, gen, brand)
	return nil
}

func (c *Catalog) run(sub *store.Subscription, gen int, brand string) {
	for {
		select {
		case snap := <-sub.Snapshots:
			if !c.live(gen) {
				return
			}
			c.publishSnapshot(snap, brand)
		case err := <-sub.Errors:
			if !c.live(gen) {
				return
			}
			c.state.Publish(CatalogState{Phase: PhaseError, Err: err.Error()})
			return
		}
	}
}

func (c *Catalog) live(gen int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}

func (c *Catalog) publishSnapshot(snap store.Snapshot, brand string) {
	watches := make([]models.Watch, 0, len(snap))
	for _, doc := range snap {
		w := models.WatchFromDoc(doc.ID, doc.Data)
		if brand != "" && w.Brand != brand {
			continue
		}
		watches = append(watches, w)
	}
	if brand != "" && len(watches) == 0 {
		c.state.Publish(CatalogState{Phase: PhaseError, Err: "No watches found in this category"})
		return
	}
	c.state.Publish(CatalogState{Phase: PhaseSuccess, Watches: watches})
}
