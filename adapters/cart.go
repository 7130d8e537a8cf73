package adapters

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"nevilwatch/identity"
	"nevilwatch/models"
	"nevilwatch/store"
	"nevilwatch/view"
)

// CartState is the published view of the cart. Total is derived from the
// latest line set on every snapshot and never stored on its own.
type CartState struct {
	Phase Phase             `json:"phase"`
	Items []models.CartItem `json:"items,omitempty"`
	Total float64           `json:"total"`
	Err   string            `json:"error,omitempty"`
}

// Cart manages the signed-in user's cart lines. Every mutation is
// fire-and-forget: the authoritative state is whatever the live subscription
// reports next, not the local optimistic result. A mutation failure
// publishes an error but leaves the last known line set readable.
type Cart struct {
	store    store.Store
	provider identity.Provider
	state    *view.State[CartState]

	mu  sync.Mutex
	sub *store.Subscription
	gen int
}

// NewCart builds a cart adapter.
func NewCart(s store.Store, provider identity.Provider) *Cart {
	return &Cart{
		store:    s,
		provider: provider,
		state:    view.NewState(CartState{Phase: PhaseLoading}),
	}
}

// State returns the latest published cart state.
func (c *Cart) State() CartState { return c.state.Current() }

// Watch registers a watcher on published state changes.
func (c *Cart) Watch() (<-chan CartState, func()) { return c.state.Watch() }

func (c *Cart) path() (string, bool) {
	user := c.provider.CurrentUser()
	if user == nil {
		return "", false
	}
	return "carts/" + user.UID + "/items", true
}

// Start subscribes to the current user's line collection. Without a signed-in
// user nothing happens, matching the app's behavior on the auth screens.
func (c *Cart) Start(ctx context.Context) error {
	path, ok := c.path()
	if !ok {
		return nil
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	if c.sub != nil {
		c.sub.Close()
		c.sub = nil
	}
	sub, err := c.store.Subscribe(ctx, path)
	if err != nil {
		c.mu.Unlock()
		c.state.Publish(CartState{Phase: PhaseError, Err: err.Error()})
		return err
	}
	c.sub = sub
	c.mu.Unlock()

	go c.run(sub, gen)
	return nil
}

// Stop closes the live subscription.
func (c *Cart) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.sub != nil {
		c.sub.Close()
		c.sub = nil
	}
}

func (c *Cart) run(sub *store.Subscription, gen int) {
	for {
		select {
		case snap := <-sub.Snapshots:
			if !c.live(gen) {
				return
			}
			items := make([]models.CartItem, 0, len(snap))
			for _, doc := range snap {
				items = append(items, models.CartItemFromDoc(doc.ID, doc.Data))
			}
			c.state.Publish(CartState{Phase: PhaseSuccess, Items: items, Total: models.CartTotal(items)})
		case err := <-sub.Errors:
			if !c.live(gen) {
				return
			}
			c.publishError(err.Error())
			return
		}
	}
}

func (c *Cart) live(gen int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}

// Add creates a new line with quantity 1, even when a line for the same
// product already exists. The line snapshots the product's current price and
// name; the product ID doubles as the image reference.
func (c *Cart) Add(ctx context.Context, watch models.Watch) {
	user := c.provider.CurrentUser()
	if user == nil {
		return
	}

	item := models.CartItem{
		ID:         uuid.New().String(),
		WatchID:    watch.ID,
		UserID:     user.UID,
		Quantity:   1,
		Price:      watch.Price,
		WatchName:  watch.Name,
		WatchImage: watch.ID,
	}
	if err := c.store.Put(ctx, "carts/"+user.UID+"/items", item.ID, item.Doc()); err != nil {
		c.publishError(fmt.Sprintf("Failed to add item: %s", err))
	}
}

// Remove deletes one line.
func (c *Cart) Remove(ctx context.Context, item models.CartItem) {
	path, ok := c.path()
	if !ok {
		return
	}
	if err := c.store.Delete(ctx, path, item.ID); err != nil {
		c.publishError(fmt.Sprintf("Failed to remove item: %s", err))
	}
}

// SetQuantity updates one line's quantity. Values below 1 are a silent
// no-op; the line is never deleted or zeroed through this path.
func (c *Cart) SetQuantity(ctx context.Context, item models.CartItem, quantity int) {
	if quantity < 1 {
		return
	}
	path, ok := c.path()
	if !ok {
		return
	}
	if err := c.store.Patch(ctx, path, item.ID, map[string]any{"quantity": quantity}); err != nil {
		c.publishError(fmt.Sprintf("Failed to update quantity: %s", err))
	}
}

// Clear removes every line in the cart.
func (c *Cart) Clear(ctx context.Context) {
	path, ok := c.path()
	if !ok {
		return
	}
	if err := c.store.DeleteAll(ctx, path); err != nil {
		c.publishError(fmt.Sprintf("Failed to clear cart: %s", err))
	}
}

// publishError flags the error but keeps the stale line set visible until
// the next snapshot arrives.
func (c *Cart) publishError(msg string) {
	cur := c.state.Current()
	c.state.Publish(CartState{Phase: PhaseError, Items: cur.Items, Total: cur.Total, Err: msg})
}
