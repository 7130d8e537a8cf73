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

// PaymentState is the published view of the stored payment instruments.
type PaymentState struct {
	Phase   Phase                  `json:"phase"`
	Methods []models.PaymentMethod `json:"methods,omitempty"`
	Err     string                 `json:"error,omitempty"`
}

// Payment manages the signed-in user's payment instruments. SetDefault runs
// as a single transaction so that readers never observe zero or two default
// instruments.
type Payment struct {
	store    store.Store
	provider identity.Provider
	state    *view.State[PaymentState]

	mu  sync.Mutex
	sub *store.Subscription
	gen int
}

// NewPayment builds a payment-methods adapter.
func NewPayment(s store.Store, provider identity.Provider) *Payment {
	return &Payment{
		store:    s,
		provider: provider,
		state:    view.NewState(PaymentState{Phase: PhaseLoading}),
	}
}

// State returns the latest published payment state.
func (p *Payment) State() PaymentState { return p.state.Current() }

// Watch registers a watcher on published state changes.
func (p *Payment) Watch() (<-chan PaymentState, func()) { return p.state.Watch() }

func (p *Payment) path() (string, bool) {
	user := p.provider.CurrentUser()
	if user == nil {
		return "", false
	}
	return "payments/" + user.UID + "/methods", true
}

// Start subscribes to the current user's instrument collection.
func (p *Payment) Start(ctx context.Context) error {
	path, ok := p.path()
	if !ok {
		p.state.Publish(PaymentState{Phase: PhaseError, Err: "User not authenticated"})
		return nil
	}

	p.mu.Lock()
	p.gen++
	gen := p.gen
	if p.sub != nil {
		p.sub.Close()
		p.sub = nil
	}
	sub, err := p.store.Subscribe(ctx, path)
	if err != nil {
		p.mu.Unlock()
		p.state.Publish(PaymentState{Phase: PhaseError, Err: err.Error()})
		return err
	}
	p.sub = sub
	p.mu.Unlock()

	go p.run(sub, gen)
	return nil
}

// Stop closes the live subscription.
func (p *Payment) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	if p.sub != nil {
		p.sub.Close()
		p.sub = nil
	}
}

func (p *Payment) run(sub *store.Subscription, gen int) {
	for {
		select {
		case snap := <-sub.Snapshots:
			if !p.live(gen) {
				return
			}
			methods := make([]models.PaymentMethod, 0, len(snap))
			for _, doc := range snap {
				methods = append(methods, models.PaymentMethodFromDoc(doc.ID, doc.Data))
			}
			p.state.Publish(PaymentState{Phase: PhaseSuccess, Methods: methods})
		case err := <-sub.Errors:
			if !p.live(gen) {
				return
			}
			p.publishError(err.Error())
			return
		}
	}
}

func (p *Payment) live(gen int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return gen == p.gen
}

// Add stores a new instrument with a client-side ID, never as the default.
func (p *Payment) Add(ctx context.Context, cardNumber, holderName, expiryDate, cardType string) {
	user := p.provider.CurrentUser()
	if user == nil {
		p.publishError("User not authenticated")
		return
	}

	method := models.PaymentMethod{
		ID:             uuid.New().String(),
		UserID:         user.UID,
		CardNumber:     cardNumber,
		CardHolderName: holderName,
		ExpiryDate:     expiryDate,
		CardType:       cardType,
		IsDefault:      false,
	}
	if err := p.store.Put(ctx, "payments/"+user.UID+"/methods", method.ID, method.Doc()); err != nil {
		p.publishError(fmt.Sprintf("Failed to add payment method: %s", err))
	}
}

// Remove deletes one instrument.
func (p *Payment) Remove(ctx context.Context, id string) {
	path, ok := p.path()
	if !ok {
		return
	}
	if err := p.store.Delete(ctx, path, id); err != nil {
		p.publishError(fmt.Sprintf("Failed to remove payment method: %s", err))
	}
}

// SetDefault flags exactly one instrument as the default. The read of the
// current set, the clearing of every default flag, and the set of the target
// commit atomically in one transaction.
func (p *Payment) SetDefault(ctx context.Context, id string) {
	path, ok := p.path()
	if !ok {
		return
	}

	err := p.store.RunTransaction(ctx, func(tx store.Tx) error {
		snap, err := tx.GetAll(path)
		if err != nil {
			return err
		}
		found := false
		for _, doc := range snap {
			if doc.ID == id {
				found = true
				continue
			}
			tx.Patch(path, doc.ID, map[string]any{"isDefault": false})
		}
		if !found {
			return fmt.Errorf("payment method %s not found", id)
		}
		tx.Patch(path, id, map[string]any{"isDefault": true})
		return nil
	})
	if err != nil {
		p.publishError(fmt.Sprintf("Failed to set default payment method: %s", err))
	}
}

func (p *Payment) publishError(msg string) {
	cur := p.state.Current()
	p.state.Publish(PaymentState{Phase: PhaseError, Methods: cur.Methods, Err: msg})
}
