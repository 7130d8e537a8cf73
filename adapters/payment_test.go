package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"nevilwatch/identity"
	"nevilwatch/store"
)

func newPaymentFixture(t *testing.T) (*Payment, <-chan PaymentState) {
	t.Helper()
	mem := store.NewMemory()
	provider := identity.NewLocal()
	_, err := provider.CreateUser(context.Background(), "jane@example.com", "Str0ng!pass")
	require.NoError(t, err)

	payment := NewPayment(mem, provider)
	ch, cancel := payment.Watch()
	t.Cleanup(cancel)
	t.Cleanup(payment.Stop)

	require.NoError(t, payment.Start(context.Background()))
	waitFor(t, ch, func(s PaymentState) bool { return s.Phase == PhaseSuccess })
	return payment, ch
}

func TestPaymentAddNeverDefault(t *testing.T) {
	payment, ch := newPaymentFixture(t)
	ctx := context.Background()

	payment.Add(ctx, "4242424242424242", "Jane Doe", "12/27", "visa")
	state := waitFor(t, ch, func(s PaymentState) bool { return len(s.Methods) == 1 })

	m := state.Methods[0]
	require.False(t, m.IsDefault)
	require.NotEmpty(t, m.ID)
	require.Equal(t, "Jane Doe", m.CardHolderName)
	require.Equal(t, "visa", m.CardType)
}

func TestPaymentSetDefaultYieldsExactlyOne(t *testing.T) {
	payment, ch := newPaymentFixture(t)
	ctx := context.Background()

	payment.Add(ctx, "4242424242424242", "Jane Doe", "12/27", "visa")
	payment.Add(ctx, "5500005555555559", "Jane Doe", "03/28", "mastercard")
	state := waitFor(t, ch, func(s PaymentState) bool { return len(s.Methods) == 2 })

	first, second := state.Methods[0].ID, state.Methods[1].ID

	payment.SetDefault(ctx, first)
	state = waitFor(t, ch, func(s PaymentState) bool { return defaultID(s) == first })
	require.Equal(t, 1, defaultCount(state))

	// switching the default clears the previous one in the same transaction
	payment.SetDefault(ctx, second)
	state = waitFor(t, ch, func(s PaymentState) bool { return defaultID(s) == second })
	require.Equal(t, 1, defaultCount(state))
}

func TestPaymentSetDefaultUnknownIDIsError(t *testing.T) {
	payment, ch := newPaymentFixture(t)
	ctx := context.Background()

	payment.Add(ctx, "4242424242424242", "Jane Doe", "12/27", "visa")
	waitFor(t, ch, func(s PaymentState) bool { return len(s.Methods) == 1 })

	payment.SetDefault(ctx, "missing")
	state := payment.State()
	require.Equal(t, PhaseError, state.Phase)
	require.Contains(t, state.Err, "Failed to set default payment method")
	// stale method list stays readable
	require.Len(t, state.Methods, 1)
}

func TestPaymentUnauthenticated(t *testing.T) {
	payment := NewPayment(store.NewMemory(), identity.NewLocal())
	t.Cleanup(payment.Stop)

	require.NoError(t, payment.Start(context.Background()))
	state := payment.State()
	require.Equal(t, PhaseError, state.Phase)
	require.Equal(t, "User not authenticated", state.Err)
}

func defaultID(s PaymentState) string {
	for _, m := range s.Methods {
		if m.IsDefault {
			return m.ID
		}
	}
	return ""
}

func defaultCount(s PaymentState) int {
	n := 0
	for _, m := range s.Methods {
		if m.IsDefault {
			n++
		}
	}
	return n
}
