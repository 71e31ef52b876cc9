package owner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConsumeTickets(t *testing.T) {
	tests := []struct {
		name        string
		tickets     int
		requested   int
		wantBilled  int
		wantTickets int
	}{
		{name: "enough tickets", tickets: 3, requested: 2, wantBilled: 0, wantTickets: 1},
		{name: "exact tickets", tickets: 2, requested: 2, wantBilled: 0, wantTickets: 0},
		{name: "not enough tickets", tickets: 1, requested: 3, wantBilled: 2, wantTickets: 0},
		{name: "no tickets", tickets: 0, requested: 2, wantBilled: 2, wantTickets: 0},
		{name: "zero requested", tickets: 2, requested: 0, wantBilled: 0, wantTickets: 2},
		{name: "negative requested", tickets: 2, requested: -1, wantBilled: 0, wantTickets: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Owner{Tickets: tt.tickets}
			billed := o.ConsumeTickets(tt.requested)
			assert.Equal(t, tt.wantBilled, billed)
			assert.Equal(t, tt.wantTickets, o.Tickets)
		})
	}
}

func TestConsumeTickets_Conservation(t *testing.T) {
	// billed + min(tickets, requested) == requested, for every combination
	for tickets := 0; tickets <= 5; tickets++ {
		for requested := 1; requested <= 5; requested++ {
			o := &Owner{Tickets: tickets}
			billed := o.ConsumeTickets(requested)

			spent := tickets
			if requested < tickets {
				spent = requested
			}
			assert.Equal(t, requested, billed+spent, "tickets=%d requested=%d", tickets, requested)
			assert.GreaterOrEqual(t, o.Tickets, 0)
		}
	}
}

func TestBankThenConsumeOffsets(t *testing.T) {
	o := &Owner{}
	expiry := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	o.ReconcileTicketExpiry(expiry)
	o.BankTickets(1)
	assert.Equal(t, 1, o.Tickets)

	// same cycle, so the expiry reconcile is a no-op and the credit holds
	o.ReconcileTicketExpiry(expiry)
	billed := o.ConsumeTickets(1)
	assert.Equal(t, 0, billed)
	assert.Equal(t, 0, o.Tickets)
}

func TestReconcileTicketExpiry(t *testing.T) {
	june := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	july := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	t.Run("no expiry set", func(t *testing.T) {
		o := &Owner{Tickets: 4}
		o.ReconcileTicketExpiry(june)
		assert.Equal(t, 0, o.Tickets)
		assert.True(t, o.TicketExpiry.Equal(june))
	})

	t.Run("cycle rolled over", func(t *testing.T) {
		o := &Owner{Tickets: 2, TicketExpiry: &june}
		o.ReconcileTicketExpiry(july)
		assert.Equal(t, 0, o.Tickets, "stale tickets must be cleared on rollover")
		assert.True(t, o.TicketExpiry.Equal(july))
	})

	t.Run("same cycle keeps tickets", func(t *testing.T) {
		o := &Owner{Tickets: 2, TicketExpiry: &july}
		o.ReconcileTicketExpiry(july)
		assert.Equal(t, 2, o.Tickets)
		assert.True(t, o.TicketExpiry.Equal(july))
	})
}

func TestBankTickets(t *testing.T) {
	o := &Owner{Tickets: 1}
	o.BankTickets(1)
	assert.Equal(t, 2, o.Tickets)

	o.BankTickets(0)
	o.BankTickets(-3)
	assert.Equal(t, 2, o.Tickets)
}
