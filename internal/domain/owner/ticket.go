package owner

import "time"

// ReconcileTicketExpiry detects a billing cycle rollover. If the owner has no
// stored expiry, or nextDue is strictly later than it, any banked tickets are
// stale credit from a prior cycle: reset them to zero and advance the expiry.
// Must be called before ConsumeTickets or BankTickets in a reconciliation.
func (o *Owner) ReconcileTicketExpiry(nextDue time.Time) {
	if o.TicketExpiry == nil || nextDue.After(*o.TicketExpiry) {
		o.Tickets = 0
		expiry := nextDue
		o.TicketExpiry = &expiry
	}
}

// ConsumeTickets spends banked tickets against a requested quantity and
// returns the quantity that must still be billed. Credits are spent first:
// billed + min(tickets, requested) == requested always holds.
func (o *Owner) ConsumeTickets(requested int) (billed int) {
	if requested <= 0 {
		return 0
	}
	if o.Tickets >= requested {
		o.Tickets -= requested
		return 0
	}
	billed = requested - o.Tickets
	o.Tickets = 0
	return billed
}

// BankTickets credits the owner for deactivated units. The count is uncapped;
// it is bounded implicitly by the expiry reset on the next cycle rollover.
func (o *Owner) BankTickets(n int) {
	if n <= 0 {
		return
	}
	o.Tickets += n
}
