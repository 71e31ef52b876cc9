package types

// ReconcileStep names one step of a reconciliation run. Steps execute in a
// fixed causal order; once the subscription quantity has been written the run
// commits best effort and later failures do not undo earlier ones.
type ReconcileStep string

const (
	StepEnsureBillingIdentity ReconcileStep = "ensure_billing_identity"
	StepCountActiveUnits      ReconcileStep = "count_active_units"
	StepFetchSubscription     ReconcileStep = "fetch_subscription"
	StepCreateSubscription    ReconcileStep = "create_subscription"
	StepUpdateQuantity        ReconcileStep = "update_quantity"
	StepReconcileTickets      ReconcileStep = "reconcile_tickets"
	StepSaveOwner             ReconcileStep = "save_owner"
	StepCreateProrationItem   ReconcileStep = "create_proration_item"
	StepPurgeStaleItems       ReconcileStep = "purge_stale_items"
	StepCreateInvoice         ReconcileStep = "create_invoice"
	StepFlipCommunity         ReconcileStep = "flip_community"
	StepPreviewInvoice        ReconcileStep = "preview_upcoming_invoice"
)

// StepStatus is the outcome of a single reconciliation step
type StepStatus string

const (
	StepStatusDone    StepStatus = "done"
	StepStatusSkipped StepStatus = "skipped"
	StepStatusFailed  StepStatus = "failed"
)

// StepResult records the outcome of one step in a reconciliation run
type StepResult struct {
	Step   ReconcileStep `json:"step"`
	Status StepStatus    `json:"status"`
	Error  string        `json:"error,omitempty"`
}

// StepTrace is the ordered record of a reconciliation run
type StepTrace []StepResult

func (t *StepTrace) Done(step ReconcileStep) {
	*t = append(*t, StepResult{Step: step, Status: StepStatusDone})
}

func (t *StepTrace) Skipped(step ReconcileStep) {
	*t = append(*t, StepResult{Step: step, Status: StepStatusSkipped})
}

func (t *StepTrace) Failed(step ReconcileStep, err error) {
	res := StepResult{Step: step, Status: StepStatusFailed}
	if err != nil {
		res.Error = err.Error()
	}
	*t = append(*t, res)
}

// StatusOf returns the recorded status for a step, or empty if it never ran
func (t StepTrace) StatusOf(step ReconcileStep) StepStatus {
	for _, r := range t {
		if r.Step == step {
			return r.Status
		}
	}
	return ""
}
