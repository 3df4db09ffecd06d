package quotation

// Status represents the lifecycle state of a quotation
type Status string

const (
	StatusDraft              Status = "draft"
	StatusSent               Status = "sent"
	StatusApproved           Status = "approved"
	StatusRejected           Status = "rejected"
	StatusConvertedToDO      Status = "converted_to_do"
	StatusConvertedToInvoice Status = "converted_to_invoice"
)

// IsValid checks if the status is a known Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusApproved, StatusRejected, StatusConvertedToDO, StatusConvertedToInvoice:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no transition leaves this status
func (s Status) IsTerminal() bool {
	return len(s.Transitions()) == 0
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range s.Transitions() {
		if t == target {
			return true
		}
	}
	return false
}

// Transitions lists the statuses reachable from s in one step
func (s Status) Transitions() []Status {
	switch s {
	case StatusDraft:
		return []Status{StatusSent}
	case StatusSent:
		return []Status{StatusApproved, StatusRejected}
	case StatusApproved:
		return []Status{StatusRejected, StatusConvertedToDO, StatusConvertedToInvoice}
	case StatusRejected, StatusConvertedToDO, StatusConvertedToInvoice:
		return nil // Terminal states
	}
	return nil
}
