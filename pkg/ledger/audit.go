package ledger

import "github.com/steelpath/steelpath/pkg/techref"

// AuditResult is the outcome of a candidate's resource checks.
type AuditResult string

const (
	AuditPass AuditResult = "PASS"
	AuditFail AuditResult = "FAIL"
)

// AuditEntry is one row of the material usage audit trail: a plant's check of
// a candidate technology against the shared resource constraints in a year.
// Entries are recorded for every candidate regardless of outcome and are
// never mutated after creation.
type AuditEntry struct {
	Plant           string
	Year            int
	StartTech       techref.Technology
	CandidateTech   techref.Technology
	Result          AuditResult
	FailedResources []techref.ResourceCategory
}

// RecordAudit appends an audit row. This is the only ledger mutation that is
// unconditional.
func (l *Ledger) RecordAudit(entry AuditEntry) {
	l.audit = append(l.audit, entry)
}

// ExportAudit returns a copy of the audit trail in recording order.
func (l *Ledger) ExportAudit() []AuditEntry {
	out := make([]AuditEntry, len(l.audit))
	copy(out, l.audit)
	return out
}
