package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// FieldRecord is the currently-winning value for one logical client
// attribute, with provenance. SourceTime is nil when the source
// document's timestamp could not be parsed (unknown recency).
type FieldRecord struct {
	Field       string     `json:"field"`
	Value       string     `json:"value"`
	Normalized  string     `json:"normalized"`
	SourceDocID string     `json:"source_doc_id"`
	SourceTime  *time.Time `json:"source_time,omitempty"`
	Seq         int        `json:"seq"`
	Confidence  *float32   `json:"confidence,omitempty"`
}

// SalaryEntry is one deduplicated per-employer monetary record. At most
// one entry exists per normalized employer name per client.
type SalaryEntry struct {
	Employer     string           `json:"employer"`
	EmployerRaw  string           `json:"employer_raw"`
	Gross        decimal.Decimal  `json:"gross"`
	Net          *decimal.Decimal `json:"net,omitempty"`
	CurrencyCode string           `json:"currency_code"`
	PayPeriod    string           `json:"pay_period,omitempty"`
	SourceDocID  string           `json:"source_doc_id"`
	SourceTime   *time.Time       `json:"source_time,omitempty"`
	Seq          int              `json:"seq"`
}

// ConflictKind tags an entry in the audit conflict log.
type ConflictKind string

const (
	ConflictOverwritten         ConflictKind = "overwritten"
	ConflictRejectedStale       ConflictKind = "rejected_stale"
	ConflictIdenticalValue      ConflictKind = "identical_value"
	ConflictNormalizationFailed ConflictKind = "normalization_failed"
	ConflictCurrencyMismatch    ConflictKind = "currency_mismatch"
)

// Conflict records one rejected, overwritten, or dropped update so the
// audit trail explains every value the profile does not show.
type Conflict struct {
	Kind        ConflictKind `json:"kind"`
	Field       string       `json:"field"`
	WinnerValue string       `json:"winner_value,omitempty"`
	WinnerDocID string       `json:"winner_doc_id,omitempty"`
	LoserValue  string       `json:"loser_value,omitempty"`
	LoserDocID  string       `json:"loser_doc_id,omitempty"`
	Detail      string       `json:"detail,omitempty"`
}

// ClientProfile is one client's evolving profile across all documents
// seen so far. Totals maps currency code to the sum of current salary
// entries in that currency; no cross-currency conversion is implied.
type ClientProfile struct {
	ClientKey string                     `json:"client_key"`
	Fields    map[string]FieldRecord     `json:"fields"`
	Salaries  []SalaryEntry              `json:"salaries"`
	Totals    map[string]decimal.Decimal `json:"totals"`
	Documents int                        `json:"documents"`
	Conflicts []Conflict                 `json:"conflicts"`
}

// NewClientProfile creates an empty profile for a client key.
func NewClientProfile(clientKey string) *ClientProfile {
	return &ClientProfile{
		ClientKey: clientKey,
		Fields:    make(map[string]FieldRecord),
		Totals:    make(map[string]decimal.Decimal),
	}
}

// Clone returns a deep copy safe to hand out as an immutable snapshot.
func (p *ClientProfile) Clone() ClientProfile {
	out := ClientProfile{
		ClientKey: p.ClientKey,
		Fields:    make(map[string]FieldRecord, len(p.Fields)),
		Totals:    make(map[string]decimal.Decimal, len(p.Totals)),
		Documents: p.Documents,
	}
	for k, v := range p.Fields {
		out.Fields[k] = v
	}
	for k, v := range p.Totals {
		out.Totals[k] = v
	}
	if len(p.Salaries) > 0 {
		out.Salaries = make([]SalaryEntry, len(p.Salaries))
		copy(out.Salaries, p.Salaries)
	}
	if len(p.Conflicts) > 0 {
		out.Conflicts = make([]Conflict, len(p.Conflicts))
		copy(out.Conflicts, p.Conflicts)
	}
	return out
}
