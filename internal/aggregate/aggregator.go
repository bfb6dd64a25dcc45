// Package aggregate owns one client's evolving profile across all
// documents seen so far, routing fields through conflict resolution and
// salary aggregation.
package aggregate

import (
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/caseflow-app/client-aggregator/constants"
	"github.com/caseflow-app/client-aggregator/internal/entity"
	"github.com/caseflow-app/client-aggregator/internal/normalize"
	"github.com/caseflow-app/client-aggregator/internal/resolve"
	"github.com/caseflow-app/client-aggregator/internal/salary"
)

// Aggregator is the per-client accumulator. All methods are safe for
// concurrent use; the internal mutex is what serializes ingests for one
// client key while distinct clients proceed in parallel.
type Aggregator struct {
	mu      sync.Mutex
	profile *entity.ClientProfile
	salary  *salary.Aggregator
	log     *slog.Logger
}

// New creates an empty aggregator for a client key.
func New(clientKey string, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		profile: entity.NewClientProfile(clientKey),
		salary:  salary.New(normalize.Employer, logger),
		log:     logger,
	}
}

// FromProfile rebuilds an aggregator from a persisted snapshot, for
// session recovery. The snapshot is copied; the caller's value is not
// retained.
func FromProfile(p entity.ClientProfile, logger *slog.Logger) *Aggregator {
	a := New(p.ClientKey, logger)
	restored := p.Clone()
	a.profile = &restored
	if a.profile.Fields == nil {
		a.profile.Fields = make(map[string]entity.FieldRecord)
	}
	if a.profile.Totals == nil {
		a.profile.Totals = make(map[string]decimal.Decimal)
	}
	return a
}

// Ingest folds one document into the profile. seq is the session's
// process-order counter, the final tiebreak for unordered input. A
// field that fails normalization is recorded as a normalization_failed
// conflict and skipped; the rest of the document still lands.
func (a *Aggregator) Ingest(doc entity.ExtractedDocument, seq int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var docTime *time.Time
	if t, ok := normalize.Date(doc.Timestamp); ok {
		docTime = &t
	}

	for _, f := range doc.Fields {
		if constants.IsSalaryField(f.Name, f.Kind) {
			a.ingestSalary(doc, f, docTime, seq)
			continue
		}
		a.ingestScalar(doc, f, docTime, seq)
	}

	a.profile.Documents++
	a.log.Debug("aggregate.document.ingested",
		"client_key", a.profile.ClientKey,
		"doc_id", doc.ID,
		"doc_type", doc.Type,
		"fields", len(doc.Fields),
	)
}

func (a *Aggregator) ingestScalar(doc entity.ExtractedDocument, f entity.FieldValue, docTime *time.Time, seq int) {
	normalized, err := normalize.Field(f.Name, f.Kind, f.Raw)
	if err != nil {
		a.profile.Conflicts = append(a.profile.Conflicts, entity.Conflict{
			Kind:       entity.ConflictNormalizationFailed,
			Field:      f.Name,
			LoserValue: f.Raw,
			LoserDocID: doc.ID,
			Detail:     err.Error(),
		})
		a.log.Warn("aggregate.field.normalize_failed", "client_key", a.profile.ClientKey, "doc_id", doc.ID, "field", f.Name, "error", err)
		return
	}

	var existing *entity.FieldRecord
	if rec, ok := a.profile.Fields[f.Name]; ok {
		existing = &rec
	}
	outcome := resolve.Resolve(existing, resolve.Candidate{
		Field:      f.Name,
		Value:      f.Raw,
		Normalized: normalized,
		DocID:      doc.ID,
		Time:       docTime,
		Seq:        seq,
		Confidence: f.Confidence,
	})
	a.profile.Fields[f.Name] = outcome.Record
	if outcome.Conflict != nil {
		a.profile.Conflicts = append(a.profile.Conflicts, *outcome.Conflict)
	}
}

func (a *Aggregator) ingestSalary(doc entity.ExtractedDocument, f entity.FieldValue, docTime *time.Time, seq int) {
	if f.Salary == nil || f.Salary.EmployerName == "" {
		a.profile.Conflicts = append(a.profile.Conflicts, entity.Conflict{
			Kind:       entity.ConflictNormalizationFailed,
			Field:      f.Name,
			LoserValue: f.Raw,
			LoserDocID: doc.ID,
			Detail:     "salary field without employer record",
		})
		return
	}

	gross, err := normalize.Money(f.Salary.Gross, f.Salary.CurrencyCode)
	if err != nil {
		a.profile.Conflicts = append(a.profile.Conflicts, entity.Conflict{
			Kind:       entity.ConflictNormalizationFailed,
			Field:      f.Name,
			LoserValue: f.Salary.Gross,
			LoserDocID: doc.ID,
			Detail:     err.Error(),
		})
		a.log.Warn("aggregate.salary.normalize_failed", "client_key", a.profile.ClientKey, "doc_id", doc.ID, "error", err)
		return
	}

	in := salary.Input{
		EmployerRaw:  f.Salary.EmployerName,
		Gross:        gross.Value,
		CurrencyCode: gross.CurrencyCode,
		PayPeriod:    f.Salary.PayPeriod,
		DocID:        doc.ID,
		Time:         docTime,
		Seq:          seq,
	}
	if f.Salary.Net != "" {
		if net, err := normalize.Money(f.Salary.Net, f.Salary.CurrencyCode); err == nil {
			v := net.Value
			in.Net = &v
		}
	}
	a.salary.Apply(a.profile, in)
}

// Snapshot returns an immutable deep copy of the profile, safe to
// persist or compare.
func (a *Aggregator) Snapshot() entity.ClientProfile {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.profile.Clone()
}

// Documents returns the number of documents ingested so far.
func (a *Aggregator) Documents() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.profile.Documents
}
