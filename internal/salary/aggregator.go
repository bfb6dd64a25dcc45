// Package salary merges recurring per-employer monetary records into a
// deduplicated list plus per-currency running totals.
package salary

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/caseflow-app/client-aggregator/internal/entity"
	"github.com/caseflow-app/client-aggregator/internal/resolve"
)

// Input is one salary record extracted from a document, amounts already
// parsed.
type Input struct {
	EmployerRaw  string
	Gross        decimal.Decimal
	Net          *decimal.Decimal
	CurrencyCode string
	PayPeriod    string
	DocID        string
	Time         *time.Time
	Seq          int
}

// Aggregator applies salary inputs to a profile. It holds no per-client
// state of its own; the profile is the accumulator.
type Aggregator struct {
	normalize func(string) string
	log       *slog.Logger
}

func New(normalizeEmployer func(string) string, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{normalize: normalizeEmployer, log: logger}
}

// Apply upserts one salary input into the profile. Invariant: at most
// one entry per normalized employer name. A new employer appends; a
// known employer replaces only when the input is newer under the same
// tiebreak cascade as field conflicts, otherwise a rejected_stale
// conflict is logged. Totals are recomputed from the current entries
// after every apply, split per currency.
func (a *Aggregator) Apply(p *entity.ClientProfile, in Input) {
	employer := a.normalize(in.EmployerRaw)

	entry := entity.SalaryEntry{
		Employer:     employer,
		EmployerRaw:  in.EmployerRaw,
		Gross:        in.Gross,
		Net:          in.Net,
		CurrencyCode: in.CurrencyCode,
		PayPeriod:    in.PayPeriod,
		SourceDocID:  in.DocID,
		SourceTime:   in.Time,
		Seq:          in.Seq,
	}

	currenciesBefore := len(currencySet(p.Salaries))

	idx := -1
	for i := range p.Salaries {
		if p.Salaries[i].Employer == employer {
			idx = i
			break
		}
	}

	switch {
	case idx < 0:
		p.Salaries = append(p.Salaries, entry)
		a.log.Debug("salary.entry.appended", "client_key", p.ClientKey, "employer", employer, "doc_id", in.DocID)
	case resolve.NewerThan(in.Time, in.Seq, p.Salaries[idx].SourceTime, p.Salaries[idx].Seq):
		prev := p.Salaries[idx]
		p.Salaries[idx] = entry
		kind := entity.ConflictOverwritten
		if prev.Gross.Equal(in.Gross) && prev.CurrencyCode == in.CurrencyCode {
			kind = entity.ConflictIdenticalValue
		}
		p.Conflicts = append(p.Conflicts, entity.Conflict{
			Kind:        kind,
			Field:       "salary:" + employer,
			WinnerValue: in.Gross.StringFixed(2) + " " + in.CurrencyCode,
			WinnerDocID: in.DocID,
			LoserValue:  prev.Gross.StringFixed(2) + " " + prev.CurrencyCode,
			LoserDocID:  prev.SourceDocID,
		})
	default:
		prev := p.Salaries[idx]
		kind := entity.ConflictRejectedStale
		if prev.Gross.Equal(in.Gross) && prev.CurrencyCode == in.CurrencyCode {
			kind = entity.ConflictIdenticalValue
		}
		p.Conflicts = append(p.Conflicts, entity.Conflict{
			Kind:        kind,
			Field:       "salary:" + employer,
			WinnerValue: prev.Gross.StringFixed(2) + " " + prev.CurrencyCode,
			WinnerDocID: prev.SourceDocID,
			LoserValue:  in.Gross.StringFixed(2) + " " + in.CurrencyCode,
			LoserDocID:  in.DocID,
		})
		a.log.Debug("salary.entry.stale", "client_key", p.ClientKey, "employer", employer, "doc_id", in.DocID)
	}

	recomputeTotals(p)

	// Totals are never summed across currencies; the first time entries
	// span more than one currency, record it so the audit trail explains
	// the split total.
	if after := currencySet(p.Salaries); len(after) > 1 && currenciesBefore <= 1 {
		p.Conflicts = append(p.Conflicts, entity.Conflict{
			Kind:   entity.ConflictCurrencyMismatch,
			Field:  "salary_total",
			Detail: "salary entries span multiple currencies; totals reported per currency",
		})
		a.log.Warn("salary.total.currency_mismatch", "client_key", p.ClientKey, "currencies", len(after))
	}
}

func recomputeTotals(p *entity.ClientProfile) {
	totals := make(map[string]decimal.Decimal, 1)
	for _, e := range p.Salaries {
		totals[e.CurrencyCode] = totals[e.CurrencyCode].Add(e.Gross)
	}
	p.Totals = totals
}

func currencySet(entries []entity.SalaryEntry) map[string]struct{} {
	set := make(map[string]struct{}, 1)
	for _, e := range entries {
		set[e.CurrencyCode] = struct{}{}
	}
	return set
}
