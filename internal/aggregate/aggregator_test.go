package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseflow-app/client-aggregator/constants"
	"github.com/caseflow-app/client-aggregator/internal/entity"
)

func textField(name, raw string) entity.FieldValue {
	return entity.FieldValue{Name: name, Kind: constants.FieldText, Raw: raw}
}

func salaryField(employer, gross string) entity.FieldValue {
	return entity.FieldValue{
		Name: "salary",
		Kind: constants.FieldSalary,
		Salary: &entity.SalaryFields{
			EmployerName: employer,
			Gross:        gross,
			CurrencyCode: "EUR",
		},
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestIngestRoutesFieldsByKind(t *testing.T) {
	a := New("joao", nil)
	a.Ingest(entity.ExtractedDocument{
		ID:        "d1",
		Type:      constants.Payslip,
		Timestamp: "2024-01-01",
		Fields: []entity.FieldValue{
			textField("nif", "123 456 789"),
			salaryField("Acme Lda", "1500"),
		},
	}, 1)

	p := a.Snapshot()
	assert.Equal(t, 1, p.Documents)
	assert.Equal(t, "123456789", p.Fields["nif"].Normalized)
	require.Len(t, p.Salaries, 1)
	assert.Equal(t, "ACME", p.Salaries[0].Employer)
	assert.True(t, dec("1500").Equal(p.Totals["EUR"]))
}

func TestIngestFieldFailureIsIsolated(t *testing.T) {
	a := New("joao", nil)
	a.Ingest(entity.ExtractedDocument{
		ID:        "d1",
		Timestamp: "2024-01-01",
		Fields: []entity.FieldValue{
			{Name: "monthly_rent", Kind: constants.FieldMoney, Raw: "n/a"},
			textField("nif", "123456789"),
		},
	}, 1)

	p := a.Snapshot()
	assert.Equal(t, 1, p.Documents)
	_, present := p.Fields["monthly_rent"]
	assert.False(t, present, "unparsable field must be excluded from the profile")
	assert.Equal(t, "123456789", p.Fields["nif"].Normalized, "remaining fields still land")

	require.Len(t, p.Conflicts, 1)
	assert.Equal(t, entity.ConflictNormalizationFailed, p.Conflicts[0].Kind)
	assert.Equal(t, "monthly_rent", p.Conflicts[0].Field)
	assert.Equal(t, "d1", p.Conflicts[0].LoserDocID)
}

func TestIngestSalaryWithoutEmployerIsRecorded(t *testing.T) {
	a := New("joao", nil)
	a.Ingest(entity.ExtractedDocument{
		ID:        "d1",
		Timestamp: "2024-01-01",
		Fields:    []entity.FieldValue{{Name: "salary", Kind: constants.FieldSalary}},
	}, 1)

	p := a.Snapshot()
	assert.Empty(t, p.Salaries)
	require.Len(t, p.Conflicts, 1)
	assert.Equal(t, entity.ConflictNormalizationFailed, p.Conflicts[0].Kind)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	a := New("joao", nil)
	a.Ingest(entity.ExtractedDocument{
		ID:        "d1",
		Timestamp: "2024-01-01",
		Fields:    []entity.FieldValue{textField("nif", "123"), salaryField("Acme Lda", "1500")},
	}, 1)

	snap := a.Snapshot()
	snap.Fields["nif"] = entity.FieldRecord{Field: "nif", Value: "tampered"}
	snap.Salaries[0].Employer = "TAMPERED"
	snap.Totals["EUR"] = dec("0")

	again := a.Snapshot()
	assert.Equal(t, "123", again.Fields["nif"].Value)
	assert.Equal(t, "ACME", again.Salaries[0].Employer)
	assert.True(t, dec("1500").Equal(again.Totals["EUR"]))
}

// The final profile depends only on the set of (field, value, timestamp)
// triples, not on arrival order, as long as no timestamps tie.
func TestIngestOrderIndependentForDistinctTimestamps(t *testing.T) {
	docs := []entity.ExtractedDocument{
		{ID: "d1", Timestamp: "2024-01-01", Fields: []entity.FieldValue{textField("nif", "111"), salaryField("Acme Lda", "1400")}},
		{ID: "d2", Timestamp: "2024-02-01", Fields: []entity.FieldValue{textField("nif", "222"), salaryField("ACME LDA.", "1500")}},
		{ID: "d3", Timestamp: "2024-03-01", Fields: []entity.FieldValue{textField("nif", "333"), salaryField("Northwind Ltd", "900")}},
	}
	permutations := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 0, 2}, {2, 0, 1}}

	type finalState struct {
		nif      string
		byEmp    map[string]string
		totalEUR string
		docs     int
	}
	results := make([]finalState, 0, len(permutations))
	for _, perm := range permutations {
		a := New("joao", nil)
		for i, idx := range perm {
			a.Ingest(docs[idx], i+1)
		}
		p := a.Snapshot()
		byEmp := make(map[string]string, len(p.Salaries))
		for _, e := range p.Salaries {
			byEmp[e.Employer] = e.Gross.StringFixed(2)
		}
		results = append(results, finalState{
			nif:      p.Fields["nif"].Value,
			byEmp:    byEmp,
			totalEUR: p.Totals["EUR"].StringFixed(2),
			docs:     p.Documents,
		})
	}

	for _, r := range results[1:] {
		assert.Equal(t, results[0], r)
	}
	assert.Equal(t, "333", results[0].nif)
	assert.Equal(t, map[string]string{"ACME": "1500.00", "NORTHWIND": "900.00"}, results[0].byEmp)
	assert.Equal(t, "2400.00", results[0].totalEUR)
}

// Scenario from the consolidation audit checklist: two payslips for the
// same client and employer in different spellings.
func TestAcmePayslipScenario(t *testing.T) {
	a := New("joao", nil)
	a.Ingest(entity.ExtractedDocument{
		ID: "D1", Type: constants.Payslip, Timestamp: "2024-01-01",
		Fields: []entity.FieldValue{salaryField("Acme Lda", "1500")},
	}, 1)
	a.Ingest(entity.ExtractedDocument{
		ID: "D2", Type: constants.Payslip, Timestamp: "2024-02-01",
		Fields: []entity.FieldValue{salaryField("ACME, LDA.", "1600")},
	}, 2)

	p := a.Snapshot()
	assert.Equal(t, 2, p.Documents)
	require.Len(t, p.Salaries, 1)
	assert.Equal(t, "ACME", p.Salaries[0].Employer)
	assert.True(t, dec("1600").Equal(p.Salaries[0].Gross))
	for _, c := range p.Conflicts {
		assert.NotEqual(t, entity.ConflictNormalizationFailed, c.Kind)
	}
}

func TestStaleNifScenario(t *testing.T) {
	a := New("joao", nil)
	a.Ingest(entity.ExtractedDocument{
		ID: "D1", Timestamp: "2024-01-01",
		Fields: []entity.FieldValue{textField("nif", "123")},
	}, 1)
	a.Ingest(entity.ExtractedDocument{
		ID: "D2", Timestamp: "2023-12-01",
		Fields: []entity.FieldValue{textField("nif", "456")},
	}, 2)

	p := a.Snapshot()
	assert.Equal(t, "123", p.Fields["nif"].Value)
	require.Len(t, p.Conflicts, 1)
	assert.Equal(t, entity.ConflictRejectedStale, p.Conflicts[0].Kind)
	assert.Equal(t, "456", p.Conflicts[0].LoserValue)
	assert.Equal(t, "D2", p.Conflicts[0].LoserDocID)
}

func TestFromProfileRestoresState(t *testing.T) {
	a := New("joao", nil)
	a.Ingest(entity.ExtractedDocument{
		ID: "d1", Timestamp: "2024-01-01",
		Fields: []entity.FieldValue{textField("nif", "123"), salaryField("Acme Lda", "1500")},
	}, 1)
	snap := a.Snapshot()

	restored := FromProfile(snap, nil)
	assert.Equal(t, snap, restored.Snapshot())

	// conflict resolution continues against the restored state
	restored.Ingest(entity.ExtractedDocument{
		ID: "d2", Timestamp: "2023-11-01",
		Fields: []entity.FieldValue{textField("nif", "999")},
	}, 2)
	p := restored.Snapshot()
	assert.Equal(t, "123", p.Fields["nif"].Value)
	assert.Equal(t, 2, p.Documents)
}

func TestEqualTimestampsResolveBySessionOrderNotApplication(t *testing.T) {
	d1 := entity.ExtractedDocument{
		ID:        "d1",
		Timestamp: "2024-01-01",
		Fields:    []entity.FieldValue{textField("nif", "111"), salaryField("Acme Lda", "1400")},
	}
	d2 := entity.ExtractedDocument{
		ID:        "d2",
		Timestamp: "2024-01-01",
		Fields:    []entity.FieldValue{textField("nif", "222"), salaryField("Acme Lda", "1600")},
	}

	inOrder := New("joao", nil)
	inOrder.Ingest(d1, 1)
	inOrder.Ingest(d2, 2)

	// same admission counters, but d2 reached the aggregator first
	inverted := New("joao", nil)
	inverted.Ingest(d2, 2)
	inverted.Ingest(d1, 1)

	for name, p := range map[string]entity.ClientProfile{"in-order": inOrder.Snapshot(), "inverted": inverted.Snapshot()} {
		assert.Equal(t, "111", p.Fields["nif"].Normalized, "%s: earliest admission wins ties", name)
		assert.Equal(t, "d1", p.Fields["nif"].SourceDocID, name)
		require.Len(t, p.Salaries, 1, name)
		assert.Equal(t, "d1", p.Salaries[0].SourceDocID, name)
		assert.True(t, dec("1400").Equal(p.Totals["EUR"]), name)
	}
}
