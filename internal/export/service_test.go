package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/caseflow-app/client-aggregator/constants"
	"github.com/caseflow-app/client-aggregator/internal/entity"
)

func reportState() entity.SessionState {
	march := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	joao := entity.NewClientProfile("joao")
	joao.Fields["nif"] = entity.FieldRecord{
		Field:       "nif",
		Value:       "123 456 789",
		Normalized:  "123456789",
		SourceDocID: "doc-1",
		SourceTime:  &march,
		Seq:         1,
	}
	joao.Salaries = []entity.SalaryEntry{
		{
			Employer:     "ACME",
			EmployerRaw:  "Acme, Lda.",
			Gross:        decimal.RequireFromString("1500"),
			CurrencyCode: "EUR",
			SourceDocID:  "doc-2",
			SourceTime:   &march,
			Seq:          2,
		},
	}
	joao.Totals = map[string]decimal.Decimal{"EUR": decimal.RequireFromString("1500")}
	joao.Conflicts = []entity.Conflict{
		{
			Kind:        entity.ConflictRejectedStale,
			Field:       "nif",
			WinnerValue: "123456789",
			WinnerDocID: "doc-1",
			LoserValue:  "999999999",
			LoserDocID:  "doc-0",
		},
	}
	joao.Documents = 3

	return entity.SessionState{
		ID:        uuid.New(),
		CreatedAt: march,
		Status:    constants.SessionFinished,
		Profiles:  map[string]entity.ClientProfile{"joao": *joao},
		Outcomes: []entity.FileOutcome{
			{FileID: "doc-1", ClientKey: "joao", Status: constants.OutcomeOK, At: march},
			{FileID: "doc-bad", Status: constants.OutcomeError, Error: "missing document id", At: march},
		},
		FilesProcessed: 1,
		FilesErrored:   1,
	}
}

func TestSessionReportXLSX(t *testing.T) {
	data, err := NewService(nil).SessionReportXLSX(reportState())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Profiles", "Salaries", "Conflicts", "Files"}, f.GetSheetList())

	cell := func(sheet, ref string) string {
		v, err := f.GetCellValue(sheet, ref)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Client", cell("Profiles", "A1"))
	assert.Equal(t, "joao", cell("Profiles", "A2"))
	assert.Equal(t, "nif", cell("Profiles", "B2"))
	assert.Equal(t, "123456789", cell("Profiles", "D2"))
	assert.Equal(t, "2024-03-01", cell("Profiles", "F2"))

	assert.Equal(t, "ACME", cell("Salaries", "B2"))
	assert.Equal(t, "1500.00", cell("Salaries", "D2"))
	assert.Equal(t, "EUR", cell("Salaries", "E2"))
	// per-currency total row follows the client's entries
	assert.Equal(t, "TOTAL", cell("Salaries", "B3"))
	assert.Equal(t, "1500.00", cell("Salaries", "D3"))

	assert.Equal(t, string(entity.ConflictRejectedStale), cell("Conflicts", "B2"))
	assert.Equal(t, "doc-0", cell("Conflicts", "G2"))

	assert.Equal(t, "doc-1", cell("Files", "A2"))
	assert.Equal(t, string(constants.OutcomeOK), cell("Files", "C2"))
	assert.Equal(t, "missing document id", cell("Files", "D2"))
}

func TestSessionReportXLSXEmptySession(t *testing.T) {
	state := entity.SessionState{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Status:    constants.SessionFinished,
		Profiles:  map[string]entity.ClientProfile{},
	}
	data, err := NewService(nil).SessionReportXLSX(state)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Profiles", "A2")
	require.NoError(t, err)
	assert.Empty(t, v)
}
