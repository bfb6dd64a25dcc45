package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseflow-app/client-aggregator/constants"
	"github.com/caseflow-app/client-aggregator/internal/common"
)

func TestFieldTextCollapsesWhitespace(t *testing.T) {
	got, err := Field("address", constants.FieldText, "  Rua  das   Flores 12 ")
	require.NoError(t, err)
	assert.Equal(t, "Rua das Flores 12", got)
}

func TestFieldIdentifierCleanup(t *testing.T) {
	got, err := Field("nif", constants.FieldText, " 123 456 789 ")
	require.NoError(t, err)
	assert.Equal(t, "123456789", got)

	got, err = Field("iban", constants.FieldText, "pt50 0002 0123 1234 5678 9015 4")
	require.NoError(t, err)
	assert.Equal(t, "PT50000201231234567890154", got)
}

func TestFieldDateCanonical(t *testing.T) {
	got, err := Field("birth_date", constants.FieldDate, "15/01/1990")
	require.NoError(t, err)
	assert.Equal(t, "1990-01-15", got)
}

func TestFieldMoneyCanonical(t *testing.T) {
	got, err := Field("monthly_rent", constants.FieldMoney, "€1.250,00")
	require.NoError(t, err)
	assert.Equal(t, "1250.00 EUR", got)
}

func TestFieldFailures(t *testing.T) {
	_, err := Field("birth_date", constants.FieldDate, "unknown")
	assert.ErrorIs(t, err, common.ErrUnparsableValue)

	_, err = Field("name", constants.FieldText, "   ")
	assert.ErrorIs(t, err, common.ErrNormalizationFailed)

	_, err = Field("nif", constants.FieldText, "---")
	assert.ErrorIs(t, err, common.ErrNormalizationFailed)
}
