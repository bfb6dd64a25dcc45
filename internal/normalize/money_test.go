package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseflow-app/client-aggregator/internal/common"
)

func TestMoneyFormats(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		hint     string
		want     string
		currency string
	}{
		{"plain integer", "1500", "", "1500", "EUR"},
		{"euro symbol european grouping", "€1.234,56", "", "1234.56", "EUR"},
		{"anglophone grouping with code", "1,234.56 USD", "", "1234.56", "USD"},
		{"code prefix decimal comma", "EUR 950,50", "", "950.5", "EUR"},
		{"real symbol", "R$ 2.500,00", "", "2500", "BRL"},
		{"pound", "£980.25", "", "980.25", "GBP"},
		{"dot grouping only", "1.500", "", "1500", "EUR"},
		{"comma grouping only", "1,500", "", "1500", "EUR"},
		{"hint currency", "1200.00", "usd", "1200", "USD"},
		{"negative", "-350,10", "", "-350.1", "EUR"},
		{"nbsp grouping", "1 234,56", "", "1234.56", "EUR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amt, err := Money(tt.raw, tt.hint)
			require.NoError(t, err)
			want, _ := decimal.NewFromString(tt.want)
			assert.True(t, want.Equal(amt.Value), "want %s got %s", want, amt.Value)
			assert.Equal(t, tt.currency, amt.CurrencyCode)
		})
	}
}

func TestMoneyUnparsable(t *testing.T) {
	for _, raw := range []string{"", "   ", "n/a", "see attachment", "€"} {
		_, err := Money(raw, "")
		assert.ErrorIs(t, err, common.ErrUnparsableValue, "raw=%q", raw)
	}
}
