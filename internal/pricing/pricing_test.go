package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceTariff() Tariff {
	return NewTariff(600, 400, 3000, 0.18, 5000, 500, 4*time.Hour, "TZS")
}

func TestTariff_Quote(t *testing.T) {
	tariff := referenceTariff()

	tests := []struct {
		name      string
		elapsed   time.Duration
		wantBase  string
		wantTax   string
		wantTotal string
	}{
		{
			name:      "exactly one hour",
			elapsed:   time.Hour,
			wantBase:  "600",
			wantTax:   "108",
			wantTotal: "708",
		},
		{
			name:      "five hours",
			elapsed:   5 * time.Hour,
			wantBase:  "2200",
			wantTax:   "396",
			wantTotal: "2596",
		},
		{
			name:      "ten hours hits daily cap",
			elapsed:   10 * time.Hour,
			wantBase:  "3000",
			wantTax:   "540",
			wantTotal: "3540",
		},
		{
			name:      "under an hour still pays first hour",
			elapsed:   12 * time.Minute,
			wantBase:  "600",
			wantTax:   "108",
			wantTotal: "708",
		},
		{
			name:      "90 minutes rounds to a half hour block",
			elapsed:   90 * time.Minute,
			wantBase:  "800",
			wantTax:   "144",
			wantTotal: "944",
		},
		{
			name:      "91 minutes rounds up to a full extra hour",
			elapsed:   91 * time.Minute,
			wantBase:  "1000",
			wantTax:   "180",
			wantTotal: "1180",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tariff.Quote(tt.elapsed)
			assert.True(t, got.Base.Equal(decimal.RequireFromString(tt.wantBase)), "base = %s", got.Base)
			assert.True(t, got.Tax.Equal(decimal.RequireFromString(tt.wantTax)), "tax = %s", got.Tax)
			assert.True(t, got.Total.Equal(decimal.RequireFromString(tt.wantTotal)), "total = %s", got.Total)
		})
	}
}

func TestTariff_ExtensionQuote(t *testing.T) {
	tariff := referenceTariff()

	got := tariff.ExtensionQuote(2)
	assert.True(t, got.Base.Equal(decimal.RequireFromString("800")), "base = %s", got.Base)
	assert.True(t, got.Tax.Equal(decimal.RequireFromString("144")), "tax = %s", got.Tax)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("944")), "total = %s", got.Total)
}

func TestTariff_IncrementWithinCap(t *testing.T) {
	tariff := referenceTariff()

	t.Run("increment fits under cap", func(t *testing.T) {
		got := tariff.IncrementWithinCap(decimal.RequireFromString("2200"), decimal.RequireFromString("400"))
		assert.True(t, got.Base.Equal(decimal.RequireFromString("400")))
	})

	t.Run("increment clamped by cap", func(t *testing.T) {
		got := tariff.IncrementWithinCap(decimal.RequireFromString("2800"), decimal.RequireFromString("800"))
		assert.True(t, got.Base.Equal(decimal.RequireFromString("200")), "base = %s", got.Base)
		assert.True(t, got.Tax.Equal(decimal.RequireFromString("36")), "tax = %s", got.Tax)
	})

	t.Run("already at cap adds nothing", func(t *testing.T) {
		got := tariff.IncrementWithinCap(decimal.RequireFromString("3000"), decimal.RequireFromString("400"))
		assert.True(t, got.Base.IsZero())
		assert.True(t, got.Total.IsZero())
	})
}

func TestTariff_LateFee(t *testing.T) {
	tariff := referenceTariff()

	assert.True(t, tariff.LateFee(0).IsZero())
	assert.True(t, tariff.LateFee(-time.Hour).IsZero())
	assert.True(t, tariff.LateFee(time.Minute).Equal(decimal.RequireFromString("500")))
	assert.True(t, tariff.LateFee(time.Hour).Equal(decimal.RequireFromString("500")))
	assert.True(t, tariff.LateFee(time.Hour+time.Minute).Equal(decimal.RequireFromString("1000")))
}

func TestDepositReturn(t *testing.T) {
	deposit := decimal.RequireFromString("5000")

	tests := []struct {
		name    string
		total   string
		lateFee string
		want    string
	}{
		// Возврат всегда deposit - (total + lateFee): штраф и полная
		// сумма вычитаются вместе, никогда только штраф.
		{name: "one hour rental", total: "708", lateFee: "0", want: "4292"},
		{name: "five hour rental", total: "2596", lateFee: "0", want: "2404"},
		{name: "capped rental", total: "3540", lateFee: "0", want: "1460"},
		{name: "late fee included", total: "3540", lateFee: "1000", want: "460"},
		{name: "never negative", total: "3540", lateFee: "2000", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DepositReturn(deposit, decimal.RequireFromString(tt.total), decimal.RequireFromString(tt.lateFee))
			require.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}
