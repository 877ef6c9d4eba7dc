// Package pricing реализует чистый расчёт стоимости аренды:
// кривую тарифа с округлением до получаса и дневным потолком,
// инкременты продления, штраф за просрочку и возврат депозита.
// Все суммы считаются в фиксированной точке с двумя знаками.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tariff конфигурация тарифа.
type Tariff struct {
	FirstHourRate      decimal.Decimal
	AdditionalHourRate decimal.Decimal
	DailyCap           decimal.Decimal
	TaxRate            decimal.Decimal
	DepositAmount      decimal.Decimal
	LateFeePerHour     decimal.Decimal
	DefaultWindow      time.Duration
	Currency           string
}

// NewTariff собирает тариф из обычных чисел конфига.
func NewTariff(firstHour, additionalHour, dailyCap, taxRate, deposit, lateFeePerHour float64, defaultWindow time.Duration, currency string) Tariff {
	return Tariff{
		FirstHourRate:      decimal.NewFromFloat(firstHour),
		AdditionalHourRate: decimal.NewFromFloat(additionalHour),
		DailyCap:           decimal.NewFromFloat(dailyCap),
		TaxRate:            decimal.NewFromFloat(taxRate),
		DepositAmount:      decimal.NewFromFloat(deposit),
		LateFeePerHour:     decimal.NewFromFloat(lateFeePerHour),
		DefaultWindow:      defaultWindow,
		Currency:           currency,
	}
}

// Charge разбивка стоимости.
type Charge struct {
	Base  decimal.Decimal
	Tax   decimal.Decimal
	Total decimal.Decimal
}

var two = decimal.NewFromInt(2)

// Quote считает стоимость непрерывного окна использования.
// Первый час тарифицируется целиком, остаток округляется вверх
// до получаса и оплачивается по AdditionalHourRate, база ограничена DailyCap.
func (t Tariff) Quote(elapsed time.Duration) Charge {
	base := t.FirstHourRate
	if elapsed > time.Hour {
		extra := elapsed - time.Hour
		halfBlocks := int64(extra / (30 * time.Minute))
		if extra%(30*time.Minute) != 0 {
			halfBlocks++
		}
		base = base.Add(t.AdditionalHourRate.Mul(decimal.NewFromInt(halfBlocks)).Div(two))
	}
	if base.GreaterThan(t.DailyCap) {
		base = t.DailyCap
	}
	return t.chargeFromBase(base)
}

// ExtensionQuote считает инкрементальную стоимость продления на extraHours.
// Часы продления всегда лежат за пределами первого часа, поэтому
// тарифицируются только по AdditionalHourRate.
func (t Tariff) ExtensionQuote(extraHours int) Charge {
	base := t.AdditionalHourRate.Mul(decimal.NewFromInt(int64(extraHours)))
	return t.chargeFromBase(base)
}

// IncrementWithinCap ограничивает инкремент так, чтобы суммарная база
// billedBase+inc не превышала DailyCap, и пересчитывает налог на
// фактически добавленную часть. Каждый инкремент считается независимо
// и суммируется, чтобы не пересчитывать уже оплаченные часы.
func (t Tariff) IncrementWithinCap(billedBase, incBase decimal.Decimal) Charge {
	room := t.DailyCap.Sub(billedBase)
	if room.IsNegative() {
		room = decimal.Zero
	}
	if incBase.GreaterThan(room) {
		incBase = room
	}
	return t.chargeFromBase(incBase)
}

// LateFee считает штраф: каждый начатый час просрочки по LateFeePerHour.
func (t Tariff) LateFee(overdue time.Duration) decimal.Decimal {
	if overdue <= 0 {
		return decimal.Zero.Round(2)
	}
	hours := int64(overdue / time.Hour)
	if overdue%time.Hour != 0 {
		hours++
	}
	return t.LateFeePerHour.Mul(decimal.NewFromInt(hours)).Round(2)
}

// DepositReturn считает возврат депозита:
// max(0, deposit - (total + lateFee)). Штраф вычитается вместе с
// полной суммой аренды, частичная формула из старых версий не используется.
func DepositReturn(deposit, total, lateFee decimal.Decimal) decimal.Decimal {
	ret := deposit.Sub(total.Add(lateFee))
	if ret.IsNegative() {
		return decimal.Zero.Round(2)
	}
	return ret.Round(2)
}

func (t Tariff) chargeFromBase(base decimal.Decimal) Charge {
	base = base.Round(2)
	tax := base.Mul(t.TaxRate).Round(2)
	return Charge{
		Base:  base,
		Tax:   tax,
		Total: base.Add(tax),
	}
}
