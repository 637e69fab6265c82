package metrics

import (
	"math/big"

	"github.com/cockroachdb/apd/v3"
)

const (
	kpiScale = -2
	// exactDigits covers the full decimal expansion of any float64 KPI quotient.
	exactDigits = 1100
)

var decimalCtx = func() *apd.Context {
	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfEven
	return ctx
}()

// ratio returns num/den*scale rounded to two decimals. The quotient is taken
// in float64 and its exact binary value is rounded half-even, so 33/200 gives
// 0.17 (0.165 is stored slightly above the tie) while 1/8 gives 0.12.
// den must be > 0.
func ratio(num, den, scale int64) float64 {
	q := float64(num) / float64(den) * float64(scale)

	var exact, out apd.Decimal
	if _, _, err := exact.SetString(new(big.Float).SetFloat64(q).Text('f', exactDigits)); err != nil {
		return 0
	}
	if _, err := decimalCtx.Quantize(&out, &exact, kpiScale); err != nil {
		return 0
	}
	f, err := out.Float64()
	if err != nil {
		return 0
	}
	return f
}
