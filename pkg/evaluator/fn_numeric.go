package evaluator

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/sandrolain/cspexpr/pkg/types"
)

func thisNumber(name string, this any) (float64, error) {
	if f, ok := toFloat(this); ok {
		return f, nil
	}
	return 0, types.Errorf(types.KindType, "Number.prototype.%s requires that 'this' be a Number", name)
}

var numberMethods map[string]types.NativeFunc

func init() {
	numberMethods = map[string]types.NativeFunc{
		"toFixed": func(_ context.Context, this any, args []any) (any, error) {
			f, err := thisNumber("toFixed", this)
			if err != nil {
				return nil, err
			}
			digits := ToIntegerOrInfinity(types.Arg(args, 0))
			if digits < 0 || digits > 100 {
				return nil, types.NewError(types.KindRange, "toFixed() digits argument must be between 0 and 100")
			}
			if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 1e21 {
				return FormatNumber(f), nil
			}
			return strconv.FormatFloat(f, 'f', int(digits), 64), nil
		},
		"toString": func(_ context.Context, this any, args []any) (any, error) {
			f, err := thisNumber("toString", this)
			if err != nil {
				return nil, err
			}
			radix := types.Arg(args, 0)
			if types.IsUndefined(radix) {
				return FormatNumber(f), nil
			}
			r := clampInt(ToIntegerOrInfinity(radix))
			if r < 2 || r > 36 {
				return nil, types.NewError(types.KindRange, "toString() radix must be between 2 and 36")
			}
			if r == 10 || f != math.Trunc(f) || math.IsInf(f, 0) {
				return FormatNumber(f), nil
			}
			return strings.ToLower(strconv.FormatInt(int64(f), r)), nil
		},
		"valueOf": func(_ context.Context, this any, _ []any) (any, error) {
			f, err := thisNumber("valueOf", this)
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}
