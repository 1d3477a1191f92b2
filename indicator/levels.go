package indicator

// PivotLevels are the classic floor-trader pivot points derived from a single
// high/low/close triple.
type PivotLevels struct {
	Pivot float64 `json:"pivot"`
	R1    float64 `json:"r1"`
	R2    float64 `json:"r2"`
	R3    float64 `json:"r3"`
	S1    float64 `json:"s1"`
	S2    float64 `json:"s2"`
	S3    float64 `json:"s3"`
}

func PivotPoints(high, low, close float64) PivotLevels {
	p := (high + low + close) / 3
	return PivotLevels{
		Pivot: p,
		R1:    2*p - low,
		R2:    p + (high - low),
		R3:    high + 2*(p-low),
		S1:    2*p - high,
		S2:    p - (high - low),
		S3:    low - 2*(high-p),
	}
}

// FibLevels are retracement levels between a swing high and a swing low,
// measured down from the high.
type FibLevels struct {
	Level0   float64 `json:"level_0"`
	Level236 float64 `json:"level_236"`
	Level382 float64 `json:"level_382"`
	Level500 float64 `json:"level_500"`
	Level618 float64 `json:"level_618"`
	Level786 float64 `json:"level_786"`
	Level100 float64 `json:"level_100"`
}

func FibonacciRetracement(high, low float64) FibLevels {
	r := high - low
	return FibLevels{
		Level0:   high,
		Level236: high - 0.236*r,
		Level382: high - 0.382*r,
		Level500: high - 0.5*r,
		Level618: high - 0.618*r,
		Level786: high - 0.786*r,
		Level100: low,
	}
}
