package forecast

// Outcome names the rule that decided a forecast.
type Outcome string

const (
	OutcomeFitted       Outcome = "fitted"
	OutcomeInsufficient Outcome = "insufficient"
	OutcomeConstant     Outcome = "constant"
	OutcomeNaN          Outcome = "nan_fallback"
	OutcomeShortBase    Outcome = "short_base"
)

// Substitute is the replacement used when a rule fires.
type Substitute string

const (
	SubNone      Substitute = ""           // keep the model output
	SubEmpty     Substitute = "empty"      // produce no days
	SubConstant  Substitute = "constant"   // repeat the (constant) input value
	SubLastValue Substitute = "last_value" // repeat the last known value
	SubZeroDiff  Substitute = "zero_diff"  // predict a zero seasonal difference
)

// decisionTable maps mode and condition to the substitute forecast.
// The iterative row applies per chunk.
var decisionTable = map[Mode]map[Outcome]Substitute{
	ModePlain: {
		OutcomeInsufficient: SubEmpty,
		OutcomeConstant:     SubConstant,
		OutcomeNaN:          SubLastValue,
	},
	ModeSeasonal: {
		OutcomeInsufficient: SubEmpty,
		OutcomeConstant:     SubConstant,
		OutcomeNaN:          SubZeroDiff,
	},
	ModeIterative: {
		OutcomeInsufficient: SubEmpty,
		OutcomeConstant:     SubConstant,
		OutcomeNaN:          SubZeroDiff,
		OutcomeShortBase:    SubLastValue,
	},
	ModeLinear: {
		OutcomeInsufficient: SubEmpty,
		OutcomeConstant:     SubConstant,
		OutcomeNaN:          SubLastValue,
	},
}

// Policy returns the substitute for a condition in a mode, or SubNone when
// the table has no rule for it.
func Policy(mode Mode, cond Outcome) Substitute {
	return decisionTable[mode][cond]
}

// substitute builds the replacement vector for sub over values.
func substitute(sub Substitute, steps int, values []float64) []float64 {
	if sub == SubEmpty || steps <= 0 {
		return nil
	}
	var v float64
	switch sub {
	case SubConstant:
		v = values[0]
	case SubLastValue:
		if len(values) > 0 {
			v = values[len(values)-1]
		}
	case SubZeroDiff:
		v = 0
	}
	out := make([]float64, steps)
	for i := range out {
		out[i] = v
	}
	return out
}
