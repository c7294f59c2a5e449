package llm

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of one request.
func (c ModelCost) Cost(in, out int) float64 {
	return (float64(in)*c.InputPerMTok + float64(out)*c.OutputPerMTok) / 1_000_000
}

// LookupCost returns pricing for a model id, or nil if unknown.
func LookupCost(model string) *ModelCost {
	c, ok := modelCosts[model]
	if !ok {
		return nil
	}
	return &c
}

// Prices as of 2026-02.
var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5-20251001":   {1, 5},
	"claude-sonnet-4-20250514":    {3, 15},
	"gpt-4o-mini":                 {0.15, 0.6},
	"gpt-4o":                      {2.5, 10},
	"gemini-2.0-flash":            {0.1, 0.4},
	"gemini-2.0-pro":              {1.25, 10},
	"google/gemini-2.0-flash-exp": {0, 0},
}
