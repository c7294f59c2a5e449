package questiongen

import "github.com/abhisek/mathblocks/internal/llm"

// QuestionSchema is the shape the model must return. Build questions
// list block counts per column; equation questions name both pieces.
// Either way the answer is recomputed from the parts before it is kept.
var QuestionSchema = &llm.Schema{
	Name:        "challenge-question",
	Description: "One challenge question for a manipulatives board, with the parts that make up its answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "What the learner is asked to build, in one short plain ASCII sentence",
			},
			"kind": map[string]any{
				"type": "string",
				"enum": []any{"build", "equation"},
			},
			"difficulty": map[string]any{
				"type":    "integer",
				"minimum": 1,
				"maximum": 3,
			},
			"expected": map[string]any{
				"type":        "string",
				"description": "The answer as an integer or a fraction like 3/4",
			},
			"parts": map[string]any{
				"type":        "array",
				"description": "For build: one entry per column used. For equation: exactly two entries with count 1.",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"category": map[string]any{"type": "string"},
						"count":    map[string]any{"type": "integer", "minimum": 1},
					},
					"required":             []any{"category", "count"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"prompt", "kind", "difficulty", "expected", "parts"},
		"additionalProperties": false,
	},
}
