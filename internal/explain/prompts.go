package explain

import (
	"fmt"
	"os"

	"github.com/abhisek/carescope/internal/llm"
)

const explainerPrompt = `You explain health screening results to members of the public.
Write at a 6th-grade reading level. Never diagnose; always point to a healthcare
professional for confirmation. Do not invent test values that were not given.`

const nutritionistPrompt = `You are a nutritionist specializing in thyroid health.
Give general, evidence-based food guidance. Never suggest stopping medication.`

var explanationSchema = &llm.Schema{
	Name:        "result-explanation",
	Description: "Plain-language explanation of a screening result",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "Two to four sentence explanation",
			},
			"tips": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"maxItems":    4,
				"description": "Short practical next steps",
			},
		},
		"required":             []string{"summary", "tips"},
		"additionalProperties": false,
	},
}

var food = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":   map[string]any{"type": "string"},
		"reason": map[string]any{"type": "string"},
	},
	"required":             []string{"name", "reason"},
	"additionalProperties": false,
}

var dietSchema = &llm.Schema{
	Name:        "thyroid-diet",
	Description: "Foods to include and avoid for a thyroid condition",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"include": map[string]any{"type": "array", "items": food, "minItems": 1},
			"avoid":   map[string]any{"type": "array", "items": food, "minItems": 1},
		},
		"required":             []string{"include", "avoid"},
		"additionalProperties": false,
	},
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
