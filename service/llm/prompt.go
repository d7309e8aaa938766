package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"
)

const systemPrompt = `You explain Sui blockchain transactions to people who are not blockchain experts.
Only use facts present in the transaction data you are given. Respond with a single JSON object and nothing else.`

const fullSchema = `{
  "overview": "one or two sentence overview",
  "plain_english": {
    "simple": "explanation for a complete beginner",
    "detailed": "explanation for a regular crypto user",
    "technical": "explanation for a developer"
  },
  "classification": {"category": "defi|nft|transfer|governance|system|other", "subcategory": "string", "confidence": 0.0},
  "transaction_type": {"name": "string", "description": "string"},
  "detailed_flow": ["ordered step", "..."],
  "technical_details": {"gas_analysis": "string", "object_changes": "string", "move_calls": "string"},
  "security": {"risk_level": "low|medium|high", "concerns": ["string"], "recommendations": ["string"]},
  "educational": {"concepts": ["string"], "learn_more": "string"}
}`

const simpleSchema = `{
  "overview": "one or two sentence overview",
  "plain_english": {"simple": "explanation for a complete beginner"}
}`

var userPrompt = template.Must(template.New("user").Parse(`Explain this {{.Type}} transaction.

Transaction data:
{{.Data}}

Respond with JSON matching exactly this schema:
{{.Schema}}
`))

type promptData struct {
	Type   string
	Data   string
	Schema string
}

func schemaFor(mode Mode) string {
	if mode == ModeSimple {
		return simpleSchema
	}
	return fullSchema
}

// RenderPrompt returns the user prompt for a projection.
func RenderPrompt(p Projection, mode Mode) (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal projection: %w", err)
	}

	var buf bytes.Buffer
	err = userPrompt.Execute(&buf, promptData{
		Type:   p.Type,
		Data:   string(data),
		Schema: schemaFor(mode),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}
