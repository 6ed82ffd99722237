package analysis

import "fmt"

// SystemPrompt frames the model as a contract reviewer that must emit JSON.
const SystemPrompt = `You are an expert contract reviewer for small businesses. Return EXACTLY valid JSON arrays as described. Output ONLY JSON.`

const userPromptTemplate = `%s
Instructions:
- Identify potential risk clauses; for each output:
  {
    "clause_title": string,
    "risk_level": "LOW"|"MEDIUM"|"HIGH",
    "summary": string (<=2 sentences),
    "clause_text": string,
    "start_index": integer,
    "end_index": integer,
    "confidence": number (0-1),
    "metadata": { "types": ["auto_renewal","termination","ip","payment", ...] }
  }
Return only a JSON array (possibly empty).`

const formatCorrection = `

You returned invalid JSON - return strictly a JSON array with the described fields.`

// BuildAnalysisPrompt renders the per-chunk instruction prompt.
func BuildAnalysisPrompt(chunkText string) string {
	return fmt.Sprintf(userPromptTemplate, chunkText)
}

// WithFormatCorrection appends the retry nudge used after a malformed
// response.
func WithFormatCorrection(prompt string) string {
	return prompt + formatCorrection
}
