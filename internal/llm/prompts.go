package llm

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"strconv"
	"strings"
)

var (
	//go:embed prompts/system.txt
	systemPrompt string
	//go:embed prompts/junior.txt
	juniorPrompt string
	//go:embed prompts/mid.txt
	midPrompt string
	//go:embed prompts/senior.txt
	seniorPrompt string
	//go:embed prompts/resume_schema.json
	resumeSchema []byte
)

var compactSchema = mustCompact(resumeSchema)

func mustCompact(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		panic("llm: embedded resume schema is not valid JSON: " + err.Error())
	}
	return buf.String()
}

// SystemPrompt returns the fixed ATS system prompt.
func SystemPrompt() string {
	return strings.TrimSpace(systemPrompt)
}

// SchemaDescription returns the compact JSON schema description embedded in prompts.
func SchemaDescription() string {
	return compactSchema
}

// TierPromptTemplate returns the user prompt template for a seniority tier name
// ("junior", "mid" or "senior") and whether the tier was recognized.
func TierPromptTemplate(tier string) (string, bool) {
	switch tier {
	case "junior":
		return juniorPrompt, true
	case "mid":
		return midPrompt, true
	case "senior":
		return seniorPrompt, true
	default:
		return midPrompt, false
	}
}

// BuildResumePrompt renders the system and user messages for one resume.
func BuildResumePrompt(tier, category, role string, years int) []Message {
	template, _ := TierPromptTemplate(tier)
	replacer := strings.NewReplacer(
		"{{ROLE}}", role,
		"{{CATEGORY}}", category,
		"{{YEARS}}", strconv.Itoa(years),
		"{{SCHEMA}}", compactSchema,
	)
	return []Message{
		{Role: "system", Content: SystemPrompt()},
		{Role: "user", Content: strings.TrimSpace(replacer.Replace(template))},
	}
}
