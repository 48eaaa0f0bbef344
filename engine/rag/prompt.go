package rag

import (
	"fmt"
	"strings"
)

// contextSeparator joins retrieved chunks inside the prompt.
const contextSeparator = "\n\n"

const answerTemplate = `You are an AI assistant providing structured, high-quality responses.
- Context is provided below.
- Respond concisely but with useful details.
- Mention key facts, definitions, and examples.
- Provide a **single** reliable source link that is **directly related** to the text.
- Ensure the source is valid and properly formatted.
- If no suitable source is found, return "No relevant source found."
- Format sources under a 'Sources' section.

**Context:**
%s

**Query:** %s`

const summaryTemplate = `Summarize the following text in bullet points.

**Text to summarize:** %s

**Instructions:**
- Write the summary in a **single paragraph**.
- Do not use bullet points.
- Preserve key facts and important details.
- Do not include any URLs in the summary.
- Retain the source if applicable.
Summary:`

// buildPrompt embeds the retrieved context and the question into the fixed
// answer instruction template.
func buildPrompt(retrieved []string, query string) string {
	return fmt.Sprintf(answerTemplate, strings.Join(retrieved, contextSeparator), query)
}

// buildSummaryPrompt wraps an answer prefix in the summarisation template.
func buildSummaryPrompt(text string) string {
	return fmt.Sprintf(summaryTemplate, text)
}
