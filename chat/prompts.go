// prompts.go builds the two model prompts. Both are pure functions:
// identical inputs produce identical text, so generation is reproducible
// given a fixed schema and question.
package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/askdb/askdb/db"
)

const conversionSystemPrompt = `You are an expert SQL assistant for a PostgreSQL database. The database schema is:

%s

The user will ask a question about the data in any language. If the question is not in English, first translate it to English. Generate a valid SQL SELECT statement for the question. Never generate any statement other than SELECT. Do not use UNION operations on tables with different column structures.

If the user's request is to add, insert, update, delete, or modify data, or if it is not possible to answer with a SELECT statement, respond with: {"sql": null, "error": "Only read-only SELECT queries are allowed. This request cannot be fulfilled."}
If the request is too broad (like "all data"), respond with: {"sql": null, "error": "Please be more specific about which table or data you want to see."}

Respond ONLY with a JSON object in the format: {"sql": "<SQL query or null>", "error": "<error message or empty>"}. No markdown, no explanation.`

const summarySystemPrompt = `You are a multilingual assistant. Given a SQL query result and the original user question, summarize or explain the result in %s. If the result is empty, state clearly that no matching data was found. Respond ONLY with a JSON object in the format: {"summary": "<your summary in %s>"}. No markdown, no explanation.`

// ConversionSystemPrompt embeds the schema into the SQL-generation
// instructions.
func ConversionSystemPrompt(schema db.SchemaDescriptor) string {
	return fmt.Sprintf(conversionSystemPrompt, FormatSchema(schema))
}

// ConversionUserPrompt carries the user's question and its language tag.
func ConversionUserPrompt(question, language string) string {
	return fmt.Sprintf("User question (%s): %s", language, question)
}

// SummarySystemPrompt instructs the model to answer in the requested
// language.
func SummarySystemPrompt(language string) string {
	return fmt.Sprintf(summarySystemPrompt, language, language)
}

// SummaryUserPrompt embeds the query result alongside the question.
// Rows are rendered as JSON; encoding/json sorts map keys, so the text
// is deterministic for a given result.
func SummaryUserPrompt(question string, rows []map[string]any) string {
	rendered, err := json.Marshal(rows)
	if err != nil {
		rendered = []byte("[]")
	}
	return fmt.Sprintf("SQL query result:\n%s\n\nOriginal user question: %s", rendered, question)
}

// FormatSchema renders the descriptor as a text block for prompt
// injection. Tables are sorted so the output is deterministic.
func FormatSchema(schema db.SchemaDescriptor) string {
	var sb strings.Builder
	for _, table := range schema.Tables() {
		sb.WriteString(fmt.Sprintf("## Table: %s\n", table))
		for _, col := range schema[table] {
			sb.WriteString(fmt.Sprintf("- %s %s\n", col.Name, col.DataType))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
