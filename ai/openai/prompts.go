package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/nlqengine/core"
)

const generationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "sql": {
      "type": "string"
    }
  },
  "required": ["sql"],
  "additionalProperties": false
}`

const generationPromptTemplate = `You translate questions about a %s database into a single SQL query.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Write exactly one read-only SELECT statement (a leading WITH clause is allowed).
- Use only the tables and columns listed below. Never invent tables or columns.
- Quote identifiers only when they contain spaces or mixed case.
- Prefer case-insensitive comparisons for free-text filters.
- Do not end the statement with a semicolon.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Database schema:

%s
Example:
Question: How many employees are there?
Output: {"sql": "SELECT COUNT(*) AS employee_count FROM employees"}`

// buildSystemPrompt renders the generation instructions for a dialect and schema.
func buildSystemPrompt(dialect core.Dialect, schema *core.SchemaSnapshot) string {
	return fmt.Sprintf(generationPromptTemplate, dialectName(dialect), generationResponseSchema, formatSchema(schema))
}

func dialectName(dialect core.Dialect) string {
	switch dialect {
	case core.DialectSQLite:
		return "SQLite"
	case core.DialectDuckDB:
		return "DuckDB"
	default:
		return "SQL"
	}
}

// formatSchema renders a snapshot as plain text, tables in lexical order and
// columns in store order.
func formatSchema(schema *core.SchemaSnapshot) string {
	var sb strings.Builder
	for _, name := range schema.TableNames() {
		table := schema.Tables[name]
		fmt.Fprintf(&sb, "Table: %s\n", name)
		sb.WriteString("Columns:\n")
		for _, column := range table.Columns {
			fmt.Fprintf(&sb, "  - %s (%s)\n", column.Name, column.Type)
		}
		if len(table.ForeignKeys) > 0 {
			sb.WriteString("Foreign keys:\n")
			for _, fk := range table.ForeignKeys {
				fmt.Fprintf(&sb, "  - (%s) references %s(%s)\n",
					strings.Join(fk.ConstrainedColumns, ", "),
					fk.ReferredTable,
					strings.Join(fk.ReferredColumns, ", "))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
