package ollama

import (
	"fmt"

	"github.com/kirillkom/training-portal/internal/core/ports"
)

func buildSummaryPrompt(text string, opts ports.SummaryOptions) string {
	return fmt.Sprintf(`You summarize internal training documents for employees.
Write one plain-text paragraph of %d to %d words covering the key obligations and topics.
Do not add headings, bullet points or commentary.

Document:
%s`, opts.MinLength, opts.MaxLength, text)
}
