package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/timedquiz/internal/bank"
	"github.com/abhisek/timedquiz/internal/llm"
)

const systemPrompt = `You write questions for a timed quiz.

Rules:
- Every question is self-contained and has exactly one correct answer.
- Use plain text. No Markdown, no LaTeX.
- "free_text" questions have a short answer the learner can type: a word, a name, or a number.
- "multiple_choice" questions have 3 to 5 choices, exactly one of which equals the answer. Distractors should be plausible.
- answer_type is "integer", "decimal" or "fraction" (like 3/4) when the answer is a number of that kind, otherwise "text".
- Keep explanations to one or two sentences.
- Do not repeat or rephrase any question from the "already written" list.`

// batchSchema asks for a list of bank questions.
var batchSchema = &llm.Schema{
	Name:        "question_batch",
	Description: "A batch of quiz questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    bank.QuestionDefinition,
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

func buildUserMessage(in Input, want int, prior []string, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	if in.Audience != "" {
		fmt.Fprintf(&b, "Audience: %s\n", in.Audience)
	}
	switch in.Format {
	case bank.FormatFreeText, bank.FormatMultipleChoice:
		fmt.Fprintf(&b, "Format: %s only\n", in.Format)
	default:
		b.WriteString("Format: mix free_text and multiple_choice\n")
	}
	fmt.Fprintf(&b, "Number of questions: %d\n", want)

	b.WriteString("\nAlready written:\n")
	b.WriteString(buildDedup(prior, cfg.MaxPriorQuestions))

	if in.Instructions != "" {
		b.WriteString("\n\nAdditional instructions:\n")
		b.WriteString(in.Instructions)
	}
	return b.String()
}
