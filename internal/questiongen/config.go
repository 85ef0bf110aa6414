package questiongen

import "github.com/abhisek/timedquiz/internal/bank"

// Config controls the LLMGenerator.
type Config struct {
	// Validators run in order on every generated question; the first
	// failure drops the question.
	Validators []Validator

	// BatchSize is how many questions one request asks for.
	BatchSize int

	// MaxRounds bounds the number of requests per Generate call.
	MaxRounds int

	MaxTokens   int
	Temperature float64

	// MaxPriorQuestions caps the already-generated prompts listed in each
	// request to steer the model away from repeats.
	MaxPriorQuestions int
}

// DefaultConfig returns the standard validator chain and limits.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&ConsistencyValidator{},
		},
		BatchSize:         10,
		MaxRounds:         6,
		MaxTokens:         4096,
		Temperature:       0.7,
		MaxPriorQuestions: 30,
	}
}

// Input describes the bank to generate.
type Input struct {
	Topic string
	Title string
	Count int

	// Audience is free text such as "grade 4" or "first-year nursing
	// students".
	Audience string

	// Format restricts the question format; empty allows both.
	Format bank.Format

	// Instructions are appended verbatim to the prompt.
	Instructions string

	Settings bank.Settings
}
