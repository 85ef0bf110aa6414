package bank

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
version: "1.2.0"
title: Capitals
topic: geography
settings:
  max_attempts: 3
  attempt_seconds: 120
questions:
  - id: fr
    prompt: Capital of France?
    answer: Paris
  - id: mars
    prompt: Which planet is red?
    choices: [Venus, Mars, Jupiter]
    answer: Mars
    explanation: Iron oxide.
  - id: half
    prompt: One half as a fraction?
    answer_type: fraction
    answer: 1/2
`

func TestParse_YAML(t *testing.T) {
	b, err := Parse([]byte(sampleYAML), YAML)
	require.NoError(t, err)

	assert.Equal(t, "Capitals", b.Title)
	assert.Equal(t, 3, b.Settings.MaxAttempts)
	assert.Equal(t, 2*time.Minute, b.Settings.AttemptDuration())
	assert.Zero(t, b.Settings.ReviewDuration())
	require.Len(t, b.Questions, 3)

	assert.Equal(t, FormatFreeText, b.Questions[0].Format)
	assert.Equal(t, AnswerTypeText, b.Questions[0].AnswerType)
	assert.Equal(t, FormatMultipleChoice, b.Questions[1].Format)
	assert.Equal(t, AnswerTypeFraction, b.Questions[2].AnswerType)
}

func TestParse_JSON(t *testing.T) {
	doc := `{"version":"v1.0.0","questions":[{"id":"a","prompt":"2+2?","answer_type":"integer","answer":"4"}]}`
	b, err := Parse([]byte(doc), JSON)
	require.NoError(t, err)
	assert.True(t, CheckAnswer("04", b.Questions[0]))
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing questions", `version: "1.0.0"`},
		{"empty questions", "version: \"1.0.0\"\nquestions: []"},
		{"unknown field", "version: \"1.0.0\"\nquestions:\n  - {id: a, prompt: p, answer: x, colour: red}"},
		{"bad format", "version: \"1.0.0\"\nquestions:\n  - {id: a, prompt: p, answer: x, format: essay}"},
		{"missing answer", "version: \"1.0.0\"\nquestions:\n  - {id: a, prompt: p}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), YAML)
			assert.ErrorIs(t, err, ErrInvalidBank)
		})
	}
}

func TestParse_ConsistencyErrors(t *testing.T) {
	doc := `
version: "1.0.0"
questions:
  - {id: a, prompt: p, answer: x}
  - {id: a, prompt: q, answer: y}
  - {id: b, prompt: r, choices: [x, y], answer: z}
  - {id: c, prompt: s, answer_type: integer, answer: seven}
`
	_, err := Parse([]byte(doc), YAML)
	require.ErrorIs(t, err, ErrInvalidBank)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	for _, want := range []string{`"a": duplicate id`, `"b": answer "z" must match exactly one choice`, `"c": answer "seven"`} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestCheckVersion(t *testing.T) {
	for _, v := range []string{"1.0.0", "v1.4.2", "1.0.0-beta.1"} {
		assert.NoError(t, CheckVersion(v), v)
	}
	for _, v := range []string{"2.0.0", "v0.9.0", "one", ""} {
		assert.ErrorIs(t, CheckVersion(v), ErrUnsupportedVersion, v)
	}
}

func TestParse_RejectsFutureMajor(t *testing.T) {
	doc := strings.Replace(sampleYAML, `"1.2.0"`, `"2.0.0"`, 1)
	_, err := Parse([]byte(doc), YAML)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestSaveLoad(t *testing.T) {
	b, err := Parse([]byte(sampleYAML), YAML)
	require.NoError(t, err)
	dir := t.TempDir()

	for _, name := range []string{"bank.yaml", "bank.json"} {
		path := filepath.Join(dir, "out", name)
		require.NoError(t, Save(path, b))

		got, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, b, got, name)
	}
}

func TestMarshal_DefaultsVersion(t *testing.T) {
	data, err := Marshal(&Bank{Questions: []Question{{ID: "a", Prompt: "p", Answer: "x"}}}, YAML)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 1.0.0")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEncodingFor(t *testing.T) {
	assert.Equal(t, JSON, EncodingFor("x/bank.JSON"))
	assert.Equal(t, YAML, EncodingFor("bank.yml"))
	assert.Equal(t, YAML, EncodingFor("bank"))
}
