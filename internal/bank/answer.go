package bank

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/timedquiz/internal/session"
)

// Grade is the session grader for bank questions. The payload carries the
// canonical answer so the front end can show it after a wrong attempt.
func Grade(q Question, response string) (session.GradeResult[string], error) {
	answer := q.Answer
	return session.GradeResult[string]{
		Correct: CheckAnswer(response, q),
		Payload: &answer,
	}, nil
}

// CheckAnswer compares the learner's input against the correct answer.
//
// Normalization rules:
// - Whitespace is trimmed and inner runs collapsed
// - Comparison is case-insensitive
// - For fractions: equivalent fractions are accepted (e.g., "2/4" matches "1/2")
// - For decimals: trailing zeros are ignored (e.g., "3.50" matches "3.5")
// - For integers: leading zeros are ignored (e.g., "007" matches "7")
// - For multiple choice: matches the choice text, its 1-based number or its letter
func CheckAnswer(response string, q Question) bool {
	response = strings.TrimSpace(response)
	if response == "" {
		return false
	}

	if q.Format == FormatMultipleChoice && !isChoiceText(response, q) {
		if choice, ok := ChoiceFor(response, q); ok {
			response = choice
		}
	}

	got, err := normalizeAnswer(response, q.AnswerType)
	if err != nil {
		return false
	}
	want, err := normalizeAnswer(q.Answer, q.AnswerType)
	if err != nil {
		return false
	}
	return got == want
}

// ChoiceFor resolves a choice reference ("2", "b", "B") to its text.
func ChoiceFor(ref string, q Question) (string, bool) {
	ref = strings.TrimSpace(ref)
	if idx, err := strconv.Atoi(ref); err == nil && idx >= 1 && idx <= len(q.Choices) {
		return q.Choices[idx-1], true
	}
	if len(ref) == 1 {
		idx := int(strings.ToLower(ref)[0] - 'a')
		if idx >= 0 && idx < len(q.Choices) {
			return q.Choices[idx], true
		}
	}
	return "", false
}

// isChoiceText reports whether response is literally one of the choices,
// which takes precedence over reading it as a number or letter.
func isChoiceText(response string, q Question) bool {
	for _, c := range q.Choices {
		if strings.EqualFold(strings.TrimSpace(c), response) {
			return true
		}
	}
	return false
}

// ChoiceLabel returns the letter shown next to choice i.
func ChoiceLabel(i int) string {
	return string(rune('A' + i))
}

// normalizeAnswer normalizes an answer string for comparison.
func normalizeAnswer(answer string, answerType AnswerType) (string, error) {
	answer = strings.TrimSpace(answer)

	switch answerType {
	case AnswerTypeInteger:
		n, err := strconv.ParseInt(answer, 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid integer: %w", err)
		}
		return strconv.FormatInt(n, 10), nil

	case AnswerTypeDecimal:
		f, err := strconv.ParseFloat(answer, 64)
		if err != nil {
			return "", fmt.Errorf("invalid decimal: %w", err)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil

	case AnswerTypeFraction:
		num, den, err := parseFraction(answer)
		if err != nil {
			return "", err
		}
		if den == 0 {
			return "", fmt.Errorf("zero denominator")
		}
		if den < 0 {
			num = -num
			den = -den
		}
		g := gcd(abs(num), den)
		if g == 0 {
			g = 1
		}
		return fmt.Sprintf("%d/%d", num/g, den/g), nil

	default:
		return strings.ToLower(strings.Join(strings.Fields(answer), " ")), nil
	}
}

// parseFraction parses "a/b" into numerator and denominator. A bare
// integer is read as a/1.
func parseFraction(s string) (int64, int64, error) {
	parts := strings.SplitN(s, "/", 2)
	num, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid numerator: %w", err)
	}
	if len(parts) == 1 {
		return num, 1, nil
	}
	den, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid denominator: %w", err)
	}
	return num, den, nil
}

// gcd returns the greatest common divisor of a and b.
// Both a and b must be non-negative.
func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
