package questiongen

import (
	"fmt"
	"strings"
	"unicode"
)

// buildDedup lists the most recent max prompts, or "None".
func buildDedup(prior []string, max int) string {
	if len(prior) == 0 {
		return "None"
	}
	if max > 0 && len(prior) > max {
		prior = prior[len(prior)-max:]
	}
	var b strings.Builder
	for i, p := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	return strings.TrimRight(b.String(), "\n")
}

// promptKey folds a prompt to letters and digits so trivially reworded
// repeats ("What's 2+2?" vs "whats 2 + 2") collide.
func promptKey(prompt string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, prompt)
}
