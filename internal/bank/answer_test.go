package bank

import "testing"

func TestCheckAnswer_Text(t *testing.T) {
	q := Question{Format: FormatFreeText, AnswerType: AnswerTypeText, Answer: "Buenos Aires"}

	tests := []struct {
		input string
		want  bool
	}{
		{"Buenos Aires", true},
		{"  buenos   aires ", true},
		{"BUENOS AIRES", true},
		{"Buenos", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := CheckAnswer(tc.input, q); got != tc.want {
			t.Errorf("CheckAnswer(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestCheckAnswer_Integer(t *testing.T) {
	q := Question{Format: FormatFreeText, AnswerType: AnswerTypeInteger, Answer: "42"}

	tests := []struct {
		input string
		want  bool
	}{
		{"42", true},
		{" 42 ", true},
		{"042", true},
		{"43", false},
		{"abc", false},
	}
	for _, tc := range tests {
		if got := CheckAnswer(tc.input, q); got != tc.want {
			t.Errorf("CheckAnswer(%q, 42/integer) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestCheckAnswer_Decimal(t *testing.T) {
	q := Question{Format: FormatFreeText, AnswerType: AnswerTypeDecimal, Answer: "3.5"}

	for input, want := range map[string]bool{"3.5": true, "3.50": true, "3.6": false} {
		if got := CheckAnswer(input, q); got != want {
			t.Errorf("CheckAnswer(%q, 3.5/decimal) = %v, want %v", input, got, want)
		}
	}
}

func TestCheckAnswer_Fraction(t *testing.T) {
	q := Question{Format: FormatFreeText, AnswerType: AnswerTypeFraction, Answer: "1/2"}

	for input, want := range map[string]bool{"1/2": true, "2/4": true, "-1/-2": true, "1/3": false, "1/0": false} {
		if got := CheckAnswer(input, q); got != want {
			t.Errorf("CheckAnswer(%q, 1/2/fraction) = %v, want %v", input, got, want)
		}
	}
}

func TestCheckAnswer_MultipleChoice(t *testing.T) {
	q := Question{
		Format:     FormatMultipleChoice,
		AnswerType: AnswerTypeText,
		Answer:     "Mars",
		Choices:    []string{"Venus", "Mars", "Jupiter", "Saturn"},
	}

	tests := []struct {
		input string
		want  bool
	}{
		{"2", true},
		{"b", true},
		{"B", true},
		{"mars", true},
		{"1", false},
		{"a", false},
		{"5", false},
		{"Venus", false},
	}
	for _, tc := range tests {
		if got := CheckAnswer(tc.input, q); got != tc.want {
			t.Errorf("CheckAnswer(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestCheckAnswer_NumericChoicesPreferText(t *testing.T) {
	q := Question{
		Format:     FormatMultipleChoice,
		AnswerType: AnswerTypeInteger,
		Answer:     "3",
		Choices:    []string{"4", "3", "2", "1"},
	}

	if !CheckAnswer("3", q) {
		t.Error("expected literal choice 3 to match")
	}
	if !CheckAnswer("b", q) {
		t.Error("expected letter b to match choice 3")
	}
}

func TestGrade_PayloadIsCorrectAnswer(t *testing.T) {
	q := Question{Format: FormatFreeText, AnswerType: AnswerTypeText, Answer: "Paris"}

	res, err := Grade(q, "London")
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if res.Correct {
		t.Error("expected incorrect")
	}
	if res.Payload == nil || *res.Payload != "Paris" {
		t.Errorf("Payload = %v, want Paris", res.Payload)
	}
}

func TestChoiceLabel(t *testing.T) {
	if got := ChoiceLabel(0) + ChoiceLabel(3); got != "AD" {
		t.Errorf("labels = %q, want AD", got)
	}
}
