package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeInto(f *numericField, text string) {
	for _, r := range text {
		f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestCapFieldGroupsDigitsOnBlur(t *testing.T) {
	f := newNumericField("Min ATH cap", "500000", kindCap)
	f.Focus()
	typeInto(&f, "1500000")
	if f.Value() != "1500000" {
		t.Fatalf("shadow = %q, want raw digits", f.Value())
	}
	f.Blur()
	if got := f.input.Value(); got != "1,500,000" {
		t.Fatalf("blurred display = %q, want grouped", got)
	}
	// The shadow stays raw for parameter assembly.
	if f.Value() != "1500000" {
		t.Fatalf("shadow after blur = %q", f.Value())
	}
}

func TestCapFieldShowsRawOnRefocus(t *testing.T) {
	f := newNumericField("Min ATH cap", "500000", kindCap)
	f.Focus()
	typeInto(&f, "250000")
	f.Blur()
	f.Focus()
	if got := f.input.Value(); got != "250000" {
		t.Fatalf("refocused display = %q, want raw", got)
	}
}

func TestCapFieldStripsNonDigits(t *testing.T) {
	f := newNumericField("Min ATH cap", "500000", kindCap)
	f.Focus()
	typeInto(&f, "1a2,3")
	if f.Value() != "123" {
		t.Fatalf("shadow = %q, want 123", f.Value())
	}
}

func TestPercentFieldKeepsTextVerbatim(t *testing.T) {
	f := newNumericField("Min drawdown %", "50", kindPercent)
	f.Focus()
	typeInto(&f, "62.5")
	if f.Value() != "62.5" {
		t.Fatalf("shadow = %q, want 62.5", f.Value())
	}
	f.Blur()
	if got := f.input.Value(); got != "62.5" {
		t.Fatalf("percent display = %q, must not be grouped", got)
	}
}

func TestEmptyFieldStaysEmpty(t *testing.T) {
	f := newNumericField("Max results", "100", kindCount)
	f.Focus()
	f.Blur()
	if f.Value() != "" || f.input.Value() != "" {
		t.Fatalf("untouched field must stay empty: %q / %q", f.Value(), f.input.Value())
	}
}

func TestResetClearsField(t *testing.T) {
	f := newNumericField("Min ATH cap", "500000", kindCap)
	f.Focus()
	typeInto(&f, "42")
	f.Reset()
	if f.Value() != "" || f.input.Value() != "" {
		t.Fatalf("reset must clear both shadow and display")
	}
}
