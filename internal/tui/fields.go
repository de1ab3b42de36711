// internal/tui/fields.go
//
// Filter form fields. Each field keeps a raw shadow value alongside the
// textinput: capitalization fields display thousands-grouped text while
// blurred but always expose the plain digits for parameter assembly.

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"dipscan/internal/market"
)

type fieldKind int

const (
	kindCap fieldKind = iota
	kindPercent
	kindCount
)

type numericField struct {
	label  string
	kind   fieldKind
	shadow string
	input  textinput.Model
}

func newNumericField(label, placeholder string, kind fieldKind) numericField {
	input := textinput.New()
	input.Placeholder = placeholder
	input.Prompt = ""
	input.CharLimit = 24
	input.Width = 18
	return numericField{label: label, kind: kind, input: input}
}

// Value returns the raw text used for parameter assembly, never the
// grouped display form.
func (f *numericField) Value() string {
	return f.shadow
}

// Focus shows the raw value for editing.
func (f *numericField) Focus() tea.Cmd {
	f.input.SetValue(f.shadow)
	cmd := f.input.Focus()
	f.input.CursorEnd()
	return cmd
}

// Blur re-applies display formatting for capitalization fields.
func (f *numericField) Blur() {
	f.syncShadow()
	f.input.Blur()
	f.input.SetValue(f.display())
}

// Update forwards msg to the textinput and resynchronizes the shadow.
func (f *numericField) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	f.syncShadow()
	return cmd
}

// Reset clears both the shadow and the visible text.
func (f *numericField) Reset() {
	f.shadow = ""
	f.input.SetValue("")
}

// View renders the input; the label is composed by the caller.
func (f *numericField) View() string {
	return f.input.View()
}

func (f *numericField) Focused() bool {
	return f.input.Focused()
}

func (f *numericField) syncShadow() {
	raw := strings.TrimSpace(f.input.Value())
	switch f.kind {
	case kindCap, kindCount:
		f.shadow = digitsOnly(raw)
	default:
		f.shadow = raw
	}
}

func (f *numericField) display() string {
	if f.shadow == "" {
		return ""
	}
	if f.kind == kindCap {
		return market.GroupDigits(f.shadow)
	}
	return f.shadow
}

func digitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
