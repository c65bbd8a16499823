package convert

import (
	"errors"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/models"
)

func TestAccumulatorAddAndFinalize(t *testing.T) {
	acc := NewAccumulator(10, false, arbor.NewLogger())

	if acc.Active() {
		t.Error("new accumulator should not be active")
	}

	count, err := acc.Add("First clip.")
	if err != nil || count != 1 {
		t.Fatalf("Add() = (%d, %v), want (1, nil)", count, err)
	}
	count, err = acc.Add("  Second clip.  ")
	if err != nil || count != 2 {
		t.Fatalf("Add() = (%d, %v), want (2, nil)", count, err)
	}
	if !acc.Active() {
		t.Error("accumulator with clips should be active")
	}

	clips := acc.Clips()
	if len(clips) != 2 {
		t.Fatalf("Clips() returned %d entries", len(clips))
	}
	if clips[0].ID == "" || clips[0].ID == clips[1].ID {
		t.Errorf("clip ids not unique: %q, %q", clips[0].ID, clips[1].ID)
	}
	if clips[0].AddedAt.IsZero() {
		t.Error("clip timestamp not set")
	}

	combined, err := acc.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	want := "First clip." + clipSeparator + "Second clip."
	if combined.RawText != want {
		t.Errorf("combined text = %q, want %q", combined.RawText, want)
	}
	if combined.SourceHint != models.SourceClipboard {
		t.Errorf("source hint = %q", combined.SourceHint)
	}
	if acc.Count() != 0 {
		t.Errorf("accumulator not emptied, count = %d", acc.Count())
	}
}

func TestAccumulatorRejectsEmptyClip(t *testing.T) {
	acc := NewAccumulator(10, false, arbor.NewLogger())

	count, err := acc.Add("   \n\t ")
	if !errors.Is(err, models.ErrEmptyContent) {
		t.Errorf("Add(blank) error = %v, want ErrEmptyContent", err)
	}
	if count != 0 {
		t.Errorf("blank clip changed the count to %d", count)
	}
}

func TestAccumulatorRejectsOverflow(t *testing.T) {
	acc := NewAccumulator(2, false, arbor.NewLogger())

	acc.Add("one")
	acc.Add("two")
	count, err := acc.Add("three")
	if err == nil {
		t.Fatal("expected error for full accumulator")
	}
	if count != 2 {
		t.Errorf("count after overflow = %d, want 2", count)
	}
}

func TestAccumulatorStrictRequiresResetBeforeNewSession(t *testing.T) {
	acc := NewAccumulator(10, true, arbor.NewLogger())

	if err := acc.Begin(); err != nil {
		t.Fatalf("Begin() on empty accumulator: %v", err)
	}
	acc.Add("first session clip")

	if err := acc.Begin(); err == nil {
		t.Fatal("Begin() with an open strict session should fail")
	}

	acc.Reset()
	if err := acc.Begin(); err != nil {
		t.Errorf("Begin() after Reset: %v", err)
	}
}

func TestAccumulatorNonStrictJoinsOpenSession(t *testing.T) {
	acc := NewAccumulator(10, false, arbor.NewLogger())

	acc.Add("existing clip")
	if err := acc.Begin(); err != nil {
		t.Errorf("Begin() in non-strict mode: %v", err)
	}
	count, err := acc.Add("joining clip")
	if err != nil || count != 2 {
		t.Errorf("Add() = (%d, %v), want (2, nil)", count, err)
	}
}

func TestAccumulatorFinalizeEmpty(t *testing.T) {
	acc := NewAccumulator(10, false, arbor.NewLogger())

	_, err := acc.Finalize()
	if !errors.Is(err, models.ErrEmptyContent) {
		t.Errorf("Finalize() on empty session = %v, want ErrEmptyContent", err)
	}
}

func TestAccumulatorReset(t *testing.T) {
	acc := NewAccumulator(10, true, arbor.NewLogger())

	acc.Add("discard me")
	acc.Reset()
	if acc.Active() {
		t.Error("accumulator still active after Reset")
	}
	if !acc.Strict() {
		t.Error("strict flag lost")
	}
}

func TestSanitizeFirstLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"heading marker stripped", "# My Great Book\n\nBody text.", "My Great Book"},
		{"emphasis stripped", "**Bold Title**\nrest", "Bold Title"},
		{"plain first line", "Just a title\nand more", "Just a title"},
		{"empty input", "   \n\n", "Untitled"},
		{"marker-only line", "---\ncontent", "Untitled"},
		{"long line capped", strings.Repeat("a", 200), strings.Repeat("a", 120)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFirstLine(tt.input); got != tt.want {
				t.Errorf("SanitizeFirstLine(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
