package enums

import "fmt"

// NoteVisibility maps to the note_visibility enum in Postgres.
type NoteVisibility string

const (
	NoteVisibilityInternal       NoteVisibility = "internal"
	NoteVisibilityPartnerVisible NoteVisibility = "partner_visible"
)

var validNoteVisibilities = []NoteVisibility{
	NoteVisibilityInternal,
	NoteVisibilityPartnerVisible,
}

// String implements fmt.Stringer.
func (n NoteVisibility) String() string {
	return string(n)
}

// IsValid reports whether the value matches the canonical note_visibility enum.
func (n NoteVisibility) IsValid() bool {
	for _, candidate := range validNoteVisibilities {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNoteVisibility converts raw input into NoteVisibility.
func ParseNoteVisibility(value string) (NoteVisibility, error) {
	for _, candidate := range validNoteVisibilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid note visibility %q", value)
}
