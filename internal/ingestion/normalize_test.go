package ingestion

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "collapses spaces and tabs",
			input: "John \t  Doe",
			want:  "John Doe",
		},
		{
			name:  "keeps single paragraph breaks",
			input: "EXPERIENCE\nAcme Corp",
			want:  "EXPERIENCE\nAcme Corp",
		},
		{
			name:  "collapses blank lines to one newline",
			input: "EXPERIENCE\n\n\n  Acme Corp  \n\nEDUCATION",
			want:  "EXPERIENCE\nAcme Corp\nEDUCATION",
		},
		{
			name:  "strips carriage returns",
			input: "line one\r\nline two",
			want:  "line one\nline two",
		},
		{
			name:  "strips control characters",
			input: "Jane\x00\x07 Smith\x1b",
			want:  "Jane Smith",
		},
		{
			name:  "non-breaking spaces become plain spaces",
			input: "5\u00a0years",
			want:  "5 years",
		},
		{
			name:  "trims edges",
			input: "  \n hello \n ",
			want:  "hello",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"John \t Doe\n\nSkills:  Go,  Python",
		"already clean",
		"  messy \r\n\r\n input \x00 ",
		"multi\n\n\n\nparagraph\n\ndocument",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}

func TestNormalizeNeverGrows(t *testing.T) {
	inputs := []string{
		"a  b",
		"   ",
		strings.Repeat(" x\n\n", 50),
		"plain",
		"",
	}
	for _, in := range inputs {
		assert.LessOrEqual(t, len(Normalize(in)), len(in))
	}
}

func TestNormalizeDropsInvalidUTF8(t *testing.T) {
	in := "Name: John" + string([]byte{0xff, 0xfe}) + " Doe"
	out := Normalize(in)
	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, "John")
	assert.Contains(t, out, "Doe")
}
