package i18nmig

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDedupeLiterals(t *testing.T) {
	tests := []struct {
		name string
		in   []ExtractedLiteral
		want []ExtractedLiteral
	}{
		{
			name: "normalized duplicates collapse",
			in: []ExtractedLiteral{
				{Text: "Estado", Line: 1},
				{Text: "Estado ", Line: 2},
				{Text: "  Estado\n", Line: 3},
			},
			want: []ExtractedLiteral{{Text: "Estado", Line: 1}},
		},
		{
			name: "attribute then element text",
			in: []ExtractedLiteral{
				{Text: "Cancelar", Attr: "title", Line: 4},
				{Text: "Cancelar", Line: 4},
			},
			want: []ExtractedLiteral{{Text: "Cancelar", Attrs: []string{"title"}, Line: 4}},
		},
		{
			name: "several attributes",
			in: []ExtractedLiteral{
				{Text: "Buscar", Attr: "placeholder"},
				{Text: "Buscar", Attr: "aria-label"},
				{Text: "Buscar", Attr: "placeholder"},
			},
			want: []ExtractedLiteral{{Text: "Buscar", Attr: "placeholder", Attrs: []string{"aria-label"}}},
		},
		{
			name: "punctuation and blanks dropped",
			in: []ExtractedLiteral{
				{Text: " "},
				{Text: "·"},
				{Text: "--"},
				{Text: "Hola"},
			},
			want: []ExtractedLiteral{{Text: "Hola"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := cmp.Diff(tt.want, dedupeLiterals(tt.in)); d != "" {
				t.Errorf("mismatch (-want +got):\n%s", d)
			}
		})
	}
}
