package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmployerCanonicalForms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "ACME", "ACME"},
		{"suffix with dot", "ACME LDA.", "ACME"},
		{"comma before suffix", "Acme, Lda", "ACME"},
		{"lowercase", "acme lda", "ACME"},
		{"limitada", "Acme Limitada", "ACME"},
		{"unipessoal lda", "Transportes Silva Unipessoal Lda", "TRANSPORTES SILVA"},
		{"sociedade anonima", "Banco Azul Sociedade Anónima", "BANCO AZUL"},
		{"sa with dots", "Construções Norte, S.A.", "CONSTRUCOES NORTE"},
		{"ltd", "Northwind Ltd", "NORTHWIND"},
		{"diacritics", "Padaria São João Lda", "PADARIA SAO JOAO"},
		{"inner whitespace", "  Acme   Holdings  ", "ACME HOLDINGS"},
		{"name that is only a suffix", "Lda", "LDA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Employer(tt.in))
		})
	}
}

func TestEmployerIdempotent(t *testing.T) {
	samples := []string{
		"ACME LDA.",
		"Acme, Lda",
		"acme lda",
		"Padaria São João Lda",
		"Construções Norte, S.A.",
		"Transportes Silva Unipessoal Lda",
		"plain name",
	}
	for _, s := range samples {
		once := Employer(s)
		assert.Equal(t, once, Employer(once), "normalize(normalize(%q))", s)
	}
}

func TestEmployerSameCanonicalForm(t *testing.T) {
	a := Employer("ACME LDA.")
	b := Employer("Acme, Lda")
	c := Employer("acme lda")
	assert.Equal(t, a, b)
	assert.Equal(t, b, c)
	assert.Equal(t, "ACME", a)
}
