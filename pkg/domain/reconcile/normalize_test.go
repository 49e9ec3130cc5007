package reconcile_test

import (
	"testing"

	"github.com/laurel-hq/laurel/pkg/domain/reconcile"
	"github.com/m-mizutani/gt"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "John Smith", "john smith"},
		{"diacritics", "José Pérez Núñez", "jose perez nunez"},
		{"punctuation runs collapse", "O'Brien--Smith,  Jr.", "o brien smith jr"},
		{"leading and trailing noise", "  ¡Ana!  ", "ana"},
		{"digits kept", "Agent 007", "agent 007"},
		{"empty", "", ""},
		{"only punctuation", " ,.- ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, reconcile.Normalize(tt.input)).Equal(tt.want)
		})
	}
}

func TestBuildKey(t *testing.T) {
	t.Run("token order does not matter", func(t *testing.T) {
		gt.Value(t, reconcile.BuildKey("John Smith")).Equal(reconcile.BuildKey("Smith John"))
	})

	t.Run("sorted tokens", func(t *testing.T) {
		gt.Value(t, reconcile.BuildKey("Pérez, Ana María")).Equal("ana maria perez")
	})

	t.Run("empty", func(t *testing.T) {
		gt.Value(t, reconcile.BuildKey("   ")).Equal("")
	})
}

func TestCandidateKeys(t *testing.T) {
	t.Run("comma form includes key of flipped order", func(t *testing.T) {
		keys := reconcile.CandidateKeys("Gomez, Maria")
		gt.Array(t, keys).Has(reconcile.BuildKey("Maria Gomez"))
	})

	t.Run("plain name", func(t *testing.T) {
		keys := reconcile.CandidateKeys("Maria Gomez")
		gt.Array(t, keys).Length(1)
		gt.Value(t, keys[0]).Equal("gomez maria")
	})

	t.Run("no duplicate keys", func(t *testing.T) {
		keys := reconcile.CandidateKeys("Smith, John")
		gt.Array(t, keys).Length(1)
	})

	t.Run("empty input yields empty set", func(t *testing.T) {
		gt.Array(t, reconcile.CandidateKeys("")).Length(0)
		gt.Array(t, reconcile.CandidateKeys(" , ")).Length(0)
	})
}
