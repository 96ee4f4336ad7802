package types

import (
	"encoding/json"
	"testing"
)

func TestLocalizedTextResolve(t *testing.T) {
	tests := []struct {
		name string
		text LocalizedText
		lang string
		want string
	}{
		{
			name: "requested language present",
			text: LocalizedText{"pt-BR": "Empresa", "en": "Company"},
			lang: "en",
			want: "Company",
		},
		{
			name: "falls back to pt-BR",
			text: LocalizedText{"pt-BR": "Empresa", "es-419": "Empresa (es)"},
			lang: "en",
			want: "Empresa",
		},
		{
			name: "falls back to en when pt-BR missing",
			text: LocalizedText{"en": "Company", "es-419": "Empresa (es)"},
			lang: "de",
			want: "Company",
		},
		{
			name: "falls back to es-419 last in chain",
			text: LocalizedText{"es-419": "Empresa (es)"},
			lang: "en",
			want: "Empresa (es)",
		},
		{
			name: "plain string form",
			text: LocalizedText{"": "Razão social"},
			lang: "en",
			want: "Razão social",
		},
		{
			name: "first available in sorted order",
			text: LocalizedText{"fr": "Société", "de": "Firma"},
			lang: "en",
			want: "Firma",
		},
		{
			name: "empty text",
			text: LocalizedText{},
			lang: "en",
			want: "",
		},
		{
			name: "skips empty entries",
			text: LocalizedText{"en": "", "pt-BR": "Empresa"},
			lang: "en",
			want: "Empresa",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.text.Resolve(tt.lang); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocalizedTextResolveOr(t *testing.T) {
	lt := LocalizedText{}
	if got := lt.ResolveOr("en", "q_company_name"); got != "q_company_name" {
		t.Errorf("ResolveOr() = %q, want raw key", got)
	}
}

func TestLocalizedTextUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		lang  string
		want  string
	}{
		{name: "plain string", input: `"Empresa"`, lang: "pt-BR", want: "Empresa"},
		{name: "mapping", input: `{"pt-BR":"Empresa","en":"Company"}`, lang: "en", want: "Company"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lt LocalizedText
			if err := json.Unmarshal([]byte(tt.input), &lt); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := lt.Resolve(tt.lang); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}

	var lt LocalizedText
	if err := json.Unmarshal([]byte(`42`), &lt); err == nil {
		t.Error("expected error for non-string, non-map input")
	}
}
