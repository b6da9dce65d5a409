package htmlutil

import (
	"strings"
	"testing"
)

func TestIsBotProtection(t *testing.T) {
	tests := []struct {
		name  string
		title string
		text  string
		want  bool
	}{
		{"cloudflare title", "Just a moment...", "", true},
		{"short body", "", "Checking your browser before accessing acme.it", true},
		{"long body mentioning captcha", "ACME", strings.Repeat("testo ", 500) + "verify you are human", false},
		{"normal page", "ACME S.r.l.", "Benvenuti in ACME", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBotProtection(tt.title, tt.text); got != tt.want {
				t.Errorf("IsBotProtection() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound("Pagina non trovata", "") {
		t.Error("italian 404 title not detected")
	}
	if !IsNotFound("", "Questo dominio è in vendita") {
		t.Error("parked domain not detected")
	}
	if IsNotFound("ACME", "Servizi di ingegneria") {
		t.Error("normal page detected as not found")
	}
}
