package htmlutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEmailAddresses(t *testing.T) {
	text := "Scrivici a Info@Acme.it oppure commerciale@acme.it. PEC: acme@pec.acme.it " +
		"noreply@acme.it logo@2x.png info@acme.it xkcd@qwrtzxp.zzxq"
	want := []string{"info@acme.it", "commerciale@acme.it", "acme@pec.acme.it"}
	if diff := cmp.Diff(want, EmailAddresses(text)); diff != "" {
		t.Errorf("EmailAddresses mismatch (-want +got):\n%s", diff)
	}
}

func TestPhoneNumbers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"landline with prefix", "Tel. +39 0965 123456", []string{"+39 0965 123456"}},
		{"mobile", "Cell. 333 1234567", []string{"333 1234567"}},
		{"vat is not a phone", "P.IVA 00941910788", nil},
		{"date is not a phone", "aggiornato il 01.02.2024", nil},
		{"dedup by digits", "06 1234567 e 06-1234567", []string{"06 1234567"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, PhoneNumbers(tt.text)); diff != "" {
				t.Errorf("PhoneNumbers(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"/contatti", "https://www.acme.it/contatti"},
		{"chi-siamo.html", "https://www.acme.it/it/chi-siamo.html"},
		{"//cdn.acme.it/x", "https://cdn.acme.it/x"},
		{"https://other.it/", "https://other.it/"},
		{"#top", ""},
		{"javascript:void(0)", ""},
		{"mailto:info@acme.it", ""},
		{"tel:+39061234567", ""},
		{"ftp://files.acme.it/", ""},
	}
	for _, tt := range tests {
		if got := ResolveURL(tt.href, "https://www.acme.it/it/index.html"); got != tt.want {
			t.Errorf("ResolveURL(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestSameSite(t *testing.T) {
	if !SameSite("https://www.acme.it/a", "http://ACME.it/b") {
		t.Error("www and bare host should be the same site")
	}
	if SameSite("https://shop.acme.it/", "https://acme.it/") {
		t.Error("subdomain should not be the same site")
	}
}
