package htmlutil

import "testing"

func TestRedirectTarget(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "meta refresh",
			html: `<html><head><meta http-equiv="refresh" content="0; url=https://www.acme.it/it/" /></head></html>`,
			want: "https://www.acme.it/it/",
		},
		{
			name: "meta refresh reversed attributes",
			html: `<meta content="5;URL=/home" http-equiv="refresh">`,
			want: "/home",
		},
		{
			name: "window.location.href",
			html: `<script>window.location.href = "https://acme.it/index.php";</script>`,
			want: "https://acme.it/index.php",
		},
		{
			name: "location.replace",
			html: `<script>location.replace("/it/home");</script>`,
			want: "/it/home",
		},
		{
			name: "no redirect",
			html: `<html><head><title>ACME S.R.L.</title></head><body>Benvenuti</body></html>`,
			want: "",
		},
		{
			name: "fragment ignored",
			html: `<script>location.href = "#contatti";</script>`,
			want: "",
		},
		{
			name: "meta refresh wins over script",
			html: `<meta http-equiv="refresh" content="0; url=https://meta.it"><script>window.location = "https://js.it";</script>`,
			want: "https://meta.it",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedirectTarget(tt.html); got != tt.want {
				t.Errorf("RedirectTarget() = %q, want %q", got, tt.want)
			}
		})
	}
}
