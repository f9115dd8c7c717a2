package scan

import "testing"

func TestClassifyContent(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantKind  ContentKind
		wantValue string
	}{
		{"https url", "https://example.com/resume.pdf", KindURL, "https://example.com/resume.pdf"},
		{"http url", "http://example.com/cv", KindURL, "http://example.com/cv"},
		{"uppercase scheme", "HTTPS://EXAMPLE.COM/CV.PDF", KindURL, "HTTPS://EXAMPLE.COM/CV.PDF"},
		{"www shorthand", "www.example.co.uk", KindURL, "http://www.example.co.uk"},
		{"mailto", "mailto:jane@example.com", KindEmail, "jane@example.com"},
		{"mailto with params", "mailto:jane@example.com?subject=Hello", KindEmail, "jane@example.com"},
		{"tel", "tel:+51 999 888 777", KindPhone, "+51 999 888 777"},
		{"plain text", "just some words", KindText, "just some words"},
		{"email-like text is still text", "jane@example.com", KindText, "jane@example.com"},
		{"whitespace trimmed", "  https://example.com  ", KindURL, "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyContent(tt.raw)
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", got.Kind, tt.wantKind)
			}
			if got.Value != tt.wantValue {
				t.Errorf("Value = %q, want %q", got.Value, tt.wantValue)
			}
			if got.Raw != tt.raw {
				t.Errorf("Raw = %q, want %q", got.Raw, tt.raw)
			}
		})
	}
}

func TestClassifyContentWifi(t *testing.T) {
	got := ClassifyContent("WIFI:T:WPA;S:HomeNetwork;P:secret123;;")
	if got.Kind != KindWifi {
		t.Fatalf("Kind = %q, want %q", got.Kind, KindWifi)
	}
	if got.Wifi == nil {
		t.Fatal("Wifi payload is nil")
	}
	if got.Wifi.SSID != "HomeNetwork" {
		t.Errorf("SSID = %q", got.Wifi.SSID)
	}
	if got.Wifi.Security != "WPA" {
		t.Errorf("Security = %q", got.Wifi.Security)
	}
	if got.Wifi.Password != "secret123" {
		t.Errorf("Password = %q", got.Wifi.Password)
	}
	if got.Value != "HomeNetwork" {
		t.Errorf("Value = %q, want SSID", got.Value)
	}
}

func TestClassifyContentVCard(t *testing.T) {
	raw := "BEGIN:VCARD\nVERSION:3.0\nFN:Jane Doe\nTEL:+1234567\nEND:VCARD"
	got := ClassifyContent(raw)
	if got.Kind != KindContact {
		t.Fatalf("Kind = %q, want %q", got.Kind, KindContact)
	}
	if got.Value != "Jane Doe" {
		t.Errorf("Value = %q, want Jane Doe", got.Value)
	}
}

func TestClassifyContentGeo(t *testing.T) {
	got := ClassifyContent("geo:-12.0464,-77.0428?z=15")
	if got.Kind != KindLocation {
		t.Fatalf("Kind = %q, want %q", got.Kind, KindLocation)
	}
	if got.Geo == nil {
		t.Fatal("Geo payload is nil")
	}
	if got.Geo.Latitude != "-12.0464" || got.Geo.Longitude != "-77.0428" {
		t.Errorf("Geo = %+v", got.Geo)
	}
	if got.Value != "-12.0464,-77.0428" {
		t.Errorf("Value = %q", got.Value)
	}
}

func TestContentIsURL(t *testing.T) {
	if !ClassifyContent("https://example.com").IsURL() {
		t.Error("https content should be a URL")
	}
	if ClassifyContent("hello").IsURL() {
		t.Error("plain text should not be a URL")
	}
}
