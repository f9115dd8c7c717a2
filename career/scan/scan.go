package scan

import (
	"strings"
	"time"

	"github.com/Abraxas-365/careerqr/pkg/kernel"
)

// ContentKind is the classified shape of decoded QR content
type ContentKind string

const (
	KindURL      ContentKind = "url"
	KindEmail    ContentKind = "email"
	KindPhone    ContentKind = "phone"
	KindWifi     ContentKind = "wifi"
	KindContact  ContentKind = "contact"
	KindLocation ContentKind = "location"
	KindText     ContentKind = "text"
)

// WifiConfig is the payload of a wifi: QR code
type WifiConfig struct {
	SSID     string `json:"ssid"`
	Security string `json:"security,omitempty"`
	Password string `json:"password,omitempty"`
}

// GeoPoint is the payload of a geo: QR code
type GeoPoint struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// Content is classified QR content with its normalized payload
type Content struct {
	Kind  ContentKind `json:"kind"`
	Raw   string      `json:"raw"`
	Value string      `json:"value"`
	Wifi  *WifiConfig `json:"wifi,omitempty"`
	Geo   *GeoPoint   `json:"geo,omitempty"`
}

// IsURL reports whether the content can be fetched as a resume link
func (c Content) IsURL() bool {
	return c.Kind == KindURL
}

// ScanResult records one successful decode
type ScanResult struct {
	ID         kernel.ScanID `json:"id"`
	Content    Content       `json:"content"`
	DecodePass string        `json:"decode_pass"`
	CreatedAt  time.Time     `json:"created_at"`
}

// ClassifyContent determines the kind of decoded QR text. Prefix
// schemes win over the URL shape; the URL shape wins over plain text.
func ClassifyContent(raw string) Content {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	switch {
	case strings.HasPrefix(lower, "mailto:"):
		return Content{Kind: KindEmail, Raw: raw, Value: parseMailto(trimmed)}
	case strings.HasPrefix(lower, "tel:"):
		return Content{Kind: KindPhone, Raw: raw, Value: strings.TrimSpace(trimmed[len("tel:"):])}
	case strings.HasPrefix(lower, "wifi:"):
		wifi := parseWifi(trimmed)
		return Content{Kind: KindWifi, Raw: raw, Value: wifi.SSID, Wifi: wifi}
	case strings.HasPrefix(lower, "begin:vcard"):
		return Content{Kind: KindContact, Raw: raw, Value: parseVCardName(trimmed)}
	case strings.HasPrefix(lower, "geo:"):
		geo := parseGeo(trimmed)
		value := ""
		if geo != nil {
			value = geo.Latitude + "," + geo.Longitude
		}
		return Content{Kind: KindLocation, Raw: raw, Value: value, Geo: geo}
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return Content{Kind: KindURL, Raw: raw, Value: trimmed}
	case strings.HasPrefix(lower, "www.") && strings.Count(trimmed, ".") >= 2:
		return Content{Kind: KindURL, Raw: raw, Value: "http://" + trimmed}
	default:
		return Content{Kind: KindText, Raw: raw, Value: trimmed}
	}
}

// parseMailto strips the scheme and any ?subject=... style parameters
func parseMailto(s string) string {
	addr := s[len("mailto:"):]
	if i := strings.Index(addr, "?"); i >= 0 {
		addr = addr[:i]
	}
	return strings.TrimSpace(addr)
}

// parseWifi reads the S/T/P fields of WIFI:T:WPA;S:network;P:pass;;
func parseWifi(s string) *WifiConfig {
	body := s[len("wifi:"):]
	cfg := &WifiConfig{}

	for _, field := range strings.Split(body, ";") {
		key, value, found := strings.Cut(field, ":")
		if !found {
			continue
		}
		switch strings.ToUpper(key) {
		case "S":
			cfg.SSID = value
		case "T":
			cfg.Security = value
		case "P":
			cfg.Password = value
		}
	}

	return cfg
}

// parseVCardName pulls the FN line out of a vCard body
func parseVCardName(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToUpper(line), "FN:") {
			return strings.TrimSpace(line[len("FN:"):])
		}
	}
	return ""
}

// parseGeo reads geo:lat,long with optional ?query suffix
func parseGeo(s string) *GeoPoint {
	body := s[len("geo:"):]
	if i := strings.Index(body, "?"); i >= 0 {
		body = body[:i]
	}

	lat, long, found := strings.Cut(body, ",")
	if !found {
		return nil
	}
	return &GeoPoint{
		Latitude:  strings.TrimSpace(lat),
		Longitude: strings.TrimSpace(long),
	}
}
