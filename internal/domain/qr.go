package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// QRContentType selects how the QR payload is encoded.
type QRContentType string

const (
	QRURL     QRContentType = "url"
	QRText    QRContentType = "text"
	QREmail   QRContentType = "email"
	QRPhone   QRContentType = "phone"
	QRSMS     QRContentType = "sms"
	QRWiFi    QRContentType = "wifi"
	QRContact QRContentType = "contact"
)

func (t QRContentType) Valid() bool {
	switch t {
	case QRURL, QRText, QREmail, QRPhone, QRSMS, QRWiFi, QRContact:
		return true
	}
	return false
}

// QRSettings holds the type-specific fields for the QR code on the flyer.
// Only the fields relevant to Type are consulted.
type QRSettings struct {
	Enabled   bool          `json:"enabled"`
	Type      QRContentType `json:"type"`
	Placement Corner        `json:"placement"`

	URL  string `json:"url,omitempty"`
	Text string `json:"text,omitempty"`

	Email        string `json:"email,omitempty"`
	EmailSubject string `json:"email_subject,omitempty"`
	EmailBody    string `json:"email_body,omitempty"`

	Phone      string `json:"phone,omitempty"`
	SMSMessage string `json:"sms_message,omitempty"`

	WiFiSSID       string `json:"wifi_ssid,omitempty"`
	WiFiPassword   string `json:"wifi_password,omitempty"`
	WiFiEncryption string `json:"wifi_encryption,omitempty"`
	WiFiHidden     bool   `json:"wifi_hidden,omitempty"`

	ContactName    string `json:"contact_name,omitempty"`
	ContactPhone   string `json:"contact_phone,omitempty"`
	ContactEmail   string `json:"contact_email,omitempty"`
	ContactCompany string `json:"contact_company,omitempty"`
	ContactURL     string `json:"contact_url,omitempty"`
}

// Payload returns the QR text for the configured content type. An empty
// string means there is nothing to encode.
func (q *QRSettings) Payload() string {
	if q == nil || !q.Enabled {
		return ""
	}
	switch q.Type {
	case QRURL:
		u := strings.TrimSpace(q.URL)
		if u == "" {
			return ""
		}
		if !strings.Contains(u, "://") {
			u = "https://" + u
		}
		return u
	case QRText:
		return strings.TrimSpace(q.Text)
	case QREmail:
		addr := strings.TrimSpace(q.Email)
		if addr == "" {
			return ""
		}
		params := url.Values{}
		if s := strings.TrimSpace(q.EmailSubject); s != "" {
			params.Set("subject", s)
		}
		if b := strings.TrimSpace(q.EmailBody); b != "" {
			params.Set("body", b)
		}
		if len(params) == 0 {
			return "mailto:" + addr
		}
		return "mailto:" + addr + "?" + strings.ReplaceAll(params.Encode(), "+", "%20")
	case QRPhone:
		phone := strings.TrimSpace(q.Phone)
		if phone == "" {
			return ""
		}
		return "tel:" + phone
	case QRSMS:
		phone := strings.TrimSpace(q.Phone)
		if phone == "" {
			return ""
		}
		return fmt.Sprintf("SMSTO:%s:%s", phone, strings.TrimSpace(q.SMSMessage))
	case QRWiFi:
		ssid := strings.TrimSpace(q.WiFiSSID)
		if ssid == "" {
			return ""
		}
		enc := strings.ToUpper(strings.TrimSpace(q.WiFiEncryption))
		if enc == "" {
			enc = "WPA"
		}
		if enc == "NONE" || enc == "NOPASS" {
			enc = "nopass"
		}
		return fmt.Sprintf("WIFI:T:%s;S:%s;P:%s;H:%t;;", enc, escapeMeCard(ssid), escapeMeCard(q.WiFiPassword), q.WiFiHidden)
	case QRContact:
		name := strings.TrimSpace(q.ContactName)
		if name == "" {
			return ""
		}
		sb := &strings.Builder{}
		sb.WriteString("MECARD:N:" + escapeMeCard(name) + ";")
		if v := strings.TrimSpace(q.ContactPhone); v != "" {
			sb.WriteString("TEL:" + escapeMeCard(v) + ";")
		}
		if v := strings.TrimSpace(q.ContactEmail); v != "" {
			sb.WriteString("EMAIL:" + escapeMeCard(v) + ";")
		}
		if v := strings.TrimSpace(q.ContactCompany); v != "" {
			sb.WriteString("ORG:" + escapeMeCard(v) + ";")
		}
		if v := strings.TrimSpace(q.ContactURL); v != "" {
			sb.WriteString("URL:" + escapeMeCard(v) + ";")
		}
		sb.WriteString(";")
		return sb.String()
	}
	return ""
}

var meCardEscaper = strings.NewReplacer(`\`, `\\`, `;`, `\;`, `,`, `\,`, `:`, `\:`, `"`, `\"`)

func escapeMeCard(s string) string {
	return meCardEscaper.Replace(s)
}
