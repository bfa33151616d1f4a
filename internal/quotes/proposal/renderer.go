// Package proposal renders the customer-facing quote document as HTML,
// ready for PDF conversion.
package proposal

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"strconv"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

//go:embed templates/*.html
var templateFS embed.FS

// Data carries everything the proposal template needs.
type Data struct {
	QuoteNumber   string
	CustomerName  string
	Company       string
	TierName      string
	LineItems     []LineItemData
	Features      []string
	Annual        string
	Term          string
	Total         string
	IssuedOn      string
	ExpiresOn     string
	PublicURL     string
	QRCodeDataURI template.URL
}

// LineItemData is one pre-formatted row of the pricing table.
type LineItemData struct {
	Label     string
	Quantity  int
	UnitPrice string
	Total     string
}

// Renderer builds proposal HTML documents.
type Renderer struct {
	tpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tpl, err := template.ParseFS(templateFS, "templates/proposal.html")
	if err != nil {
		return nil, fmt.Errorf("parsing proposal template: %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

// Render produces the proposal HTML, embedding a QR code that points at
// the public quote page.
func (r *Renderer) Render(d Data) ([]byte, error) {
	if d.PublicURL != "" {
		png, err := qrcode.Encode(d.PublicURL, qrcode.Medium, 160)
		if err != nil {
			return nil, fmt.Errorf("encoding quote QR code: %w", err)
		}
		d.QRCodeDataURI = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
	}

	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, "proposal.html", d); err != nil {
		return nil, fmt.Errorf("rendering proposal: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatUSD renders integer cents as whole dollars with thousands
// separators. Quote pricing never carries fractional cents.
func FormatUSD(cents int64) string {
	dollars := cents / 100
	s := strconv.FormatInt(dollars, 10)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-$" + string(out)
	}
	return "$" + string(out)
}

// FormatDate renders the long-form date used on the proposal.
func FormatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

// FormatTerm renders "1 year" / "3 years".
func FormatTerm(years int) string {
	if years == 1 {
		return "1 year"
	}
	return fmt.Sprintf("%d years", years)
}
