package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type quoteProposalEmailData struct {
	baseEmailData
	RecipientName   string
	QuoteNumber     string
	Tier            string
	AnnualFormatted string
	TotalFormatted  string
	TermYears       int
	ExpiresOn       string
}

type quoteReminderEmailData struct {
	baseEmailData
	RecipientName string
	QuoteNumber   string
	ExpiresOn     string
	DaysRemaining int
}

type downloadFollowUpEmailData struct {
	baseEmailData
	Name          string
	DocumentTitle string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// formatCurrencyUSD renders whole dollars with thousands separators.
// Fractional cents are never shown on customer-facing documents.
func formatCurrencyUSD(cents int64) string {
	dollars := cents / 100
	s := strconv.FormatInt(dollars, 10)
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := "$" + strings.Join(parts, ",")
	if negative {
		out = "-" + out
	}
	return out
}

func formatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

// Plain-text fallbacks. Every HTML email has an equivalent text body so
// clients that strip HTML still get the full message.

func quoteProposalText(p QuoteProposalParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", p.RecipientName)
	fmt.Fprintf(&b, "Your quote %s is ready.\n\n", p.QuoteNumber)
	fmt.Fprintf(&b, "Plan: %s\n", p.Tier)
	fmt.Fprintf(&b, "Annual price: %s\n", formatCurrencyUSD(p.AnnualCents))
	fmt.Fprintf(&b, "Term: %d year(s)\n", p.TermYears)
	fmt.Fprintf(&b, "Total: %s\n\n", formatCurrencyUSD(p.TotalCents))
	fmt.Fprintf(&b, "View your proposal: %s\n\n", p.ProposalURL)
	fmt.Fprintf(&b, "This quote is valid until %s.\n", formatDate(p.ExpiresAt))
	return b.String()
}

func quoteReminderText(recipientName, quoteNumber, proposalURL string, expiresAt time.Time, daysRemaining int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", recipientName)
	if daysRemaining <= 0 {
		fmt.Fprintf(&b, "Your quote %s expires today.\n\n", quoteNumber)
	} else {
		fmt.Fprintf(&b, "Your quote %s expires in %d day(s), on %s.\n\n", quoteNumber, daysRemaining, formatDate(expiresAt))
	}
	fmt.Fprintf(&b, "Review it here: %s\n", proposalURL)
	return b.String()
}

func downloadFollowUpText(name, documentTitle, schedulingURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Thanks for downloading %q.\n\n", documentTitle)
	b.WriteString("If you would like a walkthrough of how teams put this into practice, ")
	fmt.Fprintf(&b, "grab a time with us: %s\n", schedulingURL)
	return b.String()
}
