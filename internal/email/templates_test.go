package email

import (
	"strings"
	"testing"
	"time"
)

func TestFormatCurrencyUSD(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "$0"},
		{99, "$0"},
		{100, "$1"},
		{600000, "$6,000"},
		{4800000, "$48,000"},
		{123456789, "$1,234,567"},
		{-600000, "-$6,000"},
	}
	for _, tc := range cases {
		if got := formatCurrencyUSD(tc.cents); got != tc.want {
			t.Errorf("formatCurrencyUSD(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestRenderQuoteProposalTemplate(t *testing.T) {
	data := quoteProposalEmailData{
		baseEmailData: baseEmailData{
			Title:    "Your quote is ready",
			Heading:  "Your quote is ready",
			CTALabel: "View proposal",
			CTAURL:   "https://app.test/quotes/abc123",
		},
		RecipientName:   "Sara Lin",
		QuoteNumber:     "MC-2026-0042",
		Tier:            "Gold",
		AnnualFormatted: "$24,000",
		TotalFormatted:  "$72,000",
		TermYears:       3,
		ExpiresOn:       "September 28, 2026",
	}

	html, err := renderEmailTemplate("quote_proposal.html", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Sara Lin", "MC-2026-0042", "$24,000", "$72,000", "September 28, 2026", "https://app.test/quotes/abc123"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered proposal email missing %q", want)
		}
	}
}

func TestRenderQuoteReminderTemplate(t *testing.T) {
	data := quoteReminderEmailData{
		baseEmailData: baseEmailData{
			Title:    "Your quote expires soon",
			Heading:  "Your quote expires soon",
			CTALabel: "Review quote",
			CTAURL:   "https://app.test/quotes/abc123",
		},
		RecipientName: "Sara Lin",
		QuoteNumber:   "MC-2026-0042",
		ExpiresOn:     "September 5, 2026",
		DaysRemaining: 3,
	}

	html, err := renderEmailTemplate("quote_reminder.html", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"MC-2026-0042", "September 5, 2026"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered reminder email missing %q", want)
		}
	}
}

func TestRenderDownloadFollowUpTemplate(t *testing.T) {
	data := downloadFollowUpEmailData{
		baseEmailData: baseEmailData{
			Title:    "Following up on your download",
			Heading:  "Following up on your download",
			CTALabel: "Schedule a call",
			CTAURL:   "https://cal.test/meridian/intro",
		},
		Name:          "Sara",
		DocumentTitle: "Validation Protocol Guide",
	}

	html, err := renderEmailTemplate("download_followup.html", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Sara", "Validation Protocol Guide", "https://cal.test/meridian/intro"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered follow-up email missing %q", want)
		}
	}
}

func TestQuoteReminderTextExpiresToday(t *testing.T) {
	text := quoteReminderText("Sara", "MC-2026-0042", "https://app.test/quotes/abc123", time.Now(), 0)
	if !strings.Contains(text, "expires today") {
		t.Fatalf("expected today wording, got %q", text)
	}
}
