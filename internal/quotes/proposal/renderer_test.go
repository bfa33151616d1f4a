package proposal

import (
	"strings"
	"testing"
	"time"
)

func TestFormatUSD(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "$0"},
		{4800000, "$48,000"},
		{7200000, "$72,000"},
		{123456700, "$1,234,567"},
		{-360000, "-$3,600"},
	}
	for _, tc := range cases {
		if got := FormatUSD(tc.cents); got != tc.want {
			t.Errorf("FormatUSD(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestFormatTerm(t *testing.T) {
	if got := FormatTerm(1); got != "1 year" {
		t.Fatalf("expected singular form, got %q", got)
	}
	if got := FormatTerm(3); got != "3 years" {
		t.Fatalf("expected plural form, got %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, time.September, 5, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "September 5, 2026" {
		t.Fatalf("unexpected date format: %q", got)
	}
}

func TestRenderIncludesPricingAndQRCode(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html, err := r.Render(Data{
		QuoteNumber:  "MC-2026-0042",
		CustomerName: "Sara Lin",
		Company:      "Helix Biologics",
		TierName:     "Gold",
		LineItems: []LineItemData{
			{Label: "Gold platform subscription", Quantity: 1, UnitPrice: "$24,000", Total: "$24,000"},
			{Label: "User seats", Quantity: 40, UnitPrice: "$600", Total: "$24,000"},
		},
		Features:  []string{"Audit trail exports", "SSO"},
		Annual:    "$48,000",
		Term:      "3 years",
		Total:     "$144,000",
		IssuedOn:  "August 29, 2026",
		ExpiresOn: "September 28, 2026",
		PublicURL: "https://app.test/quotes/abc123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := string(html)
	for _, want := range []string{
		"MC-2026-0042",
		"Sara Lin",
		"Helix Biologics",
		"User seats",
		"$144,000",
		"September 28, 2026",
		"data:image/png;base64,",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("rendered proposal missing %q", want)
		}
	}
}

func TestRenderWithoutPublicURLOmitsQRCode(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html, err := r.Render(Data{
		QuoteNumber:  "MC-2026-0001",
		CustomerName: "Sara Lin",
		TierName:     "Bronze",
		Annual:       "$6,000",
		Term:         "1 year",
		Total:        "$6,000",
		IssuedOn:     "August 29, 2026",
		ExpiresOn:    "September 28, 2026",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(html), "data:image/png") {
		t.Fatal("proposal without a public URL must not embed a QR code")
	}
}
