package service

import (
	"fmt"
	"strings"
)

// Tier is one sellable plan. Unit prices are annual, in cents.
type Tier struct {
	Name           string
	BaseFeeCents   int64 // annual platform fee
	SeatPriceCents int64 // annual price per seat
	Features       []string
}

// Add-on labels offered alongside every tier.
const (
	AddonAuditTrail       = "audit-trail"
	AddonDedicatedSupport = "dedicated-support"
	AddonSandbox          = "sandbox"
)

var addonCatalog = map[string]struct {
	Label      string
	PriceCents int64 // annual, flat
}{
	AddonAuditTrail:       {Label: "Extended audit trail retention", PriceCents: 480000},
	AddonDedicatedSupport: {Label: "Dedicated support engineer", PriceCents: 1800000},
	AddonSandbox:          {Label: "Validation sandbox environment", PriceCents: 720000},
}

// tierCatalog holds both plan families shown on the site: the legacy
// Bronze/Silver/Gold/Platinum pages and the newer Starter/Professional/
// Enterprise pages.
var tierCatalog = map[string]Tier{
	"bronze": {
		Name:           "Bronze",
		BaseFeeCents:   600000,
		SeatPriceCents: 36000,
		Features:       []string{"Document control", "CAPA tracking", "Email support"},
	},
	"silver": {
		Name:           "Silver",
		BaseFeeCents:   1200000,
		SeatPriceCents: 48000,
		Features:       []string{"Document control", "CAPA tracking", "Training records", "Priority email support"},
	},
	"gold": {
		Name:           "Gold",
		BaseFeeCents:   2400000,
		SeatPriceCents: 60000,
		Features:       []string{"Document control", "CAPA tracking", "Training records", "Supplier management", "Phone support"},
	},
	"platinum": {
		Name:           "Platinum",
		BaseFeeCents:   4800000,
		SeatPriceCents: 72000,
		Features:       []string{"All Gold features", "Custom workflows", "Dedicated account manager", "24/7 support"},
	},
	"starter": {
		Name:           "Starter",
		BaseFeeCents:   900000,
		SeatPriceCents: 42000,
		Features:       []string{"Document control", "CAPA tracking", "Email support"},
	},
	"professional": {
		Name:           "Professional",
		BaseFeeCents:   2100000,
		SeatPriceCents: 54000,
		Features:       []string{"Document control", "CAPA tracking", "Training records", "Supplier management", "API access"},
	},
	"enterprise": {
		Name:           "Enterprise",
		BaseFeeCents:   5400000,
		SeatPriceCents: 66000,
		Features:       []string{"All Professional features", "Single sign-on", "Custom validation package", "24/7 support"},
	},
}

// LineItem is one row of the itemized breakdown.
type LineItem struct {
	Label          string `json:"label"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	TotalCents     int64  `json:"totalCents"`
}

// Pricing is the computed quote breakdown.
type Pricing struct {
	TierKey     string
	TierName    string
	Currency    string
	LineItems   []LineItem
	Features    []string
	AnnualCents int64
	TermYears   int
	TotalCents  int64
}

// ComputePricing builds the itemized breakdown for a tier, seat count and
// term. The multi-year total is straight multiplication: no discount
// schedule applies unless one is sold separately.
func ComputePricing(tierKey string, seats, termYears int, addons []string) (Pricing, error) {
	tier, ok := tierCatalog[strings.ToLower(strings.TrimSpace(tierKey))]
	if !ok {
		return Pricing{}, fmt.Errorf("unknown tier %q", tierKey)
	}
	if seats < 1 {
		return Pricing{}, fmt.Errorf("seats must be at least 1")
	}
	if termYears < 1 {
		return Pricing{}, fmt.Errorf("term must be at least 1 year")
	}

	items := []LineItem{
		{
			Label:          tier.Name + " platform subscription",
			Quantity:       1,
			UnitPriceCents: tier.BaseFeeCents,
			TotalCents:     tier.BaseFeeCents,
		},
		{
			Label:          "User seats",
			Quantity:       seats,
			UnitPriceCents: tier.SeatPriceCents,
			TotalCents:     tier.SeatPriceCents * int64(seats),
		},
	}

	for _, key := range addons {
		addon, ok := addonCatalog[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			return Pricing{}, fmt.Errorf("unknown add-on %q", key)
		}
		items = append(items, LineItem{
			Label:          addon.Label,
			Quantity:       1,
			UnitPriceCents: addon.PriceCents,
			TotalCents:     addon.PriceCents,
		})
	}

	var annual int64
	for _, item := range items {
		annual += item.TotalCents
	}

	return Pricing{
		TierKey:     strings.ToLower(strings.TrimSpace(tierKey)),
		TierName:    tier.Name,
		Currency:    "USD",
		LineItems:   items,
		Features:    tier.Features,
		AnnualCents: annual,
		TermYears:   termYears,
		TotalCents:  annual * int64(termYears),
	}, nil
}
