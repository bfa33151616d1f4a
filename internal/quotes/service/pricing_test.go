package service

import "testing"

func TestComputePricingTotalIsAnnualTimesTerm(t *testing.T) {
	for tierKey := range tierCatalog {
		for _, term := range []int{1, 2, 3, 5} {
			p, err := ComputePricing(tierKey, 25, term, nil)
			if err != nil {
				t.Fatalf("tier %s term %d: unexpected error: %v", tierKey, term, err)
			}
			if p.TotalCents != p.AnnualCents*int64(term) {
				t.Fatalf("tier %s term %d: expected total %d, got %d",
					tierKey, term, p.AnnualCents*int64(term), p.TotalCents)
			}
		}
	}
}

func TestComputePricingLineItems(t *testing.T) {
	p, err := ComputePricing("gold", 10, 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(p.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(p.LineItems))
	}

	base := p.LineItems[0]
	if base.Quantity != 1 || base.TotalCents != base.UnitPriceCents {
		t.Fatalf("platform line item miscomputed: %+v", base)
	}

	seats := p.LineItems[1]
	if seats.Quantity != 10 {
		t.Fatalf("expected 10 seats, got %d", seats.Quantity)
	}
	if seats.TotalCents != seats.UnitPriceCents*10 {
		t.Fatalf("expected seat total %d, got %d", seats.UnitPriceCents*10, seats.TotalCents)
	}

	var sum int64
	for _, item := range p.LineItems {
		sum += item.TotalCents
	}
	if p.AnnualCents != sum {
		t.Fatalf("expected annual %d, got %d", sum, p.AnnualCents)
	}
}

func TestComputePricingAddons(t *testing.T) {
	base, err := ComputePricing("professional", 5, 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	withAddon, err := ComputePricing("professional", 5, 1, []string{AddonDedicatedSupport})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(withAddon.LineItems) != 3 {
		t.Fatalf("expected 3 line items, got %d", len(withAddon.LineItems))
	}
	delta := withAddon.AnnualCents - base.AnnualCents
	if delta != addonCatalog[AddonDedicatedSupport].PriceCents {
		t.Fatalf("expected addon delta %d, got %d", addonCatalog[AddonDedicatedSupport].PriceCents, delta)
	}
}

func TestComputePricingTierKeyNormalization(t *testing.T) {
	p, err := ComputePricing("  Platinum ", 1, 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TierKey != "platinum" || p.TierName != "Platinum" {
		t.Fatalf("expected normalized platinum tier, got %q / %q", p.TierKey, p.TierName)
	}
}

func TestComputePricingRejectsBadInput(t *testing.T) {
	if _, err := ComputePricing("titanium", 5, 1, nil); err == nil {
		t.Fatal("expected error for unknown tier")
	}
	if _, err := ComputePricing("gold", 0, 1, nil); err == nil {
		t.Fatal("expected error for zero seats")
	}
	if _, err := ComputePricing("gold", 5, 0, nil); err == nil {
		t.Fatal("expected error for zero term")
	}
	if _, err := ComputePricing("gold", 5, 1, []string{"jetpack"}); err == nil {
		t.Fatal("expected error for unknown add-on")
	}
}
