package scoring

import "strings"

// Contact is the form submission being qualified.
type Contact struct {
	Email   string
	Name    string
	Company string
	Title   string
}

// Enrichment is the firmographic lookup result. A nil *Enrichment means the
// lookup produced nothing, which is itself a scoring signal.
type Enrichment struct {
	Domain           string
	OrganizationName string
	Industry         string
	EmployeeCount    int
	Country          string
	RevenueBand      string
}

// Verdict is the outcome of one qualification attempt. Reasons preserve rule
// evaluation order and are the only audit trail returned to the caller.
type Verdict struct {
	Score      int
	Qualified  bool
	Reasons    []string
	Enrichment *Enrichment
}

// Score evaluates the additive/subtractive rule set against the contact and
// enrichment data. Rule order only affects reason ordering, never the total.
func (p Policy) Score(contact Contact, enrichment *Enrichment) Verdict {
	score := 0
	var reasons []string

	add := func(delta int, reason string) {
		score += delta
		reasons = append(reasons, reason)
	}

	freeEmail := p.isFreeEmailDomain(contact.Email)
	if freeEmail {
		add(p.Weights.FreeEmailPenalty, "Free email domain")
	}

	if enrichment != nil && containsAny(enrichment.Industry, p.BlockedIndustries) {
		add(p.Weights.BlockedIndustryPenalty, "Blocked industry")
	}

	if enrichment != nil && enrichment.EmployeeCount > 0 && enrichment.EmployeeCount < p.SmallCompanyMax {
		add(p.Weights.SmallCompanyPenalty, "Small company size")
	}

	if enrichment == nil {
		add(p.Weights.NoEnrichmentPenalty, "No enrichment data available")
	}

	targetCountry := enrichment != nil && containsAny(enrichment.Country, p.TargetCountries)
	if enrichment != nil && enrichment.Country != "" && !targetCountry {
		add(p.Weights.NonTargetCountryPenalty, "Outside target countries")
	}

	if enrichment != nil && containsAny(enrichment.Industry, p.TargetIndustries) {
		add(p.Weights.TargetIndustryBonus, "Target industry match")
	}

	if enrichment != nil {
		switch {
		case enrichment.EmployeeCount >= p.EnterpriseMin:
			add(p.Weights.EnterpriseBonus, "Large enterprise")
		case enrichment.EmployeeCount >= p.MidMarketMin:
			add(p.Weights.MidMarketBonus, "Mid-market company")
		}
	}

	if targetCountry {
		add(p.Weights.TargetCountryBonus, "Target country")
	}

	if !freeEmail {
		add(p.Weights.CorporateEmailBonus, "Corporate email domain")
	}

	if enrichment != nil && enrichment.RevenueBand != "" {
		switch {
		case containsAny(enrichment.RevenueBand, p.HighRevenueMarkers):
			add(p.Weights.HighRevenueBonus, "High revenue")
		case containsAny(enrichment.RevenueBand, p.ModerateRevenueBands):
			add(p.Weights.ModerateRevenueBonus, "Moderate revenue")
		}
	}

	if containsAny(contact.Title, p.DecisionMakerTitles) {
		add(p.Weights.DecisionMakerBonus, "Decision-maker title")
	}

	return Verdict{
		Score:      score,
		Qualified:  score >= p.QualifyThreshold,
		Reasons:    reasons,
		Enrichment: enrichment,
	}
}

func (p Policy) isFreeEmailDomain(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	for _, d := range p.FreeEmailDomains {
		if domain == d {
			return true
		}
	}
	return false
}

// containsAny reports whether value contains any of the list entries,
// case-insensitively. Substring matching is deliberate: enrichment providers
// return composite industry labels like "Aerospace & Defense".
func containsAny(value string, list []string) bool {
	if value == "" {
		return false
	}
	lower := strings.ToLower(value)
	for _, entry := range list {
		if strings.Contains(lower, entry) {
			return true
		}
	}
	return false
}
