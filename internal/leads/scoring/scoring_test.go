package scoring

import "testing"

func containsReason(reasons []string, want string) bool {
	for _, r := range reasons {
		if r == want {
			return true
		}
	}
	return false
}

func TestScoreQualifiedEnterpriseLead(t *testing.T) {
	policy := DefaultPolicy()

	verdict := policy.Score(
		Contact{Email: "jane@boeing.com", Name: "Jane", Title: "VP of Procurement"},
		&Enrichment{
			Industry:      "Aerospace",
			EmployeeCount: 5000,
			Country:       "United States",
			RevenueBand:   "$1 billion+",
		},
	)

	if verdict.Score < 60 {
		t.Fatalf("expected score >= 60, got %d", verdict.Score)
	}
	if !verdict.Qualified {
		t.Fatalf("expected qualified verdict, got score %d", verdict.Score)
	}
	for _, want := range []string{
		"Target industry match",
		"Large enterprise",
		"Decision-maker title",
		"Corporate email domain",
		"Target country",
		"High revenue",
	} {
		if !containsReason(verdict.Reasons, want) {
			t.Fatalf("expected reason %q, got %v", want, verdict.Reasons)
		}
	}
}

func TestScoreFreeEmailNoEnrichment(t *testing.T) {
	policy := DefaultPolicy()

	verdict := policy.Score(Contact{Email: "jane@gmail.com", Name: "Jane"}, nil)

	if verdict.Score > -100 {
		t.Fatalf("expected score <= -100, got %d", verdict.Score)
	}
	if verdict.Qualified {
		t.Fatalf("expected disqualified verdict, got score %d", verdict.Score)
	}
	if !containsReason(verdict.Reasons, "Free email domain") {
		t.Fatalf("expected free email reason, got %v", verdict.Reasons)
	}
	if !containsReason(verdict.Reasons, "No enrichment data available") {
		t.Fatalf("expected no-enrichment reason, got %v", verdict.Reasons)
	}
	if containsReason(verdict.Reasons, "Corporate email domain") {
		t.Fatalf("free email must not earn the corporate domain bonus: %v", verdict.Reasons)
	}
}

func TestScoreFreeEmailPenaltyAppliesForAllDenyListDomains(t *testing.T) {
	policy := DefaultPolicy()

	enrichment := &Enrichment{
		Industry:      "Manufacturing",
		EmployeeCount: 2000,
		Country:       "United States",
		RevenueBand:   "$1 billion+",
	}

	for _, domain := range policy.FreeEmailDomains {
		verdict := policy.Score(Contact{Email: "someone@" + domain}, enrichment)
		if !containsReason(verdict.Reasons, "Free email domain") {
			t.Fatalf("domain %s: expected free email penalty, got %v", domain, verdict.Reasons)
		}
		if containsReason(verdict.Reasons, "Corporate email domain") {
			t.Fatalf("domain %s: corporate bonus must not apply", domain)
		}
	}
}

func TestQualifiedMatchesThresholdExactly(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		name       string
		contact    Contact
		enrichment *Enrichment
	}{
		{"qualified enterprise", Contact{Email: "a@corp.com", Title: "Director of Quality"}, &Enrichment{Industry: "Pharmaceutical", EmployeeCount: 1500, Country: "USA", RevenueBand: "$100M+"}},
		{"small blocked industry", Contact{Email: "b@shop.com"}, &Enrichment{Industry: "Retail", EmployeeCount: 40, Country: "Germany"}},
		{"mid-market no title", Contact{Email: "c@mfg.com"}, &Enrichment{Industry: "Manufacturing", EmployeeCount: 400, Country: "Mexico"}},
		{"free email", Contact{Email: "d@yahoo.com"}, nil},
		{"corporate no enrichment", Contact{Email: "e@corp.com", Title: "VP Operations"}, nil},
	}

	for _, tc := range cases {
		verdict := policy.Score(tc.contact, tc.enrichment)
		if verdict.Qualified != (verdict.Score >= policy.QualifyThreshold) {
			t.Fatalf("%s: qualified=%v inconsistent with score %d and threshold %d",
				tc.name, verdict.Qualified, verdict.Score, policy.QualifyThreshold)
		}
	}
}

func TestScoreReasonsFollowRuleOrder(t *testing.T) {
	policy := DefaultPolicy()

	verdict := policy.Score(
		Contact{Email: "ops@acme.com", Title: "Head of Compliance"},
		&Enrichment{Industry: "Medical Device", EmployeeCount: 350, Country: "United States", RevenueBand: "$50M"},
	)

	want := []string{
		"Target industry match",
		"Mid-market company",
		"Target country",
		"Corporate email domain",
		"Moderate revenue",
		"Decision-maker title",
	}
	if len(verdict.Reasons) != len(want) {
		t.Fatalf("expected %d reasons, got %v", len(want), verdict.Reasons)
	}
	for i, r := range want {
		if verdict.Reasons[i] != r {
			t.Fatalf("reason %d: expected %q, got %q", i, r, verdict.Reasons[i])
		}
	}
}

func TestScoreBlockedIndustrySubstringMatch(t *testing.T) {
	policy := DefaultPolicy()

	verdict := policy.Score(
		Contact{Email: "cto@casino.com"},
		&Enrichment{Industry: "Online Gambling & Gaming", EmployeeCount: 3000, Country: "United States"},
	)

	if !containsReason(verdict.Reasons, "Blocked industry") {
		t.Fatalf("expected blocked industry penalty, got %v", verdict.Reasons)
	}
	if verdict.Qualified {
		t.Fatalf("blocked industry lead should not qualify, score %d", verdict.Score)
	}
}
