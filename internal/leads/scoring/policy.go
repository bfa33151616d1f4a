// Package scoring implements the lead qualification scoring engine.
//
// The engine itself is a pure function over a Policy. The policy holds the
// deny/allow lists and rule weights so they can be reviewed and overridden
// independently of the evaluation order.
package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Weights holds the score delta applied by each rule.
type Weights struct {
	FreeEmailPenalty        int `yaml:"freeEmailPenalty"`
	BlockedIndustryPenalty  int `yaml:"blockedIndustryPenalty"`
	SmallCompanyPenalty     int `yaml:"smallCompanyPenalty"`
	NoEnrichmentPenalty     int `yaml:"noEnrichmentPenalty"`
	NonTargetCountryPenalty int `yaml:"nonTargetCountryPenalty"`
	TargetIndustryBonus     int `yaml:"targetIndustryBonus"`
	EnterpriseBonus         int `yaml:"enterpriseBonus"`
	MidMarketBonus          int `yaml:"midMarketBonus"`
	TargetCountryBonus      int `yaml:"targetCountryBonus"`
	CorporateEmailBonus     int `yaml:"corporateEmailBonus"`
	HighRevenueBonus        int `yaml:"highRevenueBonus"`
	ModerateRevenueBonus    int `yaml:"moderateRevenueBonus"`
	DecisionMakerBonus      int `yaml:"decisionMakerBonus"`
}

// Policy is the full rule configuration for lead scoring.
type Policy struct {
	FreeEmailDomains     []string `yaml:"freeEmailDomains"`
	BlockedIndustries    []string `yaml:"blockedIndustries"`
	TargetIndustries     []string `yaml:"targetIndustries"`
	TargetCountries      []string `yaml:"targetCountries"`
	DecisionMakerTitles  []string `yaml:"decisionMakerTitles"`
	HighRevenueMarkers   []string `yaml:"highRevenueMarkers"`
	ModerateRevenueBands []string `yaml:"moderateRevenueBands"`

	// SmallCompanyMax is the exclusive upper bound below which the
	// small-company penalty applies.
	SmallCompanyMax int `yaml:"smallCompanyMax"`
	// MidMarketMin and EnterpriseMin are the inclusive lower bounds for the
	// headcount bonuses.
	MidMarketMin  int `yaml:"midMarketMin"`
	EnterpriseMin int `yaml:"enterpriseMin"`

	// QualifyThreshold is the minimum score for a qualified verdict.
	QualifyThreshold int `yaml:"qualifyThreshold"`

	Weights Weights `yaml:"weights"`
}

// DefaultPolicy returns the production rule set. The numbers decide who gets
// a sales call; do not change them without a product decision.
func DefaultPolicy() Policy {
	return Policy{
		FreeEmailDomains: []string{
			"gmail.com", "yahoo.com", "outlook.com", "hotmail.com",
			"aol.com", "icloud.com", "protonmail.com",
		},
		BlockedIndustries: []string{
			"retail", "hospitality", "restaurant", "food service",
			"crypto", "cannabis", "gambling",
		},
		TargetIndustries: []string{
			"healthcare", "aerospace", "defense", "manufacturing",
			"pharmaceutical", "medical device",
		},
		TargetCountries: []string{
			"united states", "us", "usa", "mexico",
		},
		DecisionMakerTitles: []string{
			"vp", "vice president", "director", "chief", "head of",
			"procurement", "supply chain", "compliance", "regulatory", "quality",
		},
		HighRevenueMarkers:   []string{"billion", "$100m"},
		ModerateRevenueBands: []string{"$50", "$75"},

		SmallCompanyMax:  200,
		MidMarketMin:     200,
		EnterpriseMin:    1000,
		QualifyThreshold: 60,

		Weights: Weights{
			FreeEmailPenalty:        -100,
			BlockedIndustryPenalty:  -80,
			SmallCompanyPenalty:     -50,
			NoEnrichmentPenalty:     -30,
			NonTargetCountryPenalty: -50,
			TargetIndustryBonus:     50,
			EnterpriseBonus:         25,
			MidMarketBonus:          15,
			TargetCountryBonus:      10,
			CorporateEmailBonus:     10,
			HighRevenueBonus:        20,
			ModerateRevenueBonus:    10,
			DecisionMakerBonus:      30,
		},
	}
}

// LoadPolicy returns the default policy, overlaid with the YAML file at path
// when one is configured. Fields omitted from the file keep their defaults.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read scoring policy: %w", err)
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return Policy{}, fmt.Errorf("parse scoring policy: %w", err)
	}
	if policy.QualifyThreshold == 0 {
		return Policy{}, fmt.Errorf("scoring policy: qualifyThreshold must be set")
	}
	return policy, nil
}
