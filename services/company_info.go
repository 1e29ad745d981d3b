package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CompanyInfo holds the static company facts served to the assistant.
type CompanyInfo struct {
	Name          string   `yaml:"name" json:"name"`
	Phone         string   `yaml:"phone" json:"phone"`
	Email         string   `yaml:"email" json:"email"`
	Address       string   `yaml:"address" json:"address"`
	BusinessHours string   `yaml:"business_hours" json:"business_hours"`
	Departments   []string `yaml:"departments" json:"departments,omitempty"`
}

// DeliveryRule maps a destination zone to shipping terms.
type DeliveryRule struct {
	Zone        string  `yaml:"zone" json:"zone"`
	DaysMin     int     `yaml:"days_min" json:"days_min"`
	DaysMax     int     `yaml:"days_max" json:"days_max"`
	FlatRate    float64 `yaml:"flat_rate" json:"flat_rate"`
	FreeOverUSD float64 `yaml:"free_over_usd" json:"free_over_usd,omitempty"`
}

type deliveryRulesFile struct {
	Rules []DeliveryRule `yaml:"rules"`
}

// CompanyInfoService serves company facts and delivery rules from YAML
// files on disk. Files are read once at startup; edits need a restart.
type CompanyInfoService struct {
	info  *CompanyInfo
	rules []DeliveryRule
}

func NewCompanyInfoService(infoPath, rulesPath string) (*CompanyInfoService, error) {
	s := &CompanyInfoService{}

	data, err := os.ReadFile(infoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read company info: %w", err)
	}
	var info CompanyInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse company info: %w", err)
	}
	s.info = &info

	data, err = os.ReadFile(rulesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read delivery rules: %w", err)
	}
	var rules deliveryRulesFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse delivery rules: %w", err)
	}
	s.rules = rules.Rules

	return s, nil
}

func (s *CompanyInfoService) Info() *CompanyInfo {
	return s.info
}

func (s *CompanyInfoService) DeliveryRules() []DeliveryRule {
	return s.rules
}

// DeliveryEstimate returns the rule matching zone (case-insensitive), or
// nil when the zone is unknown.
func (s *CompanyInfoService) DeliveryEstimate(zone string) *DeliveryRule {
	for i := range s.rules {
		if strings.EqualFold(s.rules[i].Zone, zone) {
			return &s.rules[i]
		}
	}
	return nil
}
