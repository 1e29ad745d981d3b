package services

import (
	"os"
	"path/filepath"
	"testing"
)

const companyYAML = `name: Warehouse Supply Co.
phone: "+1-312-555-0142"
email: support@warehousesupply.test
address: 123 Industrial Blvd, Chicago, IL 60601
business_hours: Mon-Fri 8am-6pm CT
departments:
  - Sales
  - Support
`

const deliveryYAML = `rules:
  - zone: Midwest
    days_min: 1
    days_max: 3
    flat_rate: 9.50
    free_over_usd: 200
  - zone: West Coast
    days_min: 3
    days_max: 7
    flat_rate: 19.00
`

func writeCompanyFixtures(t *testing.T, withRules bool) (string, string) {
	t.Helper()
	dir := t.TempDir()
	infoPath := filepath.Join(dir, "company_info.yaml")
	if err := os.WriteFile(infoPath, []byte(companyYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	rulesPath := filepath.Join(dir, "delivery_rules.yaml")
	if withRules {
		if err := os.WriteFile(rulesPath, []byte(deliveryYAML), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return infoPath, rulesPath
}

func TestCompanyInfoLoad(t *testing.T) {
	infoPath, rulesPath := writeCompanyFixtures(t, true)
	svc, err := NewCompanyInfoService(infoPath, rulesPath)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	info := svc.Info()
	if info.Name != "Warehouse Supply Co." {
		t.Errorf("name = %q", info.Name)
	}
	if info.BusinessHours != "Mon-Fri 8am-6pm CT" {
		t.Errorf("business hours = %q", info.BusinessHours)
	}
	if len(info.Departments) != 2 {
		t.Errorf("departments = %v", info.Departments)
	}
	if len(svc.DeliveryRules()) != 2 {
		t.Errorf("rules = %v", svc.DeliveryRules())
	}
}

func TestDeliveryEstimate(t *testing.T) {
	infoPath, rulesPath := writeCompanyFixtures(t, true)
	svc, err := NewCompanyInfoService(infoPath, rulesPath)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	rule := svc.DeliveryEstimate("midwest")
	if rule == nil {
		t.Fatal("expected rule for midwest")
	}
	if rule.DaysMax != 3 || rule.FlatRate != 9.50 {
		t.Errorf("rule = %+v", rule)
	}
	if svc.DeliveryEstimate("Alaska") != nil {
		t.Errorf("expected no rule for unknown zone")
	}
}

func TestDeliveryRulesOptional(t *testing.T) {
	infoPath, rulesPath := writeCompanyFixtures(t, false)
	svc, err := NewCompanyInfoService(infoPath, rulesPath)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if len(svc.DeliveryRules()) != 0 {
		t.Errorf("expected no rules, got %v", svc.DeliveryRules())
	}
}
