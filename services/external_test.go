package services

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const ratesJSON = `{
	"base": "USD",
	"date": "2026-08-28",
	"rates": {"USD": 1, "EUR": 0.92, "GBP": 0.79, "MXN": 18.50, "JPY": 147.1}
}`

const holidaysJSON = `[
	{"date": "2026-09-07", "name": "Labor Day"},
	{"date": "2026-11-26", "name": "Thanksgiving Day"},
	{"date": "2026-12-25", "name": "Christmas Day"}
]`

func newExternalFixture(t *testing.T) *ExternalService {
	t.Helper()

	exchange := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(ratesJSON))
	}))
	t.Cleanup(exchange.Close)

	holidays := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(holidaysJSON))
	}))
	t.Cleanup(holidays.Close)

	svc := NewExternalService(exchange.URL, holidays.URL)
	svc.now = func() time.Time {
		return time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestConvertCurrency(t *testing.T) {
	svc := newExternalFixture(t)

	conv, err := svc.ConvertCurrency(context.Background(), 100, "usd", "eur")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if conv.From != "USD" || conv.To != "EUR" {
		t.Errorf("codes = %s -> %s", conv.From, conv.To)
	}
	if math.Abs(conv.Converted-92.0) > 1e-9 {
		t.Errorf("converted = %f, want 92", conv.Converted)
	}
	if conv.AsOf != "2026-08-28" {
		t.Errorf("as_of = %s", conv.AsOf)
	}

	if _, err := svc.ConvertCurrency(context.Background(), 10, "USD", "XXX"); err == nil {
		t.Error("expected error for unsupported currency")
	}
}

func TestGetCurrencyRates(t *testing.T) {
	svc := newExternalFixture(t)

	rates, err := svc.GetCurrencyRates(context.Background(), "USD")
	if err != nil {
		t.Fatalf("rates: %v", err)
	}
	if _, ok := rates.Rates["USD"]; ok {
		t.Error("base currency should be excluded from rates")
	}
	if rates.Rates["MXN"] != 18.50 {
		t.Errorf("MXN rate = %f", rates.Rates["MXN"])
	}
}

func TestCheckDeliveryDelays(t *testing.T) {
	svc := newExternalFixture(t)

	// Delivery two days before Labor Day should be flagged.
	check, err := svc.CheckDeliveryDelays(context.Background(), "us", "2026-09-05")
	if err != nil {
		t.Fatalf("check delays: %v", err)
	}
	if !check.DelayLikely || len(check.NearbyHolidays) != 1 {
		t.Fatalf("check = %+v, want Labor Day flagged", check)
	}
	if check.NearbyHolidays[0].Name != "Labor Day" || check.NearbyHolidays[0].DaysAway != 2 {
		t.Errorf("nearby = %+v", check.NearbyHolidays[0])
	}
	if len(check.UpcomingHolidays) != 3 {
		t.Errorf("upcoming = %v", check.UpcomingHolidays)
	}

	// A date far from any holiday raises no flag.
	clear, err := svc.CheckDeliveryDelays(context.Background(), "US", "2026-10-15")
	if err != nil {
		t.Fatalf("check delays: %v", err)
	}
	if clear.DelayLikely || len(clear.NearbyHolidays) != 0 {
		t.Errorf("check = %+v, want no delay", clear)
	}

	if _, err := svc.CheckDeliveryDelays(context.Background(), "US", "09/05/2026"); err == nil {
		t.Error("expected error for bad date format")
	}
}

func TestBusinessDaysAfter(t *testing.T) {
	svc := newExternalFixture(t)

	// Friday Sep 4 2026 + 2 business days: Sat/Sun skipped, Mon Sep 7 is
	// Labor Day, so Tue and Wed count.
	start := time.Date(2026, time.September, 4, 0, 0, 0, 0, time.UTC)
	eta, err := svc.BusinessDaysAfter(context.Background(), start, 2, "US")
	if err != nil {
		t.Fatalf("business days: %v", err)
	}
	want := time.Date(2026, time.September, 9, 0, 0, 0, 0, time.UTC)
	if !eta.Equal(want) {
		t.Errorf("eta = %s, want %s", eta.Format("2006-01-02"), want.Format("2006-01-02"))
	}

	zero, err := svc.BusinessDaysAfter(context.Background(), start, 0, "US")
	if err != nil {
		t.Fatalf("business days: %v", err)
	}
	if !zero.Equal(start) {
		t.Errorf("zero business days should return the start date, got %s", zero)
	}

	if _, err := svc.BusinessDaysAfter(context.Background(), start, -1, "US"); err == nil {
		t.Error("expected error for negative business days")
	}
}
