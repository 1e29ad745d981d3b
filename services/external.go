package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ExternalService calls public market-data APIs: exchange rates for
// currency questions and public holiday calendars backing delivery
// estimates. Base URLs are configurable so tests and air-gapped
// deployments can point elsewhere.
type ExternalService struct {
	client          *http.Client
	exchangeBaseURL string
	holidayBaseURL  string

	now func() time.Time
}

func NewExternalService(exchangeBaseURL, holidayBaseURL string) *ExternalService {
	return &ExternalService{
		client:          &http.Client{Timeout: 5 * time.Second},
		exchangeBaseURL: strings.TrimSuffix(exchangeBaseURL, "/"),
		holidayBaseURL:  strings.TrimSuffix(holidayBaseURL, "/"),
		now:             time.Now,
	}
}

// CurrencyConversion is one amount converted at the current rate.
type CurrencyConversion struct {
	Amount    float64 `json:"amount"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Rate      float64 `json:"rate"`
	Converted float64 `json:"converted"`
	AsOf      string  `json:"as_of"`
}

// CurrencyRates lists rates for the major currencies against a base.
type CurrencyRates struct {
	Base  string             `json:"base"`
	AsOf  string             `json:"as_of"`
	Rates map[string]float64 `json:"rates"`
}

// Holiday is one public holiday from the country's calendar.
type Holiday struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// NearbyHoliday is a holiday close enough to a delivery date to risk a
// delay.
type NearbyHoliday struct {
	Holiday
	DaysAway int `json:"days_away"`
}

// DeliveryDelayCheck reports holidays around a target delivery date.
type DeliveryDelayCheck struct {
	Country          string          `json:"country"`
	TargetDate       string          `json:"target_date,omitempty"`
	DelayLikely      bool            `json:"delay_likely"`
	NearbyHolidays   []NearbyHoliday `json:"nearby_holidays,omitempty"`
	UpcomingHolidays []Holiday       `json:"upcoming_holidays"`
}

var majorCurrencies = []string{"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "CHF", "CNY", "INR", "MXN"}

type exchangeRatesResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

func (s *ExternalService) fetchRates(ctx context.Context, base string) (*exchangeRatesResponse, error) {
	url := fmt.Sprintf("%s/%s", s.exchangeBaseURL, strings.ToUpper(base))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange rate API returned status %d", resp.StatusCode)
	}

	var data exchangeRatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode exchange rates: %w", err)
	}
	return &data, nil
}

// ConvertCurrency converts amount between two currencies at the current
// rate.
func (s *ExternalService) ConvertCurrency(ctx context.Context, amount float64, from, to string) (*CurrencyConversion, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	data, err := s.fetchRates(ctx, from)
	if err != nil {
		return nil, err
	}
	rate, ok := data.Rates[to]
	if !ok {
		return nil, fmt.Errorf("currency code %q not supported", to)
	}

	return &CurrencyConversion{
		Amount:    amount,
		From:      from,
		To:        to,
		Rate:      rate,
		Converted: amount * rate,
		AsOf:      data.Date,
	}, nil
}

// GetCurrencyRates returns rates for the major currencies against base.
func (s *ExternalService) GetCurrencyRates(ctx context.Context, base string) (*CurrencyRates, error) {
	base = strings.ToUpper(base)
	data, err := s.fetchRates(ctx, base)
	if err != nil {
		return nil, err
	}

	rates := make(map[string]float64, len(majorCurrencies))
	for _, currency := range majorCurrencies {
		if currency == base {
			continue
		}
		if rate, ok := data.Rates[currency]; ok {
			rates[currency] = rate
		}
	}
	return &CurrencyRates{Base: base, AsOf: data.Date, Rates: rates}, nil
}

func (s *ExternalService) fetchHolidays(ctx context.Context, year int, countryCode string) ([]Holiday, error) {
	url := fmt.Sprintf("%s/%d/%s", s.holidayBaseURL, year, strings.ToUpper(countryCode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holidays: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holiday API returned status %d for country %q", resp.StatusCode, countryCode)
	}

	var holidays []Holiday
	if err := json.NewDecoder(resp.Body).Decode(&holidays); err != nil {
		return nil, fmt.Errorf("failed to decode holidays: %w", err)
	}
	return holidays, nil
}

// CheckDeliveryDelays flags public holidays within a week of the target
// delivery date and lists the next upcoming holidays. deliveryDate is
// optional, in YYYY-MM-DD form.
func (s *ExternalService) CheckDeliveryDelays(ctx context.Context, countryCode, deliveryDate string) (*DeliveryDelayCheck, error) {
	now := s.now()
	holidays, err := s.fetchHolidays(ctx, now.Year(), countryCode)
	if err != nil {
		return nil, err
	}

	check := &DeliveryDelayCheck{Country: strings.ToUpper(countryCode)}

	if deliveryDate != "" {
		target, err := time.Parse("2006-01-02", deliveryDate)
		if err != nil {
			return nil, fmt.Errorf("invalid delivery date %q, want YYYY-MM-DD", deliveryDate)
		}
		check.TargetDate = deliveryDate

		for _, h := range holidays {
			date, err := time.Parse("2006-01-02", h.Date)
			if err != nil {
				continue
			}
			days := int(date.Sub(target).Hours() / 24)
			if days < 0 {
				days = -days
			}
			if days <= 7 {
				check.NearbyHolidays = append(check.NearbyHolidays, NearbyHoliday{Holiday: h, DaysAway: days})
			}
		}
		check.DelayLikely = len(check.NearbyHolidays) > 0
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, h := range holidays {
		date, err := time.Parse("2006-01-02", h.Date)
		if err != nil {
			continue
		}
		if !date.Before(today) {
			check.UpcomingHolidays = append(check.UpcomingHolidays, h)
			if len(check.UpcomingHolidays) == 5 {
				break
			}
		}
	}
	return check, nil
}

// BusinessDaysAfter adds businessDays to start, skipping weekends and
// the country's public holidays, and returns the resulting date.
func (s *ExternalService) BusinessDaysAfter(ctx context.Context, start time.Time, businessDays int, countryCode string) (time.Time, error) {
	if businessDays < 0 {
		return time.Time{}, fmt.Errorf("business days must not be negative: %d", businessDays)
	}

	holidays, err := s.fetchHolidays(ctx, start.Year(), countryCode)
	if err != nil {
		return time.Time{}, err
	}
	holidayDates := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		holidayDates[h.Date] = true
	}

	current := start
	for counted := 0; counted < businessDays; {
		current = current.AddDate(0, 0, 1)
		if current.Weekday() == time.Saturday || current.Weekday() == time.Sunday {
			continue
		}
		if holidayDates[current.Format("2006-01-02")] {
			continue
		}
		counted++
	}
	return current, nil
}
