package tripper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// TripConstraints describe the trip to plan. Zero values and values at or
// below the thresholds of DurationDays, Budget and PartySize count as unset.
type TripConstraints struct {
	Details          string  `json:"details,omitempty"`
	Destination      string  `json:"destination,omitempty"`
	Interests        string  `json:"interests,omitempty"`
	DurationDays     int     `json:"duration_days,omitempty"`
	Budget           float64 `json:"budget,omitempty"`
	Currency         string  `json:"currency,omitempty"`
	TimePeriod       string  `json:"time_period,omitempty"`
	PartySize        int     `json:"party_size,omitempty"`
	ResponseLanguage string  `json:"language,omitempty"`
}

const (
	minDurationDays = 1
	minBudget       = 100
	minPartySize    = 1
)

// Validate requires a destination or free-form details.
func (c TripConstraints) Validate() error {
	if strings.TrimSpace(c.Destination) == "" && strings.TrimSpace(c.Details) == "" {
		return ErrMissingDestination
	}
	return nil
}

// Prompt composes the planning request. Clauses always appear in the same
// order so identical constraints give identical prompts.
func (c TripConstraints) Prompt() string {
	parts := []string{"Generate a travel plan."}

	if details := strings.TrimSpace(c.Details); details != "" {
		parts = append(parts, fmt.Sprintf("Details: %s.", details))
	}
	if destination := strings.TrimSpace(c.Destination); destination != "" {
		parts = append(parts, fmt.Sprintf("Destination: %s.", destination))
	}
	if interests := strings.TrimSpace(c.Interests); interests != "" {
		parts = append(parts, fmt.Sprintf("Interests: %s.", interests))
	}
	if c.DurationDays > minDurationDays {
		parts = append(parts, fmt.Sprintf("Duration: %d days.", c.DurationDays))
	}
	if c.Budget > minBudget {
		budget := strconv.FormatFloat(c.Budget, 'f', -1, 64)
		parts = append(parts, strings.TrimSpace(fmt.Sprintf("Budget: %s %s", budget, c.Currency))+".")
	}
	if period := strings.TrimSpace(c.TimePeriod); period != "" {
		parts = append(parts, fmt.Sprintf("Time Period: %s.", period))
	}
	if c.PartySize > minPartySize {
		parts = append(parts, fmt.Sprintf("Number of People: %d.", c.PartySize))
	}
	if language := LanguageName(c.ResponseLanguage); language != "" {
		parts = append(parts, fmt.Sprintf("Please respond in %s.", language))
	}

	return strings.Join(parts, " ")
}

// Currency is a budget currency with the range offered by budget pickers.
type Currency struct {
	Code   string  `json:"code"`
	Symbol string  `json:"symbol"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

var Currencies = []Currency{
	{Code: "USD", Symbol: "$", Min: 100, Max: 30000},
	{Code: "EUR", Symbol: "€", Min: 100, Max: 25000},
	{Code: "GBP", Symbol: "£", Min: 100, Max: 22000},
	{Code: "JPY", Symbol: "¥", Min: 10000, Max: 5000000},
	{Code: "INR", Symbol: "₹", Min: 5000, Max: 2000000},
	{Code: "AUD", Symbol: "A$", Min: 100, Max: 28000},
}

const DefaultCurrency = "USD"

// LookupCurrency finds a currency by its code, case-insensitively.
func LookupCurrency(code string) (Currency, bool) {
	return lo.Find(Currencies, func(c Currency) bool {
		return strings.EqualFold(c.Code, strings.TrimSpace(code))
	})
}

// Clamp limits a budget to the currency range. Zero stays zero so an unset
// budget remains unset.
func (c Currency) Clamp(budget float64) float64 {
	if budget <= 0 {
		return 0
	}
	return lo.Clamp(budget, c.Min, c.Max)
}
