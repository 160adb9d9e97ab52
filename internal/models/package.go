package models

import "time"

// Package is one credit-ledger entry: a purchased bundle of session capacity.
// Template rows (IsTemplate true, ClientID nil) are reusable blueprints that
// are cloned into client-owned rows on first assignment and never mutated
// themselves.
type Package struct {
	ID           int64      `json:"id"`
	ClientID     *int64     `json:"clientId"`
	IsTemplate   bool       `json:"isTemplate"`
	Type         string     `json:"type"`
	TotalCredits int        `json:"totalCredits"`
	UsedCredits  int        `json:"usedCredits"`
	PriceCents   int64      `json:"priceCents"`
	Currency     string     `json:"currency"`
	ExpiresOn    *time.Time `json:"expiresOn"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Remaining may be negative: over-booking is allowed and surfaced to the UI
// as a negative count, billing reconciles out of band.
func (p *Package) Remaining() int {
	return p.TotalCredits - p.UsedCredits
}

type PackageBalance struct {
	Package
	Remaining int `json:"remaining"`
}
