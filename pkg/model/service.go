package model

import "sort"

// Service is a service a producer offers.
type Service struct {
	ID          Optional[int32]
	Name        string
	Description string

	// Prices is keyed by price ID.
	Prices map[int32]Price

	// ServiceType is a free-form category such as "car-charger".
	ServiceType string
}

// Price describes how one unit of a service is charged.
type Price struct {
	ID              Optional[int32]
	Description     string
	UnitID          Optional[int32]
	UnitDescription string
	PerUnit         Money
}

// Money is an amount in minor units of a currency.
type Money struct {
	Amount   int32
	Currency string
}

// AddPrice stores p under its ID. A price without an ID is stored under 0.
func (s *Service) AddPrice(p Price) {
	if s.Prices == nil {
		s.Prices = make(map[int32]Price)
	}
	s.Prices[p.ID.OrZero()] = p
}

// PriceList returns the prices ordered by ID, for display.
func (s Service) PriceList() []Price {
	ids := make([]int32, 0, len(s.Prices))
	for id := range s.Prices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]Price, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.Prices[id])
	}
	return out
}
