package adapter

import (
	"github.com/within-protocol/within-go/pkg/model"
	"github.com/within-protocol/within-go/pkg/wire"
)

// ServiceToWire converts a domain service to its wire record.
func ServiceToWire(s model.Service) wire.Service {
	out := wire.Service{
		ID:          s.ID.Ptr(),
		Name:        s.Name,
		Description: s.Description,
		ServiceType: s.ServiceType,
	}
	if len(s.Prices) > 0 {
		out.Prices = make(map[int32]wire.Price, len(s.Prices))
		for key, p := range s.Prices {
			out.Prices[key] = PriceToWire(p)
		}
	}
	return out
}

// ServiceFromWire converts a wire service record. A price whose own ID
// disagrees with its map key is malformed.
func ServiceFromWire(s *wire.Service) (model.Service, error) {
	if s == nil {
		return model.Service{}, malformed("service record is missing")
	}
	out := model.Service{
		ID:          optional(s.ID),
		Name:        s.Name,
		Description: s.Description,
		ServiceType: s.ServiceType,
	}
	if len(s.Prices) > 0 {
		out.Prices = make(map[int32]model.Price, len(s.Prices))
		for key, p := range s.Prices {
			if p.ID != nil && *p.ID != key {
				return model.Service{}, malformed("price keyed %d carries id %d", key, *p.ID)
			}
			out.Prices[key] = PriceFromWire(p)
		}
	}
	return out, nil
}

// ServiceToDetails converts a domain service to the summary returned by
// requestServices. Prices are not part of the summary.
func ServiceToDetails(s model.Service) wire.ServiceDetails {
	return wire.ServiceDetails{
		ServiceID:          s.ID.Ptr(),
		ServiceDescription: s.Description,
		ServiceName:        s.Name,
	}
}

// ServiceFromDetails converts a service summary.
func ServiceFromDetails(d wire.ServiceDetails) model.Service {
	return model.Service{
		ID:          optional(d.ServiceID),
		Name:        d.ServiceName,
		Description: d.ServiceDescription,
	}
}

// ServicesFromDetails converts a set of service summaries.
func ServicesFromDetails(details []wire.ServiceDetails) []model.Service {
	out := make([]model.Service, 0, len(details))
	for _, d := range details {
		out = append(out, ServiceFromDetails(d))
	}
	return out
}

// PriceToWire converts a domain price to its wire record.
func PriceToWire(p model.Price) wire.Price {
	amount := p.PerUnit.Amount
	return wire.Price{
		ID:          p.ID.Ptr(),
		Description: p.Description,
		PricePerUnit: &wire.PricePerUnit{
			Amount:       &amount,
			CurrencyCode: p.PerUnit.Currency,
		},
		UnitID:          p.UnitID.Ptr(),
		UnitDescription: p.UnitDescription,
	}
}

// PriceFromWire converts a wire price record. A missing per-unit price is
// read as a zero amount with no currency.
func PriceFromWire(p wire.Price) model.Price {
	out := model.Price{
		ID:              optional(p.ID),
		Description:     p.Description,
		UnitID:          optional(p.UnitID),
		UnitDescription: p.UnitDescription,
	}
	if p.PricePerUnit != nil {
		out.PerUnit = model.Money{
			Amount:   orZero(p.PricePerUnit.Amount),
			Currency: p.PricePerUnit.CurrencyCode,
		}
	}
	return out
}

// PricesToWire converts a set of domain prices.
func PricesToWire(prices []model.Price) []wire.Price {
	out := make([]wire.Price, 0, len(prices))
	for _, p := range prices {
		out = append(out, PriceToWire(p))
	}
	return out
}

// PricesFromWire converts a set of wire prices.
func PricesFromWire(prices []wire.Price) []model.Price {
	out := make([]model.Price, 0, len(prices))
	for _, p := range prices {
		out = append(out, PriceFromWire(p))
	}
	return out
}
