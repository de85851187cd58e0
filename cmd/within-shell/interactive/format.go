package interactive

import (
	"fmt"
	"sort"

	"github.com/within-protocol/within-go/pkg/model"
)

// formatMoney renders minor units as "12.34 GBP".
func formatMoney(amount int32, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
	if currency != "" {
		s += " " + currency
	}
	return s
}

func formatPrice(p model.Price) string {
	s := formatMoney(p.PerUnit.Amount, p.PerUnit.Currency)
	unit := p.UnitDescription
	if unit == "" {
		unit = "unit"
	}
	s += " per " + unit
	if p.Description != "" {
		s = p.Description + ", " + s
	}
	return s
}

func sortedIDs(services map[int32]model.Service) []int32 {
	ids := make([]int32, 0, len(services))
	for id := range services {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
