// Package adapter translates between wire records and domain entities.
//
// Every function is pure. Translation to the wire never fails. Translation
// from the wire fails only when a required record is missing or a field is
// malformed, and then returns an *errs.ProtocolError without an Op so the
// caller can attribute it to the operation in progress.
//
// Absent optional numbers become absent model.Optional values whose Value
// is zero. Wire sets become slices in no particular order.
package adapter

import (
	"github.com/within-protocol/within-go/pkg/errs"
	"github.com/within-protocol/within-go/pkg/model"
)

func malformed(format string, args ...any) error {
	return errs.Malformed("", format, args...)
}

func optional(p *int32) model.Optional[int32] {
	return model.FromPtr(p)
}

func orZero(p *int32) int32 {
	if p == nil {
		return 0
	}
	return *p
}
