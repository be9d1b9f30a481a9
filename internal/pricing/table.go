// Package pricing builds the USD price table used by an aggregation run.
package pricing

import "github.com/shopspring/decimal"

// Table maps canonical price ids to USD unit prices. A table is built once
// per run and treated as immutable afterward. A missing entry is a
// recoverable condition for the consumer, never an error here.
type Table map[string]decimal.Decimal

// clone returns an independent copy so cached tables stay immutable even if
// a caller mutates its copy.
func (t Table) clone() Table {
	out := make(Table, len(t))
	for id, price := range t {
		out[id] = price
	}
	return out
}
