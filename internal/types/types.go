// README: Common value objects shared across modules.
package types

// ID identifies a user, company, or trip.
type ID string

// Money is an amount in the smallest practical unit of the currency
// (whole pesos for COP; fares are rounded to hundreds anyway).
type Money struct {
	Amount   int64
	Currency string
}
