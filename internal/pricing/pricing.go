// Package pricing computes booking totals from a venue price and selected service packages.
// Amounts are whole currency units.
package pricing

// Unit is how a service package is priced.
type Unit string

const (
	UnitFlatRate  Unit = "flat_rate"
	UnitPerPerson Unit = "per_person"
	UnitPerHour   Unit = "per_hour"
)

// Valid reports whether u is a known pricing unit.
func (u Unit) Valid() bool {
	switch u {
	case UnitFlatRate, UnitPerPerson, UnitPerHour:
		return true
	}
	return false
}

const (
	serviceFeePercent = 5
	depositPercent    = 30
)

// LineItem is one selected service with its price already resolved.
type LineItem struct {
	PackageID string `json:"packageId,omitempty"`
	Label     string `json:"label,omitempty"`
	Amount    int64  `json:"amount"`
}

// Breakdown is the result of Calculate.
type Breakdown struct {
	VenuePrice int64      `json:"venuePrice"`
	Items      []LineItem `json:"items"`
	Subtotal   int64      `json:"subtotal"`
	ServiceFee int64      `json:"serviceFee"`
	Total      int64      `json:"total"`
	Deposit    int64      `json:"deposit"`
	Balance    int64      `json:"balance"`
}

// Calculate prices a booking. It has no side effects and does not validate its input.
func Calculate(venuePrice int64, items []LineItem) Breakdown {
	subtotal := venuePrice
	for _, it := range items {
		subtotal += it.Amount
	}

	fee := Percent(subtotal, serviceFeePercent)
	total := subtotal + fee
	deposit := Deposit(total)

	copied := make([]LineItem, len(items))
	copy(copied, items)

	return Breakdown{
		VenuePrice: venuePrice,
		Items:      copied,
		Subtotal:   subtotal,
		ServiceFee: fee,
		Total:      total,
		Deposit:    deposit,
		Balance:    total - deposit,
	}
}

// Deposit is the share of total due at booking time.
func Deposit(total int64) int64 {
	return Percent(total, depositPercent)
}

// Percent returns amount * pct / 100 rounded half up.
func Percent(amount int64, pct int64) int64 {
	return floorDiv(amount*pct+50, 100)
}

// ResolveLineItem returns the price of one package for a booking.
// Per-person packages multiply by the guest count; other units, and per-person
// packages without a per-person price, use the flat price.
func ResolveLineItem(unit Unit, price, pricePerPerson int64, guestCount int) int64 {
	if unit == UnitPerPerson && pricePerPerson > 0 {
		return pricePerPerson * int64(guestCount)
	}
	return price
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
