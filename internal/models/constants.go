package models

const (
	// ExchangeFee is the share of the price the exchange keeps on every sale
	ExchangeFee = 0.03

	// AdminOverheadFactor is the admin overhead percentage added per building level, divided by 100
	AdminOverheadFactor = 27.65 / 4800

	HoursPerDay   = 24
	HoursPerWeek  = 7 * HoursPerDay
	HoursPerMonth = 30 * HoursPerDay
)
