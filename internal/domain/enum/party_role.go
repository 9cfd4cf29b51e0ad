package enum

// PartyRole is the side a party takes in a trade
type PartyRole string

const (
	PartyRoleSeller PartyRole = "SELLER"
	PartyRoleBuyer  PartyRole = "BUYER"
)

// BillStatus is the settlement state of an invoice at a point in time
type BillStatus string

const (
	BillStatusPaid BillStatus = "PAID"
	BillStatusOpen BillStatus = "OPEN"
)

// EarningsGroup selects how brokerage earnings are bucketed
type EarningsGroup string

const (
	EarningsByParty EarningsGroup = "party"
	EarningsByMonth EarningsGroup = "month"
)
