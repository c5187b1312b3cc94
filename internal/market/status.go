package market

type Status string

const (
	StatusPendingApproval Status = "Pending Approval"
	StatusApproved        Status = "Approved"
	StatusDeclined        Status = "Declined"
	StatusPlaced          Status = "Placed"
	StatusDelivered       Status = "Delivered"
)

// Declined and Delivered are terminal; no edge skips a state.
var validNext = map[Status]map[Status]bool{
	StatusPendingApproval: {StatusApproved: true, StatusDeclined: true},
	StatusApproved:        {StatusPlaced: true},
	StatusPlaced:          {StatusDelivered: true},
	StatusDeclined:        {},
	StatusDelivered:       {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

type ListingStatus string

const (
	ListingAvailable ListingStatus = "Available"
	ListingReserved  ListingStatus = "Reserved"
	ListingSold      ListingStatus = "Sold"
)
