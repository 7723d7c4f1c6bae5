package enums

// PayoutStatus is the processing status of a payout.
type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "pending"
	PayoutStatusProcessed PayoutStatus = "processed"
)

func (s PayoutStatus) IsValid() bool {
	return s == PayoutStatusPending || s == PayoutStatusProcessed
}

// PayoutState is the settlement state of a payout.
type PayoutState string

const (
	PayoutStateGenerated PayoutState = "generated"
	PayoutStatePaid      PayoutState = "paid"
)

func (s PayoutState) IsValid() bool {
	return s == PayoutStateGenerated || s == PayoutStatePaid
}
