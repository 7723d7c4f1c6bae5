package enums

// PointsTransactionType classifies a points ledger entry.
type PointsTransactionType string

const (
	PointsEarn   PointsTransactionType = "earn"
	PointsRedeem PointsTransactionType = "redeem"
	PointsExpire PointsTransactionType = "expire"
	PointsAdjust PointsTransactionType = "adjust"
)

var validPointsTransactionTypes = []PointsTransactionType{PointsEarn, PointsRedeem, PointsExpire, PointsAdjust}

func (t PointsTransactionType) IsValid() bool {
	for _, candidate := range validPointsTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

func ParsePointsTransactionType(value string) (PointsTransactionType, error) {
	return parseEnum("points transaction type", validPointsTransactionTypes, value)
}
