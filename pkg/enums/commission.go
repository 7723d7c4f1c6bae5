package enums

// CommissionType is the tier a commission was earned at.
type CommissionType string

const (
	CommissionConsultant   CommissionType = "consultant"
	CommissionUplineLevel1 CommissionType = "upline_level1"
	CommissionUplineLevel2 CommissionType = "upline_level2"
	// Reserved tiers. Nothing computes them yet.
	CommissionUplineLevel3 CommissionType = "upline_level3"
	CommissionStaffPool    CommissionType = "staff_pool"
)

var validCommissionTypes = []CommissionType{
	CommissionConsultant,
	CommissionUplineLevel1,
	CommissionUplineLevel2,
	CommissionUplineLevel3,
	CommissionStaffPool,
}

func (t CommissionType) IsValid() bool {
	for _, candidate := range validCommissionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

func ParseCommissionType(value string) (CommissionType, error) {
	return parseEnum("commission type", validCommissionTypes, value)
}

// CommissionStatus walks pending -> eligible -> locked -> paid, or to void before paid.
type CommissionStatus string

const (
	CommissionStatusPending  CommissionStatus = "pending"
	CommissionStatusEligible CommissionStatus = "eligible"
	CommissionStatusLocked   CommissionStatus = "locked"
	CommissionStatusPaid     CommissionStatus = "paid"
	CommissionStatusVoid     CommissionStatus = "void"
)

var validCommissionStatuses = []CommissionStatus{
	CommissionStatusPending,
	CommissionStatusEligible,
	CommissionStatusLocked,
	CommissionStatusPaid,
	CommissionStatusVoid,
}

func (s CommissionStatus) String() string {
	return string(s)
}

func (s CommissionStatus) IsValid() bool {
	for _, candidate := range validCommissionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseCommissionStatus(value string) (CommissionStatus, error) {
	return parseEnum("commission status", validCommissionStatuses, value)
}
