package enums

// UserLevel is the loyalty tier that decides the points earn percentage.
type UserLevel string

const (
	UserLevelBronze UserLevel = "bronze"
	UserLevelPrata  UserLevel = "prata"
	UserLevelOuro   UserLevel = "ouro"
)

var validUserLevels = []UserLevel{UserLevelBronze, UserLevelPrata, UserLevelOuro}

func (l UserLevel) String() string {
	return string(l)
}

func (l UserLevel) IsValid() bool {
	for _, candidate := range validUserLevels {
		if candidate == l {
			return true
		}
	}
	return false
}

func ParseUserLevel(value string) (UserLevel, error) {
	return parseEnum("user level", validUserLevels, value)
}
