package model

// Day is a meeting day abbreviation as printed by the timetable.
type Day string

// The seven meeting days.
const (
	Monday    Day = "Mon"
	Tuesday   Day = "Tue"
	Wednesday Day = "Wed"
	Thursday  Day = "Thu"
	Friday    Day = "Fri"
	Saturday  Day = "Sat"
	Sunday    Day = "Sun"
)

// Days lists every valid Day in week order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseDay reports whether token is exactly one of the seven day
// abbreviations and returns it.
func ParseDay(token string) (Day, bool) {
	d := Day(token)
	return d, d.Valid()
}

// Valid reports whether d is one of the seven day abbreviations.
func (d Day) Valid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	default:
		return false
	}
}

// String returns the abbreviation.
func (d Day) String() string {
	return string(d)
}
