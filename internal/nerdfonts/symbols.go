package nerdfonts

// Calendar related symbols
const (
	Calendar      = "" //
	CalendarCheck = "" //
	CalendarWeek  = "" //
)

// Time related symbols
const (
	Clock = "" //
	Sync  = "" //
)

// Location and account symbols
const (
	MapPin = "" //
	User   = "" //
)

// Status symbols
const (
	InfoCircle          = "" //
	CheckCircle         = "" //
	ExclamationCircle   = "" //
	ExclamationTriangle = "" //
	CircleDot           = "" //
)
