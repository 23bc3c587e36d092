package outlook

// calendarColors maps the color names the server reports to the RGB values
// the Outlook web calendar renders them with.
var calendarColors = map[string]string{
	"LightBlue":   "rgb(166,209,245)",
	"LightTeal":   "rgb(74,218,204)",
	"LightGreen":  "rgb(135,210,142)",
	"LightGray":   "rgb(192,192,192)",
	"LightRed":    "rgb(248,140,155)",
	"LightPink":   "rgb(240,140,192)",
	"LightBrown":  "rgb(203,162,155)",
	"LightOrange": "rgb(252,171,115)",
	"LightYellow": "rgb(244,208,122)",
}

// DefaultCalendarColor is used when the server reports no usable color.
const DefaultCalendarColor = "#ccffcc"

// ColorRGB resolves a server color name to its RGB value.
func ColorRGB(name string) string {
	if rgb, ok := calendarColors[name]; ok {
		return rgb
	}
	return DefaultCalendarColor
}
