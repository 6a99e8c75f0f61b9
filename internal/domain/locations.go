package domain

// defaultLocations are the OECD member, partner and aggregate codes offered
// for selection by default. The dataset may contain more or fewer keys.
var defaultLocations = []string{
	"AUS", "AUT", "BEL", "CAN", "CZE", "DNK", "FIN", "FRA", "DEU", "GRC",
	"HUN", "ISL", "IRL", "ITA", "JPN", "KOR", "LUX", "MEX", "NLD", "NZL",
	"NOR", "POL", "PRT", "SVK", "ESP", "SWE", "CHE", "TUR", "GBR", "USA",
	"BRA", "CHL", "COL", "EST",
	"ISR", "RUS", "SVN", "OECD", "G-7", "EU28", "EA19", "LVA", "COOMAS",
}

// DefaultLocations returns a fresh copy of the default location keys.
func DefaultLocations() []string {
	out := make([]string, len(defaultLocations))
	copy(out, defaultLocations)
	return out
}
