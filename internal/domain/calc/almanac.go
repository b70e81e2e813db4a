package calc

import (
	"math"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

const synodicMonth = 29.5305882

var moonNames = [8]string{
	"New Moon", "Waxing Crescent", "First Quarter", "Waxing Gibbous",
	"Full Moon", "Waning Gibbous", "Last Quarter", "Waning Crescent",
}

// tips holds the almanac wisdom for each season, picked by day of month.
var tips = map[string][]string{
	"Winter": {
		"A ring round the moon foretells rain within three days.",
		"Feed extra grain when the cold bites deep.",
		"Trust the woolly bear: a thick coat means hard winter ahead.",
		"Count your stores twice; winter is long and forgiving of nothing.",
	},
	"Spring": {
		"Plant above-ground crops under a waxing moon.",
		"A warm March foretells a cold May, so do not thin your stores early.",
		"Spring lambs born at full moon tend to grow the sturdiest.",
		"Listen to the robins; when they return, the last frost is near.",
	},
	"Summer": {
		"When cows lie down before noon, rain comes soon.",
		"Morning dew means a dry afternoon.",
		"Shear before the Dog Days; shorn sheep fare better in heat.",
		"Watch the swallows; low flight means rain before nightfall.",
	},
	"Autumn": {
		"Mark your breeding dates carefully; spring arrives quickly.",
		"Stock the hayloft full; winter feeds the heaviest animals hardest.",
		"Thicker woolly bears predict harsher winters.",
		"Harvest when the moon wanes for longest storage.",
	},
}

// MoonPhase is one of the eight named lunar phases.
type MoonPhase struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// Season names the northern-hemisphere season of d by day of year.
func Season(d models.Date) string {
	doy := d.Midnight(nil).YearDay()
	switch {
	case doy < 80 || doy >= 355:
		return "Winter"
	case doy < 172:
		return "Spring"
	case doy < 266:
		return "Summer"
	default:
		return "Autumn"
	}
}

// Moon approximates the lunar phase of d.
func Moon(d models.Date) MoonPhase {
	y, m := d.Year(), int(d.Month())
	if m < 3 {
		y--
		m += 12
	}
	m++
	jd := math.Floor(365.25*float64(y)) + math.Floor(30.6*float64(m)) + float64(d.Day()) - 694039.09
	idx := int(math.Round(math.Mod(jd/synodicMonth, 1)*8)) % 8
	return MoonPhase{Index: idx, Name: moonNames[idx]}
}

// AlmanacTip returns the seasonal saying for d. The same day of the month
// always gives the same saying within a season.
func AlmanacTip(d models.Date) string {
	list := tips[Season(d)]
	return list[d.Day()%len(list)]
}
