package geolocation

import "strings"

const DefaultCityLimit = 50

type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Region struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

type City struct {
	Name        string    `json:"name"`
	Region      string    `json:"region"`
	Country     string    `json:"country"`
	Coordinates []float64 `json:"coordinates"`
}

var countries = []Country{
	{"ES", "España"},
	{"US", "Estados Unidos"},
	{"MX", "México"},
	{"AR", "Argentina"},
	{"CO", "Colombia"},
	{"PE", "Perú"},
	{"CL", "Chile"},
	{"BR", "Brasil"},
	{"FR", "Francia"},
	{"DE", "Alemania"},
	{"IT", "Italia"},
	{"GB", "Reino Unido"},
	{"CA", "Canadá"},
	{"AU", "Australia"},
	{"JP", "Japón"},
	{"CN", "China"},
	{"IN", "India"},
}

var regions = []Region{
	{"AN", "Andalucía", "ES"},
	{"AR", "Aragón", "ES"},
	{"AS", "Asturias", "ES"},
	{"IB", "Islas Baleares", "ES"},
	{"CN", "Canarias", "ES"},
	{"CB", "Cantabria", "ES"},
	{"CL", "Castilla y León", "ES"},
	{"CM", "Castilla-La Mancha", "ES"},
	{"CT", "Cataluña", "ES"},
	{"CE", "Ceuta", "ES"},
	{"EX", "Extremadura", "ES"},
	{"GA", "Galicia", "ES"},
	{"MD", "Madrid", "ES"},
	{"ML", "Melilla", "ES"},
	{"MC", "Murcia", "ES"},
	{"NC", "Navarra", "ES"},
	{"PV", "País Vasco", "ES"},
	{"RI", "La Rioja", "ES"},
	{"VC", "Valencia", "ES"},
	{"CA", "California", "US"},
	{"TX", "Texas", "US"},
	{"FL", "Florida", "US"},
	{"NY", "Nueva York", "US"},
	{"IL", "Illinois", "US"},
	{"PA", "Pensilvania", "US"},
	{"OH", "Ohio", "US"},
	{"GA", "Georgia", "US"},
	{"NC", "Carolina del Norte", "US"},
	{"MI", "Míchigan", "US"},
}

var cities = []City{
	{"Madrid", "MD", "ES", []float64{-3.7038, 40.4168}},
	{"Barcelona", "CT", "ES", []float64{2.1734, 41.3851}},
	{"Valencia", "VC", "ES", []float64{-0.3763, 39.4699}},
	{"Sevilla", "AN", "ES", []float64{-5.9845, 37.3891}},
	{"Zaragoza", "AR", "ES", []float64{-0.8891, 41.6488}},
	{"Málaga", "AN", "ES", []float64{-4.4214, 36.7213}},
	{"Murcia", "MC", "ES", []float64{-1.1307, 37.9922}},
	{"Palma", "IB", "ES", []float64{2.6502, 39.5696}},
	{"Las Palmas", "CN", "ES", []float64{-15.4300, 28.1248}},
	{"Bilbao", "PV", "ES", []float64{-2.9253, 43.2627}},
	{"New York", "NY", "US", []float64{-74.0060, 40.7128}},
	{"Los Angeles", "CA", "US", []float64{-118.2437, 34.0522}},
	{"Chicago", "IL", "US", []float64{-87.6298, 41.8781}},
	{"Houston", "TX", "US", []float64{-95.3698, 29.7604}},
	{"Phoenix", "AZ", "US", []float64{-112.0740, 33.4484}},
	{"Philadelphia", "PA", "US", []float64{-75.1652, 39.9526}},
	{"San Antonio", "TX", "US", []float64{-98.4936, 29.4241}},
	{"San Diego", "CA", "US", []float64{-117.1611, 32.7157}},
	{"Dallas", "TX", "US", []float64{-96.7970, 32.7767}},
	{"San Jose", "CA", "US", []float64{-121.8863, 37.3382}},
}

func Countries() []Country {
	return append([]Country(nil), countries...)
}

// Regions returns the regions of country, or every region when country is
// empty or unknown.
func Regions(country string) []Region {
	country = strings.ToUpper(country)
	var out []Region
	for _, r := range regions {
		if r.Country == country {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return append([]Region(nil), regions...)
	}
	return out
}

// Cities filters by country and, within a known country, by region. An empty
// or unknown country lists every city. limit <= 0 means DefaultCityLimit.
func Cities(country, region string, limit int) []City {
	if limit <= 0 {
		limit = DefaultCityLimit
	}
	country, region = strings.ToUpper(country), strings.ToUpper(region)

	known := false
	for _, c := range cities {
		if c.Country == country {
			known = true
			break
		}
	}

	out := []City{}
	for _, c := range cities {
		if known && (c.Country != country || (region != "" && c.Region != region)) {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out
}
