package domain

import "strings"

var bundeslaender = map[string]string{
	"BW": "Baden-Württemberg",
	"BY": "Bayern",
	"BE": "Berlin",
	"BB": "Brandenburg",
	"HB": "Bremen",
	"HH": "Hamburg",
	"HE": "Hessen",
	"MV": "Mecklenburg-Vorpommern",
	"NI": "Niedersachsen",
	"NW": "Nordrhein-Westfalen",
	"RP": "Rheinland-Pfalz",
	"SL": "Saarland",
	"SN": "Sachsen",
	"ST": "Sachsen-Anhalt",
	"SH": "Schleswig-Holstein",
	"TH": "Thüringen",
}

// IsBundesland reports whether code is one of the sixteen state codes.
func IsBundesland(code string) bool {
	_, ok := bundeslaender[strings.ToUpper(code)]
	return ok
}

func BundeslandName(code string) string {
	return bundeslaender[strings.ToUpper(code)]
}
