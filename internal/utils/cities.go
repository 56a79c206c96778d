package utils

import "strings"

// DefaultStateCode is returned when the geocoder gives no state at all
const DefaultStateCode = "BR"

// stateCodes maps full Brazilian state names to their two-letter codes.
// Geocoders return either form depending on platform and provider.
var stateCodes = map[string]string{
	"ACRE":                "AC",
	"ALAGOAS":             "AL",
	"AMAPÁ":               "AP",
	"AMAZONAS":            "AM",
	"BAHIA":               "BA",
	"CEARÁ":               "CE",
	"DISTRITO FEDERAL":    "DF",
	"ESPÍRITO SANTO":      "ES",
	"GOIÁS":               "GO",
	"MARANHÃO":            "MA",
	"MATO GROSSO":         "MT",
	"MATO GROSSO DO SUL":  "MS",
	"MINAS GERAIS":        "MG",
	"PARÁ":                "PA",
	"PARAÍBA":             "PB",
	"PARANÁ":              "PR",
	"PERNAMBUCO":          "PE",
	"PIAUÍ":               "PI",
	"RIO DE JANEIRO":      "RJ",
	"RIO GRANDE DO NORTE": "RN",
	"RIO GRANDE DO SUL":   "RS",
	"RONDÔNIA":            "RO",
	"RORAIMA":             "RR",
	"SANTA CATARINA":      "SC",
	"SÃO PAULO":           "SP",
	"SERGIPE":             "SE",
	"TOCANTINS":           "TO",
}

// NormalizeCityName canonicalizes a raw geocoder city name into the key
// used for visit deduplication: trimmed and uppercased.
func NormalizeCityName(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// StateNameToCode maps a state name to its two-letter code. Geocoder
// output is uncontrolled free text, so this is total: a 2-character
// input is uppercased as-is, an empty input yields DefaultStateCode,
// and anything unknown falls back to its first two characters.
func StateNameToCode(stateName string) string {
	trimmed := strings.TrimSpace(stateName)
	if trimmed == "" {
		return DefaultStateCode
	}

	runes := []rune(trimmed)
	if len(runes) <= 2 {
		return strings.ToUpper(trimmed)
	}

	if code, ok := stateCodes[strings.ToUpper(trimmed)]; ok {
		return code
	}

	return strings.ToUpper(string(runes[:2]))
}
