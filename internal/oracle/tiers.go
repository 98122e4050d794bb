package oracle

import "strings"

// Tier is the enumerated rent band a location classifies into. Derived
// deterministically from the city/district tokens of the location, not from
// free-text substring search.
type Tier string

const (
	// TierPremium covers the premium Taipei districts (Xinyi, Daan).
	TierPremium Tier = "premium"
	// TierTaipei covers general Taipei metro outside the premium districts.
	TierTaipei Tier = "taipei"
	// TierTaichung and TierKaohsiung are the secondary metro tiers.
	TierTaichung  Tier = "taichung"
	TierKaohsiung Tier = "kaohsiung"
	// TierDefault is the fallback band for any unmatched pairing.
	TierDefault Tier = "default"
)

type band struct{ min, max float64 }

var bands = map[Tier]band{
	TierPremium:   {20, 100},
	TierTaipei:    {10, 50},
	TierTaichung:  {5, 30},
	TierKaohsiung: {3, 30},
	TierDefault:   {1, 50},
}

var premiumDistricts = map[string]bool{
	"xinyi": true, "信義": true,
	"daan": true, "大安": true,
}

var cityTiers = map[string]Tier{
	"taipei": TierTaipei, "台北": TierTaipei, "臺北": TierTaipei,
	"taichung": TierTaichung, "台中": TierTaichung, "臺中": TierTaichung,
	"kaohsiung": TierKaohsiung, "高雄": TierKaohsiung,
}

// ClassifyLocation maps a location to its price tier. ok is false when the
// location lacks a recognizable city/district pairing. Premium districts win
// over their city; unknown cities fall to the default tier.
func ClassifyLocation(location string) (Tier, bool) {
	city, district := splitLocation(location)
	if city == "" || district == "" {
		return TierDefault, false
	}
	if premiumDistricts[district] {
		return TierPremium, true
	}
	if t, ok := cityTiers[city]; ok {
		return t, true
	}
	return TierDefault, true
}

// splitLocation extracts normalized city and district names from forms like
// "TaipeiCity-DaanDistrict" or "台北市大安區". Empty strings mark a missing
// level.
func splitLocation(location string) (city, district string) {
	// CJK administrative markers double as separators: 台北市大安區 is one
	// token but two levels.
	s := strings.ReplaceAll(location, "市", "市 ")
	s = strings.ReplaceAll(s, "區", "區 ")
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == ',' || r == '/' || r == ' '
	}) {
		if c, ok := trimLevel(tok, "City", "市"); ok && city == "" {
			city = c
			continue
		}
		if d, ok := trimLevel(tok, "District", "區"); ok && district == "" {
			district = d
		}
	}
	return city, district
}

// trimLevel strips an administrative-level marker, either the English suffix
// ("City"/"District") or its CJK counterpart.
func trimLevel(tok, suffix, cjk string) (string, bool) {
	if len(tok) > len(suffix) && strings.HasSuffix(tok, suffix) {
		return strings.ToLower(strings.TrimSuffix(tok, suffix)), true
	}
	if len(tok) > len(cjk) && strings.HasSuffix(tok, cjk) {
		return strings.TrimSuffix(tok, cjk), true
	}
	return "", false
}
