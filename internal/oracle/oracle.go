// Package oracle is the pre-listing validation gate. It is a policy table
// evaluated entirely offline from the submitted fields; despite the name, no
// external price feed or geocoder is consulted.
package oracle

import "fmt"

type Check string

const (
	CheckLocation    Check = "location"
	CheckPrice       Check = "price"
	CheckListingInfo Check = "listing_info"
)

// ValidationError reports which gate check rejected the listing. Fully
// recoverable: resubmit with corrected fields.
type ValidationError struct {
	Check  Check
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("listing validation failed (%s): %s", e.Check, e.Reason)
}

// priceScale converts smallest-unit amounts to the human-scale unit the
// bands are quoted in.
const priceScale = 1_000_000_000

// Validate runs all three gate checks. Pure; the first failing check is
// fatal and the listing is never created.
func Validate(location string, price int64, size, rooms, bathrooms, floor, totalFloors int) error {
	if !VerifyLocation(location) {
		return &ValidationError{Check: CheckLocation, Reason: "location must name a city and a district"}
	}
	if !VerifyPrice(price, location) {
		tier, _ := ClassifyLocation(location)
		b := bands[tier]
		return &ValidationError{
			Check:  CheckPrice,
			Reason: fmt.Sprintf("scaled price %.2f outside band [%.0f, %.0f] for %s", scaled(price), b.min, b.max, tier),
		}
	}
	if !VerifyListingInfo(size, rooms, bathrooms, floor, totalFloors) {
		return &ValidationError{Check: CheckListingInfo, Reason: "size/rooms/bathrooms/floor out of bounds"}
	}
	return nil
}

// VerifyLocation is a coarse textual heuristic, not geocoding: the location
// must carry both a city-level and a district-level token.
func VerifyLocation(location string) bool {
	city, district := splitLocation(location)
	return city != "" && district != ""
}

// VerifyPrice checks the scaled price against the location tier's band.
// Bands are inclusive on both ends. A location that does not classify falls
// to the default band like any other unmatched pairing; the location check
// is a separate gate.
func VerifyPrice(price int64, location string) bool {
	tier, _ := ClassifyLocation(location)
	b := bands[tier]
	p := scaled(price)
	return p >= b.min && p <= b.max
}

// VerifyListingInfo bounds the physical attributes.
func VerifyListingInfo(size, rooms, bathrooms, floor, totalFloors int) bool {
	return size > 0 && size <= 1000 &&
		rooms > 0 && rooms <= 10 &&
		bathrooms > 0 && bathrooms <= 5 &&
		floor > 0 && floor <= totalFloors &&
		totalFloors > 0 && totalFloors <= 100
}

func scaled(price int64) float64 { return float64(price) / priceScale }
