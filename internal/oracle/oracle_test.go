package oracle_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rentledger/internal/oracle"
)

const unit = int64(1_000_000_000)

func TestClassifyLocation(t *testing.T) {
	for _, tc := range []struct {
		loc  string
		tier oracle.Tier
		ok   bool
	}{
		{"TaipeiCity-DaanDistrict", oracle.TierPremium, true},
		{"TaipeiCity-XinyiDistrict", oracle.TierPremium, true},
		{"TaipeiCity-ZhongshanDistrict", oracle.TierTaipei, true},
		{"TaichungCity-NorthDistrict", oracle.TierTaichung, true},
		{"KaohsiungCity-LingyaDistrict", oracle.TierKaohsiung, true},
		{"TainanCity-EastDistrict", oracle.TierDefault, true},
		{"台北市大安區", oracle.TierPremium, true},
		{"台中市北區", oracle.TierTaichung, true},
		{"高雄市苓雅區", oracle.TierKaohsiung, true},
		// missing a level
		{"TaipeiCity", oracle.TierDefault, false},
		{"DaanDistrict", oracle.TierDefault, false},
		{"somewhere nice", oracle.TierDefault, false},
		{"", oracle.TierDefault, false},
	} {
		tier, ok := oracle.ClassifyLocation(tc.loc)
		require.Equal(t, tc.ok, ok, tc.loc)
		require.Equal(t, tc.tier, tier, tc.loc)
	}
}

func TestVerifyPriceBands(t *testing.T) {
	for _, tc := range []struct {
		loc      string
		min, max int64 // scaled units
	}{
		{"TaipeiCity-DaanDistrict", 20, 100},
		{"TaipeiCity-ZhongshanDistrict", 10, 50},
		{"TaichungCity-NorthDistrict", 5, 30},
		{"KaohsiungCity-LingyaDistrict", 3, 30},
		{"TainanCity-EastDistrict", 1, 50},
	} {
		// bands are inclusive on both ends
		require.True(t, oracle.VerifyPrice(tc.min*unit, tc.loc), "%s min", tc.loc)
		require.True(t, oracle.VerifyPrice(tc.max*unit, tc.loc), "%s max", tc.loc)
		// one scaled unit outside either bound is rejected
		require.False(t, oracle.VerifyPrice((tc.min-1)*unit, tc.loc), "%s below", tc.loc)
		require.False(t, oracle.VerifyPrice((tc.max+1)*unit, tc.loc), "%s above", tc.loc)
	}

	// an unclassifiable location falls to the default 1-50 band; the
	// location gate rejects it separately
	require.True(t, oracle.VerifyPrice(10*unit, "nowhere"))
	require.False(t, oracle.VerifyPrice(51*unit, "nowhere"))
}

func TestVerifyListingInfo(t *testing.T) {
	ok := func(size, rooms, baths, floor, total int) bool {
		return oracle.VerifyListingInfo(size, rooms, baths, floor, total)
	}
	require.True(t, ok(40, 2, 1, 5, 12))
	require.True(t, ok(1000, 10, 5, 100, 100))

	require.False(t, ok(0, 2, 1, 5, 12), "zero size")
	require.False(t, ok(1001, 2, 1, 5, 12), "oversize")
	require.False(t, ok(40, 0, 1, 5, 12), "zero rooms")
	require.False(t, ok(40, 11, 1, 5, 12), "too many rooms")
	require.False(t, ok(40, 2, 0, 5, 12), "zero bathrooms")
	require.False(t, ok(40, 2, 6, 5, 12), "too many bathrooms")
	require.False(t, ok(40, 2, 1, 13, 12), "floor above total")
	require.False(t, ok(40, 2, 1, 0, 12), "zero floor")
	require.False(t, ok(40, 2, 1, 5, 101), "too many floors")
}

func TestValidateReportsFailingCheck(t *testing.T) {
	cases := map[oracle.Check]error{
		oracle.CheckLocation:    oracle.Validate("nowhere", 30*unit, 40, 2, 1, 5, 12),
		oracle.CheckPrice:       oracle.Validate("TaipeiCity-DaanDistrict", 5*unit, 40, 2, 1, 5, 12),
		oracle.CheckListingInfo: oracle.Validate("TaipeiCity-DaanDistrict", 30*unit, 40, 2, 1, 13, 12),
	}
	for check, err := range cases {
		var ve *oracle.ValidationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, check, ve.Check)
	}

	require.NoError(t, oracle.Validate("TaipeiCity-DaanDistrict", 30*unit, 40, 2, 1, 5, 12))
}
