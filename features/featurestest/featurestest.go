// Package featurestest provides feature records for tests.
package featurestest

import "fraudscore/features"

// ValidRaw returns a complete, in-range record for the default schema.
// Callers may modify the returned map.
func ValidRaw() map[string]any {
	return map[string]any{
		features.Income:                      0.6,
		features.NameEmailSimilarity:         0.35,
		features.PrevAddressMonthsCount:      -1,
		features.CurrentAddressMonthsCount:   88,
		features.CustomerAge:                 40,
		features.DaysSinceRequest:            0,
		features.IntendedBalconAmount:        -1,
		features.ZipCount4w:                  1059,
		features.Velocity6h:                  5319,
		features.Velocity24h:                 4775,
		features.Velocity4w:                  4856,
		features.BankBranchCount8w:           9,
		features.DateOfBirthDistinctEmails4w: 8,
		features.CreditRiskScore:             128,
		features.EmailIsFree:                 1,
		features.PhoneHomeValid:              0,
		features.PhoneMobileValid:            1,
		features.BankMonthsCount:             5,
		features.HasOtherCards:               0,
		features.ProposedCreditLimit:         500,
		features.ForeignRequest:              0,
		features.SessionLengthInMinutes:      3,
		features.KeepAliveSession:            1,
		features.DeviceDistinctEmails8w:      1.0,
		features.DeviceFraudCount:            0,
		features.Month:                       3,
	}
}

// ValidRawWith returns ValidRaw with name set to v.
func ValidRawWith(name string, v any) map[string]any {
	raw := ValidRaw()
	raw[name] = v
	return raw
}

// Variants returns n distinct valid records.
func Variants(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		raw := ValidRaw()
		raw[features.CustomerAge] = 10 + i%81
		raw[features.CreditRiskScore] = -191 + (i*37)%581
		raw[features.Month] = i % 8
		out[i] = raw
	}
	return out
}
