package features

// Feature names of the application fraud schema, in model order.
const (
	Income                      = "income"
	NameEmailSimilarity         = "name_email_similarity"
	PrevAddressMonthsCount      = "prev_address_months_count"
	CurrentAddressMonthsCount   = "current_address_months_count"
	CustomerAge                 = "customer_age"
	DaysSinceRequest            = "days_since_request"
	IntendedBalconAmount        = "intended_balcon_amount"
	ZipCount4w                  = "zip_count_4w"
	Velocity6h                  = "velocity_6h"
	Velocity24h                 = "velocity_24h"
	Velocity4w                  = "velocity_4w"
	BankBranchCount8w           = "bank_branch_count_8w"
	DateOfBirthDistinctEmails4w = "date_of_birth_distinct_emails_4w"
	CreditRiskScore             = "credit_risk_score"
	EmailIsFree                 = "email_is_free"
	PhoneHomeValid              = "phone_home_valid"
	PhoneMobileValid            = "phone_mobile_valid"
	BankMonthsCount             = "bank_months_count"
	HasOtherCards               = "has_other_cards"
	ProposedCreditLimit         = "proposed_credit_limit"
	ForeignRequest              = "foreign_request"
	SessionLengthInMinutes      = "session_length_in_minutes"
	KeepAliveSession            = "keep_alive_session"
	DeviceDistinctEmails8w      = "device_distinct_emails_8w"
	DeviceFraudCount            = "device_fraud_count"
	Month                       = "month"
)

var defaultSchema = mustSchema(
	realFeature(Income, 0, 1, 0.01, "Annual income of the applicant in decile form"),
	realFeature(NameEmailSimilarity, 0, 1, 0.01, "Similarity between email and applicant name"),
	sentinel(intFeature(PrevAddressMonthsCount, -1, 380, "Months at previous registered address"), -1),
	sentinel(intFeature(CurrentAddressMonthsCount, -1, 429, "Months at current registered address"), -1),
	intFeature(CustomerAge, 10, 90, "Applicant age in years, rounded to the decade"),
	intFeature(DaysSinceRequest, 0, 79, "Days passed since the application was made"),
	negativeMissing(intFeature(IntendedBalconAmount, -16, 114, "Initial transferred amount for the application")),
	intFeature(ZipCount4w, 1, 6830, "Applications within the same zip code in the last 4 weeks"),
	intFeature(Velocity6h, -175, 16818, "Average applications per hour in the last 6 hours"),
	intFeature(Velocity24h, 1297, 9586, "Average applications per hour in the last 24 hours"),
	intFeature(Velocity4w, 2825, 7020, "Average applications per hour in the last 4 weeks"),
	intFeature(BankBranchCount8w, 0, 2404, "Applications in the selected bank branch in the last 8 weeks"),
	intFeature(DateOfBirthDistinctEmails4w, 0, 39, "Emails for applicants with the same date of birth in the last 4 weeks"),
	intFeature(CreditRiskScore, -191, 389, "Internal score of application risk"),
	flag(EmailIsFree, "Application email is on a free domain"),
	flag(PhoneHomeValid, "Provided home phone is valid"),
	flag(PhoneMobileValid, "Provided mobile phone is valid"),
	sentinel(intFeature(BankMonthsCount, -1, 32, "Age of the previous account in months"), -1),
	flag(HasOtherCards, "Applicant holds other cards from the same bank"),
	intFeature(ProposedCreditLimit, 200, 2000, "Applicant's proposed credit limit"),
	flag(ForeignRequest, "Request origin country differs from the bank's country"),
	sentinel(intFeature(SessionLengthInMinutes, -1, 107, "Length of the banking website session in minutes"), -1),
	flag(KeepAliveSession, "User option on session logout"),
	// Described as a count but collected as a real with step 0.1.
	sentinel(realFeature(DeviceDistinctEmails8w, -1, 2, 0.1, "Distinct emails from the used device in the last 8 weeks"), -1),
	intFeature(DeviceFraudCount, 0, 1, "Fraudulent applications with the used device"),
	intFeature(Month, 0, 7, "Month the application was made"),
)

// Default returns the application fraud schema. It is shared and must not
// be modified.
func Default() *Schema {
	return defaultSchema
}

func mustSchema(defs ...Definition) *Schema {
	s, err := NewSchema(defs...)
	if err != nil {
		panic(err)
	}
	return s
}

func realFeature(name string, lo, hi, step float64, desc string) Definition {
	return Definition{Name: name, Description: desc, Type: Real, Min: lo, Max: hi, Step: step}
}

func intFeature(name string, lo, hi float64, desc string) Definition {
	return Definition{Name: name, Description: desc, Type: Integer, Min: lo, Max: hi, Step: 1}
}

func flag(name, desc string) Definition {
	return intFeature(name, 0, 1, desc)
}

func sentinel(def Definition, v float64) Definition {
	def.Missing = SentinelValue
	def.Sentinel = v
	return def
}

func negativeMissing(def Definition) Definition {
	def.Missing = NegativeValues
	return def
}
