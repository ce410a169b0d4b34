package model

import "time"

// CardKey discriminates which UI card shape is populated in an AgentResponse.
type CardKey string

const (
	CardAccountOverview  CardKey = "account_overview"
	CardFacilityOverview CardKey = "facility_overview"
	CardNotesOverview    CardKey = "notes_overview"
	CardOther            CardKey = "other"
)

// AccountOverview is a flat account record from the mock dataset.
type AccountOverview struct {
	AccountID                           string    `json:"account_id"`
	UserID                              string    `json:"user_id"`
	Name                                string    `json:"name"`
	Status                              string    `json:"status"`
	IsTNA                               bool      `json:"is_tna"`
	CreatedAt                           time.Time `json:"created_at"`
	PricingModel                        string    `json:"pricing_model"`
	AddressLine1                        string    `json:"address_line1"`
	AddressLine2                        string    `json:"address_line2"`
	AddressCity                         string    `json:"address_city"`
	AddressState                        string    `json:"address_state"`
	AddressPostalCode                   string    `json:"address_postal_code"`
	AddressCountry                      string    `json:"address_country"`
	TotalAmountDue                      float64   `json:"total_amount_due"`
	TotalAmountDueThisWeek              float64   `json:"total_amount_due_this_week"`
	CurrentBalance                      int       `json:"current_balance"`
	PendingBalance                      int       `json:"pending_balance"`
	CurrentTier                         string    `json:"current_tier"`
	NextTier                            string    `json:"next_tier"`
	PointsToNextTier                    int       `json:"points_to_next_tier"`
	QuarterEndDate                      time.Time `json:"quarter_end_date"`
	FreeVialsAvailable                  int       `json:"free_vials_available"`
	RewardsRequiredForNextFreeVial      int       `json:"rewards_required_for_next_free_vial"`
	RewardsRedeemedTowardsNextFreeVial  int       `json:"rewards_redeemed_towards_next_free_vial"`
	RewardsStatus                       string    `json:"rewards_status"`
	RewardsUpdatedAt                    time.Time `json:"rewards_updated_at"`
	EvoluxLevel                         string    `json:"evolux_level"`
}

// FacilityOverview is a flat facility record from the mock dataset.
type FacilityOverview struct {
	ID                                  string    `json:"id"`
	Name                                string    `json:"name"`
	Status                              string    `json:"status"`
	HasSignedMedicalLiabilityAgreement  bool      `json:"has_signed_medical_liability_agreement"`
	MedicalLicenseID                    string    `json:"medical_license_id"`
	MedicalLicenseState                 string    `json:"medical_license_state"`
	MedicalLicenseNumber                string    `json:"medical_license_number"`
	MedicalLicenseInvolvement           string    `json:"medical_license_involvement"`
	MedicalLicenseExpirationDate        time.Time `json:"medical_license_expiration_date"`
	MedicalLicenseIsExpired             bool      `json:"medical_license_is_expired"`
	MedicalLicenseStatus                string    `json:"medical_license_status"`
	MedicalLicenseOwnerFirstName        string    `json:"medical_license_owner_first_name"`
	MedicalLicenseOwnerLastName         string    `json:"medical_license_owner_last_name"`
	AccountID                           string    `json:"account_id"`
	AccountName                         string    `json:"account_name"`
	AccountStatus                       string    `json:"account_status"`
	AccountHasSignedFinancialAgreement  bool      `json:"account_has_signed_financial_agreement"`
	AccountHasAcceptedJetTerms          bool      `json:"account_has_accepted_jet_terms"`
	ShippingAddressLine1                string    `json:"shipping_address_line1"`
	ShippingAddressLine2                string    `json:"shipping_address_line2"`
	ShippingAddressCity                 string    `json:"shipping_address_city"`
	ShippingAddressState                string    `json:"shipping_address_state"`
	ShippingAddressZip                  string    `json:"shipping_address_zip"`
	ShippingAddressCommercial           bool      `json:"shipping_address_commercial"`
	Sponsored                           bool      `json:"sponsored"`
	AgreementStatus                     string    `json:"agreement_status"`
	AgreementSignedAt                   time.Time `json:"agreement_signed_at"`
	AgreementType                       string    `json:"agreement_type"`
}

// NoteOverview is a single user note.
type NoteOverview struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RewardsOverview summarises loyalty rewards state.
type RewardsOverview struct {
	CurrentTier                        string    `json:"current_tier"`
	NextTier                           string    `json:"next_tier"`
	PointsToNextTier                   int       `json:"points_to_next_tier"`
	TotalPoints                        int       `json:"total_points"`
	PointsEarnedThisQuarter            int       `json:"points_earned_this_quarter"`
	QuarterEndDate                     time.Time `json:"quarter_end_date"`
	FreeVialsAvailable                 int       `json:"free_vials_available"`
	RewardsRequiredForNextFreeVial     int       `json:"rewards_required_for_next_free_vial"`
	RewardsRedeemedTowardsNextFreeVial int       `json:"rewards_redeemed_towards_next_free_vial"`
}

// OrderOverview summarises a single order.
type OrderOverview struct {
	OrderID     string           `json:"order_id"`
	Status      string           `json:"status"`
	TotalAmount float64          `json:"total_amount"`
	CreatedAt   time.Time        `json:"created_at"`
	Items       []map[string]any `json:"items"`
}

// AgentResponse is the structured card response returned for every chat turn.
// Exactly the overview field matching CardKey is populated; the rest stay
// empty.
type AgentResponse struct {
	ConversationID   string             `json:"conversation_id"`
	FinalResponse    string             `json:"final_response"`
	CardKey          CardKey            `json:"card_key"`
	AccountOverview  []AccountOverview  `json:"account_overview"`
	FacilityOverview []FacilityOverview `json:"facility_overview"`
	NoteOverview     []NoteOverview     `json:"note_overview"`
	RewardsOverview  *RewardsOverview   `json:"rewards_overview"`
	OrderOverview    []OrderOverview    `json:"order_overview"`
}

// NewOtherResponse builds an "other"-tagged response carrying only text.
func NewOtherResponse(conversationID, finalResponse string) *AgentResponse {
	return &AgentResponse{
		ConversationID:   conversationID,
		FinalResponse:    finalResponse,
		CardKey:          CardOther,
		AccountOverview:  []AccountOverview{},
		FacilityOverview: []FacilityOverview{},
		NoteOverview:     []NoteOverview{},
		OrderOverview:    []OrderOverview{},
	}
}
