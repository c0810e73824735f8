package domain

// UserProfile is the identity and profile snapshot cached client-side.
type UserProfile struct {
	ID            int64             `json:"id"`
	Username      string            `json:"username"`
	Email         string            `json:"email"`
	FirstName     string            `json:"firstName,omitempty"`
	LastName      string            `json:"lastName,omitempty"`
	Phone         string            `json:"phoneNumber,omitempty"`
	Address       string            `json:"address,omitempty"`
	DateOfBirth   string            `json:"dateOfBirth,omitempty"`
	PolicyNumber  string            `json:"policyNumber,omitempty"`
	InsurancePlan *InsurancePlanRef `json:"insurancePlan,omitempty"`
}

// InsurancePlanRef is the plan reference embedded in a user profile.
type InsurancePlanRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider,omitempty"`
	Benefits string `json:"benefits,omitempty"`
	Coverage string `json:"coverage,omitempty"`
}

// Merge overlays incoming onto the cached profile. Non-empty incoming
// fields win; empty ones keep the cached value, so a partial update never
// wipes unrelated profile fields.
func (u UserProfile) Merge(incoming UserProfile) UserProfile {
	merged := u
	if incoming.ID != 0 {
		merged.ID = incoming.ID
	}
	if incoming.Username != "" {
		merged.Username = incoming.Username
	}
	if incoming.Email != "" {
		merged.Email = incoming.Email
	}
	if incoming.FirstName != "" {
		merged.FirstName = incoming.FirstName
	}
	if incoming.LastName != "" {
		merged.LastName = incoming.LastName
	}
	if incoming.Phone != "" {
		merged.Phone = incoming.Phone
	}
	if incoming.Address != "" {
		merged.Address = incoming.Address
	}
	if incoming.DateOfBirth != "" {
		merged.DateOfBirth = incoming.DateOfBirth
	}
	if incoming.PolicyNumber != "" {
		merged.PolicyNumber = incoming.PolicyNumber
	}
	if incoming.InsurancePlan != nil {
		merged.InsurancePlan = incoming.InsurancePlan
	}
	return merged
}
