package domain

// Hospital is a care facility record.
type Hospital struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Address       string          `json:"address,omitempty"`
	City          string          `json:"city,omitempty"`
	State         string          `json:"state,omitempty"`
	ZipCode       string          `json:"zipCode,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	Website       string          `json:"website,omitempty"`
	Rating        float64         `json:"rating,omitempty"`
	Specialties   []string        `json:"specialties,omitempty"`
	AcceptedPlans []InsurancePlan `json:"acceptedPlans,omitempty"`
}

// InsurancePlan is a browsable insurance product.
type InsurancePlan struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Provider     string `json:"provider,omitempty"`
	Benefits     string `json:"benefits,omitempty"`
	Coverage     string `json:"coverage,omitempty"`
	PolicyNumber string `json:"policyNumber,omitempty"`
}

// Treatment is a procedure offered by a hospital.
type Treatment struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Cost        float64  `json:"cost,omitempty"`
	Hospital    *Hospital `json:"hospital,omitempty"`
}

// UserRef is the minimal user reference sent with owned resources.
type UserRef struct {
	ID int64 `json:"id"`
}

// HospitalRef is the minimal hospital reference sent when booking.
type HospitalRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// Appointment is a booked or requested visit.
type Appointment struct {
	ID        int64        `json:"id,omitempty"`
	User      *UserRef     `json:"user,omitempty"`
	Hospital  *HospitalRef `json:"hospital,omitempty"`
	Date      string       `json:"date"`
	Time      string       `json:"time,omitempty"`
	Doctor    string       `json:"doctor"`
	Specialty string       `json:"specialty"`
	Status    string       `json:"status,omitempty"`
	Notes     string       `json:"notes,omitempty"`
}

// MedicalRecord is a diagnosis/treatment history entry.
type MedicalRecord struct {
	ID        int64  `json:"id"`
	PatientID int64  `json:"patientId"`
	Diagnosis string `json:"diagnosis"`
	Treatment string `json:"treatment,omitempty"`
	Date      string `json:"date,omitempty"`
}

// SymptomReport is the symptom checker's assessment.
type SymptomReport struct {
	Conditions []string `json:"possibleConditions"`
	Advice     string   `json:"advice"`
	Source     string   `json:"-"` // "server" or "local"
}

// TreatmentExplanation is a plain-language description of a treatment.
type TreatmentExplanation struct {
	Name        string `json:"name"`
	Explanation string `json:"explanation"`
}

// PlanComparison pairs a plan with the hospitals that accept it, as
// returned by the dashboard comparison endpoint.
type PlanComparison struct {
	Plan      InsurancePlan `json:"plan"`
	Hospitals []Hospital    `json:"hospitals"`
}
