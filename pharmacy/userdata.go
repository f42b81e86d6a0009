package pharmacy

import (
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/types"
)

// unknownValue stands in for fields the caller has not provided yet.
const unknownValue = "unknown"

// UserData is the shared fact record for one call: who the caller is and
// which prescription and medicine the conversation is about. Every agent's
// tools write to the same record, and every handoff reads its summary.
//
// All writes are idempotent single-field overwrites, so a tool retry cannot
// corrupt the record.
type UserData struct {
	mu             sync.RWMutex
	customerName   string
	prescriptionID string
	medicineName   string
}

var _ types.Summarizer = (*UserData)(nil)

// NewUserData creates an empty record.
func NewUserData() *UserData { return &UserData{} }

// SetCustomerName records the caller's name.
func (u *UserData) SetCustomerName(name string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.customerName = strings.TrimSpace(name)
}

// CustomerName returns the recorded name, empty if unset.
func (u *UserData) CustomerName() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.customerName
}

// SetPrescriptionID records the prescription under discussion.
func (u *UserData) SetPrescriptionID(id string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.prescriptionID = strings.TrimSpace(id)
}

// PrescriptionID returns the recorded prescription ID, empty if unset.
func (u *UserData) PrescriptionID() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.prescriptionID
}

// SetMedicineName records the medicine under discussion.
func (u *UserData) SetMedicineName(name string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.medicineName = strings.TrimSpace(name)
}

// MedicineName returns the recorded medicine name, empty if unset.
func (u *UserData) MedicineName() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.medicineName
}

// summaryDoc fixes the key order of the YAML snapshot.
type summaryDoc struct {
	CustomerName   string `yaml:"customer_name"`
	PrescriptionID string `yaml:"prescription_id"`
	MedicineName   string `yaml:"medicine_name"`
}

// Summarize renders the record as YAML, with "unknown" standing in for unset
// fields. Equal records always produce the same string, which keeps entry
// announcements stable across handoffs.
func (u *UserData) Summarize() string {
	u.mu.RLock()
	doc := summaryDoc{
		CustomerName:   orUnknown(u.customerName),
		PrescriptionID: orUnknown(u.prescriptionID),
		MedicineName:   orUnknown(u.medicineName),
	}
	u.mu.RUnlock()

	out, err := yaml.Marshal(doc)
	if err != nil {
		// Three plain strings cannot fail to marshal.
		return ""
	}
	return strings.TrimSuffix(string(out), "\n")
}

func orUnknown(v string) string {
	if v == "" {
		return unknownValue
	}
	return v
}
