package store

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Memory is the in-process backend. Unknown prescriptions read as ready for
// pickup and unknown medicines as in stock, so a fresh deployment answers
// callers the way the mocked service did instead of erroring on every ID.
type Memory struct {
	mu            sync.RWMutex
	prescriptions map[string]Prescription
	medicines     map[string]Medicine
	closed        bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		prescriptions: make(map[string]Prescription),
		medicines:     make(map[string]Medicine),
	}
}

func (m *Memory) PrescriptionStatus(ctx context.Context, prescriptionID string) (string, error) {
	if prescriptionID == "" {
		return "", ErrInvalidInput
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", ErrStoreClosed
	}
	if p, ok := m.prescriptions[prescriptionID]; ok {
		return p.Status, nil
	}
	return StatusReadyForPickup, nil
}

func (m *Memory) MedicineAvailability(ctx context.Context, medicine string) (string, error) {
	if medicine == "" {
		return "", ErrInvalidInput
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", ErrStoreClosed
	}
	if med, ok := m.medicines[normalizeName(medicine)]; ok {
		return med.Availability, nil
	}
	return AvailabilityInStock, nil
}

func (m *Memory) PutPrescription(ctx context.Context, p Prescription) error {
	if p.ID == "" || p.Status == "" {
		return ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	p.UpdatedAt = time.Now()
	m.prescriptions[p.ID] = p
	return nil
}

func (m *Memory) PutMedicine(ctx context.Context, med Medicine) error {
	if med.Name == "" || med.Availability == "" {
		return ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	med.UpdatedAt = time.Now()
	m.medicines[normalizeName(med.Name)] = med
	return nil
}

func (m *Memory) HealthCheck(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrStoreClosed
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
