// Package store persists the pharmacy reference data the dialogue tools
// read: prescription status and medicine stock.
//
// Backends:
//   - Memory: development and tests (default), answers with canned rows
//   - Gorm: PostgreSQL, MySQL, or SQLite for production deployments
//   - Cache: Redis read-through decorator over any other backend
package store

import (
	"context"
	"errors"
	"time"
)

// Common errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrStoreClosed  = errors.New("store is closed")
	ErrInvalidInput = errors.New("invalid input")
)

// Type represents the storage backend.
type Type string

const (
	TypeMemory   Type = "memory"
	TypeDatabase Type = "database"
)

// Prescription status values.
const (
	StatusReadyForPickup = "ready for pickup"
	StatusBeingPrepared  = "being prepared"
	StatusOnHold         = "on hold"
)

// Medicine availability values.
const (
	AvailabilityInStock    = "in stock"
	AvailabilityOutOfStock = "out of stock"
	AvailabilityOnOrder    = "on order"
)

// Prescription is one prescription row.
type Prescription struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Customer  string    `gorm:"size:255" json:"customer,omitempty" yaml:"customer,omitempty"`
	Status    string    `gorm:"size:64;not null" json:"status" yaml:"status"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Medicine is one stock row.
type Medicine struct {
	Name         string    `gorm:"primaryKey;size:255" json:"name" yaml:"name"`
	Availability string    `gorm:"size:64;not null" json:"availability" yaml:"availability"`
	Quantity     int       `json:"quantity" yaml:"quantity"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
}

// Store answers the lookups the dialogue tools make and accepts the writes
// the admin surface makes. Implementations must be safe for concurrent use.
type Store interface {
	// PrescriptionStatus returns the status string for a prescription ID.
	PrescriptionStatus(ctx context.Context, prescriptionID string) (string, error)

	// MedicineAvailability returns the availability string for a medicine
	// name. Lookups are case-insensitive.
	MedicineAvailability(ctx context.Context, medicine string) (string, error)

	// PutPrescription inserts or replaces a prescription row.
	PutPrescription(ctx context.Context, p Prescription) error

	// PutMedicine inserts or replaces a stock row.
	PutMedicine(ctx context.Context, m Medicine) error

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
