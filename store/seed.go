package store

import (
	"context"
	"fmt"
)

// DemoPrescriptions is the canned dataset for local runs and demos.
var DemoPrescriptions = []Prescription{
	{ID: "RX123", Customer: "Alex", Status: StatusReadyForPickup},
	{ID: "RX456", Customer: "Sam", Status: StatusBeingPrepared},
	{ID: "RX789", Customer: "Priya", Status: StatusOnHold},
}

// DemoMedicines is the canned stock list for local runs and demos.
var DemoMedicines = []Medicine{
	{Name: "ibuprofen", Availability: AvailabilityInStock, Quantity: 120},
	{Name: "amoxicillin", Availability: AvailabilityInStock, Quantity: 40},
	{Name: "atorvastatin", Availability: AvailabilityInStock, Quantity: 75},
	{Name: "insulin glargine", Availability: AvailabilityOnOrder, Quantity: 0},
}

// Seed loads the demo dataset into the store.
func Seed(ctx context.Context, s Store) error {
	for _, p := range DemoPrescriptions {
		if err := s.PutPrescription(ctx, p); err != nil {
			return fmt.Errorf("seed prescription %s: %w", p.ID, err)
		}
	}
	for _, m := range DemoMedicines {
		if err := s.PutMedicine(ctx, m); err != nil {
			return fmt.Errorf("seed medicine %s: %w", m.Name, err)
		}
	}
	return nil
}
