// fieldbook/internal/database/seeder.go
package database

import (
	"context"
	"fmt"

	"fieldbook/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// DemoFields is the sample data written by SeedFields.
func DemoFields() []models.Field {
	specs := []struct {
		name, location string
		capacity       int
		price          float64
		status         models.Status
		description    string
	}{
		{"Riverside Arena", "North District", 22, 45, models.StatusAvailable, "Full size natural grass pitch"},
		{"Downtown Five", "City Center", 10, 25, models.StatusBooked, "Indoor five-a-side court"},
		{"Harbor Park", "East Docks", 14, 30, models.StatusUnderMaintenance, "Artificial turf, floodlights under repair"},
		{"Hilltop Grounds", "West Hills", 22, 35.5, models.StatusAvailable, ""},
	}

	fields := make([]models.Field, 0, len(specs))
	for _, s := range specs {
		f := models.NewField(s.name, s.location)
		f.Capacity = s.capacity
		f.PricePerHour = s.price
		f.Status = s.status
		f.Description = s.description
		fields = append(fields, f)
	}
	return fields
}

// SeedFields inserts fields when the collection is empty and reports how many
// were written. A non-empty collection is left alone.
func (g *Gateway) SeedFields(ctx context.Context, fields []models.Field) (int, error) {
	docs := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		if err := f.Check(); err != nil {
			return 0, fmt.Errorf("seed field %q: %w", f.Name, err)
		}
		f.ID = ""
		docs = append(docs, withoutID(f.ToDocument()))
	}

	count, err := g.Count(ctx)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		g.log.Info().Int64("count", count).Msg("Fields already present. Seeding skipped.")
		return 0, nil
	}
	if len(fields) == 0 {
		return 0, nil
	}

	g.log.Info().Int("count", len(fields)).Msg("Fields collection empty. Seeding...")

	var inserted int
	err = g.do(ctx, opSeed, func(coll *mongo.Collection) error {
		result, err := coll.InsertMany(ctx, docs)
		if err != nil {
			return err
		}
		inserted = len(result.InsertedIDs)
		return nil
	})
	if err != nil {
		return 0, err
	}

	g.log.Info().Int("count", inserted).Msg("Fields seeded successfully.")
	return inserted, nil
}
