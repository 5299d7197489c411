package database

import (
	"testing"
	"time"

	"fieldbook/internal/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSearchFilter(t *testing.T) {
	f := searchFilter("a.b (c)")

	or, ok := f["$or"].(bson.A)
	if assert.True(t, ok) && assert.Len(t, or, 2) {
		re := primitive.Regex{Pattern: `a\.b \(c\)`, Options: "i"}
		assert.Equal(t, bson.M{models.KeyName: re}, or[0])
		assert.Equal(t, bson.M{models.KeyLocation: re}, or[1])
	}
}

func TestSearchFilter_EmptyMatchesAll(t *testing.T) {
	re := searchFilter("")["$or"].(bson.A)[0].(bson.M)[models.KeyName].(primitive.Regex)
	assert.Empty(t, re.Pattern)
}

func TestStatusFilter(t *testing.T) {
	assert.Equal(t, bson.M{"status": "Under Maintenance"}, statusFilter("Under Maintenance"))
}

func TestWithoutID(t *testing.T) {
	doc := models.Document{models.KeyID: "abc", models.KeyName: "A"}
	out := withoutID(doc)

	assert.Equal(t, bson.M{models.KeyName: "A"}, out)
	assert.Contains(t, doc, models.KeyID)
}

func TestNormalize(t *testing.T) {
	oid := primitive.NewObjectID()
	at := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)

	doc := normalize(bson.M{
		"_id":       oid,
		"capacity":  int64(12),
		"small":     int32(3),
		"createdAt": primitive.NewDateTimeFromTime(at),
		"tags":      bson.A{int32(1), "x"},
		"price":     9.5,
	})

	assert.Equal(t, oid.Hex(), doc["_id"])
	assert.Equal(t, 12, doc["capacity"])
	assert.Equal(t, 3, doc["small"])
	assert.Equal(t, at, doc["createdAt"])
	assert.Equal(t, []any{1, "x"}, doc["tags"])
	assert.Equal(t, 9.5, doc["price"])
}
