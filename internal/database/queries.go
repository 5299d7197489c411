package database

import (
	"regexp"

	"fieldbook/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func idFilter(oid primitive.ObjectID) bson.M {
	return bson.M{models.KeyID: oid}
}

// searchFilter matches query literally, ignoring case, inside name or location.
func searchFilter(query string) bson.M {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{models.KeyName: re},
		bson.M{models.KeyLocation: re},
	}}
}

func statusFilter(status string) bson.M {
	return bson.M{models.KeyStatus: status}
}

func setUpdate(fields bson.M) bson.M {
	return bson.M{"$set": fields}
}

// withoutID copies doc without the identity key so it is never written.
func withoutID(doc models.Document) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		if k == models.KeyID {
			continue
		}
		out[k] = v
	}
	return out
}

// normalize turns a decoded document into plain Go values: the id becomes its
// hex string, dates become UTC time.Time and integers become int.
func normalize(raw bson.M) models.Document {
	doc := make(models.Document, len(raw))
	for k, v := range raw {
		doc[k] = normalizeValue(v)
	}
	return doc
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case int32:
		return int(t)
	case int64:
		return int(t)
	case bson.M:
		return map[string]any(normalize(t))
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	}
	return v
}
