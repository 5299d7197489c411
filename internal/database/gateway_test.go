package database

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"fieldbook/config"
	"fieldbook/internal/models"
	"fieldbook/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const testNS = "football_field_management.fields"

func testConfig() config.MongoConfig {
	return config.MongoConfig{
		URI:        config.DefaultMongoURI,
		DBName:     config.DefaultDBName,
		Collection: config.DefaultCollection,
	}
}

func pingOK() bson.D {
	return mtest.CreateSuccessResponse()
}

func TestGatewayWithMockDeployment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("open pings the server", func(mt *mtest.T) {
		mt.AddMockResponses(pingOK())

		gw, err := Open(context.Background(), testConfig(), WithClient(mt.Client))
		require.NoError(mt, err)
		assert.True(mt, gw.IsConnected())
	})

	mt.Run("create returns hex id", func(mt *mtest.T) {
		mt.AddMockResponses(pingOK(), mtest.CreateSuccessResponse())
		gw := New(testConfig(), WithClient(mt.Client))

		id, err := gw.Create(context.Background(), models.NewField("Pitch A", "North").ToDocument())
		require.NoError(mt, err)
		_, err = primitive.ObjectIDFromHex(id)
		assert.NoError(mt, err)
	})

	mt.Run("created record reads back with its write time", func(mt *mtest.T) {
		f := models.NewField("Pitch A", "North")
		f.Capacity = 22
		f.PricePerHour = 15.0
		written := f.ToDocument()
		writeTime := written[models.KeyUpdatedAt].(time.Time)

		oid := primitive.NewObjectID()
		mt.AddMockResponses(
			pingOK(),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: oid},
				{Key: "name", Value: "Pitch A"},
				{Key: "location", Value: "North"},
				{Key: "capacity", Value: int32(22)},
				{Key: "pricePerHour", Value: 15.0},
				{Key: "status", Value: "Available"},
				{Key: "createdAt", Value: primitive.NewDateTimeFromTime(f.CreatedAt)},
				{Key: "updatedAt", Value: primitive.NewDateTimeFromTime(writeTime)},
			}),
		)
		gw := New(testConfig(), WithClient(mt.Client))

		_, err := gw.Create(context.Background(), written)
		require.NoError(mt, err)

		var insert *event.CommandStartedEvent
		for _, evt := range mt.GetAllStartedEvents() {
			if evt.CommandName == "insert" {
				insert = evt
			}
		}
		require.NotNil(mt, insert)
		sent := insert.Command.Lookup("documents", "0", "updatedAt").Time().UTC()
		assert.Equal(mt, writeTime, sent)
		assert.Equal(mt, f.CreatedAt, insert.Command.Lookup("documents", "0", "createdAt").Time().UTC())

		doc, err := gw.GetByID(context.Background(), oid.Hex())
		require.NoError(mt, err)
		got := models.FromDocument(doc)
		assert.Equal(mt, f.CreatedAt, got.CreatedAt)
		assert.Equal(mt, writeTime, got.UpdatedAt)
		assert.Empty(mt, got.Validate())
	})

	mt.Run("search sends a case-insensitive name or location match", func(mt *mtest.T) {
		mt.AddMockResponses(pingOK(), mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "name", Value: "City Stadium"}, {Key: "location", Value: "Center"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "name", Value: "Riverside"}, {Key: "location", Value: "Stadium Road"}},
		))
		gw := New(testConfig(), WithClient(mt.Client))

		docs, err := gw.Search(context.Background(), "stad")
		require.NoError(mt, err)
		require.Len(mt, docs, 2)
		assert.Equal(mt, "City Stadium", docs[0][models.KeyName])
		assert.Equal(mt, "Stadium Road", docs[1][models.KeyLocation])

		var find *event.CommandStartedEvent
		for _, evt := range mt.GetAllStartedEvents() {
			if evt.CommandName == "find" {
				find = evt
			}
		}
		require.NotNil(mt, find)
		clauses := find.Command.Lookup("filter", "$or").Array()
		values, err := clauses.Values()
		require.NoError(mt, err)
		require.Len(mt, values, 2)
		for i, key := range []string{"name", "location"} {
			pattern, options := values[i].Document().Lookup(key).Regex()
			assert.Equal(mt, "stad", pattern)
			assert.Equal(mt, "i", options)
		}
	})

	mt.Run("filter by status sends an exact match", func(mt *mtest.T) {
		mt.AddMockResponses(pingOK(), mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "name", Value: "City Stadium"}, {Key: "status", Value: "Booked"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "name", Value: "Riverside"}, {Key: "status", Value: "Booked"}},
		))
		gw := New(testConfig(), WithClient(mt.Client))

		docs, err := gw.FilterByStatus(context.Background(), "Booked")
		require.NoError(mt, err)
		require.Len(mt, docs, 2)
		for _, d := range docs {
			assert.Equal(mt, "Booked", d[models.KeyStatus])
		}

		var find *event.CommandStartedEvent
		for _, evt := range mt.GetAllStartedEvents() {
			if evt.CommandName == "find" {
				find = evt
			}
		}
		require.NotNil(mt, find)
		assert.Equal(mt, "Booked", find.Command.Lookup("filter", "status").StringValue())
	})

	mt.Run("get all normalizes documents", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
		mt.AddMockResponses(pingOK(), mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "name", Value: "Pitch A"},
			{Key: "location", Value: "North"},
			{Key: "capacity", Value: int32(22)},
			{Key: "pricePerHour", Value: 15.5},
			{Key: "status", Value: "Available"},
			{Key: "createdAt", Value: primitive.NewDateTimeFromTime(created)},
		}))
		gw := New(testConfig(), WithClient(mt.Client))

		docs, err := gw.GetAll(context.Background())
		require.NoError(mt, err)
		require.Len(mt, docs, 1)
		assert.Equal(mt, oid.Hex(), docs[0][models.KeyID])
		assert.Equal(mt, 22, docs[0][models.KeyCapacity])
		assert.Equal(mt, created, docs[0][models.KeyCreatedAt])

		f := models.FromDocument(docs[0])
		assert.Equal(mt, "Pitch A", f.Name)
		assert.Empty(mt, f.Validate())
	})

	mt.Run("get all on empty collection", func(mt *mtest.T) {
		mt.AddMockResponses(pingOK(), mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch))
		gw := New(testConfig(), WithClient(mt.Client))

		docs, err := gw.GetAll(context.Background())
		require.NoError(mt, err)
		assert.Empty(mt, docs)
		assert.NotNil(mt, docs)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		mt.AddMockResponses(pingOK(), mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch))
		gw := New(testConfig(), WithClient(mt.Client))

		doc, err := gw.GetByID(context.Background(), primitive.NewObjectID().Hex())
		assert.Nil(mt, doc)
		assert.True(mt, IsNotFound(err))
		assert.ErrorIs(mt, err, ErrNotFound)
		assert.EqualError(mt, err, "Field not found")
	})

	mt.Run("update with no match is not found", func(mt *mtest.T) {
		mt.AddMockResponses(pingOK(), mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))
		gw := New(testConfig(), WithClient(mt.Client))

		err := gw.Update(context.Background(), primitive.NewObjectID().Hex(), models.Document{models.KeyName: "B"})
		assert.True(mt, IsNotFound(err))
	})

	mt.Run("update with unchanged values succeeds", func(mt *mtest.T) {
		mt.AddMockResponses(pingOK(), mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))
		gw := New(testConfig(), WithClient(mt.Client))

		err := gw.Update(context.Background(), primitive.NewObjectID().Hex(), models.Document{models.KeyName: "Same"})
		assert.NoError(mt, err)
	})

	mt.Run("delete with no match is not found", func(mt *mtest.T) {
		mt.AddMockResponses(pingOK(), mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		gw := New(testConfig(), WithClient(mt.Client))

		err := gw.Delete(context.Background(), primitive.NewObjectID().Hex())
		assert.True(mt, IsNotFound(err))
	})

	mt.Run("delete removes one", func(mt *mtest.T) {
		mt.AddMockResponses(pingOK(), mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		gw := New(testConfig(), WithClient(mt.Client))

		assert.NoError(mt, gw.Delete(context.Background(), primitive.NewObjectID().Hex()))
	})

	mt.Run("server error is a store error", func(mt *mtest.T) {
		mt.AddMockResponses(pingOK(), mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Message: "not authorized",
			Name:    "Unauthorized",
		}))
		gw := New(testConfig(), WithClient(mt.Client))

		_, err := gw.Search(context.Background(), "pitch")
		require.Error(mt, err)
		assert.True(mt, IsStore(err))
		assert.Contains(mt, err.Error(), "Error searching fields")
		assert.True(mt, gw.IsConnected())
	})

	mt.Run("ping failure on connect is a connection error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    6,
			Message: "host unreachable",
			Name:    "HostUnreachable",
			Labels:  []string{"NetworkError"},
		}))

		_, err := Open(context.Background(), testConfig(), WithClient(mt.Client))
		require.Error(mt, err)
		assert.True(mt, IsConnection(err))
		assert.Contains(mt, err.Error(), "MongoDB connection failed")
	})

	mt.Run("lost session reconnects on next call", func(mt *mtest.T) {
		lost := mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    6,
			Message: "connection reset",
			Name:    "HostUnreachable",
			Labels:  []string{"NetworkError"},
		})
		mt.AddMockResponses(pingOK(), lost, pingOK(), mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch))
		gw := New(testConfig(), WithClient(mt.Client))

		err := gw.Ping(context.Background())
		assert.True(mt, IsConnection(err))
		assert.False(mt, gw.IsConnected())

		docs, err := gw.FilterByStatus(context.Background(), "Booked")
		require.NoError(mt, err)
		assert.Empty(mt, docs)
		assert.True(mt, gw.IsConnected())
	})

	mt.Run("count and seed skip when not empty", func(mt *mtest.T) {
		mt.AddMockResponses(pingOK(), mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}))
		gw := New(testConfig(), WithClient(mt.Client))

		n, err := gw.SeedFields(context.Background(), DemoFields())
		require.NoError(mt, err)
		assert.Zero(mt, n)
	})

	mt.Run("seed inserts into empty collection", func(mt *mtest.T) {
		mt.AddMockResponses(
			pingOK(),
			mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 4}),
		)
		gw := New(testConfig(), WithClient(mt.Client))

		n, err := gw.SeedFields(context.Background(), DemoFields())
		require.NoError(mt, err)
		assert.Equal(mt, 4, n)
	})

	mt.Run("close then use reconnects", func(mt *mtest.T) {
		mt.AddMockResponses(pingOK(), pingOK(), mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch))
		gw, err := Open(context.Background(), testConfig(), WithClient(mt.Client))
		require.NoError(mt, err)

		require.NoError(mt, gw.Close(context.Background()))
		assert.False(mt, gw.IsConnected())

		_, err = gw.GetAll(context.Background())
		require.NoError(mt, err)
		assert.True(mt, gw.IsConnected())
	})
}

func TestGateway_InvalidIDIsStoreError(t *testing.T) {
	gw := New(testConfig(), WithDialer(func(context.Context, *options.ClientOptions) (*mongo.Client, error) {
		t.Fatal("dial must not happen for a malformed id")
		return nil, nil
	}))

	_, err := gw.GetByID(context.Background(), "not-an-id")
	assert.True(t, IsStore(err))
	assert.ErrorIs(t, err, ErrInvalidID)

	assert.True(t, IsStore(gw.Update(context.Background(), "xyz", models.Document{models.KeyName: "A"})))
	assert.True(t, IsStore(gw.Delete(context.Background(), "")))
}

func TestSeedFields_RejectsInvalidField(t *testing.T) {
	gw := New(testConfig(), WithDialer(func(context.Context, *options.ClientOptions) (*mongo.Client, error) {
		t.Fatal("an invalid seed must not reach the store")
		return nil, nil
	}))

	fields := DemoFields()
	fields[2].Capacity = 0
	fields[2].Status = "Closed"

	n, err := gw.SeedFields(context.Background(), fields)
	assert.Zero(t, n)
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, validation.Errors{
		"Capacity must be a positive integer",
		"Status must be one of: Available, Under Maintenance, Booked",
	}, verrs)
	assert.Contains(t, err.Error(), "Harbor Park")
}

func TestConnectClient(t *testing.T) {
	client, err := connectClient(context.Background(), options.Client().ApplyURI("mongodb://127.0.0.1:1/"))
	require.NoError(t, err)
	assert.NoError(t, client.Disconnect(context.Background()))

	_, err = connectClient(context.Background(), options.Client().ApplyURI("not-a-mongo-uri"))
	assert.Error(t, err)
}

func TestGateway_UnreachableServer(t *testing.T) {
	cfg := testConfig()
	cfg.URI = "mongodb://127.0.0.1:1/"
	cfg.ConnectTimeout = 200 * time.Millisecond

	_, err := Open(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, IsConnection(err))

	gw := New(cfg)
	_, err = gw.GetAll(context.Background())
	assert.True(t, IsConnection(err))
	assert.False(t, gw.IsConnected())
	assert.NoError(t, gw.Close(context.Background()))
}

func TestGateway_InvalidURIIsStoreError(t *testing.T) {
	cfg := testConfig()
	cfg.URI = "not-a-mongo-uri"

	_, err := Open(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, IsStore(err))

	_, err = New(cfg).Search(context.Background(), "x")
	assert.True(t, IsConnection(err), "implicit reconnect failures are reported as connection errors")
}

func TestGateway_ReconnectCooldown(t *testing.T) {
	dials := 0
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	dialer := WithDialer(func(context.Context, *options.ClientOptions) (*mongo.Client, error) {
		dials++
		return nil, refused
	})

	cfg := testConfig()
	cfg.ReconnectCooldown = time.Hour
	gw := New(cfg, dialer)

	_, err := gw.GetAll(context.Background())
	assert.True(t, IsConnection(err))
	_, err = gw.Search(context.Background(), "a")
	assert.True(t, IsConnection(err))
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, 1, dials)

	require.Error(t, gw.Connect(context.Background()))
	assert.Equal(t, 2, dials, "explicit connect ignores the cooldown")

	cfg.ReconnectCooldown = 0
	gw = New(cfg, dialer)
	_, _ = gw.GetAll(context.Background())
	_, _ = gw.GetAll(context.Background())
	assert.Equal(t, 4, dials)
}

func TestGateway_Observer(t *testing.T) {
	var ops []string
	gw := New(testConfig(),
		WithDialer(func(context.Context, *options.ClientOptions) (*mongo.Client, error) {
			return nil, &net.OpError{Op: "dial", Err: errors.New("refused")}
		}),
		WithObserver(func(op string, err error, _ time.Duration) {
			ops = append(ops, op)
			assert.Error(t, err)
		}),
	)

	_, _ = gw.GetAll(context.Background())
	assert.Equal(t, []string{"connect", "get_all"}, ops)
}
