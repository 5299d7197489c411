// fieldbook/internal/database/gateway.go
package database

import (
	"context"
	"fmt"
	"time"

	"fieldbook/config"
	"fieldbook/internal/logger"
	"fieldbook/internal/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Dialer opens a client. The default is connectClient.
type Dialer func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)

func connectClient(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	return mongo.Connect(ctx, opts)
}

// ObserverFunc is told about every finished gateway operation.
type ObserverFunc func(op string, err error, elapsed time.Duration)

type Option func(*Gateway)

// WithDialer replaces the function used to open new clients.
func WithDialer(d Dialer) Option {
	return func(g *Gateway) { g.dial = d }
}

// WithClient makes the gateway use an existing client. The caller keeps
// ownership: Close only drops the session state and never disconnects it.
func WithClient(c *mongo.Client) Option {
	return func(g *Gateway) {
		g.client = c
		g.borrowed = true
	}
}

// WithObserver registers fn to be called after every operation.
func WithObserver(fn ObserverFunc) Option {
	return func(g *Gateway) { g.observe = fn }
}

// Gateway is the only component that talks to the fields collection. It is
// meant for one caller at a time and must be closed when no longer needed.
type Gateway struct {
	cfg      config.MongoConfig
	dial     Dialer
	observe  ObserverFunc
	log      zerolog.Logger
	client   *mongo.Client
	borrowed bool
	coll     *mongo.Collection

	connected   bool
	lastAttempt time.Time
	lastErr     error
}

type operation struct {
	name string
	desc string
}

var (
	opConnect = operation{"connect", ""}
	opPing    = operation{"ping", "checking connection"}
	opCreate  = operation{"create", "creating field"}
	opGetAll  = operation{"get_all", "retrieving fields"}
	opGetByID = operation{"get_by_id", "retrieving field"}
	opUpdate  = operation{"update", "updating field"}
	opDelete  = operation{"delete", "deleting field"}
	opSearch  = operation{"search", "searching fields"}
	opFilter  = operation{"filter_by_status", "filtering fields"}
	opCount   = operation{"count", "counting fields"}
	opSeed    = operation{"seed", "seeding fields"}
	opClose   = operation{"close", "closing connection"}
)

// New builds a disconnected gateway. The first operation connects it.
func New(cfg config.MongoConfig, opts ...Option) *Gateway {
	g := &Gateway{
		cfg:     cfg,
		dial:    connectClient,
		observe: func(string, error, time.Duration) {},
		log:     logger.Store(cfg.DBName, cfg.Collection),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Open builds a gateway and connects it. Callers defer Close.
func Open(ctx context.Context, cfg config.MongoConfig, opts ...Option) (*Gateway, error) {
	g := New(cfg, opts...)
	if err := g.Connect(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

// IsConnected reports whether the last connection attempt succeeded and the
// session has not been lost or closed since.
func (g *Gateway) IsConnected() bool {
	return g.connected
}

func (g *Gateway) clientOptions() *options.ClientOptions {
	opts := options.Client().ApplyURI(g.cfg.URI)
	if g.cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(g.cfg.ConnectTimeout)
		opts.SetServerSelectionTimeout(g.cfg.ConnectTimeout)
	}
	return opts
}

// Connect opens the session and pings the server. It always probes, even when
// already connected.
func (g *Gateway) Connect(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { g.observe(opConnect.name, err, time.Since(start)) }()

	g.lastAttempt = start
	g.connected = false

	client := g.client
	if client == nil {
		client, err = g.dial(ctx, g.clientOptions())
		if err != nil {
			return g.connectFailed(classify(opConnect.desc, err))
		}
	}

	if err = ping(ctx, client); err != nil {
		if !g.borrowed {
			_ = client.Disconnect(ctx)
			client = nil
		}
		g.client = client
		return g.connectFailed(classify(opConnect.desc, err))
	}

	g.client = client
	g.coll = client.Database(g.cfg.DBName).Collection(g.cfg.Collection)
	g.connected = true
	g.lastErr = nil
	g.log.Info().Msg("Connected to MongoDB successfully")
	return nil
}

func (g *Gateway) connectFailed(err error) error {
	g.lastErr = err
	g.log.Warn().Err(err).Msg("MongoDB connection attempt failed")
	return err
}

func ping(ctx context.Context, client *mongo.Client) error {
	return client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

// ensureConnected makes a single reconnect attempt when the session is down.
// After a failed attempt, calls inside the cooldown window fail fast.
func (g *Gateway) ensureConnected(ctx context.Context) error {
	if g.connected {
		return nil
	}
	if g.lastErr != nil && time.Since(g.lastAttempt) < g.cfg.ReconnectCooldown {
		return &Error{Kind: KindConnection, Op: "reconnecting", Err: fmt.Errorf("%w: %v", ErrNotConnected, g.lastErr)}
	}
	if err := g.Connect(ctx); err != nil {
		if IsConnection(err) {
			return err
		}
		return &Error{Kind: KindConnection, Op: "reconnecting", Err: err}
	}
	return nil
}

func (g *Gateway) do(ctx context.Context, op operation, fn func(coll *mongo.Collection) error) error {
	start := time.Now()

	err := g.ensureConnected(ctx)
	if err == nil {
		err = classify(op.desc, fn(g.coll))
	}
	if IsConnection(err) {
		g.connected = false
	}

	elapsed := time.Since(start)
	g.observe(op.name, err, elapsed)
	logger.StoreOp(g.log, op.name, err, elapsed, IsNotFound(err))
	return err
}

// Ping checks that the store answers, reconnecting first if needed.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.do(ctx, opPing, func(*mongo.Collection) error {
		return ping(ctx, g.client)
	})
}

// Create inserts one document and returns its new id.
func (g *Gateway) Create(ctx context.Context, doc models.Document) (string, error) {
	var id string
	err := g.do(ctx, opCreate, func(coll *mongo.Collection) error {
		result, err := coll.InsertOne(ctx, withoutID(doc))
		if err != nil {
			return err
		}
		id = idString(result.InsertedID)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetAll returns every document in store order.
func (g *Gateway) GetAll(ctx context.Context) ([]models.Document, error) {
	return g.find(ctx, opGetAll, bson.M{})
}

// GetByID returns the document with the given id.
func (g *Gateway) GetByID(ctx context.Context, id string) (models.Document, error) {
	oid, err := parseID(opGetByID, id)
	if err != nil {
		return nil, err
	}

	var doc models.Document
	err = g.do(ctx, opGetByID, func(coll *mongo.Collection) error {
		var raw bson.M
		if err := coll.FindOne(ctx, idFilter(oid)).Decode(&raw); err != nil {
			return err
		}
		doc = normalize(raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Update sets only the keys present in doc. A match with no changes is still a success.
func (g *Gateway) Update(ctx context.Context, id string, doc models.Document) error {
	oid, err := parseID(opUpdate, id)
	if err != nil {
		return err
	}

	fields := withoutID(doc)
	return g.do(ctx, opUpdate, func(coll *mongo.Collection) error {
		if len(fields) == 0 {
			// $set with nothing in it is rejected by the server.
			n, err := coll.CountDocuments(ctx, idFilter(oid), options.Count().SetLimit(1))
			if err != nil {
				return err
			}
			if n == 0 {
				return notFound(opUpdate.desc)
			}
			return nil
		}

		result, err := coll.UpdateOne(ctx, idFilter(oid), setUpdate(fields))
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return notFound(opUpdate.desc)
		}
		return nil
	})
}

// Delete removes the document with the given id.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	oid, err := parseID(opDelete, id)
	if err != nil {
		return err
	}

	return g.do(ctx, opDelete, func(coll *mongo.Collection) error {
		result, err := coll.DeleteOne(ctx, idFilter(oid))
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return notFound(opDelete.desc)
		}
		return nil
	})
}

// Search matches query as a case-insensitive substring of name or location.
// An empty query matches every document.
func (g *Gateway) Search(ctx context.Context, query string) ([]models.Document, error) {
	return g.find(ctx, opSearch, searchFilter(query))
}

// FilterByStatus returns the documents whose status equals status exactly.
func (g *Gateway) FilterByStatus(ctx context.Context, status string) ([]models.Document, error) {
	return g.find(ctx, opFilter, statusFilter(status))
}

// Count returns the number of stored documents.
func (g *Gateway) Count(ctx context.Context) (int64, error) {
	var n int64
	err := g.do(ctx, opCount, func(coll *mongo.Collection) error {
		var err error
		n, err = coll.CountDocuments(ctx, bson.M{})
		return err
	})
	return n, err
}

// Close releases the session. Later operations reconnect.
func (g *Gateway) Close(ctx context.Context) error {
	client := g.client
	g.connected = false
	g.coll = nil
	g.lastErr = nil

	if client == nil || g.borrowed {
		return nil
	}
	g.client = nil
	if err := client.Disconnect(ctx); err != nil {
		return classify(opClose.desc, err)
	}
	g.log.Info().Msg("MongoDB connection closed")
	return nil
}

func (g *Gateway) find(ctx context.Context, op operation, filter bson.M) ([]models.Document, error) {
	var docs []models.Document
	err := g.do(ctx, op, func(coll *mongo.Collection) error {
		cursor, err := coll.Find(ctx, filter)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)

		var raw []bson.M
		if err := cursor.All(ctx, &raw); err != nil {
			return err
		}
		docs = make([]models.Document, 0, len(raw))
		for _, m := range raw {
			docs = append(docs, normalize(m))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func parseID(op operation, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, &Error{Kind: KindStore, Op: op.desc, Err: fmt.Errorf("%w %q", ErrInvalidID, id)}
	}
	return oid, nil
}

func idString(v any) string {
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(v)
}
