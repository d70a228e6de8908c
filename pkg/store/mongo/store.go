package mongo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/artistgraph/pkg/artist"
	"github.com/matzehuels/artistgraph/pkg/errors"
	"github.com/matzehuels/artistgraph/pkg/store"
)

const (
	// DefaultDatabase is used when no database name is configured.
	DefaultDatabase = "artistgraph"

	// DefaultConnectTimeout bounds connecting and each Acquire ping.
	DefaultConnectTimeout = 3 * time.Second

	artistsCollection      = "artists"
	similaritiesCollection = "similarities"
)

// Provider hands out handles to a MongoDB-backed store.
//
// The zero value is not usable; create one with [NewProvider].
// Provider is safe for concurrent use.
type Provider struct {
	uri      string
	database string
	timeout  time.Duration

	mu      sync.Mutex
	client  *mongo.Client
	indexed bool
}

// NewProvider creates a provider for the given connection URI and database.
// No connection is made until the first Acquire.
func NewProvider(uri, database string, connectTimeout time.Duration) *Provider {
	if database == "" {
		database = DefaultDatabase
	}
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	return &Provider{uri: strings.TrimSpace(uri), database: database, timeout: connectTimeout}
}

// Acquire connects if needed, pings the server and returns a store handle.
// Any failure is a STORE_ERROR.
func (p *Provider) Acquire(ctx context.Context) (store.Store, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.uri == "" {
		return nil, errors.New(errors.ErrCodeStore, "mongo URI is not configured")
	}
	if p.client == nil {
		client, err := mongo.Connect(ctx, options.Client().
			ApplyURI(p.uri).
			SetConnectTimeout(p.timeout).
			SetServerSelectionTimeout(p.timeout))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongo")
		}
		p.client = client
	}

	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongo")
	}

	s := newStore(p.client.Database(p.database))
	if !p.indexed {
		if err := s.ensureIndexes(ctx); err != nil {
			return nil, err
		}
		p.indexed = true
	}
	return s, nil
}

// Close disconnects the underlying client, if one was created.
func (p *Provider) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return nil
	}
	err := p.client.Disconnect(ctx)
	p.client = nil
	p.indexed = false
	return err
}

// Store is a MongoDB-backed [store.Store].
type Store struct {
	artists      *mongo.Collection
	similarities *mongo.Collection
}

func newStore(db *mongo.Database) *Store {
	return &Store{
		artists:      db.Collection(artistsCollection),
		similarities: db.Collection(similaritiesCollection),
	}
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.artists.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name_lower", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create artists index")
	}
	_, err = s.similarities.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "source_id", Value: 1}, {Key: "target_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "source_id", Value: 1}, {Key: "score", Value: -1}},
		},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create similarities indexes")
	}
	return nil
}

// GetArtist finds an artist by its lowercased name. It returns nil, nil when
// no document matches.
func (s *Store) GetArtist(ctx context.Context, name string) (*artist.Artist, error) {
	var doc artistDoc
	err := s.artists.FindOne(ctx, bson.M{"name_lower": artist.Key(name)}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "get artist %s", name)
	}
	a := doc.toArtist()
	return &a, nil
}

// UpsertArtist inserts or updates the artist document keyed by name_lower.
func (s *Store) UpsertArtist(ctx context.Context, a artist.Artist) (*artist.Artist, error) {
	key := a.Key()
	if artist.Blank(a.Name) {
		return nil, errors.New(errors.ErrCodeStore, "artist name is empty")
	}

	filter := bson.M{"name_lower": key}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc artistDoc
	var err error
	// A concurrent insert of the same name can lose the race on the unique
	// index; the second attempt then updates the winner's document.
	for range 2 {
		update := bson.M{
			"$set":         fieldsOf(a, key),
			"$setOnInsert": bson.M{"_id": uuid.NewString()},
		}
		err = s.artists.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
		if !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "upsert artist %s", a.Name)
	}
	stored := doc.toArtist()
	return &stored, nil
}

// GetCachedEdges returns the persisted edges of artistID joined with their
// target artists, highest score first.
func (s *Store) GetCachedEdges(ctx context.Context, artistID string) ([]store.CachedEdge, error) {
	cur, err := s.similarities.Find(ctx, bson.M{"source_id": artistID},
		options.Find().SetSort(bson.D{{Key: "score", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "find edges of %s", artistID)
	}
	var recs []store.EdgeRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read edges of %s", artistID)
	}
	if len(recs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.TargetID
	}
	cur, err = s.artists.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "find edge targets of %s", artistID)
	}
	var docs []artistDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read edge targets of %s", artistID)
	}
	targets := make(map[string]artist.Artist, len(docs))
	for _, d := range docs {
		targets[d.ID] = d.toArtist()
	}

	out := make([]store.CachedEdge, 0, len(recs))
	for _, r := range recs {
		if t, ok := targets[r.TargetID]; ok {
			out = append(out, store.CachedEdge{Target: t, Score: r.Score})
		}
	}
	return out, nil
}

// UpsertEdges writes edges in one unordered bulk upsert.
func (s *Store) UpsertEdges(ctx context.Context, edges []store.EdgeRecord) error {
	if len(edges) == 0 {
		return nil
	}
	now := time.Now().UTC()
	models := make([]mongo.WriteModel, len(edges))
	for i, e := range edges {
		models[i] = mongo.NewUpdateOneModel().
			SetFilter(bson.M{"source_id": e.SourceID, "target_id": e.TargetID}).
			SetUpdate(bson.M{"$set": bson.M{"score": e.Score, "depth": e.Depth, "updated_at": now}}).
			SetUpsert(true)
	}
	if _, err := s.similarities.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "upsert %d edges", len(edges))
	}
	return nil
}

var (
	_ store.Store    = (*Store)(nil)
	_ store.Provider = (*Provider)(nil)
)
