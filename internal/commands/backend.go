package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"rentease-service/internal/config"
	mongoclient "rentease-service/internal/mongo"
	"rentease-service/internal/repository"
)

const filesURLPrefix = "/api/files"

// backend is the opened storage for one process.
type backend struct {
	store   repository.DocumentStore
	blobs   repository.BlobStore
	closers []func(context.Context) error
}

func (b *backend) Close(ctx context.Context) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			log.Printf("[backend.Close] %v", err)
		}
	}
}

// openBackend connects the configured document store. Uploads go to GridFS
// whenever a MongoDB URI is set, otherwise they are kept in memory.
func openBackend(ctx context.Context, c config.Config) (*backend, error) {
	b := &backend{}

	switch c.StoreDriver {
	case config.DriverPostgres:
		db, err := sqlx.Connect("postgres", c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db connect error: %w", err)
		}
		b.closers = append(b.closers, func(context.Context) error { return db.Close() })
		pg := repository.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			b.Close(ctx)
			return nil, err
		}
		b.store = pg
	case config.DriverMongo:
		// opened below together with the blob store
	case config.DriverMemory:
		log.Println("[openBackend] using the in-memory store, data is lost on exit")
		b.store = repository.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}

	if c.MongoURI == "" {
		b.blobs = repository.NewMemoryBlobStore(filesURLPrefix)
		return b, nil
	}
	client, err := mongoclient.Connect(ctx, c.MongoURI)
	if err != nil {
		b.Close(ctx)
		return nil, err
	}
	b.closers = append(b.closers, client.Disconnect)
	db := client.Database(c.MongoDB)
	if b.store == nil {
		b.store = repository.NewMongoStore(client, c.MongoDB)
	}
	blobs, err := repository.NewGridFSBlobStore(db, filesURLPrefix)
	if err != nil {
		b.Close(ctx)
		return nil, err
	}
	b.blobs = blobs
	return b, nil
}
