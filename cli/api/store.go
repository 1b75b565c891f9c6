package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/amritsagoo91/phonebook-demo/datastores"
)

type StoreOptions struct {
	Store           string `doc:"contacts backend: memory, mongodb, postgres or redis" default:"memory"`
	Seed            bool   `doc:"seed the memory backend with sample contacts"`
	MongodbURI      string `doc:"mongodb connection string"`
	MongodbDatabase string `doc:"mongodb database name"                               default:"phonebook"`
	PostgresURL     string `doc:"postgres connection string"`
	RedisAddr       string `doc:"redis address"                                       default:"localhost:6379"`
	RedisPassword   string `doc:"redis password"`
	RedisDB         int    `doc:"redis database number"`
	RedisPrefix     string `doc:"prefix of the redis keys"                            default:"phonebook:"`
}

// Store is a [datastores.ContactsStore] together with the hooks the server
// needs to manage it. Ping is nil for stores without a connection.
type Store struct {
	datastores.ContactsStore
	Ping  func(context.Context) error
	Close func(context.Context) error
}

type connStore interface {
	datastores.ContactsStore
	Ping(context.Context) error
	Close(context.Context) error
}

func wrapConn(s connStore) *Store {
	return &Store{ContactsStore: s, Ping: s.Ping, Close: s.Close}
}

// OpenStore opens the backend selected by options. The connection of
// persistent backends is established here and held until Close.
func OpenStore(ctx context.Context, options *StoreOptions, logger *slog.Logger) (*Store, error) {
	backend := strings.ToLower(options.Store)
	switch backend {
	case "", "memory":
		var seed []*datastores.Contact
		if options.Seed {
			seed = sampleContacts()
		}
		logger.Info("using memory store", "contacts", len(seed))
		return &Store{
			ContactsStore: datastores.NewContactsInmem(seed...),
			Close:         func(context.Context) error { return nil },
		}, nil

	case "mongodb":
		if options.MongodbURI == "" {
			return nil, fmt.Errorf("store %s: missing mongodb uri", backend)
		}
		s, err := datastores.NewContactsMongo(ctx, options.MongodbURI, options.MongodbDatabase)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to mongodb", "database", options.MongodbDatabase)
		return wrapConn(s), nil

	case "postgres":
		if options.PostgresURL == "" {
			return nil, fmt.Errorf("store %s: missing postgres url", backend)
		}
		s, err := datastores.NewContactsPostgres(ctx, options.PostgresURL)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to postgres")
		return wrapConn(s), nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     options.RedisAddr,
			Password: options.RedisPassword,
			DB:       options.RedisDB,
		})
		s, err := datastores.NewContactsRedis(ctx, client, options.RedisPrefix)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		logger.Info("connected to redis", "addr", options.RedisAddr)
		return wrapConn(s), nil

	default:
		return nil, fmt.Errorf("unknown store %q", options.Store)
	}
}

func sampleContacts() []*datastores.Contact {
	return []*datastores.Contact{
		{Name: "Arto Hellas", Number: "040-123456"},
		{Name: "Ada Lovelace", Number: "39-44-5323523"},
		{Name: "Dan Abramov", Number: "12-43-234345"},
		{Name: "Mary Poppendieck", Number: "39-23-6423122"},
	}
}
