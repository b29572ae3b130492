package reports

import (
	"fmt"
)

// Options selects and configures a Store for Open.
type Options struct {
	// Kind is one of "memory", "disk", "s3" or "postgres". Empty means memory.
	Kind string

	// Capacity bounds the memory store.
	Capacity int

	// Path is the disk store's JSON-lines file.
	Path string

	// Bucket, Prefix, Region, Endpoint and PathStyle configure the s3 store.
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	PathStyle bool

	// DSN is the postgres connection string.
	DSN string
}

// Open creates the store described by opts.
func Open(opts Options) (Store, error) {
	switch opts.Kind {
	case "", "memory":
		return NewMemoryStore(opts.Capacity), nil
	case "disk":
		if opts.Path == "" {
			return nil, fmt.Errorf("reports: disk store needs a path")
		}
		return NewDiskStore(opts.Path)
	case "s3":
		if opts.Bucket == "" {
			return nil, fmt.Errorf("reports: s3 store needs a bucket")
		}
		client := NewS3Client(S3ClientOptions{
			Region:    opts.Region,
			Endpoint:  opts.Endpoint,
			PathStyle: opts.PathStyle,
		})
		return NewS3Store(client, opts.Bucket, opts.Prefix), nil
	case "postgres":
		if opts.DSN == "" {
			return nil, fmt.Errorf("reports: postgres store needs a dsn")
		}
		return NewSQLStore(opts.DSN)
	default:
		return nil, fmt.Errorf("reports: unknown store kind %q", opts.Kind)
	}
}
