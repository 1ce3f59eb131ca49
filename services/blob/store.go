package blobsvc

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
)

const (
	DriverLocal = "local"
	DriverOSS   = "oss"
)

// Store saves public files.
type Store interface {
	// Put stores r at key and returns its public URL.
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// NewStore returns the Store of the configured driver.
func NewStore(conf *core.Config) (Store, error) {
	switch conf.Storage.Driver {
	case DriverOSS:
		return NewOSSStore(conf)
	case DriverLocal, "":
		return NewLocalStore(conf.Storage.LocalDir, conf.Storage.LocalBaseURL), nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
}
