package journal

import (
	"log/slog"

	"github.com/teenjuna/again/codec"
	"github.com/teenjuna/again/codec/json"
	"github.com/teenjuna/again/internal/sqlite"
)

type Option = func(*config)

// WithFile stores the journal in file instead of memory.
func WithFile(file string, durable bool) Option {
	return func(c *config) {
		c.storage = append(c.storage, sqlite.WithFile(file), sqlite.WithDurable(durable))
	}
}

// WithCodec sets the codec of stored entries. The default is JSON.
func WithCodec(codec codec.Codec[Entry]) Option {
	if codec == nil {
		panic("codec can't be nil")
	}
	return func(c *config) {
		c.codec = codec
	}
}

// WithLimit sets the maximum number of retained sequences. Zero keeps everything.
func WithLimit(limit int) Option {
	if limit < 0 {
		panic("limit can't be < 0")
	}
	return func(c *config) {
		c.storage = append(c.storage, sqlite.WithLimit(limit))
	}
}

func WithLogger(logger *slog.Logger) Option {
	if logger == nil {
		panic("logger can't be nil")
	}
	return func(c *config) {
		c.logger = logger
	}
}

type config struct {
	codec   codec.Codec[Entry]
	logger  *slog.Logger
	storage []sqlite.ConfigFunc
}

func newConfig(options ...Option) *config {
	options = append([]Option{
		WithCodec(json.New[Entry]()),
		WithLogger(slog.New(slog.DiscardHandler)),
	}, options...)

	cfg := config{}
	for _, opt := range options {
		opt(&cfg)
	}

	return &cfg
}
