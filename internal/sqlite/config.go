package sqlite

import (
	"strings"
)

type Config struct {
	file    string
	durable bool
	workers int
	limit   int
}

type ConfigFunc = func(c *Config)

// File sets the database file. Use ":memory:" for a private in-memory database.
func (c *Config) File(file string) {
	file = strings.TrimSpace(file)
	if file == "" {
		panic("file can't be blank")
	}
	if strings.Contains(file, "?") {
		panic("file can't contain ?")
	}
	c.file = file
}

// Durable makes every commit wait for a full sync to disk.
func (c *Config) Durable(durable bool) {
	c.durable = durable
}

func (c *Config) Workers(workers int) {
	if workers < 1 {
		panic("workers can't be < 1")
	}
	c.workers = workers
}

// Limit sets how many sequences are retained. Older ones are removed on push. Zero means no limit.
func (c *Config) Limit(limit int) {
	if limit < 0 {
		panic("limit can't be < 0")
	}
	c.limit = limit
}

func WithFile(file string) ConfigFunc {
	return func(c *Config) { c.File(file) }
}

func WithDurable(durable bool) ConfigFunc {
	return func(c *Config) { c.Durable(durable) }
}

func WithWorkers(workers int) ConfigFunc {
	return func(c *Config) { c.Workers(workers) }
}

func WithLimit(limit int) ConfigFunc {
	return func(c *Config) { c.Limit(limit) }
}
