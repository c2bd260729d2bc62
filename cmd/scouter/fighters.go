package main

import (
	"context"
	"strconv"
	"time"

	"github.com/teenjuna/again"
	"github.com/teenjuna/again/lookup"
)

const (
	defaultDelay = 400 * time.Millisecond
	defaultPower = 1000
)

type fighter struct {
	delay time.Duration
	power int64
}

// Simulated scouter readings.
var fighters = map[string]fighter{
	"Goku":   {delay: 700 * time.Millisecond, power: 9000},
	"Vegeta": {delay: 500 * time.Millisecond, power: 8500},
	"Broly":  {delay: 900 * time.Millisecond, power: 12000},
	"Gohan":  {delay: 600 * time.Millisecond, power: 8000},
}

func reading(name string) fighter {
	if f, ok := fighters[name]; ok {
		return f
	}
	return fighter{delay: defaultDelay, power: defaultPower}
}

func character(name string) lookup.Character {
	return lookup.Character{
		Name: name,
		Ki:   strconv.FormatInt(reading(name).power, 10),
	}
}

// scout simulates measuring name's power level.
func scout(name string) again.Operation[lookup.Character] {
	return func(ctx context.Context) (lookup.Character, error) {
		timer := time.NewTimer(reading(name).delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return lookup.Character{}, ctx.Err()
		case <-timer.C:
			return character(name), nil
		}
	}
}
