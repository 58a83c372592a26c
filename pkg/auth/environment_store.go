package auth

import (
	"os"
)

// EnvironmentSource yields a single credential from TWHARVEST_* variables.
// It is read-only.
type EnvironmentSource struct{}

// Name implements Source
func (EnvironmentSource) Name() string { return "environment" }

// Load implements Source
func (EnvironmentSource) Load() ([]Credential, error) {
	c := Credential{
		ConsumerKey:    os.Getenv("TWHARVEST_CONSUMER_KEY"),
		ConsumerSecret: os.Getenv("TWHARVEST_CONSUMER_SECRET"),
		AccessToken:    os.Getenv("TWHARVEST_ACCESS_TOKEN"),
		AccessSecret:   os.Getenv("TWHARVEST_ACCESS_SECRET"),
	}
	if c.ConsumerKey == "" || c.ConsumerSecret == "" {
		return nil, nil
	}
	return []Credential{c}, nil
}
