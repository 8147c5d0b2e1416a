// Copyright (c) 2026 Bookworm. All rights reserved.
// Author: dev@bookwormhq.dev

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Bookworm API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Cryptographic keys for access-token signing
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Library lending policy
	Policy Policy `envPrefix:"LIBRARY_"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// Policy holds the tunable lending rules of the library.
//
// # Scope
//
// Only operational knobs live here. Hard invariants (password policy,
// maximum batch borrow size, extension bounds) are fixed constants inside
// the value types and are intentionally NOT configurable.
type Policy struct {
	// DefaultLoanDays is the loan length applied when the borrower does not
	// pick a due date (1-90).
	DefaultLoanDays int `env:"DEFAULT_LOAN_DAYS" envDefault:"14"`

	// LowStockThreshold is the quantity at or below which a book counts as
	// low stock on the admin dashboard.
	LowStockThreshold int `env:"LOW_STOCK_THRESHOLD" envDefault:"2"`

	// OverdueFinePerDay is the fine charged per overdue day, in the smallest
	// currency unit.
	OverdueFinePerDay int `env:"OVERDUE_FINE_PER_DAY" envDefault:"100"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Policy.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects out-of-range policy values at startup, before any
// request can observe them.
func (p Policy) validate() error {
	if p.DefaultLoanDays < 1 || p.DefaultLoanDays > 90 {
		return fmt.Errorf("config: LIBRARY_DEFAULT_LOAN_DAYS must be between 1 and 90, got %d", p.DefaultLoanDays)
	}
	if p.LowStockThreshold < 0 {
		return fmt.Errorf("config: LIBRARY_LOW_STOCK_THRESHOLD must not be negative, got %d", p.LowStockThreshold)
	}
	if p.OverdueFinePerDay < 0 {
		return fmt.Errorf("config: LIBRARY_OVERDUE_FINE_PER_DAY must not be negative, got %d", p.OverdueFinePerDay)
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
