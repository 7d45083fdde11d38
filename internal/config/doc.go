// Package config provides configuration management for the bike rental
// dashboard.
//
// # Configuration Sources
//
// Configuration is built in layers, each overriding the previous one:
//
//  1. Default() values
//  2. A YAML file: $BIKE_CONFIG_FILE, else config.yaml or configs/config.yaml
//  3. A .env file in the working directory (never overrides real variables)
//  4. Environment variables with the BIKE prefix
//
// # Environment Variables
//
// Variables follow the section/field layout of Config:
//
//	BIKE_SERVER_PORT=8080
//	BIKE_DATA_DAILY_PATH=data/day_clean.csv
//	BIKE_DATA_HOURLY_PATH=data/hour_clean.csv
//	BIKE_LOGGING_LEVEL=debug
//	BIKE_CHART_WIDTH=1200
//
// # Validation
//
// Validate collects every problem with go-multierror, so a misconfigured
// deployment sees all of them in one startup failure.
//
// # Paths
//
// Relative dataset paths are resolved by Paths.Resolve against the working
// directory first and the executable directory second.
package config
