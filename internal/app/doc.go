// Package app wires the bike rental dashboard together and manages its
// lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration (defaults, YAML file, .env, BIKE_* variables)
//  2. Resolve dataset paths and initialize logging
//  3. Initialize OpenTelemetry and the dashboard metrics
//  4. Build loader, cache, selector, chart renderer and dashboard service
//  5. Load both datasets; a failure aborts startup
//  6. Create the WebSocket hub and health service
//  7. Set up middleware, handlers and the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    os.Exit(1)
//	}
//	if err := application.Run(); err != nil {
//	    os.Exit(1)
//	}
//
// # Graceful Shutdown
//
// Run waits for SIGINT or SIGTERM, closes every WebSocket session, drains
// in-flight HTTP requests and flushes telemetry. The package never calls
// os.Exit itself.
package app
