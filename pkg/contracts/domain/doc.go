// Package domain holds the data shapes shared by the dashboard's services,
// transports and the report command.
package domain
