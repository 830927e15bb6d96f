// Package api defines the wire types shared by the bedrockgen HTTP surface,
// the engine, and the generators: generate requests and responses, stream
// events, conversation turns, generator metadata, and structured errors.
//
// The package has no external dependencies and performs no I/O.
package api
