// Package engine implements the request orchestration for bedrockgen.
// The Engine struct implements transport.GenerateHandler, bridging incoming
// generate requests to the registered generators. It resolves the target
// generator, validates the request and maps generator output to either a
// complete response or a sequence of stream events.
package engine
