// Package generator implements the answer-generation step of a RAG pipeline
// on top of a provider.Invoker.
//
// A Generator turns queries, retrieved context snippets and prior
// conversation turns into a model request, then returns the model's answer
// either as one string (Generate) or as a lazy sequence of api.StreamEvent
// values (GenerateStream). Claude2 is the Bedrock-hosted implementation.
//
// Generators are collected in a Registry from which the HTTP surface and the
// CLI resolve them by name. Instrument wraps a Generator with metrics and
// tracing.
package generator
