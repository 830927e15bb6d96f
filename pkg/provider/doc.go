// Package provider defines the transport contract between generators and a
// hosted inference endpoint: a blocking Invoke call and a lazily pulled
// InvokeStream sequence of decoded JSON chunks. Endpoint specifics (SDKs,
// framing, credentials) live in subpackages such as bedrock.
package provider
