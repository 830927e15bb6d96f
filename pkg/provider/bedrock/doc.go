// Package bedrock implements provider.Invoker on top of the Amazon Bedrock
// runtime API (aws-sdk-go-v2 bedrockruntime).
//
// Invoke wraps InvokeModel and returns the "completion" field of the JSON
// response body. InvokeStream wraps InvokeModelWithResponseStream and yields
// the JSON payload of every chunk frame in arrival order; the event stream is
// closed when the range loop ends for any reason.
//
// Credentials and region come from an explicit Config that is validated in
// New. Errors returned by the SDK are passed through unchanged so callers can
// inspect them with errors.As against smithy.APIError or the bedrockruntime
// exception types.
package bedrock
