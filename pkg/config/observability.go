package config

import "github.com/rhuss/bedrockgen/pkg/observability"

// TracingOptions converts the tracing section for observability.InitTracing.
func (o ObservabilityConfig) TracingOptions(version string) observability.TracingConfig {
	t := o.Tracing
	return observability.TracingConfig{
		Enabled:     t.Enabled,
		ServiceName: t.ServiceName,
		Version:     version,
		Endpoint:    t.Endpoint,
		Insecure:    t.Insecure,
		SampleRatio: t.SampleRatio,
	}
}
