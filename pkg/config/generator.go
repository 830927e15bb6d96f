package config

import (
	"github.com/rhuss/bedrockgen/pkg/generator"
)

// Options translates the generator section into Claude2 options. The
// stream format is assumed to be valid (see Validate).
func (g GeneratorConfig) Options() []generator.Option {
	format, _ := generator.ParseStreamFormat(g.StreamFormat)

	opts := []generator.Option{
		generator.WithName(g.Name),
		generator.WithModel(g.Model),
		generator.WithDescription(g.Description),
		generator.WithStreamable(g.Streamable),
		generator.WithContextWindow(g.ContextWindow),
		generator.WithStreamFormat(format),
		generator.WithParams(generator.Params{
			MaxTokensToSample: g.MaxTokensToSample,
			Temperature:       g.Temperature,
			TopP:              g.TopP,
		}),
	}
	if g.SystemPrompt != "" {
		opts = append(opts, generator.WithSystemPrompt(g.SystemPrompt))
	}
	return opts
}
