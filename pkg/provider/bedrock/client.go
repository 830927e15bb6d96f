package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/rhuss/bedrockgen/pkg/debug"
	"github.com/rhuss/bedrockgen/pkg/provider"
)

// Client implements provider.Invoker against the Bedrock runtime.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	runtime Runtime
}

var _ provider.Invoker = (*Client)(nil)

// New validates cfg and creates a Client backed by the AWS SDK.
// An invalid cfg returns an error wrapping one or more *ConfigError values.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if !cfg.UseDefaultCredentials {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("bedrock: loading AWS config: %w", err)
	}

	sdk := bedrockruntime.NewFromConfig(awsCfg, func(o *bedrockruntime.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	debug.Log("bedrock", "client created",
		"region", cfg.Region,
		"endpoint", cfg.Endpoint,
		"default_credentials", cfg.UseDefaultCredentials,
	)

	return NewWithRuntime(&sdkRuntime{client: sdk}), nil
}

// NewWithRuntime creates a Client on top of an existing Runtime.
func NewWithRuntime(rt Runtime) *Client {
	return &Client{runtime: rt}
}

// completionBody is the text-completion response shape.
type completionBody struct {
	Completion string `json:"completion"`
}

// Invoke sends req with InvokeModel and returns the "completion" field of the
// response body. A missing field yields an empty string.
func (c *Client) Invoke(ctx context.Context, req provider.Request) (string, error) {
	debug.Log("bedrock", "invoke", "model", req.ModelID, "body_bytes", len(req.Body))
	if debug.TraceIsEnabled("bedrock") {
		debug.Trace("bedrock", "invoke body", "body", string(req.Body))
	}

	out, err := c.runtime.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(req.ModelID),
		Body:        req.Body,
		Accept:      optionalString(req.Accept),
		ContentType: optionalString(req.ContentType),
	})
	if err != nil {
		return "", err
	}

	var body completionBody
	if err := json.Unmarshal(out.Body, &body); err != nil {
		return "", err
	}

	return body.Completion, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}
