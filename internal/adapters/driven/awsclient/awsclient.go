// Package awsclient loads AWS configuration and wraps the Bedrock runtime
// InvokeModel call for the JSON model APIs.
package awsclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const jsonContentType = "application/json"

// InvokeModelAPI is the subset of the Bedrock runtime client used by the
// model adapters.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput,
		optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Ensure the SDK client satisfies the interface.
var _ InvokeModelAPI = (*bedrockruntime.Client)(nil)

// Load resolves AWS configuration from the default chain (environment,
// shared config files, instance role). Empty region or profile fall back to
// the chain's own resolution.
func Load(ctx context.Context, region, profile string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	if profile != "" && profile != "default" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// NewBedrockRuntime creates a Bedrock runtime client for region.
func NewBedrockRuntime(ctx context.Context, region, profile string) (*bedrockruntime.Client, error) {
	cfg, err := Load(ctx, region, profile)
	if err != nil {
		return nil, err
	}
	return bedrockruntime.NewFromConfig(cfg), nil
}

// InvokeJSON sends in as the JSON body of an InvokeModel call and decodes
// the response body into out.
func InvokeJSON(ctx context.Context, api InvokeModelAPI, modelID string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	resp, err := api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        body,
		ContentType: aws.String(jsonContentType),
		Accept:      aws.String(jsonContentType),
	})
	if err != nil {
		return fmt.Errorf("invoke %s: %w", modelID, err)
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", modelID, err)
	}
	return nil
}
