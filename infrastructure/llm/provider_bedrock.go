package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/ahrav/rag-bench/internal/ports"
)

// BedrockDefaultModel is used when the config leaves the model unset.
const BedrockDefaultModel = "anthropic.claude-3-5-sonnet-20240620-v1:0"

func init() {
	RegisterProviderFactory("bedrock", newBedrockProvider)
}

// bedrockProvider implements CoreLLM against AWS Bedrock's Converse
// API. Authentication comes from the standard AWS credential chain;
// an APIKey of the form "accessKeyID:secretAccessKey" overrides it
// with static credentials.
type bedrockProvider struct {
	client *bedrockruntime.Client
	model  string
}

func newBedrockProvider(config ClientConfig) (CoreLLM, error) {
	if config.Region == "" {
		return nil, fmt.Errorf("bedrock region cannot be empty")
	}

	model := config.Model
	if model == "" {
		model = BedrockDefaultModel
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
	}
	if config.APIKey != "" {
		accessKey, secretKey, ok := strings.Cut(config.APIKey, ":")
		if !ok {
			return nil, fmt.Errorf("bedrock API key must be accessKeyID:secretAccessKey")
		}
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &bedrockProvider{
		client: bedrockruntime.NewFromConfig(awsCfg),
		model:  model,
	}, nil
}

// DoRequest sends a Converse request and concatenates the text blocks
// of the response message.
func (p *bedrockProvider) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	options := ParseRequestOptions(opts)

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(p.model),
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: prompt},
				},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(options.MaxTokens)),
			Temperature: aws.Float32(float32(options.Temperature)),
		},
	}
	if options.SystemPrompt != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: options.SystemPrompt},
		}
	}

	out, err := p.client.Converse(ctx, input)
	if err != nil {
		return "", 0, 0, p.handleError(err)
	}

	message, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", 0, 0, fmt.Errorf("unexpected output type from Bedrock Converse")
	}

	var responseText strings.Builder
	for _, block := range message.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			responseText.WriteString(text.Value)
		}
	}
	response := responseText.String()
	if response == "" {
		return "", 0, 0, fmt.Errorf("empty response from Bedrock API")
	}

	tokensIn := EstimateTokens(prompt)
	tokensOut := EstimateTokens(response)
	if out.Usage != nil {
		if count := aws.ToInt32(out.Usage.InputTokens); count > 0 {
			tokensIn = int(count)
		}
		if count := aws.ToInt32(out.Usage.OutputTokens); count > 0 {
			tokensOut = int(count)
		}
	}
	return response, tokensIn, tokensOut, nil
}

func (p *bedrockProvider) GetModel() string      { return p.model }
func (p *bedrockProvider) SetModel(model string) { p.model = model }

func (p *bedrockProvider) handleError(err error) error {
	var (
		throttled   *types.ThrottlingException
		modelTimout *types.ModelTimeoutException
		serverErr   *types.InternalServerException
		notReady    *types.ModelNotReadyException
		accessErr   *types.AccessDeniedException
	)
	switch {
	case errors.As(err, &throttled):
		return &ProviderError{Provider: "bedrock", Err: fmt.Errorf("%w: %v", ports.ErrRateLimited, err)}
	case errors.As(err, &modelTimout):
		return &ProviderError{Provider: "bedrock", Err: fmt.Errorf("%w: %v", ports.ErrTimeout, err)}
	case errors.As(err, &serverErr), errors.As(err, &notReady):
		return &ProviderError{Provider: "bedrock", Err: fmt.Errorf("%w: %v", ports.ErrServiceUnavailable, err)}
	case errors.As(err, &accessErr):
		return &ProviderError{Provider: "bedrock", Err: fmt.Errorf("%w: %v", ports.ErrAuthenticationFailed, err)}
	}
	return classifyTransport("bedrock", err)
}
