package paramstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

const (
	SourceSSM = "ssm"
	SourceEnv = "env"
)

// ssmAPI is the slice of the SSM API used here; *ssm.Client satisfies it.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Getter resolves a named parameter to its plaintext value. The OpenAI client
// depends on this rather than on a concrete store.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

var (
	_ Getter = (*Client)(nil)
	_ Getter = EnvGetter{}
)

// Client reads SecureString parameters from AWS Systems Manager.
type Client struct {
	api ssmAPI
}

func New(api ssmAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	return &Client{api: api}, nil
}

// Select returns the Getter for source. The SSM API is only consulted for
// SourceSSM and may be nil otherwise.
func Select(source string, api ssmAPI) (Getter, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "", SourceSSM:
		return New(api)
	case SourceEnv:
		return EnvGetter{}, nil
	default:
		return nil, fmt.Errorf("paramstore: unknown source %q", source)
	}
}

func (c *Client) GetParameter(ctx context.Context, name string) (string, error) {
	if c.api == nil {
		return "", errors.New("paramstore: client not initialized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("paramstore: name is required")
	}

	out, err := c.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("paramstore: get parameter %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("paramstore: parameter %q missing value", name)
	}
	return aws.ToString(out.Parameter.Value), nil
}
