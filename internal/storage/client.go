package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"strollcast/internal/config"
	"strollcast/internal/services"
)

// objectAPI is the slice of the S3 client the package uses. Tests substitute
// a fake.
type objectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Client wraps one R2 account endpoint.
type Client struct {
	api objectAPI
}

// NewClient builds an R2 client from configuration. R2 speaks the S3 API
// with a per-account endpoint and static credentials.
func NewClient(ctx context.Context, cfg config.Storage) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "storage", "", "endpoint is required", nil)
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "storage", "", "load credentials", err)
	}
	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})
	return &Client{api: api}, nil
}

// isNotFound classifies the API errors that mean "key does not exist".
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}

func wrapStorageErr(op, bucket, key string, err error) error {
	return services.Wrap(services.ErrTransient, "storage", op, fmt.Sprintf("%s/%s", bucket, key), err)
}
