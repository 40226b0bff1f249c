package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	episodePrefix    = "episodes/"
	transcriptPrefix = "api/"

	episodeContentType    = "audio/mp4"
	transcriptContentType = "text/vtt"
)

// Publisher uploads finished artifacts to the output bucket and derives the
// public URLs they are served from.
type Publisher struct {
	client       *Client
	bucket       string
	publicDomain string
}

// NewPublisher binds a client to the output bucket. publicDomain is the
// custom domain fronting the bucket, without scheme.
func NewPublisher(client *Client, bucket, publicDomain string) *Publisher {
	return &Publisher{client: client, bucket: bucket, publicDomain: strings.TrimSuffix(publicDomain, "/")}
}

// EpisodeObjectKey returns the bucket key for an episode's audio.
func EpisodeObjectKey(name string) string {
	return episodePrefix + name + ".m4a"
}

// TranscriptObjectKey returns the bucket key for an episode's transcript.
func TranscriptObjectKey(id string) string {
	return transcriptPrefix + id + ".vtt"
}

// PublishEpisode uploads the audio file at path and returns its public URL.
func (p *Publisher) PublishEpisode(ctx context.Context, name, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read episode audio: %w", err)
	}
	key := EpisodeObjectKey(name)
	if err := p.upload(ctx, key, data, episodeContentType); err != nil {
		return "", err
	}
	return p.PublicURL(key), nil
}

// PublishTranscript uploads a rendered transcript document and returns its
// public URL.
func (p *Publisher) PublishTranscript(ctx context.Context, id string, document []byte) (string, error) {
	key := TranscriptObjectKey(id)
	if err := p.upload(ctx, key, document, transcriptContentType); err != nil {
		return "", err
	}
	return p.PublicURL(key), nil
}

func (p *Publisher) upload(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := p.client.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return wrapStorageErr("put", p.bucket, key, err)
	}
	return nil
}

// PublicURL maps a bucket key to its address on the public domain.
func (p *Publisher) PublicURL(key string) string {
	if p.publicDomain == "" {
		return ""
	}
	return "https://" + p.publicDomain + "/" + key
}
