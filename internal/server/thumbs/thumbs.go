// Package thumbs turns stored thumbnail references into short-lived
// presigned URLs on an S3-compatible store.
//
// Items keep thumbnails either as plain http(s) URLs, which are served as
// is, or as "s3://<bucket>/<key>" references, which are presigned on read.
package thumbs

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/mymind/internal/server/config"
)

const scheme = "s3"

// Presigner issues a GET URL for an object.
type Presigner interface {
	PresignGet(ctx context.Context, bucket, key string) (string, error)
}

// ParseRef splits an "s3://bucket/key" reference. ok is false for anything
// else, including plain web URLs.
func ParseRef(ref string) (bucket, key string, ok bool) {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != scheme || u.Host == "" {
		return "", "", false
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", false
	}
	return u.Host, key, true
}

// Ref builds the reference ParseRef understands.
func Ref(bucket, key string) string {
	return scheme + "://" + bucket + "/" + key
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// S3Presigner signs against the endpoint and credentials in the server
// config. The AWS client is built on first use and reused afterwards.
type S3Presigner struct {
	config *sc.Config
	ttl    time.Duration

	mu     sync.Mutex
	client *s3.PresignClient
}

func NewS3Presigner(cfg *sc.Config) *S3Presigner {
	ttl := cfg.ThumbnailURLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &S3Presigner{config: cfg, ttl: ttl}
}

func (p *S3Presigner) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(p.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			p.config.S3RootUser,
			p.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(p.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	p.client = newS3PresignClient(client)
	return p.client, nil
}

func (p *S3Presigner) PresignGet(ctx context.Context, bucket, key string) (string, error) {
	pc, err := p.presignClient(ctx)
	if err != nil {
		return "", err
	}

	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
