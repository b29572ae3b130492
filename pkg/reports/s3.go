package reports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// S3Store archives each report as one msgpack object.
//
// Keys sort by receive time, so listing newest first needs no object reads
// beyond the ones returned:
//
//	<prefix>20240301T120000.000000000Z-<id>.msgpack
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store creates a store writing under prefix in bucket.
//
// Example usage:
//
//	client := reports.NewS3Client(reports.S3ClientOptions{Region: "eu-west-1"})
//	store := reports.NewS3Store(client, "my-bucket", "spa/errors/")
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

const keyTime = "20060102T150405.000000000Z"

func (s *S3Store) key(r Record) string {
	return s.prefix + r.Received.UTC().Format(keyTime) + "-" + r.ID + ".msgpack"
}

// Save implements Store.
func (s *S3Store) Save(ctx context.Context, r Record) error {
	prepare(&r)
	body, err := EncodeRecord(r)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(r)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/msgpack"),
		Metadata: map[string]string{
			"report-type": string(r.Report.Type),
			"received":    r.Received.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("reports: s3 put failed: %w", err)
	}
	return nil
}

// List implements Store.
func (s *S3Store) List(ctx context.Context, limit int) ([]Record, error) {
	var keys []string
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("reports: s3 list failed: %w", err)
		}
		for _, obj := range page.Contents {
			if k := aws.ToString(obj.Key); strings.HasSuffix(k, ".msgpack") {
				keys = append(keys, k)
			}
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		r, err := s.get(ctx, k)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *S3Store) get(ctx context.Context, key string) (Record, error) {
	obj, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Record{}, fmt.Errorf("reports: s3 get %s: %w", key, err)
	}
	defer obj.Body.Close()

	b, err := io.ReadAll(obj.Body)
	if err != nil {
		return Record{}, fmt.Errorf("reports: s3 read %s: %w", key, err)
	}
	return DecodeRecord(b)
}

// Close implements Store.
func (s *S3Store) Close() error {
	return nil
}

// S3ClientOptions configures NewS3Client.
type S3ClientOptions struct {
	Region string
	// Endpoint overrides the service endpoint, e.g. for MinIO.
	Endpoint string
	// PathStyle addresses buckets by path rather than subdomain.
	PathStyle bool
}

// NewS3Client builds an S3 client. Credentials come from
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN.
func NewS3Client(opts S3ClientOptions) *s3.Client {
	o := s3.Options{
		Region:       opts.Region,
		UsePathStyle: opts.PathStyle,
		Credentials:  aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if opts.Endpoint != "" {
		o.BaseEndpoint = aws.String(opts.Endpoint)
	}
	return s3.New(o)
}

func envCredentials(context.Context) (aws.Credentials, error) {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, fmt.Errorf("reports: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "Environment",
	}, nil
}
