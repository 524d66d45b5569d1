package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/temirov/uptree/internal/tree"
)

const (
	s3LocationScheme = "s3://"

	errorEmptyBucketFormat = "%w: %q has no bucket"
	errorLoadAWSFormat     = "load aws config: %w"
	errorListObjectsFormat = "list s3://%s/%s: %w"
	errorGetObjectFormat   = "get object %s: %w"
)

// ErrInvalidLocation reports an S3 location without a bucket.
var ErrInvalidLocation = errors.New("invalid s3 location")

// S3API is the part of the S3 client the source uses.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3ClientOptions configures NewS3Client. Empty credentials use the default
// AWS credential chain; an Endpoint points the client at an S3-compatible
// server such as MinIO.
type S3ClientOptions struct {
	Region          string
	Endpoint        string
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Client builds an S3 client from the shared AWS configuration.
func NewS3Client(ctx context.Context, options S3ClientOptions) (*s3.Client, error) {
	var loadOptions []func(*awsconfig.LoadOptions) error
	if options.Region != "" {
		loadOptions = append(loadOptions, awsconfig.WithRegion(options.Region))
	}
	if options.AccessKeyID != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(options.AccessKeyID, options.SecretAccessKey, ""),
		))
	}
	awsConfiguration, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf(errorLoadAWSFormat, err)
	}
	return s3.NewFromConfig(awsConfiguration, func(o *s3.Options) {
		if options.Endpoint != "" {
			o.BaseEndpoint = aws.String(options.Endpoint)
		}
		o.UsePathStyle = options.UsePathStyle
	}), nil
}

// S3Location names a bucket and an optional key prefix.
type S3Location struct {
	Bucket string
	Prefix string
}

// ParseS3Location accepts "bucket", "bucket/prefix" or "s3://bucket/prefix".
func ParseS3Location(location string) (S3Location, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(location), s3LocationScheme)
	bucket, prefix, _ := strings.Cut(trimmed, tree.PathSeparator)
	if bucket == "" {
		return S3Location{}, fmt.Errorf(errorEmptyBucketFormat, ErrInvalidLocation, location)
	}
	return S3Location{Bucket: bucket, Prefix: strings.Trim(prefix, tree.PathSeparator)}, nil
}

// rootName is the first segment every entry of the location starts with:
// the last segment of the prefix, or the bucket name.
func (location S3Location) rootName() string {
	if location.Prefix == "" {
		return location.Bucket
	}
	segments := strings.Split(location.Prefix, tree.PathSeparator)
	return segments[len(segments)-1]
}

// S3 lists every object under location and returns entries whose handles
// fetch the object only when opened. Keys ending in a slash are folder
// markers and are skipped. Keys keep the listing order, which S3 returns
// sorted by key.
func S3(ctx context.Context, client S3API, location S3Location) (Listing, error) {
	listPrefix := location.Prefix
	if listPrefix != "" {
		listPrefix += tree.PathSeparator
	}
	rootName := location.rootName()

	var listing Listing
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(location.Bucket),
		Prefix: aws.String(listPrefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return Listing{}, fmt.Errorf(errorListObjectsFormat, location.Bucket, listPrefix, err)
		}
		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			relativeKey := strings.TrimPrefix(key, listPrefix)
			if relativeKey == "" || strings.HasSuffix(relativeKey, tree.PathSeparator) {
				continue
			}
			listing.Entries = append(listing.Entries, tree.Entry{
				RelativePath: rootName + tree.PathSeparator + relativeKey,
				Handle: s3Handle{
					client: client,
					bucket: location.Bucket,
					key:    key,
					size:   aws.ToInt64(object.Size),
				},
			})
		}
	}
	return listing, nil
}

type s3Handle struct {
	client S3API
	bucket string
	key    string
	size   int64
}

func (handle s3Handle) Open(ctx context.Context) (io.ReadCloser, error) {
	result, err := handle.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(handle.bucket),
		Key:    aws.String(handle.key),
	})
	if err != nil {
		return nil, fmt.Errorf(errorGetObjectFormat, handle.key, err)
	}
	return result.Body, nil
}

func (handle s3Handle) Size() int64 {
	return handle.size
}
