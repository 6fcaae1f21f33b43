package storage_benchmark

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/boreq/errors"
)

const (
	DefaultS3Endpoint = "http://localhost:4566"
	DefaultS3Region   = "us-east-1"
	DefaultS3Bucket   = "s3-benchmark-bucket"

	// S3 rejects parts smaller than 5 MiB except for the last one.
	MinS3PartSize = 5 * 1024 * 1024
)

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool

	// PartSize is the size of a multipart upload part. Values which fit in a
	// single part are uploaded with a plain PutObject.
	PartSize int

	// PartConcurrency limits the number of parts uploaded at the same time.
	// Zero uploads all parts of an object at once.
	PartConcurrency int
}

func DefaultS3Config() S3Config {
	return S3Config{
		Endpoint:        DefaultS3Endpoint,
		Region:          DefaultS3Region,
		Bucket:          DefaultS3Bucket,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		ForcePathStyle:  true,
		PartSize:        MinS3PartSize,
		PartConcurrency: 0,
	}
}

type S3StorageSystem struct {
	client *s3.Client
	config S3Config
}

func NewS3StorageSystem(ctx context.Context, cfg S3Config) (*S3StorageSystem, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name cannot be empty")
	}

	if cfg.PartSize < MinS3PartSize {
		return nil, errors.New("part size must be at least 5 MiB")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}

	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "error loading aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	system := &S3StorageSystem{
		client: client,
		config: cfg,
	}

	if err := system.ensureBucket(ctx); err != nil {
		return nil, errors.Wrap(err, "error ensuring that the bucket exists")
	}

	return system, nil
}

func (s *S3StorageSystem) ensureBucket(ctx context.Context) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(s.config.Bucket),
	}

	// us-east-1 is the only region which rejects an explicit location constraint
	if s.config.Region != "" && s.config.Region != DefaultS3Region {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.config.Region),
		}
	}

	_, err := s.client.CreateBucket(ctx, input)
	if err != nil && !isBucketAlreadyCreated(err) {
		return errors.Wrap(err, "error calling create bucket")
	}

	return nil
}

func isBucketAlreadyCreated(err error) bool {
	var exists *types.BucketAlreadyExists
	var owned *types.BucketAlreadyOwnedByYou
	return stderrors.As(err, &exists) || stderrors.As(err, &owned)
}

func (s *S3StorageSystem) Put(ctx context.Context, key string, value []byte) error {
	if len(value) <= s.config.PartSize {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.config.Bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(value),
			ContentLength: aws.Int64(int64(len(value))),
		})
		if err != nil {
			return errors.Wrap(err, "error calling put object")
		}
		return nil
	}

	return s.multipartUpload(ctx, key, value)
}

func (s *S3StorageSystem) multipartUpload(ctx context.Context, key string, value []byte) error {
	created, err := s.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrap(err, "error calling create multipart upload")
	}

	parts, err := s.uploadParts(ctx, key, created.UploadId, value)
	if err != nil {
		if _, abortErr := s.client.AbortMultipartUpload(context.WithoutCancel(ctx), &s3.AbortMultipartUploadInput{
			Bucket:   aws.String(s.config.Bucket),
			Key:      aws.String(key),
			UploadId: created.UploadId,
		}); abortErr != nil {
			return errors.Wrap(err, fmt.Sprintf("error uploading parts (abort also failed: %s)", abortErr))
		}
		return errors.Wrap(err, "error uploading parts")
	}

	_, err = s.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(s.config.Bucket),
		Key:      aws.String(key),
		UploadId: created.UploadId,
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: parts,
		},
	})
	if err != nil {
		return errors.Wrap(err, "error calling complete multipart upload")
	}

	return nil
}

func (s *S3StorageSystem) uploadParts(ctx context.Context, key string, uploadID *string, value []byte) ([]types.CompletedPart, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sizes := batch(len(value), s.config.PartSize)

	concurrency := s.config.PartConcurrency
	if concurrency <= 0 || concurrency > len(sizes) {
		concurrency = len(sizes)
	}

	var (
		wg        sync.WaitGroup
		semaphore = make(chan struct{}, concurrency)
		completed = make([]types.CompletedPart, len(sizes))

		errOnce  sync.Once
		firstErr error
	)

	offset := 0
	for i, size := range sizes {
		body := value[offset : offset+size]
		offset += size
		partNumber := int32(i + 1)

		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-semaphore }()

			out, err := s.client.UploadPart(ctx, &s3.UploadPartInput{
				Bucket:        aws.String(s.config.Bucket),
				Key:           aws.String(key),
				UploadId:      uploadID,
				PartNumber:    aws.Int32(partNumber),
				Body:          bytes.NewReader(body),
				ContentLength: aws.Int64(int64(len(body))),
			})
			if err != nil {
				errOnce.Do(func() {
					firstErr = errors.Wrap(err, fmt.Sprintf("error uploading part %d", partNumber))
					cancel()
				})
				return
			}

			completed[i] = types.CompletedPart{
				ETag:       out.ETag,
				PartNumber: aws.Int32(partNumber),
			}
		}(i)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "context error")
	}

	return completed, nil
}

func (s *S3StorageSystem) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if stderrors.As(err, &notFound) {
			return nil, ErrKeyNotFound
		}
		return nil, errors.Wrap(err, "error calling get object")
	}
	defer out.Body.Close()

	var buf bytes.Buffer
	if out.ContentLength != nil && *out.ContentLength > 0 {
		buf.Grow(int(*out.ContentLength))
	}

	if _, err := io.Copy(&buf, out.Body); err != nil {
		return nil, errors.Wrap(err, "error reading the object body")
	}

	return buf.Bytes(), nil
}

func (s *S3StorageSystem) Close() error {
	return nil
}

// batch splits total into chunks of at most batchSize.
func batch(total, batchSize int) []int {
	var batches []int

	for {
		if total > batchSize {
			batches = append(batches, batchSize)
			total -= batchSize
		} else {
			batches = append(batches, total)
			break
		}
	}

	return batches
}
