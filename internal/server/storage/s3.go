// Package storage выдаёт подписанные ссылки на загрузку фото машин в S3 (AWS или MinIO).
//
// Сервер сам байты картинок не принимает: клиент получает presigned PUT,
// кладёт файл напрямую в бакет и затем передаёт публичный URL в add-car.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/config"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/service"
)

// подменяются в тестах
var (
	loadAWSConfig = awsconfig.LoadDefaultConfig

	newS3Client = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	now = time.Now
)

// extensions - расширения для типичных форматов фото.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/avif": ".avif",
}

// S3Images - ссылки на загрузку в бакет из конфига.
type S3Images struct {
	presign   *s3.PresignClient
	bucket    string
	publicURL string
	ttl       time.Duration
}

// NewS3Images создаёт клиент S3 один раз на старте.
//
// Если задан endpoint (MinIO), используется path-style адресация.
// Ключи доступа берутся из конфига, а если их нет - из стандартной цепочки AWS.
func NewS3Images(ctx context.Context, cfg config.S3Config) (*S3Images, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := loadAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3Client(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = defaultPublicURL(cfg)
	}

	ttl := cfg.UploadTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &S3Images{
		presign:   s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		publicURL: publicURL,
		ttl:       ttl,
	}, nil
}

func defaultPublicURL(cfg config.S3Config) string {
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

// ObjectKey - ключ вида cars/<owner>/<yyyy>/<mm>/<uuid>.<ext>.
func ObjectKey(ownerID uuid.UUID, contentType string, at time.Time) string {
	return fmt.Sprintf("cars/%s/%04d/%02d/%s%s",
		ownerID, at.Year(), int(at.Month()), uuid.New(), extensions[contentType])
}

// PresignUpload подписывает PUT на новый ключ с указанным Content-Type.
func (s *S3Images) PresignUpload(ctx context.Context, ownerID uuid.UUID, contentType string) (service.ImageUpload, error) {
	issued := now()
	key := ObjectKey(ownerID, contentType, issued)

	req, err := presignPutObject(s.presign, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return service.ImageUpload{}, fmt.Errorf("presign put: %w", err)
	}

	return service.ImageUpload{
		UploadURL: req.URL,
		Key:       key,
		PublicURL: s.publicURL + "/" + key,
		ExpiresAt: issued.Add(s.ttl),
	}, nil
}
