package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"adbuilder/internal/builder"
)

// MaxUploadSize bounds a single uploaded creative.
const MaxUploadSize = 32 << 20

type uploadAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// AssetUploader stores uploaded creatives in S3 and turns them into pool
// assets with upload- ids.
type AssetUploader struct {
	uploader      uploadAPI
	bucket        string
	publicBaseURL string
	prefix        string
}

func NewAssetUploader(client *s3.Client, bucket, publicBaseURL string) *AssetUploader {
	return newAssetUploader(manager.NewUploader(client), bucket, publicBaseURL)
}

func newAssetUploader(u uploadAPI, bucket, publicBaseURL string) *AssetUploader {
	return &AssetUploader{
		uploader:      u,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		prefix:        "creatives",
	}
}

// Upload reads body, sniffs its type and image size, and stores it under
// creatives/<uuid><ext>.
func (u *AssetUploader) Upload(ctx context.Context, filename string, body io.Reader) (builder.CreativeAsset, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxUploadSize+1))
	if err != nil {
		return builder.CreativeAsset{}, fmt.Errorf("read %s: %w", filename, err)
	}
	if len(data) > MaxUploadSize {
		return builder.CreativeAsset{}, fmt.Errorf("%s exceeds %d bytes", filename, MaxUploadSize)
	}

	mt := mimetype.Detect(data)
	id := uuid.NewString()
	ext := path.Ext(filename)
	if ext == "" {
		ext = mt.Extension()
	}
	key := path.Join(u.prefix, id+ext)

	_, err = u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mt.String()),
	})
	if err != nil {
		return builder.CreativeAsset{}, fmt.Errorf("upload %s: %w", filename, err)
	}

	asset := builder.CreativeAsset{
		ID:      "upload-" + id,
		Name:    filename,
		Type:    assetType(mt),
		Preview: u.publicBaseURL + "/" + key,
		Tags:    []string{},
	}
	if asset.Type == builder.AssetTypeImage {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			w, h := cfg.Width, cfg.Height
			asset.Width, asset.Height = &w, &h
		}
	}
	return asset, nil
}

func assetType(mt *mimetype.MIME) builder.AssetType {
	for m := mt; m != nil; m = m.Parent() {
		switch {
		case strings.HasPrefix(m.String(), "image/"):
			return builder.AssetTypeImage
		case strings.HasPrefix(m.String(), "video/"):
			return builder.AssetTypeVideo
		}
	}
	return builder.AssetTypeFile
}
