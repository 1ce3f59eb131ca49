package blobsvc

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
)

// OSSStore stores files in an Aliyun OSS bucket with a public-read ACL.
type OSSStore struct {
	bucket  *oss.Bucket
	baseURL string
}

var _ Store = (*OSSStore)(nil)

func NewOSSStore(conf *core.Config) (*OSSStore, error) {
	sc := conf.Storage
	if sc.OSSEndpoint == "" || sc.OSSBucket == "" {
		return nil, errors.New("OSS endpoint and bucket are required")
	}
	client, err := oss.New(sc.OSSEndpoint, sc.OSSAccessKey, sc.OSSSecretKey)
	if err != nil {
		return nil, errors.Wrap(err, "oss.New()")
	}
	bucket, err := client.Bucket(sc.OSSBucket)
	if err != nil {
		return nil, errors.Wrap(err, "client.Bucket()")
	}
	return &OSSStore{bucket: bucket, baseURL: ossPublicURL(sc.OSSBucket, sc.OSSEndpoint)}, nil
}

func (s *OSSStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	opts := []oss.Option{
		oss.ContentType(contentType),
		oss.ObjectACL(oss.ACLPublicRead),
		oss.WithContext(ctx),
	}
	if err := s.bucket.PutObject(key, r, opts...); err != nil {
		return "", errors.Wrapf(err, "putting object %s", key)
	}
	return s.baseURL + "/" + key, nil
}

// ossPublicURL returns https://{bucket}.{endpoint host}.
func ossPublicURL(bucket, endpoint string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s", bucket, strings.TrimRight(host, "/"))
}
