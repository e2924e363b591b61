package media

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore keeps photos in a Google Cloud Storage bucket. References are
// object names inside GCS_BUCKET.
type GCSStore struct{}

func NewGCSStore() *GCSStore {
	return &GCSStore{}
}

// getGoogleClient prefers ADC (service account / GOOGLE_APPLICATION_CREDENTIALS).
// Set GCS_CREDENTIALS_JSON for explicit JSON credentials, e.g. locally.
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

func bucketName() (string, error) {
	bucket := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if bucket == "" {
		return "", errors.New("GCS_BUCKET is required")
	}
	return bucket, nil
}

func (g *GCSStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	bucket, err := bucketName()
	if err != nil {
		return "", err
	}
	client, err := getGoogleClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	wc := client.Bucket(bucket).Object(name).NewWriter(ctx)
	wc.ContentType = "image/jpeg"
	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return name, nil
}

func (g *GCSStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	bucket, err := bucketName()
	if err != nil {
		return nil, err
	}
	client, err := getGoogleClient(ctx)
	if err != nil {
		return nil, err
	}

	reader, err := client.Bucket(bucket).Object(ref).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}
	return &gcsObjectReader{reader: reader, client: client}, nil
}

func (g *GCSStore) Exists(ctx context.Context, ref string) (bool, error) {
	bucket, err := bucketName()
	if err != nil {
		return false, err
	}
	client, err := getGoogleClient(ctx)
	if err != nil {
		return false, err
	}
	defer client.Close()

	_, err = client.Bucket(bucket).Object(ref).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// gcsObjectReader ties the client lifetime to the object reader.
type gcsObjectReader struct {
	reader *storage.Reader
	client *storage.Client
}

func (r *gcsObjectReader) Read(p []byte) (int, error) {
	return r.reader.Read(p)
}

func (r *gcsObjectReader) Close() error {
	err := r.reader.Close()
	r.client.Close()
	return err
}
