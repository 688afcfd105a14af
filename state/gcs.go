package state

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCSStore keeps the state document as a single Cloud Storage object. Object writes only
// become visible when the writer is closed successfully, which gives us the same
// all-or-nothing save as the file store's rename.
type GCSStore struct {
	client *storage.Client
	Bucket string
	Object string
}

func NewGCSStore(ctx context.Context, bucket, object string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &GCSStore{client: client, Bucket: bucket, Object: object}, nil
}

func (g *GCSStore) String() string { return fmt.Sprintf("gs://%s/%s", g.Bucket, g.Object) }

func (g *GCSStore) Close() error { return g.client.Close() }

func (g *GCSStore) Load(ctx context.Context) (State, error) {
	rdr, err := g.client.Bucket(g.Bucket).Object(g.Object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return State{}, nil
	} else if err != nil {
		return State{}, fmt.Errorf("open %s: %w", g, err)
	}
	defer rdr.Close()

	data, err := io.ReadAll(rdr)
	if err != nil {
		return State{}, fmt.Errorf("read %s: %w", g, err)
	}
	return DecodeState(data)
}

func (g *GCSStore) Save(ctx context.Context, s State) error {
	data, err := EncodeState(s)
	if err != nil {
		return err
	}

	w := g.client.Bucket(g.Bucket).Object(g.Object).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", g, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", g, err)
	}
	return nil
}
