package repository

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
)

// GridFSBlobStore keeps uploads in a MongoDB GridFS bucket. URLs point at
// the file download route.
type GridFSBlobStore struct {
	bucket    *gridfs.Bucket
	urlPrefix string
}

func NewGridFSBlobStore(db *mongo.Database, urlPrefix string) (*GridFSBlobStore, error) {
	bucket, err := gridfs.NewBucket(db)
	if err != nil {
		return nil, fmt.Errorf("NewGridFSBlobStore: %w", err)
	}
	return &GridFSBlobStore{bucket: bucket, urlPrefix: urlPrefix}, nil
}

func (b *GridFSBlobStore) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	stream, err := b.bucket.OpenUploadStream(name)
	if err != nil {
		return "", fmt.Errorf("GridFSBlobStore.Upload: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}
	if _, err := io.Copy(stream, r); err != nil {
		_ = stream.Abort()
		return "", fmt.Errorf("GridFSBlobStore.Upload: copy: %w", err)
	}
	if err := stream.Close(); err != nil {
		return "", fmt.Errorf("GridFSBlobStore.Upload: close: %w", err)
	}

	id := stream.FileID.(primitive.ObjectID).Hex()
	return b.urlPrefix + "/" + id, nil
}

func (b *GridFSBlobStore) Open(ctx context.Context, id string) (io.ReadCloser, string, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, "", ErrNotFound
	}

	stream, err := b.bucket.OpenDownloadStream(objID)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("GridFSBlobStore.Open: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}
	return stream, stream.GetFile().Name, nil
}

var _ BlobStore = (*GridFSBlobStore)(nil)
