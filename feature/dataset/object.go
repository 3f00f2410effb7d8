package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"data-mirror/core/engine"
	"data-mirror/core/storage"

	"github.com/minio/minio-go/v7"
)

// Object is a provider that reads a JSON array of records from storage.
type Object struct {
	client storage.Client

	// Bucket is the storage bucket holding the object.
	Bucket string

	// ObjectName is the key of the JSON document.
	ObjectName string
}

// NewObject creates a provider reading from the given storage object.
func NewObject(client storage.Client, bucket, objectName string) *Object {
	return &Object{client: client, Bucket: bucket, ObjectName: objectName}
}

// Name returns "object:" followed by the object name.
func (o *Object) Name() string {
	return "object:" + o.ObjectName
}

// Load downloads the object and decodes it as a JSON array of records.
func (o *Object) Load(ctx context.Context) ([]engine.Record, error) {
	reader, err := o.client.GetObject(ctx, o.Bucket, o.ObjectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", o.ObjectName, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", o.ObjectName, err)
	}

	var records []engine.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse object %s: %w", o.ObjectName, err)
	}

	return records, nil
}
