package storetest

import (
	"context"
	"io"
	"sync"
)

// Objects is an in-memory store.Objects.
type Objects struct {
	mu        sync.Mutex
	objects   map[string][]byte
	UploadErr error
	RemoveErr error
}

func NewObjects() *Objects {
	return &Objects{objects: make(map[string][]byte)}
}

func (o *Objects) Upload(_ context.Context, bucket, path string, data io.Reader, _ string) error {
	if o.UploadErr != nil {
		return o.UploadErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.objects[bucket+"/"+path] = b
	return nil
}

func (o *Objects) PublicURL(bucket, path string) string {
	return "https://storage.test/" + bucket + "/" + path
}

func (o *Objects) Remove(_ context.Context, bucket string, paths ...string) error {
	if o.RemoveErr != nil {
		return o.RemoveErr
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, p := range paths {
		delete(o.objects, bucket+"/"+p)
	}
	return nil
}

// Keys lists stored objects as bucket/path.
func (o *Objects) Keys() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	keys := make([]string, 0, len(o.objects))
	for k := range o.objects {
		keys = append(keys, k)
	}
	return keys
}
