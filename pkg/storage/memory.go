package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

type memoryObject struct {
	meta Object
	data []byte
}

// Memory is an in-process Bucket. Object URLs are urlPrefix + "/" + id.
type Memory struct {
	mu        sync.RWMutex
	name      string
	urlPrefix string
	objects   map[string]memoryObject
}

var _ Bucket = (*Memory)(nil)

// NewMemory returns an empty bucket.
func NewMemory(name, urlPrefix string) *Memory {
	return &Memory{
		name:      name,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		objects:   make(map[string]memoryObject),
	}
}

func (m *Memory) Put(ctx context.Context, id, name, contentType string, body io.Reader, _ int64) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(body, MaxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	if len(data) > MaxObjectSize {
		return nil, ErrTooLarge
	}

	meta := Object{
		ID:          id,
		Bucket:      m.name,
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		URL:         m.urlPrefix + "/" + id,
	}
	m.mu.Lock()
	m.objects[id] = memoryObject{meta: meta, data: data}
	m.mu.Unlock()
	return &meta, nil
}

func (m *Memory) Get(ctx context.Context, id string) (io.ReadCloser, *Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	m.mu.RLock()
	obj, ok := m.objects[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	meta := obj.meta
	return io.NopCloser(bytes.NewReader(obj.data)), &meta, nil
}
