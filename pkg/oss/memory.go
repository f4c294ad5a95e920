package oss

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore 进程内媒体存储
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    map[string]error
}

const memoryBase = "memory://blob"

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte), fail: make(map[string]error)}
}

// FailOn op 取 "store" 或 "delete"，err 为 nil 时恢复
func (s *MemoryStore) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

func (s *MemoryStore) Store(ctx context.Context, data []byte, kind Kind) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["store"]; err != nil {
		return "", err
	}
	object, _ := objectName(data)
	url := fmt.Sprintf("%s/%s/%s", memoryBase, kind.bucket(), object)
	s.objects[url] = append([]byte(nil), data...)
	return url, nil
}

func (s *MemoryStore) Delete(ctx context.Context, url string, kind Kind) (bool, error) {
	if url == "" {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["delete"]; err != nil {
		return false, err
	}
	bucket, _, ok := splitURL(memoryBase, url)
	if !ok || bucket != kind.bucket() {
		return false, nil
	}
	if _, ok := s.objects[url]; !ok {
		return false, nil
	}
	delete(s.objects, url)
	return true, nil
}

func (s *MemoryStore) Has(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[url]
	return ok
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
