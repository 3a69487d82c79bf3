// Package s3test serves a minimal path-style S3 GetObject endpoint for tests.
package s3test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

type Server struct {
	*httptest.Server

	mu      sync.Mutex
	objects map[string][]byte
	gets    map[string]int
}

func NewServer() *Server {
	s := &Server{
		objects: make(map[string][]byte),
		gets:    make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *Server) Put(bucket, key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[bucket+"/"+key] = append([]byte(nil), data...)
}

// Gets returns how many GET requests were made for bucket/key.
func (s *Server) Gets(bucket, key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.gets[bucket+"/"+key]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", r.URL.Path)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/")

	s.mu.Lock()
	s.gets[path]++
	data, ok := s.objects[path]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "NoSuchKey", path)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, code, resource string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>%s</Code><Message>%s</Message><Resource>/%s</Resource><RequestId>s3test</RequestId></Error>`,
		code, code, resource)
}
