package storage_benchmark

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sudheerdagar/s3-rocksdb-benchmark/fixtures"
)

func TestS3StorageSystemWithFakeServer(t *testing.T) {
	ctx := fixtures.Context(t)
	server, cfg := newFakeS3Server(t)

	system, err := NewS3StorageSystem(ctx, cfg)
	require.NoError(t, err)

	_, err = NewS3StorageSystem(ctx, cfg)
	require.NoError(t, err, "an existing bucket should be tolerated")

	testStorageSystem(ctx, t, system)

	require.Equal(t, 2, server.createdBuckets())
	require.Equal(t, 3, server.putObjects(), "values which fit in a part use put object")
	require.Empty(t, server.completedUploads())
}

func TestS3StorageSystemUploadsPartsInParallel(t *testing.T) {
	ctx := fixtures.Context(t)
	server, cfg := newFakeS3Server(t)
	server.partDelay = 50 * time.Millisecond

	system, err := NewS3StorageSystem(ctx, cfg)
	require.NoError(t, err)

	key := NewKey()
	value := fixtures.RandomBytes(7*MinS3PartSize + 3)

	require.NoError(t, system.Put(ctx, key, value))

	require.Equal(t, [][]int{{1, 2, 3, 4, 5, 6, 7, 8}}, server.completedUploads())
	require.Equal(t, 8, server.maxConcurrentUploadedParts())
	require.Zero(t, server.putObjects())

	retrieved, err := system.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, value, retrieved)
}

func TestS3StorageSystemLimitsPartConcurrency(t *testing.T) {
	ctx := fixtures.Context(t)
	server, cfg := newFakeS3Server(t)
	server.partDelay = 20 * time.Millisecond
	cfg.PartConcurrency = 2

	system, err := NewS3StorageSystem(ctx, cfg)
	require.NoError(t, err)

	require.NoError(t, system.Put(ctx, NewKey(), fixtures.RandomBytes(5*MinS3PartSize)))

	require.Equal(t, [][]int{{1, 2, 3, 4, 5}}, server.completedUploads())
	require.LessOrEqual(t, server.maxConcurrentUploadedParts(), 2)
}

func TestS3StorageSystemAbortsFailedMultipartUpload(t *testing.T) {
	ctx := fixtures.Context(t)
	server, cfg := newFakeS3Server(t)
	server.failPart = 3

	system, err := NewS3StorageSystem(ctx, cfg)
	require.NoError(t, err)

	key := NewKey()
	err = system.Put(ctx, key, fixtures.RandomBytes(4*MinS3PartSize))
	require.Error(t, err)

	require.Equal(t, 1, server.abortedUploads())
	require.Empty(t, server.completedUploads())

	_, err = system.Get(ctx, key)
	require.ErrorIs(t, err, ErrKeyNotFound)
}

// fakeS3Server implements the subset of the S3 REST API used by
// S3StorageSystem with path style addressing.
type fakeS3Server struct {
	partDelay time.Duration
	failPart  int

	mutex              sync.Mutex
	objects            map[string][]byte
	uploads            map[string]map[int][]byte
	nextUploadID       int
	buckets            int
	puts               int
	completed          [][]int
	aborted            int
	concurrentParts    int
	maxConcurrentParts int
}

func newFakeS3Server(t *testing.T) (*fakeS3Server, S3Config) {
	f := &fakeS3Server{
		objects: make(map[string][]byte),
		uploads: make(map[string]map[int][]byte),
	}

	server := httptest.NewServer(f)
	t.Cleanup(server.Close)

	cfg := DefaultS3Config()
	cfg.Endpoint = server.URL
	cfg.Bucket = "fake-bucket"

	return f, cfg
}

func (f *fakeS3Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	query := r.URL.Query()
	_, initiate := query["uploads"]
	uploadID := query.Get("uploadId")

	switch {
	case key == "" && r.Method == http.MethodPut:
		f.createBucket(w)
	case r.Method == http.MethodPost && initiate:
		f.createMultipartUpload(w, key)
	case r.Method == http.MethodPut && uploadID != "":
		f.uploadPart(w, r, uploadID)
	case r.Method == http.MethodPost && uploadID != "":
		f.completeMultipartUpload(w, r, key, uploadID)
	case r.Method == http.MethodDelete && uploadID != "":
		f.abortMultipartUpload(w, uploadID)
	case r.Method == http.MethodPut:
		f.putObject(w, r, key)
	case r.Method == http.MethodGet:
		f.getObject(w, key)
	default:
		http.Error(w, "unsupported request", http.StatusNotImplemented)
	}
}

func (f *fakeS3Server) createBucket(w http.ResponseWriter) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.buckets++
	if f.buckets > 1 {
		writeS3Error(w, http.StatusConflict, "BucketAlreadyOwnedByYou")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (f *fakeS3Server) putObject(w http.ResponseWriter, r *http.Request, key string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.objects[key] = body
	f.puts++
	w.Header().Set("ETag", `"object"`)
	w.WriteHeader(http.StatusOK)
}

func (f *fakeS3Server) getObject(w http.ResponseWriter, key string) {
	f.mutex.Lock()
	value, ok := f.objects[key]
	f.mutex.Unlock()

	if !ok {
		writeS3Error(w, http.StatusNotFound, "NoSuchKey")
		return
	}

	w.Header().Set("Content-Length", strconv.Itoa(len(value)))
	w.WriteHeader(http.StatusOK)
	w.Write(value)
}

func (f *fakeS3Server) createMultipartUpload(w http.ResponseWriter, key string) {
	f.mutex.Lock()
	f.nextUploadID++
	uploadID := fmt.Sprintf("upload-%d", f.nextUploadID)
	f.uploads[uploadID] = make(map[int][]byte)
	f.mutex.Unlock()

	writeXML(w, fmt.Sprintf(
		`<InitiateMultipartUploadResult><Bucket>fake-bucket</Bucket><Key>%s</Key><UploadId>%s</UploadId></InitiateMultipartUploadResult>`,
		key, uploadID,
	))
}

func (f *fakeS3Server) uploadPart(w http.ResponseWriter, r *http.Request, uploadID string) {
	partNumber, err := strconv.Atoi(r.URL.Query().Get("partNumber"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mutex.Lock()
	f.concurrentParts++
	if f.concurrentParts > f.maxConcurrentParts {
		f.maxConcurrentParts = f.concurrentParts
	}
	f.mutex.Unlock()

	time.Sleep(f.partDelay)

	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.concurrentParts--

	if partNumber == f.failPart {
		writeS3Error(w, http.StatusForbidden, "AccessDenied")
		return
	}

	parts, ok := f.uploads[uploadID]
	if !ok {
		writeS3Error(w, http.StatusNotFound, "NoSuchUpload")
		return
	}
	parts[partNumber] = body

	w.Header().Set("ETag", partETag(partNumber))
	w.WriteHeader(http.StatusOK)
}

func (f *fakeS3Server) completeMultipartUpload(w http.ResponseWriter, r *http.Request, key, uploadID string) {
	var request struct {
		Parts []struct {
			PartNumber int
			ETag       string
		} `xml:"Part"`
	}

	if err := xml.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()

	parts, ok := f.uploads[uploadID]
	if !ok {
		writeS3Error(w, http.StatusNotFound, "NoSuchUpload")
		return
	}

	var (
		value   []byte
		numbers []int
	)
	for _, part := range request.Parts {
		body, ok := parts[part.PartNumber]
		if !ok || part.ETag != partETag(part.PartNumber) {
			writeS3Error(w, http.StatusBadRequest, "InvalidPart")
			return
		}
		value = append(value, body...)
		numbers = append(numbers, part.PartNumber)
	}

	f.objects[key] = value
	f.completed = append(f.completed, numbers)
	delete(f.uploads, uploadID)

	writeXML(w, fmt.Sprintf(
		`<CompleteMultipartUploadResult><Bucket>fake-bucket</Bucket><Key>%s</Key><ETag>"complete"</ETag></CompleteMultipartUploadResult>`,
		key,
	))
}

func (f *fakeS3Server) abortMultipartUpload(w http.ResponseWriter, uploadID string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	delete(f.uploads, uploadID)
	f.aborted++
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeS3Server) createdBuckets() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.buckets
}

func (f *fakeS3Server) putObjects() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.puts
}

func (f *fakeS3Server) completedUploads() [][]int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.completed
}

func (f *fakeS3Server) abortedUploads() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.aborted
}

func (f *fakeS3Server) maxConcurrentUploadedParts() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.maxConcurrentParts
}

func partETag(partNumber int) string {
	return fmt.Sprintf(`"part-%d"`, partNumber)
}

func writeXML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, xml.Header+body)
}

func writeS3Error(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	io.WriteString(w, xml.Header+fmt.Sprintf(`<Error><Code>%s</Code><Message>%s</Message></Error>`, code, code))
}
