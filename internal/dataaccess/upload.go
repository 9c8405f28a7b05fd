package dataaccess

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"localmart/internal/imaging"
)

// UploadGroupSize is how many transfers run concurrently. Groups are
// processed sequentially so a many-file submission never floods the backend.
const UploadGroupSize = 3

// File is one raw upload.
type File struct {
	Name string
	Data []byte
}

// UploadedFile records a successful transfer.
type UploadedFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Path string `json:"path"`
}

// FailedFile records a rejected or failed transfer.
type FailedFile struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// UploadResult collects per-file outcomes; one bad file never aborts the
// batch.
type UploadResult struct {
	Successful []UploadedFile `json:"successful"`
	Failed     []FailedFile   `json:"failed"`
}

// UploadImages validates, normalizes and uploads the given files under the
// destination tag. Files are processed in groups of UploadGroupSize
// concurrent transfers; an invalid file is recorded as failed without
// touching the network. onProgress, when non-nil, is invoked after every
// completion with completed/total, monotonically non-decreasing and ending
// at 1.0.
func (s *Store) UploadImages(ctx context.Context, files []File, tag string, onProgress func(float64)) UploadResult {
	var result UploadResult
	total := len(files)
	if total == 0 {
		return result
	}

	var mu sync.Mutex
	completed := 0
	record := func(fn func(*UploadResult)) {
		mu.Lock()
		defer mu.Unlock()
		fn(&result)
		completed++
		if onProgress != nil {
			onProgress(float64(completed) / float64(total))
		}
	}

	for start := 0; start < total; start += UploadGroupSize {
		end := start + UploadGroupSize
		if end > total {
			end = total
		}

		var wg sync.WaitGroup
		for _, f := range files[start:end] {
			f := f
			wg.Add(1)
			go func() {
				defer wg.Done()

				processed, err := imaging.Process(f.Data)
				if err != nil {
					record(func(r *UploadResult) {
						r.Failed = append(r.Failed, FailedFile{Name: f.Name, Error: err.Error()})
					})
					return
				}

				path := blobPath(tag, f.Name)
				url, err := s.blobs.Upload(ctx, path, processed.MIME, bytes.NewReader(processed.Data))
				if err != nil {
					record(func(r *UploadResult) {
						r.Failed = append(r.Failed, FailedFile{Name: f.Name, Error: err.Error()})
					})
					return
				}

				record(func(r *UploadResult) {
					r.Successful = append(r.Successful, UploadedFile{Name: f.Name, URL: url, Path: path})
				})
			}()
		}
		wg.Wait()
	}

	return result
}

func blobPath(tag, name string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf("images/%s/%d_%s", tag, time.Now().UnixNano(), clean)
}
