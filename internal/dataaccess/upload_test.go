package dataaccess

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"localmart/internal/marketerrors"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img), "encoding test image")
	return buf.Bytes()
}

func TestUploadImagesPartitionsOutcomes(t *testing.T) {
	store, _, blobs, _ := newTestStore(t)

	img := pngBytes(t)
	files := []File{
		{Name: "a.png", Data: img},
		{Name: "b.png", Data: img},
		{Name: "not-an-image.txt", Data: []byte("plain text, no pixels here")},
		{Name: "c.png", Data: img},
	}

	blobs.EXPECT().
		Upload(gomock.Any(), gomock.Any(), "image/jpeg", gomock.Any()).
		DoAndReturn(func(_ context.Context, path, _ string, _ io.Reader) (string, error) {
			return "https://cdn.example.com/" + path, nil
		}).
		Times(3)

	var mu sync.Mutex
	var progress []float64
	result := store.UploadImages(context.Background(), files, "listing1", func(p float64) {
		mu.Lock()
		progress = append(progress, p)
		mu.Unlock()
	})

	require.Len(t, result.Successful, 3)
	require.Len(t, result.Failed, 1)
	require.Equal(t, "not-an-image.txt", result.Failed[0].Name)
	require.Equal(t, len(files), len(result.Successful)+len(result.Failed))

	for _, up := range result.Successful {
		require.True(t, strings.HasPrefix(up.Path, "images/listing1/"))
		require.Equal(t, "https://cdn.example.com/"+up.Path, up.URL)
	}

	// Progress is monotonically non-decreasing and ends at 1.0.
	require.Len(t, progress, len(files))
	for i := 1; i < len(progress); i++ {
		require.GreaterOrEqual(t, progress[i], progress[i-1])
	}
	require.Equal(t, 1.0, progress[len(progress)-1])
}

func TestUploadImagesRecordsBackendFailures(t *testing.T) {
	store, _, blobs, _ := newTestStore(t)

	img := pngBytes(t)
	files := []File{
		{Name: "ok.png", Data: img},
		{Name: "broken.png", Data: img},
	}

	blobs.EXPECT().
		Upload(gomock.Any(), gomock.Any(), "image/jpeg", gomock.Any()).
		DoAndReturn(func(_ context.Context, path, _ string, _ io.Reader) (string, error) {
			if strings.Contains(path, "broken") {
				return "", marketerrors.ErrTransport
			}
			return "https://cdn.example.com/" + path, nil
		}).
		Times(2)

	result := store.UploadImages(context.Background(), files, "listing1", nil)
	require.Len(t, result.Successful, 1)
	require.Len(t, result.Failed, 1)
	require.Equal(t, "broken.png", result.Failed[0].Name)
	require.Contains(t, result.Failed[0].Error, "transport")
}

func TestUploadImagesBoundsConcurrency(t *testing.T) {
	store, _, blobs, _ := newTestStore(t)

	img := pngBytes(t)
	files := make([]File, 7)
	for i := range files {
		files[i] = File{Name: "f.png", Data: img}
	}

	var inFlight, maxInFlight int32
	blobs.EXPECT().
		Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, path, _ string, _ io.Reader) (string, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				prev := atomic.LoadInt32(&maxInFlight)
				if n <= prev || atomic.CompareAndSwapInt32(&maxInFlight, prev, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return "https://cdn.example.com/" + path, nil
		}).
		Times(7)

	result := store.UploadImages(context.Background(), files, "batch", nil)
	require.Len(t, result.Successful, 7)
	require.LessOrEqual(t, atomic.LoadInt32(&maxInFlight), int32(UploadGroupSize))
}

func TestUploadImagesEmptyInput(t *testing.T) {
	store, _, _, _ := newTestStore(t)

	result := store.UploadImages(context.Background(), nil, "tag", func(float64) {
		t.Fatal("no progress expected for an empty batch")
	})
	require.Empty(t, result.Successful)
	require.Empty(t, result.Failed)
}

func TestBlobPathSanitizesName(t *testing.T) {
	t.Parallel()

	path := blobPath("listing1", "my summer photo.png")
	require.True(t, strings.HasPrefix(path, "images/listing1/"))
	require.True(t, strings.HasSuffix(path, "_my_summer_photo.png"))
	require.NotContains(t, path, " ")
}
