package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

type memoryStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleteErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (m *memoryStorage) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return "https://cdn.example.com/" + key, nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, key)
	return nil
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestMediaUploadStoresImageWithDimensions(t *testing.T) {
	gdb := setupServiceTestDB(t)
	store := newMemoryStorage()
	svc := NewMediaService(gdb, nil, store, 1<<20)
	svc.now = func() time.Time { return time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC) }

	data := pngBytes(t, 4, 3)
	item, err := svc.Upload(context.Background(), UploadInput{
		FileName: "../logo.png",
		Size:     int64(len(data)),
		Body:     bytes.NewReader(data),
		AltText:  " Logo ",
	})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if item.ContentType != "image/png" || item.Width != 4 || item.Height != 3 {
		t.Fatalf("unexpected media metadata: %#v", item)
	}
	if !strings.HasPrefix(item.StorageKey, "media/20240506-") || !strings.HasSuffix(item.StorageKey, ".png") {
		t.Fatalf("unexpected storage key %q", item.StorageKey)
	}
	if item.FileName != "logo.png" || item.Title != "logo" || item.AltText != "Logo" {
		t.Fatalf("unexpected names: %#v", item)
	}
	if !bytes.Equal(store.objects[item.StorageKey], data) {
		t.Fatal("expected full body to be stored")
	}
	if item.URL != "https://cdn.example.com/"+item.StorageKey {
		t.Fatalf("unexpected url %q", item.URL)
	}
}

func TestMediaUploadRejectsDisallowedAndLarge(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewMediaService(gdb, nil, newMemoryStorage(), 64)

	text := []byte("#!/bin/sh\necho hi\n")
	if _, err := svc.Upload(context.Background(), UploadInput{FileName: "run.sh", Size: int64(len(text)), Body: bytes.NewReader(text)}); !errors.Is(err, ErrMediaTypeNotAllowed) {
		t.Fatalf("expected ErrMediaTypeNotAllowed, got %v", err)
	}

	big := pngBytes(t, 64, 64)
	if _, err := svc.Upload(context.Background(), UploadInput{FileName: "big.png", Size: int64(len(big)), Body: bytes.NewReader(big)}); !errors.Is(err, ErrMediaTooLarge) {
		t.Fatalf("expected ErrMediaTooLarge, got %v", err)
	}

	if _, err := svc.Upload(context.Background(), UploadInput{FileName: "none.png"}); !errors.Is(err, ErrMediaMissing) {
		t.Fatalf("expected ErrMediaMissing, got %v", err)
	}
}

func TestMediaDeleteRefusesWhenInGallery(t *testing.T) {
	gdb := setupServiceTestDB(t)
	store := newMemoryStorage()
	media := NewMediaService(gdb, nil, store, 1<<20)
	galleries := NewGalleryService(gdb, nil)

	data := pngBytes(t, 2, 2)
	item, err := media.Upload(context.Background(), UploadInput{FileName: "a.png", Size: int64(len(data)), Body: bytes.NewReader(data)})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	gallery, err := galleries.CreateGallery(GalleryInput{Name: "Shots"})
	if err != nil {
		t.Fatalf("CreateGallery returned error: %v", err)
	}
	attached, err := galleries.AddImage(gallery.ID, GalleryImageInput{MediaID: item.ID})
	if err != nil {
		t.Fatalf("AddImage returned error: %v", err)
	}

	if err := media.Delete(context.Background(), item.ID); !errors.Is(err, ErrMediaInUse) {
		t.Fatalf("expected ErrMediaInUse, got %v", err)
	}

	if err := galleries.RemoveImage(attached.ID); err != nil {
		t.Fatalf("RemoveImage returned error: %v", err)
	}
	if err := media.Delete(context.Background(), item.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok := store.objects[item.StorageKey]; ok {
		t.Fatal("expected stored object to be removed")
	}
	if _, err := media.Get(item.ID); !errors.Is(err, ErrMediaNotFound) {
		t.Fatalf("expected ErrMediaNotFound, got %v", err)
	}
}

func TestMediaListFiltersByKind(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewMediaService(gdb, nil, newMemoryStorage(), 1<<20)

	data := pngBytes(t, 1, 1)
	if _, err := svc.Upload(context.Background(), UploadInput{FileName: "photo.png", Size: int64(len(data)), Body: bytes.NewReader(data)}); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	pdf := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
	if _, err := svc.Upload(context.Background(), UploadInput{FileName: "guide.pdf", Size: int64(len(pdf)), Body: bytes.NewReader(pdf)}); err != nil {
		t.Fatalf("Upload pdf returned error: %v", err)
	}

	images, err := svc.List(MediaFilter{Kind: "image"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if images.Total != 1 || images.Items[0].FileName != "photo.png" {
		t.Fatalf("unexpected image listing: %#v", images)
	}
	docs, err := svc.List(MediaFilter{Kind: "document", Search: "guide"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if docs.Total != 1 {
		t.Fatalf("expected one document, got %d", docs.Total)
	}
}

func TestMediaUpdateMetaRefreshesPublishedGallery(t *testing.T) {
	gdb := setupServiceTestDB(t)
	c := newTestCache()
	media := NewMediaService(gdb, c, newMemoryStorage(), 1<<20)
	galleries := NewGalleryService(gdb, c)

	data := pngBytes(t, 2, 2)
	item, err := media.Upload(context.Background(), UploadInput{FileName: "a.png", Size: int64(len(data)), Body: bytes.NewReader(data), AltText: "old alt"})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	gallery, err := galleries.CreateGallery(GalleryInput{Name: "Shots", Slug: "shots"})
	if err != nil {
		t.Fatalf("CreateGallery returned error: %v", err)
	}
	if _, err := galleries.AddImage(gallery.ID, GalleryImageInput{MediaID: item.ID}); err != nil {
		t.Fatalf("AddImage returned error: %v", err)
	}

	before, err := galleries.PublishedBySlug("shots", 1, 10)
	if err != nil {
		t.Fatalf("PublishedBySlug returned error: %v", err)
	}
	if len(before.Images.Items) != 1 || before.Images.Items[0].Media.AltText != "old alt" {
		t.Fatalf("unexpected gallery before update: %#v", before.Images.Items)
	}

	if _, err := media.UpdateMeta(item.ID, "Photo", "new alt"); err != nil {
		t.Fatalf("UpdateMeta returned error: %v", err)
	}

	after, err := galleries.PublishedBySlug("shots", 1, 10)
	if err != nil {
		t.Fatalf("PublishedBySlug returned error: %v", err)
	}
	if got := after.Images.Items[0].Media.AltText; got != "new alt" {
		t.Fatalf("expected refreshed alt text, got %q", got)
	}
}

func TestMediaDeleteKeepsRowWhenStorageFails(t *testing.T) {
	gdb := setupServiceTestDB(t)
	store := newMemoryStorage()
	svc := NewMediaService(gdb, nil, store, 1<<20)

	data := pngBytes(t, 1, 1)
	item, err := svc.Upload(context.Background(), UploadInput{FileName: "a.png", Size: int64(len(data)), Body: bytes.NewReader(data)})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	store.deleteErr = errors.New("bucket unavailable")
	if err := svc.Delete(context.Background(), item.ID); err == nil {
		t.Fatal("expected Delete to fail when the object cannot be removed")
	}
	if _, err := svc.Get(item.ID); err != nil {
		t.Fatalf("expected media row to be kept, got %v", err)
	}

	store.deleteErr = nil
	if err := svc.Delete(context.Background(), item.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.Get(item.ID); !errors.Is(err, ErrMediaNotFound) {
		t.Fatalf("expected ErrMediaNotFound, got %v", err)
	}
}
