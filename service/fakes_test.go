package service

import (
	"context"
	"errors"
	"image"
	"sort"
	"sync"

	"github.com/Aashish23092/loan-ocr-extraction/dto"
	"github.com/Aashish23092/loan-ocr-extraction/repository"
	"github.com/google/uuid"
)

type fakePDF struct {
	pages     []string
	textErr   error
	images    []PageImage
	imagesErr error

	imageCalls int
}

func (f *fakePDF) ExtractText(_ []byte, _ string) ([]string, error) {
	return f.pages, f.textErr
}

func (f *fakePDF) ExtractImages(_ context.Context, _ []byte, _ string) ([]PageImage, error) {
	f.imageCalls++
	return f.images, f.imagesErr
}

// fakeEngine answers per image width so each page can behave differently.
type fakeEngine struct {
	name    string
	byWidth map[int]string
	failing map[int]bool

	mu    sync.Mutex
	calls int
}

func (e *fakeEngine) Name() string { return e.name }

func (e *fakeEngine) Recognize(_ context.Context, img image.Image) (string, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	w := img.Bounds().Dx()
	if e.failing[w] {
		return "", errors.New(e.name + " failed")
	}
	return e.byWidth[w], nil
}

func page(n, width int) PageImage {
	return PageImage{Page: n, Image: image.NewGray(image.Rect(0, 0, width, 10))}
}

type memoryStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]dto.LoanExtractionRecord
	saveErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[uuid.UUID]dto.LoanExtractionRecord{}}
}

func (m *memoryStore) Save(_ context.Context, rec dto.LoanExtractionRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

func (m *memoryStore) Get(_ context.Context, id uuid.UUID) (dto.LoanExtractionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return dto.LoanExtractionRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

func (m *memoryStore) List(_ context.Context, limit int) ([]dto.LoanExtractionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]dto.LoanExtractionRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) Close() error { return nil }

type fakeReader struct {
	text dto.OCRText
	err  error
}

func (f fakeReader) ExtractText(_ context.Context, _ string, _ []byte, _ string) (dto.OCRText, error) {
	return f.text, f.err
}
