package platform

import (
	"context"
	"fmt"
	"sync"

	"github.com/ricirt/report-robot/internal/domain"
)

// MockFileStore is an in-memory FileStore used in unit tests.
type MockFileStore struct {
	mu sync.Mutex

	Files    []InputFile
	Trashed  []string
	Archived []string
	// Converted maps source file id to the temp document id returned.
	Converted map[string]string

	ListErr    error
	ConvertErr map[string]error
	TrashErr   error
}

func NewMockFileStore(files ...InputFile) *MockFileStore {
	return &MockFileStore{
		Files:      files,
		Converted:  make(map[string]string),
		ConvertErr: make(map[string]error),
	}
}

func (m *MockFileStore) ListInputFiles(_ context.Context) ([]InputFile, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]InputFile(nil), m.Files...), nil
}

func (m *MockFileStore) ConvertToSpreadsheet(_ context.Context, file InputFile) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ConvertErr[file.ID]; err != nil {
		return "", err
	}
	id := "tmp-" + file.ID
	m.Converted[file.ID] = id
	return id, nil
}

func (m *MockFileStore) Trash(_ context.Context, fileID string) error {
	if m.TrashErr != nil {
		return m.TrashErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Trashed = append(m.Trashed, fileID)
	return nil
}

func (m *MockFileStore) Archive(_ context.Context, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Archived = append(m.Archived, fileID)
	kept := m.Files[:0]
	for _, f := range m.Files {
		if f.ID != fileID {
			kept = append(kept, f)
		}
	}
	m.Files = kept
	return nil
}

// Banner is one StampBanner call recorded by MockTabStore.
type Banner struct {
	DocID     string
	Tab       string
	Text      string
	Placement BannerPlacement
}

// MockTabStore keeps documents as ordered tab lists.
type MockTabStore struct {
	mu     sync.Mutex
	docs   map[string][]Tab
	nextID int64

	Banners []Banner
	Deleted []string

	CopyErr   error
	BannerErr error
}

func NewMockTabStore() *MockTabStore {
	return &MockTabStore{docs: make(map[string][]Tab), nextID: 1000}
}

// AddDoc seeds a document with tabs of the given titles.
func (m *MockTabStore) AddDoc(docID string, titles ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tabs := make([]Tab, 0, len(titles))
	for _, t := range titles {
		m.nextID++
		tabs = append(tabs, Tab{ID: m.nextID, Title: t, Columns: 12})
	}
	m.docs[docID] = tabs
}

func (m *MockTabStore) Tabs(_ context.Context, docID string) ([]Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tabs, ok := m.docs[docID]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", docID, domain.ErrNotFound)
	}
	return append([]Tab(nil), tabs...), nil
}

// Titles lists the tab titles of a document in order.
func (m *MockTabStore) Titles(docID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, t := range m.docs[docID] {
		out = append(out, t.Title)
	}
	return out
}

func (m *MockTabStore) DeleteTab(_ context.Context, docID, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tabs := m.docs[docID]
	for i, t := range tabs {
		if t.Title == title {
			m.docs[docID] = append(tabs[:i:i], tabs[i+1:]...)
			m.Deleted = append(m.Deleted, docID+"/"+title)
			return nil
		}
	}
	return nil
}

func (m *MockTabStore) CopyTab(_ context.Context, _ string, src Tab, dstDocID, title string) (Tab, error) {
	if m.CopyErr != nil {
		return Tab{}, m.CopyErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	tab := Tab{ID: m.nextID, Title: title, Columns: src.Columns}
	m.docs[dstDocID] = append(m.docs[dstDocID], tab)
	return tab, nil
}

func (m *MockTabStore) StampBanner(_ context.Context, docID string, tab Tab, text string, placement BannerPlacement) error {
	if m.BannerErr != nil {
		return m.BannerErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Banners = append(m.Banners, Banner{DocID: docID, Tab: tab.Title, Text: text, Placement: placement})
	return nil
}

// MockRowSource returns fixed rows.
type MockRowSource struct {
	Rows [][]string
	Err  error
}

func (m *MockRowSource) ReadRows(_ context.Context, _, _ string) ([][]string, error) {
	return m.Rows, m.Err
}
