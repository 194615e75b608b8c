package repository

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/ricirt/report-robot/internal/domain"
)

// MockPropertyStore is a hand-written, in-memory PropertyStore used in
// unit tests.
type MockPropertyStore struct {
	mu    sync.RWMutex
	props map[string]string

	// Optional error overrides, set in tests to simulate failure paths.
	GetErr error
	SetErr error
}

func NewMockPropertyStore() *MockPropertyStore {
	return &MockPropertyStore{props: make(map[string]string)}
}

func (m *MockPropertyStore) Get(_ context.Context, key string) (string, bool, error) {
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.props[key]
	return v, ok, nil
}

func (m *MockPropertyStore) Set(_ context.Context, key, value string) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.props[key] = value
	return nil
}

func (m *MockPropertyStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.props, k)
	}
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *MockPropertyStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.props))
	for k := range m.props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MockConsoleRepository keeps console lines in memory.
type MockConsoleRepository struct {
	mu     sync.Mutex
	lines  []domain.ConsoleLine
	Resets int
}

func NewMockConsoleRepository() *MockConsoleRepository {
	return &MockConsoleRepository{}
}

func (m *MockConsoleRepository) Append(_ context.Context, line domain.ConsoleLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
	return nil
}

func (m *MockConsoleRepository) Truncate(_ context.Context, keep int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if keep >= 0 && len(m.lines) > keep {
		m.lines = append([]domain.ConsoleLine(nil), m.lines[len(m.lines)-keep:]...)
	}
	return nil
}

func (m *MockConsoleRepository) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = nil
	m.Resets++
	return nil
}

func (m *MockConsoleRepository) Lines() []domain.ConsoleLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ConsoleLine(nil), m.lines...)
}

// DashboardRow is what MockDashboardRepository records.
type DashboardRow struct {
	FileName string
	Stats    domain.DistributionStats
	At       time.Time
}

type MockDashboardRepository struct {
	mu   sync.Mutex
	Rows []DashboardRow
}

func NewMockDashboardRepository() *MockDashboardRepository {
	return &MockDashboardRepository{}
}

func (m *MockDashboardRepository) Record(_ context.Context, fileName string, stats domain.DistributionStats, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rows = append(m.Rows, DashboardRow{FileName: fileName, Stats: stats, At: at})
	return nil
}

// MockClickRepository keeps tracking rows in insertion order.
type MockClickRepository struct {
	mu     sync.Mutex
	clicks []*domain.Click

	AppendErr error
}

func NewMockClickRepository() *MockClickRepository {
	return &MockClickRepository{}
}

func (m *MockClickRepository) Append(_ context.Context, c *domain.Click) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *c
	m.clicks = append(m.clicks, &clone)
	return nil
}

func (m *MockClickRepository) LatestByRecipient(_ context.Context, recipient string) (*domain.Click, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.clicks) - 1; i >= 0; i-- {
		if m.clicks[i].Recipient == recipient {
			clone := *m.clicks[i]
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockClickRepository) UpdateClient(_ context.Context, id string, info domain.ClientInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clicks {
		if c.ID == id {
			c.Device, c.Browser, c.OS, c.Location = info.Device, info.Browser, info.OS, info.Location
			return nil
		}
	}
	return domain.ErrNotFound
}

// Clicks returns copies of every stored row.
func (m *MockClickRepository) Clicks() []domain.Click {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Click, len(m.clicks))
	for i, c := range m.clicks {
		out[i] = *c
	}
	return out
}

// MockControlRepository records every flag transition. Busy and free
// transitions are recorded with the same state strings the pg
// implementation writes.
type MockControlRepository struct {
	mu      sync.Mutex
	state   domain.ControlState
	raw     string
	History []string

	SetBusyErr error
}

func NewMockControlRepository() *MockControlRepository {
	return &MockControlRepository{}
}

func (m *MockControlRepository) SetBusy(_ context.Context, total int, at time.Time) error {
	if m.SetBusyErr != nil {
		return m.SetBusyErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = domain.ControlState{Busy: true, StartedAt: at, Total: total, Progress: "0/" + strconv.Itoa(total)}
	m.raw = ControlStateBusy
	m.History = append(m.History, ControlStateBusy)
	return nil
}

func (m *MockControlRepository) SetProgress(_ context.Context, current, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Progress = strconv.Itoa(current) + "/" + strconv.Itoa(total)
	m.History = append(m.History, m.state.Progress)
	return nil
}

func (m *MockControlRepository) SetFree(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = domain.ControlState{}
	m.raw = ControlStateFree
	m.History = append(m.History, ControlStateFree)
	return nil
}

// RawState is the flag value a pg row would hold, "" before any write.
func (m *MockControlRepository) RawState() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.raw
}

func (m *MockControlRepository) Get(_ context.Context) (domain.ControlState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}
