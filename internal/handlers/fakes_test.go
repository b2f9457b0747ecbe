package handlers_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"birthdaybook/internal/models"
)

// memUsers is an in-memory UserRepository enforcing the same unique keys as the database.
type memUsers struct {
	mu     sync.Mutex
	byID   map[uint]*models.User
	nextID uint
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[uint]*models.User{}, nextID: 1}
}

func (m *memUsers) conflict(u *models.User) error {
	for _, other := range m.byID {
		if other.ID == u.ID {
			continue
		}
		if other.Username == u.Username {
			return &models.DuplicateKeyError{Field: "username"}
		}
		if other.Email == u.Email {
			return &models.DuplicateKeyError{Field: "email"}
		}
	}
	return nil
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.conflict(u); err != nil {
		return err
	}
	u.ID = m.nextID
	m.nextID++
	if u.ImageFile == "" {
		u.ImageFile = models.DefaultImageFile
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memUsers) UsernameTaken(_ context.Context, username string, exceptID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == username && u.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) EmailTaken(_ context.Context, email string, exceptID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email && u.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[u.ID]
	if !ok {
		return models.ErrNotFound
	}
	if err := m.conflict(u); err != nil {
		return err
	}
	cur.Username = u.Username
	cur.Email = u.Email
	cur.ImageFile = u.ImageFile
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id uint, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	cur.PasswordHash = passwordHash
	return nil
}

type memRecords struct {
	mu     sync.Mutex
	byID   map[uint]*models.Record
	nextID uint
}

func newMemRecords() *memRecords {
	return &memRecords{byID: map[uint]*models.Record{}, nextID: 1}
}

func (m *memRecords) Create(_ context.Context, r *models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.nextID
	m.nextID++
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func (m *memRecords) FindByID(_ context.Context, id uint) (*models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRecords) ListByUser(_ context.Context, userID uint) ([]models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Record
	for _, r := range m.byID {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (m *memRecords) Update(_ context.Context, r *models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[r.ID]
	if !ok || cur.UserID != r.UserID {
		return models.ErrNotFound
	}
	cur.Name = r.Name
	cur.Date = r.Date
	return nil
}

func (m *memRecords) Delete(_ context.Context, id, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[id]
	if !ok || cur.UserID != userID {
		return models.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memRecords) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type sentMail struct {
	To, Subject, Body string
}

// mockNotifier records outgoing mail instead of sending it.
type mockNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (n *mockNotifier) Send(_ context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (n *mockNotifier) messages() []sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMail(nil), n.sent...)
}

// resetLink pulls the reset URL out of a password reset email body.
func resetLink(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if strings.Contains(line, "/reset_password/") {
			return strings.TrimSpace(line)
		}
	}
	return ""
}
