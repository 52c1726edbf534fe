package routes

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"eventhub/models"
	"eventhub/utils"
)

type mockUserRepo struct {
	users map[string]models.User // keyed by email
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]models.User{}}
}

func (m *mockUserRepo) Create(u *models.User) error {
	if _, ok := m.users[u.Email]; ok {
		return models.ErrEmailTaken
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	u.ID = int64(len(m.users) + 1)
	u.CreatedAt = time.Now()
	m.users[u.Email] = *u
	return nil
}

func (m *mockUserRepo) ValidateCredentials(email, plain string) (models.User, error) {
	u, ok := m.users[email]
	if !ok {
		return models.User{}, errors.New("invalid credentials")
	}
	if !utils.CheckPasswordHash(plain, u.Password) {
		return models.User{}, errors.New("invalid credentials")
	}
	return u, nil
}

func (m *mockUserRepo) GetByID(id int64) (models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

func (m *mockUserRepo) UpdateName(id int64, name string) (models.User, error) {
	for email, u := range m.users {
		if u.ID == id {
			u.Name = name
			m.users[email] = u
			return u, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

type mockEventRepo struct {
	items map[string]models.Event
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{items: map[string]models.Event{}}
}

func (m *mockEventRepo) GetPublished() ([]models.Event, error) {
	out := []models.Event{}
	for _, e := range m.items {
		if e.IsPublished {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventRepo) GetByID(id string) (models.Event, error) {
	e, ok := m.items[id]
	if !ok {
		return models.Event{}, models.ErrNotFound
	}
	return e, nil
}

func (m *mockEventRepo) Create(e *models.Event) error {
	m.items[e.ID] = *e
	return nil
}

func (m *mockEventRepo) Update(e *models.Event) error {
	if _, ok := m.items[e.ID]; !ok {
		return models.ErrNotFound
	}
	m.items[e.ID] = *e
	return nil
}

func (m *mockEventRepo) Delete(id string) error {
	if _, ok := m.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockEventRepo) CountByOrganizer(organizerID int64) (total, published, upcoming int64, err error) {
	now := time.Now()
	for _, e := range m.items {
		if e.OrganizerID != organizerID {
			continue
		}
		total++
		if e.IsPublished {
			published++
		}
		if e.Date.After(now) {
			upcoming++
		}
	}
	return total, published, upcoming, nil
}

func (m *mockEventRepo) IDsByOrganizer(organizerID int64) ([]string, error) {
	var ids []string
	for _, e := range m.items {
		if e.OrganizerID == organizerID {
			ids = append(ids, e.ID)
		}
	}
	return ids, nil
}

type mockRegRepo struct {
	pairs map[string]bool // "userId:eventId"
}

func newMockRegRepo() *mockRegRepo {
	return &mockRegRepo{pairs: map[string]bool{}}
}

func regKey(uid int64, eid string) string { return fmt.Sprintf("%d:%s", uid, eid) }

func (m *mockRegRepo) Register(userID int64, eventID string, maxAttendees int) error {
	if m.pairs[regKey(userID, eventID)] {
		return models.ErrAlreadyAttending
	}
	if maxAttendees > 0 {
		if n, _ := m.CountForEvent(eventID); n >= int64(maxAttendees) {
			return models.ErrEventFull
		}
	}
	m.pairs[regKey(userID, eventID)] = true
	return nil
}

func (m *mockRegRepo) Cancel(userID int64, eventID string) error {
	k := regKey(userID, eventID)
	if !m.pairs[k] {
		return models.ErrNotFound
	}
	delete(m.pairs, k)
	return nil
}

func (m *mockRegRepo) CountForEvent(eventID string) (int64, error) {
	var n int64
	for k, ok := range m.pairs {
		if ok && strings.HasSuffix(k, ":"+eventID) {
			n++
		}
	}
	return n, nil
}

func (m *mockRegRepo) CountForEvents(eventIDs []string) (int64, error) {
	var n int64
	for _, id := range eventIDs {
		c, _ := m.CountForEvent(id)
		n += c
	}
	return n, nil
}
