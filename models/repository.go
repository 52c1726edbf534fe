package models

import (
	"errors"
	"time"
)

// Sentinel errors shared by all repository implementations so handlers can map
// them to HTTP statuses without knowing which backend answered.
var (
	ErrNotFound         = errors.New("not found")
	ErrEmailTaken       = errors.New("email already taken")
	ErrAlreadyAttending = errors.New("already registered for event")
	ErrEventFull        = errors.New("event is full")
)

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Event lives in Mongo, keyed by a UUID string so it can be referenced from the
// SQL registrations table. Attendees is derived from registrations, never stored.
type Event struct {
	ID           string    `json:"id" bson:"id"`
	Title        string    `json:"title" bson:"title"`
	Description  string    `json:"description" bson:"description"`
	Date         time.Time `json:"date" bson:"date"`
	Location     string    `json:"location" bson:"location"`
	ImageURL     string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Category     string    `json:"category,omitempty" bson:"category,omitempty"`
	MaxAttendees int       `json:"maxAttendees,omitempty" bson:"maxAttendees,omitempty"`
	Attendees    int       `json:"attendees" bson:"-"`
	IsPublished  bool      `json:"isPublished" bson:"isPublished"`
	OrganizerID  int64     `json:"organizerId" bson:"organizerId"`
}

// DashboardStats are the per-organizer aggregate counts shown on the dashboard.
type DashboardStats struct {
	TotalEvents        int64 `json:"totalEvents"`
	PublishedEvents    int64 `json:"publishedEvents"`
	UpcomingEvents     int64 `json:"upcomingEvents"`
	TotalRegistrations int64 `json:"totalRegistrations"`
}

type UserRepository interface {
	Create(u *User) error
	ValidateCredentials(email, plain string) (User, error)
	GetByID(id int64) (User, error)
	UpdateName(id int64, name string) (User, error)
}

type EventRepository interface {
	GetPublished() ([]Event, error)
	GetByID(id string) (Event, error)
	Create(e *Event) error
	Update(e *Event) error
	Delete(id string) error
	CountByOrganizer(organizerID int64) (total, published, upcoming int64, err error)
	IDsByOrganizer(organizerID int64) ([]string, error)
}

type RegistrationRepository interface {
	Register(userID int64, eventID string, maxAttendees int) error
	Cancel(userID int64, eventID string) error
	CountForEvent(eventID string) (int64, error)
	CountForEvents(eventIDs []string) (int64, error)
}
