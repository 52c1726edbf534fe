package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"eventhub/middlewares"
	"eventhub/models"
	"eventhub/utils"
)

type eventRequest struct {
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date" binding:"required"`
	Location     string    `json:"location" binding:"required"`
	ImageURL     string    `json:"imageUrl"`
	Category     string    `json:"category"`
	MaxAttendees int       `json:"maxAttendees"`
	IsPublished  bool      `json:"isPublished"`
}

func (d *deps) attachAttendees(e *models.Event) {
	if n, err := d.regs.CountForEvent(e.ID); err == nil {
		e.Attendees = int(n)
	}
}

/* -------------------- Events -------------------- */

// GET /events
func (d *deps) getEvents(c *gin.Context) {
	events, err := d.events.GetPublished()
	if err != nil {
		log.Error().Err(err).Msg("event list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch events. Try again later."})
		return
	}
	for i := range events {
		d.attachAttendees(&events[i])
	}
	c.JSON(http.StatusOK, events)
}

// GET /events/:id
func (d *deps) getEvent(c *gin.Context) {
	id := c.Param("id")

	event, err := d.events.GetByID(id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Event not found."})
			return
		}
		log.Error().Err(err).Str("eventId", id).Msg("event fetch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch event. Try again later."})
		return
	}
	// drafts are visible to nobody on the public endpoint, organizer included
	if !event.IsPublished {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found."})
		return
	}
	d.attachAttendees(&event)
	c.JSON(http.StatusOK, event)
}

// POST /events
func (d *deps) createEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title, date and location are required."})
		return
	}

	event := models.Event{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		Date:         req.Date,
		Location:     req.Location,
		ImageURL:     req.ImageURL,
		Category:     req.Category,
		MaxAttendees: req.MaxAttendees,
		IsPublished:  req.IsPublished,
		OrganizerID:  c.GetInt64(middlewares.ContextUserID),
	}

	if err := d.events.Create(&event); err != nil {
		log.Error().Err(err).Msg("event create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create event. Try again later."})
		return
	}

	d.inv.PurgeEventsList(c)
	d.inv.PurgeEventItem(c, event.ID)

	c.JSON(http.StatusCreated, gin.H{"message": "Event created!", "event": event})
}

// loadOwnedEvent runs the shared authenticate→load→authorize sequence for
// mutating event handlers. It answers 404/403/500 itself and reports whether
// the caller may proceed.
func (d *deps) loadOwnedEvent(c *gin.Context, action string) (models.Event, bool) {
	id := c.Param("id")
	userID := c.GetInt64(middlewares.ContextUserID)

	event, err := d.events.GetByID(id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Event not found."})
			return models.Event{}, false
		}
		log.Error().Err(err).Str("eventId", id).Msg("event fetch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch the event. Try again later."})
		return models.Event{}, false
	}

	if !utils.AuthorizeOwner(event.OrganizerID, userID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to " + action + " event."})
		return models.Event{}, false
	}
	return event, true
}

// PUT /events/:id
func (d *deps) updateEvent(c *gin.Context) {
	old, ok := d.loadOwnedEvent(c, "update")
	if !ok {
		return
	}

	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title, date and location are required."})
		return
	}

	// identity and ownership are never taken from the body
	event := models.Event{
		ID:           old.ID,
		Title:        req.Title,
		Description:  req.Description,
		Date:         req.Date,
		Location:     req.Location,
		ImageURL:     req.ImageURL,
		Category:     req.Category,
		MaxAttendees: req.MaxAttendees,
		IsPublished:  req.IsPublished,
		OrganizerID:  old.OrganizerID,
	}

	if err := d.events.Update(&event); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// deleted concurrently after the ownership check
			c.JSON(http.StatusNotFound, gin.H{"message": "Event not found."})
			return
		}
		log.Error().Err(err).Str("eventId", event.ID).Msg("event update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update event. Try again later."})
		return
	}

	d.inv.PurgeEventsList(c)
	d.inv.PurgeEventItem(c, event.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Event updated successfully!", "event": event})
}

// DELETE /events/:id
func (d *deps) deleteEvent(c *gin.Context) {
	event, ok := d.loadOwnedEvent(c, "delete")
	if !ok {
		return
	}

	if err := d.events.Delete(event.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Event not found."})
			return
		}
		log.Error().Err(err).Str("eventId", event.ID).Msg("event delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not delete the event."})
		return
	}

	d.inv.PurgeEventsList(c)
	d.inv.PurgeEventItem(c, event.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully!"})
}

/* --------------- Registrations ------------------ */

// POST /events/:id/register
func (d *deps) registerForEvent(c *gin.Context) {
	userID := c.GetInt64(middlewares.ContextUserID)
	eventID := c.Param("id")

	event, err := d.events.GetByID(eventID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Event not found."})
			return
		}
		log.Error().Err(err).Str("eventId", eventID).Msg("event fetch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch event."})
		return
	}
	if !event.IsPublished {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found."})
		return
	}

	if err := d.regs.Register(userID, eventID, event.MaxAttendees); err != nil {
		switch {
		case errors.Is(err, models.ErrAlreadyAttending):
			c.JSON(http.StatusConflict, gin.H{"message": "Already registered for this event."})
		case errors.Is(err, models.ErrEventFull):
			c.JSON(http.StatusConflict, gin.H{"message": "Event is full."})
		default:
			log.Error().Err(err).Str("eventId", eventID).Msg("registration failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not register for event."})
		}
		return
	}

	d.inv.PurgeEventsList(c)
	d.inv.PurgeEventItem(c, eventID)

	c.JSON(http.StatusCreated, gin.H{"message": "Registered!"})
}

// DELETE /events/:id/register
func (d *deps) cancelRegistration(c *gin.Context) {
	userID := c.GetInt64(middlewares.ContextUserID)
	eventID := c.Param("id")

	if err := d.regs.Cancel(userID, eventID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Registration not found."})
			return
		}
		log.Error().Err(err).Str("eventId", eventID).Msg("cancel registration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not cancel registration."})
		return
	}

	d.inv.PurgeEventsList(c)
	d.inv.PurgeEventItem(c, eventID)

	c.JSON(http.StatusOK, gin.H{"message": "Registration cancelled."})
}

/* ---------------- Dashboard --------------------- */

// GET /dashboard/stats
func (d *deps) dashboardStats(c *gin.Context) {
	userID := c.GetInt64(middlewares.ContextUserID)

	total, published, upcoming, err := d.events.CountByOrganizer(userID)
	if err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("dashboard counts failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch dashboard stats."})
		return
	}

	ids, err := d.events.IDsByOrganizer(userID)
	if err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("dashboard event ids failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch dashboard stats."})
		return
	}
	registrations, err := d.regs.CountForEvents(ids)
	if err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("dashboard registrations failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch dashboard stats."})
		return
	}

	c.JSON(http.StatusOK, models.DashboardStats{
		TotalEvents:        total,
		PublishedEvents:    published,
		UpcomingEvents:     upcoming,
		TotalRegistrations: registrations,
	})
}
