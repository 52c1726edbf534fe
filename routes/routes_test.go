package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"eventhub/models"
	"eventhub/utils"
)

/* ---------- helpers ---------- */

type testServer struct {
	s      *gin.Engine
	users  *mockUserRepo
	regs   *mockRegRepo
	events *mockEventRepo
}

func setupServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inv := utils.NewCacheInvalidator(rdb)

	ur := newMockUserRepo()
	rr := newMockRegRepo()
	er := newMockEventRepo()

	s := gin.New()
	RegisterRoutes(s, ur, rr, er, rdb, inv)
	return testServer{s: s, users: ur, regs: rr, events: er}
}

// seedUser bypasses /signup so tests don't burn the signup rate budget.
func (ts testServer) seedUser(t *testing.T, name, email, password string) models.User {
	t.Helper()
	u := models.User{Name: name, Email: email, Password: password}
	if err := ts.users.Create(&u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func (ts testServer) seedEvent(t *testing.T, organizerID int64, published bool) models.Event {
	t.Helper()
	e := models.Event{
		ID:          "11111111-1111-1111-1111-11111111111" + string(rune('0'+len(ts.events.items))),
		Title:       "Seeded",
		Date:        time.Now().Add(24 * time.Hour),
		Location:    "Paris",
		IsPublished: published,
		OrganizerID: organizerID,
	}
	if err := ts.events.Create(&e); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return e
}

func authToken(t *testing.T, u models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(u.ID, u.Email, u.Name)
	if err != nil {
		t.Fatalf("gen token: %v", err)
	}
	return token
}

func doReq(s *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

/* ---------- auth ---------- */

func TestSignup_MissingFields_400(t *testing.T) {
	ts := setupServer(t)

	w := doReq(ts.s, http.MethodPost, "/signup", `{"email":"a@x.com","password":"secret1"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("signup without name: want 400, got %d", w.Code)
	}
}

func TestLogin_MissingFields_400(t *testing.T) {
	ts := setupServer(t)

	w := doReq(ts.s, http.MethodPost, "/login", `{"email":"a@x.com"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("login without password: want 400, got %d", w.Code)
	}
}

// The end-to-end contract: register, duplicate register, bad login, good
// login, create as the logged-in user, cross-user delete, delete, re-delete.
func TestScenario_RegisterLoginCreateDelete(t *testing.T) {
	ts := setupServer(t)

	// register A
	w := doReq(ts.s, http.MethodPost, "/signup", `{"name":"A","email":"a@x.com","password":"secret1"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: want 201, got %d (%s)", w.Code, w.Body.String())
	}

	// same email again
	w = doReq(ts.s, http.MethodPost, "/signup", `{"name":"A2","email":"a@x.com","password":"other"}`, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: want 409, got %d", w.Code)
	}

	// wrong password
	w = doReq(ts.s, http.MethodPost, "/login", `{"email":"a@x.com","password":"wrong"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: want 401, got %d", w.Code)
	}

	// correct password
	w = doReq(ts.s, http.MethodPost, "/login", `{"email":"a@x.com","password":"secret1"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: want 200, got %d (%s)", w.Code, w.Body.String())
	}
	var loginResp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &loginResp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	claims, err := utils.VerifyToken(loginResp.Token)
	if err != nil {
		t.Fatalf("returned token must verify: %v", err)
	}
	if claims.UserID != loginResp.User.ID {
		t.Fatalf("token user %d != stored user %d", claims.UserID, loginResp.User.ID)
	}

	// create an event as A
	body := `{"title":"Go Meetup","date":"2030-05-01T18:00:00Z","location":"Paris","isPublished":true}`
	w = doReq(ts.s, http.MethodPost, "/events", body, loginResp.Token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create event: want 201, got %d (%s)", w.Code, w.Body.String())
	}
	var createResp struct {
		Event models.Event `json:"event"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &createResp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if createResp.Event.OrganizerID != loginResp.User.ID {
		t.Fatalf("organizerId %d != creator %d", createResp.Event.OrganizerID, loginResp.User.ID)
	}

	// delete with somebody else's token
	other := ts.seedUser(t, "B", "b@x.com", "secret2")
	w = doReq(ts.s, http.MethodDelete, "/events/"+createResp.Event.ID, "", authToken(t, other))
	if w.Code != http.StatusForbidden {
		t.Fatalf("cross-user delete: want 403, got %d", w.Code)
	}
	if _, err := ts.events.GetByID(createResp.Event.ID); err != nil {
		t.Fatal("403 must leave the event in place")
	}

	// delete with the owner's token, then once more
	w = doReq(ts.s, http.MethodDelete, "/events/"+createResp.Event.ID, "", loginResp.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("owner delete: want 200, got %d (%s)", w.Code, w.Body.String())
	}
	w = doReq(ts.s, http.MethodDelete, "/events/"+createResp.Event.ID, "", loginResp.Token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("repeated delete: want 404, got %d", w.Code)
	}
}

/* ---------- events ---------- */

func TestGetEvents_PublishedOnly_WithAttendees(t *testing.T) {
	ts := setupServer(t)
	u := ts.seedUser(t, "A", "a@x.com", "secret1")
	pub := ts.seedEvent(t, u.ID, true)
	ts.seedEvent(t, u.ID, false)
	ts.regs.pairs[regKey(u.ID, pub.ID)] = true

	w := doReq(ts.s, http.MethodGet, "/events", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var events []models.Event
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("only the published event must be listed, got %d", len(events))
	}
	if events[0].ID != pub.ID || events[0].Attendees != 1 {
		t.Fatalf("unexpected listing: %+v", events[0])
	}
}

func TestGetEvent_UnpublishedIs404(t *testing.T) {
	ts := setupServer(t)
	u := ts.seedUser(t, "A", "a@x.com", "secret1")
	draft := ts.seedEvent(t, u.ID, false)

	w := doReq(ts.s, http.MethodGet, "/events/"+draft.ID, "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("draft on the public endpoint: want 404, got %d", w.Code)
	}

	w = doReq(ts.s, http.MethodGet, "/events/no-such-id", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown id: want 404, got %d", w.Code)
	}
}

func TestCreateEvent_RequiresAuthAndFields(t *testing.T) {
	ts := setupServer(t)
	u := ts.seedUser(t, "A", "a@x.com", "secret1")

	body := `{"title":"T","date":"2030-05-01T18:00:00Z","location":"L"}`
	w := doReq(ts.s, http.MethodPost, "/events", body, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated create: want 401, got %d", w.Code)
	}

	w = doReq(ts.s, http.MethodPost, "/events", `{"title":"T"}`, authToken(t, u))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("create without date/location: want 400, got %d", w.Code)
	}
}

func TestUpdateEvent_OwnershipAndIdentity(t *testing.T) {
	ts := setupServer(t)
	owner := ts.seedUser(t, "A", "a@x.com", "secret1")
	other := ts.seedUser(t, "B", "b@x.com", "secret2")
	event := ts.seedEvent(t, owner.ID, true)

	body := `{"title":"Hijacked","date":"2030-05-01T18:00:00Z","location":"L","organizerId":999,"isPublished":true}`

	// not the owner
	w := doReq(ts.s, http.MethodPut, "/events/"+event.ID, body, authToken(t, other))
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner update: want 403, got %d", w.Code)
	}
	unchanged, _ := ts.events.GetByID(event.ID)
	if unchanged.Title != "Seeded" {
		t.Fatal("403 must leave the event unchanged")
	}

	// the owner may update, but cannot reassign ownership via the body
	w = doReq(ts.s, http.MethodPut, "/events/"+event.ID, body, authToken(t, owner))
	if w.Code != http.StatusOK {
		t.Fatalf("owner update: want 200, got %d (%s)", w.Code, w.Body.String())
	}
	updated, _ := ts.events.GetByID(event.ID)
	if updated.Title != "Hijacked" {
		t.Fatal("update must apply the new title")
	}
	if updated.OrganizerID != owner.ID {
		t.Fatalf("organizerId must be preserved, got %d", updated.OrganizerID)
	}

	// unknown event
	w = doReq(ts.s, http.MethodPut, "/events/no-such-id", body, authToken(t, owner))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown event update: want 404, got %d", w.Code)
	}
}

func TestDeleteEvent_Unknown404(t *testing.T) {
	ts := setupServer(t)
	u := ts.seedUser(t, "A", "a@x.com", "secret1")

	w := doReq(ts.s, http.MethodDelete, "/events/no-such-id", "", authToken(t, u))
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
}

/* ---------- registrations ---------- */

func TestRegistration_Flow(t *testing.T) {
	ts := setupServer(t)
	organizer := ts.seedUser(t, "A", "a@x.com", "secret1")
	attendee := ts.seedUser(t, "B", "b@x.com", "secret2")
	event := ts.seedEvent(t, organizer.ID, true)
	token := authToken(t, attendee)

	w := doReq(ts.s, http.MethodPost, "/events/"+event.ID+"/register", "", token)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: want 201, got %d (%s)", w.Code, w.Body.String())
	}

	w = doReq(ts.s, http.MethodPost, "/events/"+event.ID+"/register", "", token)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: want 409, got %d", w.Code)
	}

	w = doReq(ts.s, http.MethodPost, "/events/no-such-id/register", "", token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("register on unknown event: want 404, got %d", w.Code)
	}

	w = doReq(ts.s, http.MethodDelete, "/events/"+event.ID+"/register", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: want 200, got %d", w.Code)
	}
	w = doReq(ts.s, http.MethodDelete, "/events/"+event.ID+"/register", "", token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("cancel without registration: want 404, got %d", w.Code)
	}
}

func TestRegistration_FullEvent409(t *testing.T) {
	ts := setupServer(t)
	organizer := ts.seedUser(t, "A", "a@x.com", "secret1")
	attendee := ts.seedUser(t, "B", "b@x.com", "secret2")

	event := models.Event{
		ID:           "22222222-2222-2222-2222-222222222222",
		Title:        "Tiny venue",
		Date:         time.Now().Add(time.Hour),
		Location:     "Lyon",
		MaxAttendees: 1,
		IsPublished:  true,
		OrganizerID:  organizer.ID,
	}
	if err := ts.events.Create(&event); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	ts.regs.pairs[regKey(organizer.ID, event.ID)] = true

	w := doReq(ts.s, http.MethodPost, "/events/"+event.ID+"/register", "", authToken(t, attendee))
	if w.Code != http.StatusConflict {
		t.Fatalf("full event: want 409, got %d (%s)", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "full") {
		t.Fatalf("message must say the event is full, got %s", w.Body.String())
	}
}

/* ---------- profile & dashboard ---------- */

func TestProfile_GetAndUpdate(t *testing.T) {
	ts := setupServer(t)
	u := ts.seedUser(t, "A", "a@x.com", "secret1")
	token := authToken(t, u)

	w := doReq(ts.s, http.MethodGet, "/profile", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("get profile: want 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Fatal("profile must never expose the password hash")
	}

	w = doReq(ts.s, http.MethodPut, "/profile", `{}`, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty update: want 400, got %d", w.Code)
	}

	w = doReq(ts.s, http.MethodPut, "/profile", `{"name":"Renamed"}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("rename: want 200, got %d", w.Code)
	}
	var updated models.User
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Name != "Renamed" || updated.Email != "a@x.com" {
		t.Fatalf("unexpected profile after rename: %+v", updated)
	}
}

func TestProfile_RequiresAuth(t *testing.T) {
	ts := setupServer(t)

	w := doReq(ts.s, http.MethodGet, "/profile", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}
}

func TestDashboardStats(t *testing.T) {
	ts := setupServer(t)
	organizer := ts.seedUser(t, "A", "a@x.com", "secret1")
	attendee := ts.seedUser(t, "B", "b@x.com", "secret2")

	pub := ts.seedEvent(t, organizer.ID, true)
	ts.seedEvent(t, organizer.ID, false)
	ts.seedEvent(t, attendee.ID, true) // somebody else's event
	ts.regs.pairs[regKey(attendee.ID, pub.ID)] = true

	w := doReq(ts.s, http.MethodGet, "/dashboard/stats", "", authToken(t, organizer))
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d (%s)", w.Code, w.Body.String())
	}
	var stats models.DashboardStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalEvents != 2 || stats.PublishedEvents != 1 {
		t.Fatalf("unexpected event counts: %+v", stats)
	}
	if stats.UpcomingEvents != 2 {
		t.Fatalf("seeded events are in the future, want 2 upcoming, got %+v", stats)
	}
	if stats.TotalRegistrations != 1 {
		t.Fatalf("want 1 registration across organizer events, got %+v", stats)
	}
}
