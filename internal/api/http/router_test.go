package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/opsdesk/helpdesk-service/internal/api/http/handlers"
	"github.com/opsdesk/helpdesk-service/internal/auth"
	"github.com/opsdesk/helpdesk-service/internal/events"
	"github.com/opsdesk/helpdesk-service/internal/identity"
	"github.com/opsdesk/helpdesk-service/internal/lifecycle"
	"github.com/opsdesk/helpdesk-service/internal/mailer"
	"github.com/opsdesk/helpdesk-service/internal/notify"
	"github.com/opsdesk/helpdesk-service/internal/observability"
	"github.com/opsdesk/helpdesk-service/internal/repository"
	"github.com/opsdesk/helpdesk-service/internal/service"
	"github.com/opsdesk/helpdesk-service/internal/worker"
)

type stubNotifier struct {
	mu       sync.Mutex
	assigned []string
}

func (s *stubNotifier) NotifyTicketCreated(context.Context, string, string, string) error { return nil }

func (s *stubNotifier) NotifyAssigned(_ context.Context, email, _, _, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assigned = append(s.assigned, email)
	return nil
}

func (s *stubNotifier) NotifyResolved(context.Context, string, string, string) error {
	return errors.New("smtp down")
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type ticketBody struct {
	Data struct {
		ID          string   `json:"id"`
		Status      string   `json:"status"`
		AssignedTo  string   `json:"assignedTo"`
		ActivityLog []string `json:"activityLog"`
	} `json:"data"`
	Notification *struct {
		Kind      string `json:"kind"`
		Status    string `json:"status"`
		Recipient string `json:"recipient"`
		Warning   string `json:"warning"`
	} `json:"notification"`
}

func newTestApp(t *testing.T) (*fiber.App, *stubNotifier) {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	technicians := repository.NewMemoryTechnicianRepository(nil)
	contacts := repository.NewMemoryContactRepository(nil)
	seed := service.RegistrySeed{
		Technicians: []repository.TechnicianRecord{
			{ID: "2507", Name: "David", Email: "david@helpdesk.local", Specialization: "hardware", Password: "david-dev"},
			{ID: "2509", Name: "Bob", Email: "bob@helpdesk.local", Specialization: "network", Password: "bob-dev"},
		},
		Contacts: identity.Table{"2507": "linah@yahoo.co.ke"},
	}
	if err := service.SeedRegistry(ctx, seed, technicians, contacts, bcrypt.MinCost, logger); err != nil {
		t.Fatal(err)
	}

	stub := &stubNotifier{}
	metrics := observability.NewMetrics()
	pool := worker.NewPool(2, 8, logger)
	t.Cleanup(func() { _ = pool.Stop(context.Background()) })
	bus := events.NewInMemoryDispatcher()
	events.SubscribeAll(bus, events.MetricsHandler(metrics))

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     repository.NewMemoryTicketRepository(),
		TechnicianRepo: technicians,
		ContactRepo:    contacts,
		Engine:         lifecycle.NewEngine(),
		Notifications:  notify.NewDispatcher(notify.DispatcherDependencies{Notifier: stub, Pool: pool, Recorder: metrics}),
		Events:         bus,
		Logger:         logger,
	})
	tokens := auth.NewTokenManager("test-secret", 5)
	authService := service.NewAuthService(service.AuthDependencies{TechnicianRepo: technicians, Tokens: tokens})
	v := handlers.NewValidator()

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("helpdesk-test", "test", nil),
		Auth:           handlers.NewAuthHandler(authService, v),
		Tickets:        handlers.NewTicketsHandler(ticketService, v, time.Second),
		Directory:      handlers.NewDirectoryHandler(service.NewTechnicianService(technicians)),
		Metrics:        handlers.NewMetricsHandler(metrics),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, technicians),
	})
	return app, stub
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return out
}

func login(t *testing.T, app *fiber.App, id, password string) string {
	t.Helper()
	status, raw := do(t, app, fiber.MethodPost, "/auth/login", "", map[string]string{"technicianId": id, "password": password})
	if status != fiber.StatusOK {
		t.Fatalf("login status %d: %s", status, raw)
	}
	body := decode[struct {
		Data struct {
			AccessToken string `json:"accessToken"`
		} `json:"data"`
	}](t, raw)
	return body.Data.AccessToken
}

func createTicket(t *testing.T, app *fiber.App) ticketBody {
	t.Helper()
	status, raw := do(t, app, fiber.MethodPost, "/tickets", "", map[string]string{
		"title":       "VPN down",
		"description": "Cannot reach intranet",
		"department":  "IT Support",
		"contact":     "2507",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create status %d: %s", status, raw)
	}
	return decode[ticketBody](t, raw)
}

func TestCreateTicketEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	body := createTicket(t, app)
	if body.Data.Status != "Pending" || len(body.Data.ActivityLog) != 1 || body.Data.ID == "" {
		t.Fatalf("unexpected ticket %+v", body.Data)
	}
	if body.Notification == nil || body.Notification.Status != "sent" || body.Notification.Recipient != "linah@yahoo.co.ke" {
		t.Fatalf("notification = %+v", body.Notification)
	}

	status, raw := do(t, app, fiber.MethodGet, "/tickets/"+body.Data.ID, "", nil)
	if status != fiber.StatusOK {
		t.Fatalf("get status %d: %s", status, raw)
	}
}

func TestCreateTicketErrors(t *testing.T) {
	app, _ := newTestApp(t)
	cases := []struct {
		name   string
		body   map[string]string
		status int
		code   string
	}{
		{"missing title", map[string]string{"description": "d", "department": "Finance", "contact": "2507"}, 400, "MISSING_FIELD"},
		{"unknown department", map[string]string{"title": "t", "description": "d", "department": "Legal", "contact": "2507"}, 400, "VALIDATION_FAILED"},
		{"unresolvable contact", map[string]string{"title": "t", "description": "d", "department": "Finance", "contact": "not-an-email"}, 422, "NOT_RESOLVABLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, raw := do(t, app, fiber.MethodPost, "/tickets", "", tc.body)
			if status != tc.status {
				t.Fatalf("status = %d: %s", status, raw)
			}
			if got := decode[errorBody](t, raw).Error.Code; got != tc.code {
				t.Fatalf("code = %s", got)
			}
		})
	}
}

func TestTransitionEndpoint(t *testing.T) {
	app, stub := newTestApp(t)
	ticket := createTicket(t, app)
	path := "/tickets/" + ticket.Data.ID + "/transitions"

	status, _ := do(t, app, fiber.MethodPost, path, "", map[string]string{"status": "Assigned", "technicianId": "2509"})
	if status != fiber.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d", status)
	}

	bob := login(t, app, "2509", "bob-dev")

	status, raw := do(t, app, fiber.MethodPost, path, bob, map[string]string{"technicianId": "2509"})
	if status != fiber.StatusBadRequest {
		t.Fatalf("missing status = %d", status)
	}
	if details := decode[errorBody](t, raw).Error.Details; details["field"] != "status" {
		t.Fatalf("details = %v", details)
	}

	status, raw = do(t, app, fiber.MethodPost, path, bob, map[string]string{"status": "Assigned", "technicianId": "2509", "reason": "network"})
	if status != fiber.StatusOK {
		t.Fatalf("assign status %d: %s", status, raw)
	}
	assigned := decode[ticketBody](t, raw)
	if assigned.Data.Status != "Assigned" || assigned.Data.AssignedTo != "2509" {
		t.Fatalf("ticket = %+v", assigned.Data)
	}
	if assigned.Notification == nil || assigned.Notification.Recipient != "bob@helpdesk.local" {
		t.Fatalf("notification = %+v", assigned.Notification)
	}
	if len(stub.assigned) != 1 {
		t.Fatalf("assigned notifications = %v", stub.assigned)
	}

	status, raw = do(t, app, fiber.MethodPost, path, bob, map[string]string{"status": "Escalated", "escalationDetails": "vendor"})
	if status != fiber.StatusForbidden || decode[errorBody](t, raw).Error.Code != "TRANSITION_FORBIDDEN" {
		t.Fatalf("self escalation: %d %s", status, raw)
	}

	status, raw = do(t, app, fiber.MethodPost, path, bob, map[string]string{"status": "Pending"})
	if status != fiber.StatusConflict {
		t.Fatalf("invalid transition: %d %s", status, raw)
	}
}

func TestResolveReportsDeliveryWarning(t *testing.T) {
	app, _ := newTestApp(t)
	ticket := createTicket(t, app)
	path := "/tickets/" + ticket.Data.ID + "/transitions"
	david := login(t, app, "2507", "david-dev")

	if status, raw := do(t, app, fiber.MethodPost, path, david, map[string]string{"status": "Escalated", "escalationDetails": "vendor"}); status != fiber.StatusOK {
		t.Fatalf("escalate: %d %s", status, raw)
	}
	status, raw := do(t, app, fiber.MethodPost, path, david, map[string]string{"status": "Resolved", "resolutionDetails": "fixed"})
	if status != fiber.StatusOK {
		t.Fatalf("resolve must commit despite delivery failure: %d %s", status, raw)
	}
	body := decode[ticketBody](t, raw)
	if body.Data.Status != "Resolved" {
		t.Fatalf("status = %s", body.Data.Status)
	}
	if body.Notification == nil || body.Notification.Status != "failed" || body.Notification.Warning == "" {
		t.Fatalf("notification = %+v", body.Notification)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app, _ := newTestApp(t)
	status, raw := do(t, app, fiber.MethodPost, "/auth/login", "", map[string]string{"technicianId": "2509", "password": "nope"})
	if status != fiber.StatusUnauthorized {
		t.Fatalf("status = %d: %s", status, raw)
	}
	status, raw = do(t, app, fiber.MethodPost, "/auth/login", "", map[string]string{"technicianId": "2509"})
	if status != fiber.StatusBadRequest || decode[errorBody](t, raw).Error.Code != "MISSING_FIELD" {
		t.Fatalf("missing password: %d %s", status, raw)
	}
}

func TestReadEndpoints(t *testing.T) {
	app, _ := newTestApp(t)
	createTicket(t, app)

	status, raw := do(t, app, fiber.MethodGet, "/tickets/board", "", nil)
	if status != fiber.StatusOK {
		t.Fatalf("board: %d", status)
	}
	board := decode[struct {
		Data []struct {
			Status string `json:"status"`
			Count  int    `json:"count"`
		} `json:"data"`
	}](t, raw)
	if len(board.Data) != 4 || board.Data[0].Status != "Pending" || board.Data[0].Count != 1 {
		t.Fatalf("board = %+v", board.Data)
	}

	status, raw = do(t, app, fiber.MethodGet, "/tickets?q=vpn", "", nil)
	list := decode[struct {
		Data []json.RawMessage `json:"data"`
	}](t, raw)
	if status != fiber.StatusOK || len(list.Data) != 1 {
		t.Fatalf("search: %d %s", status, raw)
	}

	if status, _ = do(t, app, fiber.MethodGet, "/tickets?status=Closed", "", nil); status != fiber.StatusBadRequest {
		t.Fatalf("bad status filter = %d", status)
	}
	if status, _ = do(t, app, fiber.MethodGet, "/tickets/does-not-exist", "", nil); status != fiber.StatusNotFound {
		t.Fatalf("missing ticket = %d", status)
	}
	if status, _ = do(t, app, fiber.MethodGet, "/technicians/2509", "", nil); status != fiber.StatusOK {
		t.Fatalf("technician = %d", status)
	}
	if status, _ = do(t, app, fiber.MethodGet, "/technicians/0000", "", nil); status != fiber.StatusNotFound {
		t.Fatalf("missing technician = %d", status)
	}
	if status, _ = do(t, app, fiber.MethodGet, "/departments", "", nil); status != fiber.StatusOK {
		t.Fatalf("departments = %d", status)
	}
	status, raw = do(t, app, fiber.MethodGet, "/no-such-route", "", nil)
	if status != fiber.StatusNotFound || decode[errorBody](t, raw).Error.Code != "NOT_FOUND" {
		t.Fatalf("unknown route: %d %s", status, raw)
	}
	if status, _ = do(t, app, fiber.MethodGet, "/metrics", "", nil); status != fiber.StatusOK {
		t.Fatalf("metrics = %d", status)
	}
}

type stubMailer struct {
	err error
	to  []string
}

func (s *stubMailer) SendConfirmation(_ context.Context, to string, _ mailer.ConfirmationData) error {
	s.to = append(s.to, to)
	return s.err
}

func (s *stubMailer) SendAssignment(_ context.Context, to string, _ mailer.AssignmentData) error {
	s.to = append(s.to, to)
	return s.err
}

func (s *stubMailer) SendResolution(_ context.Context, to string, _ mailer.ResolutionData) error {
	s.to = append(s.to, to)
	return s.err
}

func newNotifierApp(mail handlers.MailSender) *fiber.App {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	RegisterNotifierRoutes(app, NotifierRouteConfig{
		Health:   handlers.NewHealthHandler("notifier-test", "test", nil),
		Notifier: handlers.NewNotifierHandler(mail, handlers.NewValidator()),
	})
	return app
}

func TestNotifierEndpoints(t *testing.T) {
	mail := &stubMailer{}
	app := newNotifierApp(mail)

	status, raw := do(t, app, fiber.MethodPost, notify.PathConfirmation, "", map[string]string{
		"email": "linah@yahoo.co.ke", "title": "VPN", "description": "down",
	})
	if status != fiber.StatusOK || decode[map[string]string](t, raw)["message"] != "Email sent successfully" {
		t.Fatalf("confirmation: %d %s", status, raw)
	}

	status, raw = do(t, app, fiber.MethodPost, notify.PathAssignment, "", map[string]string{
		"email": "bob@helpdesk.local", "title": "VPN", "description": "down", "department": "IT Support",
	})
	if status != fiber.StatusBadRequest {
		t.Fatalf("missing contact: %d %s", status, raw)
	}
	if details := decode[errorBody](t, raw).Error.Details; details["field"] != "contact" {
		t.Fatalf("details = %v", details)
	}

	mail.err = errors.New("smtp down")
	status, raw = do(t, app, fiber.MethodPost, notify.PathResolution, "", map[string]string{
		"email": "linah@yahoo.co.ke", "title": "VPN", "resolutionDetails": "fixed",
	})
	if status != fiber.StatusBadGateway || decode[errorBody](t, raw).Error.Code != "DELIVERY_FAILED" {
		t.Fatalf("smtp failure: %d %s", status, raw)
	}
	if len(mail.to) != 2 {
		t.Fatalf("mailer calls = %v", mail.to)
	}
}

func TestNotifierClientAgainstServer(t *testing.T) {
	mail := &stubMailer{}
	app := newNotifierApp(mail)

	srv := httptest.NewServer(adaptor.FiberApp(app))
	defer srv.Close()

	client := notify.NewClient(srv.URL, time.Second)
	if err := client.NotifyAssigned(context.Background(), "bob@helpdesk.local", "VPN", "down", "IT Support", "2507"); err != nil {
		t.Fatalf("NotifyAssigned: %v", err)
	}
	if len(mail.to) != 1 || mail.to[0] != "bob@helpdesk.local" {
		t.Fatalf("mailer calls = %v", mail.to)
	}
}
