package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-campaign-backend/internal/domain"
	"github.com/tbourn/go-campaign-backend/internal/http/middleware"
	"github.com/tbourn/go-campaign-backend/internal/repo"
	"github.com/tbourn/go-campaign-backend/internal/services"
)

// ---------- test plumbing ----------

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type stubMsgSvc struct {
	calls int
	gen   func(ctx context.Context, idea, messageType string) (*services.MessageResult, error)
}

func (s *stubMsgSvc) Generate(ctx context.Context, idea, messageType string) (*services.MessageResult, error) {
	s.calls++
	return s.gen(ctx, idea, messageType)
}

type stubImgSvc struct {
	calls   int
	enhance func(ctx context.Context, idea string) (*services.EnhanceResult, error)
	gen     func(ctx context.Context, idea string) (*services.ImageResult, error)
}

func (s *stubImgSvc) Enhance(ctx context.Context, idea string) (*services.EnhanceResult, error) {
	s.calls++
	return s.enhance(ctx, idea)
}

func (s *stubImgSvc) Generate(ctx context.Context, idea string) (*services.ImageResult, error) {
	s.calls++
	return s.gen(ctx, idea)
}

func echoMessage() *stubMsgSvc {
	return &stubMsgSvc{gen: func(_ context.Context, idea, mt string) (*services.MessageResult, error) {
		return &services.MessageResult{Message: "msg:" + idea, Platform: mt}, nil
	}}
}

func echoImage() *stubImgSvc {
	return &stubImgSvc{
		enhance: func(_ context.Context, idea string) (*services.EnhanceResult, error) {
			return &services.EnhanceResult{EnhancedPrompt: "enh:" + idea, OriginalIdea: idea}, nil
		},
		gen: func(_ context.Context, idea string) (*services.ImageResult, error) {
			return &services.ImageResult{EnhancedPrompt: "enh:" + idea, ImageURL: "https://img/1.png", OriginalIdea: idea}, nil
		},
	}
}

// router mounts the handlers behind a fake gatekeeper and the real
// idempotency validator, mirroring the production order.
func router(h *Handlers, replays repo.Replays) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		p := &domain.Principal{ID: c.GetHeader("X-Test-User")}
		if p.ID == "" {
			p.ID = "u1"
		}
		c.Set("principal", p)
		c.Set("userID", p.ID)
		c.Next()
	})
	var lookup middleware.IdempotencyLookup
	if replays.DB != nil {
		lookup = replays.Exists
	}
	api.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, lookup))
	api.POST("/message", h.PostMessage)
	api.POST("/image", h.PostImage)
	api.POST("/image/enhance", h.PostImageEnhance)
	return r
}

func post(r http.Handler, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("json %q: %v", w.Body.String(), err)
	}
}

// ---------- PostMessage ----------

func TestPostMessage_Success(t *testing.T) {
	msg := echoMessage()
	r := router(New(msg, echoImage(), nil, 0), repo.Replays{})

	w := post(r, "/api/message", `{"promotionalIdea":"Diwali sale","messageType":"whatsapp"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got MessageResponse
	decodeInto(t, w, &got)
	if got.Message != "msg:Diwali sale" || got.Platform != "whatsapp" {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestPostMessage_BadJSON(t *testing.T) {
	msg := echoMessage()
	r := router(New(msg, echoImage(), nil, 0), repo.Replays{})

	w := post(r, "/api/message", `{"promotionalIdea":`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	var er ErrorResponse
	decodeInto(t, w, &er)
	if er.Error != MsgInvalidBody || er.Code != ErrCodeBadRequest || er.RequestID == "" {
		t.Fatalf("unexpected body: %+v", er)
	}
	if msg.calls != 0 {
		t.Fatalf("service must not be called on a bad body")
	}
}

func TestPostMessage_ServiceErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		text   string
	}{
		{"empty", services.ErrEmptyIdea, 400, MsgEmptyCampaignIdea},
		{"config", domain.Configuration("completion api key"), 500, MsgServerConfig},
		{"upstream", domain.Upstream("completion", 401, "No auth credentials found", nil), 500, "No auth credentials found"},
		{"upstream no message", domain.Upstream("completion", 0, "", errors.New("dial tcp")), 500, MsgMessageFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := &stubMsgSvc{gen: func(context.Context, string, string) (*services.MessageResult, error) {
				return nil, tc.err
			}}
			r := router(New(msg, echoImage(), nil, 0), repo.Replays{})

			w := post(r, "/api/message", `{"promotionalIdea":"x","messageType":"sms"}`, nil)
			if w.Code != tc.status {
				t.Fatalf("status=%d; want %d", w.Code, tc.status)
			}
			var er ErrorResponse
			decodeInto(t, w, &er)
			if er.Error != tc.text {
				t.Fatalf("error=%q; want %q", er.Error, tc.text)
			}
		})
	}
}

// ---------- PostImage / PostImageEnhance ----------

func TestPostImage_Success(t *testing.T) {
	img := echoImage()
	r := router(New(echoMessage(), img, nil, 0), repo.Replays{})

	w := post(r, "/api/image", `{"imageDescription":"students"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got ImageResponse
	decodeInto(t, w, &got)
	if got.EnhancedPrompt != "enh:students" || got.ImageURL != "https://img/1.png" || got.OriginalIdea != "students" {
		t.Fatalf("unexpected body: %+v", got)
	}

	var raw map[string]any
	decodeInto(t, w, &raw)
	if _, ok := raw["imageUrl"]; !ok {
		t.Fatalf("wire key imageUrl missing: %v", raw)
	}
}

func TestPostImage_FailuresDiscardPartialState(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"failed", domain.ErrGenerationFailed, 500, ErrCodeGenerationFailed},
		{"timeout", domain.ErrGenerationTimeout, 500, ErrCodeGenerationTimeout},
		{"no task id", domain.ErrMissingTaskID, 500, ErrCodeMissingTaskID},
		{"in flight", domain.ErrTaskInFlight, 409, ErrCodeConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			img := echoImage()
			img.gen = func(context.Context, string) (*services.ImageResult, error) { return nil, tc.err }
			r := router(New(echoMessage(), img, nil, 0), repo.Replays{})

			w := post(r, "/api/image", `{"imageDescription":"x"}`, nil)
			if w.Code != tc.status {
				t.Fatalf("status=%d; want %d", w.Code, tc.status)
			}
			var raw map[string]any
			decodeInto(t, w, &raw)
			if raw["code"] != tc.code {
				t.Fatalf("code=%v; want %s", raw["code"], tc.code)
			}
			if _, leaked := raw["enhancedPrompt"]; leaked {
				t.Fatalf("partial result leaked: %v", raw)
			}
		})
	}
}

func TestPostImageEnhance_SuccessAndEmpty(t *testing.T) {
	img := echoImage()
	r := router(New(echoMessage(), img, nil, 0), repo.Replays{})

	w := post(r, "/api/image/enhance", `{"imageDescription":"idea"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var got EnhanceResponse
	decodeInto(t, w, &got)
	if got.EnhancedPrompt != "enh:idea" || got.OriginalIdea != "idea" {
		t.Fatalf("unexpected body: %+v", got)
	}

	img.enhance = func(context.Context, string) (*services.EnhanceResult, error) { return nil, services.ErrEmptyIdea }
	w = post(r, "/api/image/enhance", `{"imageDescription":"  "}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	var er ErrorResponse
	decodeInto(t, w, &er)
	if er.Error != MsgEmptyImageIdea {
		t.Fatalf("error=%q", er.Error)
	}
}

// ---------- Idempotency ----------

func TestIdempotency_StoreThenReplay(t *testing.T) {
	db := newTestDB(t)
	replays := repo.Replays{DB: db}
	msg := echoMessage()
	r := router(New(msg, echoImage(), replays, time.Hour), replays)

	hdr := map[string]string{middleware.HeaderIdempotencyKey: "key-1"}
	first := post(r, "/api/message", `{"promotionalIdea":"first","messageType":"sms"}`, hdr)
	if first.Code != http.StatusOK {
		t.Fatalf("first status=%d", first.Code)
	}
	if first.Header().Get(middleware.HeaderIdempotencyReplayed) != "" {
		t.Fatalf("first response must not be marked replayed")
	}

	// different body, same key: the stored response wins and the service is not called
	second := post(r, "/api/message", `{"promotionalIdea":"second","messageType":"whatsapp"}`, hdr)
	if second.Code != http.StatusOK {
		t.Fatalf("second status=%d", second.Code)
	}
	if second.Header().Get(middleware.HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("expected Idempotency-Replayed: true")
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replay body mismatch:\n%s\n%s", first.Body.String(), second.Body.String())
	}
	if msg.calls != 1 {
		t.Fatalf("service calls=%d; want 1", msg.calls)
	}
}

func TestIdempotency_ScopedByUserAndRoute(t *testing.T) {
	db := newTestDB(t)
	replays := repo.Replays{DB: db}
	img := echoImage()
	r := router(New(echoMessage(), img, replays, time.Hour), replays)

	key := map[string]string{middleware.HeaderIdempotencyKey: "shared"}
	post(r, "/api/image/enhance", `{"imageDescription":"a"}`, key)

	// same key on another route
	w := post(r, "/api/image", `{"imageDescription":"a"}`, key)
	if w.Header().Get(middleware.HeaderIdempotencyReplayed) != "" {
		t.Fatalf("replay leaked across routes")
	}

	// same key and route, other user
	other := map[string]string{middleware.HeaderIdempotencyKey: "shared", "X-Test-User": "u2"}
	w = post(r, "/api/image/enhance", `{"imageDescription":"a"}`, other)
	if w.Header().Get(middleware.HeaderIdempotencyReplayed) != "" {
		t.Fatalf("replay leaked across users")
	}
	if img.calls != 3 {
		t.Fatalf("service calls=%d; want 3", img.calls)
	}
}

func TestIdempotency_FailuresAreNotStored(t *testing.T) {
	db := newTestDB(t)
	replays := repo.Replays{DB: db}
	fails := true
	msg := &stubMsgSvc{gen: func(_ context.Context, idea, mt string) (*services.MessageResult, error) {
		if fails {
			return nil, domain.Upstream("completion", 503, "busy", nil)
		}
		return &services.MessageResult{Message: idea, Platform: mt}, nil
	}}
	r := router(New(msg, echoImage(), replays, time.Hour), replays)
	hdr := map[string]string{middleware.HeaderIdempotencyKey: "retry-me"}

	if w := post(r, "/api/message", `{"promotionalIdea":"x","messageType":"sms"}`, hdr); w.Code != 500 {
		t.Fatalf("status=%d", w.Code)
	}
	fails = false
	w := post(r, "/api/message", `{"promotionalIdea":"x","messageType":"sms"}`, hdr)
	if w.Code != http.StatusOK || w.Header().Get(middleware.HeaderIdempotencyReplayed) != "" {
		t.Fatalf("retry after failure must generate afresh: %d %q", w.Code, w.Header().Get(middleware.HeaderIdempotencyReplayed))
	}
	if msg.calls != 2 {
		t.Fatalf("service calls=%d; want 2", msg.calls)
	}
}

func TestUserID_Fallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := userID(c); got != "anonymous" {
		t.Fatalf("userID = %q; want anonymous", got)
	}
	c.Set("principal", &domain.Principal{ID: "p1"})
	if got := userID(c); got != "p1" {
		t.Fatalf("userID = %q; want p1", got)
	}
}

func TestNew_DefaultReplayTTL(t *testing.T) {
	h := New(echoMessage(), echoImage(), nil, 0)
	if h.replayTTL != 24*time.Hour {
		t.Fatalf("replayTTL = %v; want 24h", h.replayTTL)
	}
}
