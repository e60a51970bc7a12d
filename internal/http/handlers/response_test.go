package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-campaign-backend/internal/domain"
	"github.com/tbourn/go-campaign-backend/internal/services"
)

func Test_fail_500_LogsAndBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// capture logs from LoggerFrom(c)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	// simulate RequestID + request-scoped logger
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-500")
		c.Set("logger", &logger)
		c.Next()
	})

	r.GET("/boom", func(c *gin.Context) {
		fail(c, http.StatusInternalServerError, "internal_error", "kaboom")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.RequestID != "rid-500" || resp.Code != "internal_error" || resp.Error != "kaboom" {
		t.Fatalf("unexpected body: %+v", resp)
	}

	// ensure something was logged at error level
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected error log, got: %s", buf.String())
	}
}

func Test_Fail_4xx_NotLogged_And_ErrorKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-404")
		c.Set("logger", &logger)
		c.Next()
	})
	r.GET("/missing", func(c *gin.Context) {
		Fail(c, http.StatusNotFound, ErrCodeNotFound, "nope")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}

	var raw map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("json: %v", err)
	}
	if raw["request_id"] != "rid-404" || raw["code"] != "not_found" || raw["error"] != "nope" {
		t.Fatalf("unexpected body: %v", raw)
	}
	if _, has := raw["message"]; has {
		t.Fatalf("envelope must not carry a message key: %v", raw)
	}
	if buf.Len() != 0 {
		t.Fatalf("4xx must not be logged by fail: %s", buf.String())
	}
}

func Test_classify(t *testing.T) {
	upstream := domain.Upstream("completion", 429, "Rate limit exceeded: free-models-per-day", nil)
	silentUpstream := domain.Upstream("imagegen", 502, "", nil)

	cases := []struct {
		name   string
		err    error
		text   failText
		status int
		code   string
		msg    string
	}{
		{"empty idea", services.ErrEmptyIdea, messageText, 400, ErrCodeBadRequest, MsgEmptyCampaignIdea},
		{"empty image idea", services.ErrEmptyIdea, imageText, 400, ErrCodeBadRequest, MsgEmptyImageIdea},
		{"too long", services.ErrIdeaTooLong, messageText, 400, ErrCodeBadRequest, MsgCampaignIdeaTooBig},
		{"configuration", domain.Configuration("completion api key"), messageText, 500, ErrCodeConfiguration, MsgServerConfig},
		{"unauthenticated", fmt.Errorf("%w: bad", domain.ErrUnauthenticated), imageText, 401, ErrCodeUnauthorized, MsgInvalidToken},
		{"in flight", domain.ErrTaskInFlight, imageText, 409, ErrCodeConflict, MsgTaskInFlight},
		{"upstream with message", fmt.Errorf("submit: %w", upstream), imageText, 500, ErrCodeUpstream, "Rate limit exceeded: free-models-per-day"},
		{"upstream message fallback", silentUpstream, imageText, 500, ErrCodeUpstream, MsgImageFailed},
		{"upstream enhance fallback", silentUpstream, enhanceText, 500, ErrCodeUpstream, MsgEnhanceFailed},
		{"missing task id", domain.ErrMissingTaskID, imageText, 500, ErrCodeMissingTaskID, MsgMissingTaskID},
		{"generation failed", domain.ErrGenerationFailed, imageText, 500, ErrCodeGenerationFailed, MsgGenerationFailed},
		{"generation timeout", domain.ErrGenerationTimeout, imageText, 500, ErrCodeGenerationTimeout, MsgGenerationTimeout},
		{"canceled", context.Canceled, imageText, statusClientClosedRequest, "", ""},
		{"unknown", errors.New("weird"), messageText, 500, ErrCodeInternal, MsgMessageFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, code, msg := classify(tc.err, tc.text)
			if status != tc.status || code != tc.code || msg != tc.msg {
				t.Fatalf("classify = (%d, %q, %q); want (%d, %q, %q)", status, code, msg, tc.status, tc.code, tc.msg)
			}
		})
	}
}

func Test_failFrom_AttachesCauseOnlyFor5xx(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(err error) (*httptest.ResponseRecorder, int) {
		var nErrs int
		r := gin.New()
		r.Use(func(c *gin.Context) {
			c.Next()
			nErrs = len(c.Errors)
		})
		r.POST("/x", func(c *gin.Context) { failFrom(c, err, messageText) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
		return w, nErrs
	}

	w, n := run(services.ErrEmptyIdea)
	if w.Code != http.StatusBadRequest || n != 0 {
		t.Fatalf("400: code=%d errors=%d", w.Code, n)
	}

	w, n = run(domain.ErrGenerationTimeout)
	if w.Code != http.StatusInternalServerError || n != 1 {
		t.Fatalf("500: code=%d errors=%d", w.Code, n)
	}

	w, _ = run(context.Canceled)
	if w.Code != statusClientClosedRequest || w.Body.Len() != 0 {
		t.Fatalf("canceled: code=%d body=%q", w.Code, w.Body.String())
	}
}
