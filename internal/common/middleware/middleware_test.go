package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anime-tracker-backend/internal/common/errors"
)

const testBotToken = "123456:TEST-TOKEN"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(), Recovery())
	r.Use(mw...)
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_AppError(t *testing.T) {
	r := newTestRouter()
	r.GET("/user", func(c *gin.Context) {
		_ = c.Error(errors.NewUserNotFoundError("42"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeError(t, w)
	assert.False(t, body.Success)
	assert.Equal(t, "User not found", body.Message)
	assert.Equal(t, errors.ErrCodeUserNotFound, body.Code)
	assert.NotEmpty(t, body.RequestID)
	assert.Equal(t, body.RequestID, w.Header().Get(RequestIDHeader))
}

func TestErrorHandler_PlainErrorHidesCause(t *testing.T) {
	r := newTestRouter()
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(stderrors.New("dial tcp 10.0.0.1:6379: connection refused"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "Internal server error", body.Message)
	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}

func TestRecovery_Panic(t *testing.T) {
	r := newTestRouter()
	r.GET("/panic", func(c *gin.Context) {
		panic("unexpected nil")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, errors.ErrCodeInternal, decodeError(t, w).Code)
}

func TestRequestID_Propagated(t *testing.T) {
	r := newTestRouter()
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
}

// signInitData builds a Telegram init-data query string signed with token.
func signInitData(t *testing.T, token string, userID int64, authDate time.Time) string {
	t.Helper()

	userJSON, err := json.Marshal(map[string]any{
		"id":         userID,
		"first_name": "Test",
		"username":   "tester",
	})
	require.NoError(t, err)

	values := map[string]string{
		"auth_date": strconv.FormatInt(authDate.Unix(), 10),
		"query_id":  "AAH-test",
		"user":      string(userJSON),
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values[k])
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(token))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))

	q := url.Values{}
	for k, v := range values {
		q.Set(k, v)
	}
	q.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return q.Encode()
}

func identityRouter(opts IdentityOptions) *gin.Engine {
	r := newTestRouter(TelegramIdentity(opts))
	r.GET("/whoami", RequireIdentity(), func(c *gin.Context) {
		id, _ := TelegramID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "username": TelegramUsername(c)})
	})
	return r
}

func TestTelegramIdentity_ValidInitData(t *testing.T) {
	r := identityRouter(IdentityOptions{BotToken: testBotToken, InitDataTTL: time.Hour})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(InitDataHeader, signInitData(t, testBotToken, 777, time.Now()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"id":"777","username":"tester"}`, w.Body.String())
}

func TestTelegramIdentity_WrongToken(t *testing.T) {
	r := identityRouter(IdentityOptions{BotToken: testBotToken})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(InitDataHeader, signInitData(t, "999:OTHER", 777, time.Now()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTelegramIdentity_Missing(t *testing.T) {
	r := identityRouter(IdentityOptions{BotToken: testBotToken})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, errors.ErrCodeUnauthorized, decodeError(t, w).Code)
}

func TestTelegramIdentity_DevHeader(t *testing.T) {
	req := func(r *gin.Engine) *httptest.ResponseRecorder {
		rq := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		rq.Header.Set(DevIdentityHeader, "42")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, rq)
		return w
	}

	allowed := req(identityRouter(IdentityOptions{AllowDevHeader: true}))
	assert.Equal(t, http.StatusOK, allowed.Code)
	assert.Contains(t, allowed.Body.String(), `"id":"42"`)

	denied := req(identityRouter(IdentityOptions{}))
	assert.Equal(t, http.StatusUnauthorized, denied.Code)
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	r := newTestRouter(Metrics())
	r.GET("/api/user/:telegramId", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/user/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
