package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"paystream/internal/core/domain"
	"paystream/internal/core/services"
	"paystream/internal/infrastructure/ledger"
	"paystream/internal/infrastructure/middleware"
	"paystream/internal/infrastructure/repositories/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const handlerTestToken = "usdc"

type handlerFixture struct {
	router *gin.Engine
	ledger *ledger.MemoryLedger
	clock  *services.FakeClock
	auth   services.AuthService
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := services.NewFakeClock(time.Now())
	tokenLedger := ledger.NewMemoryLedger()
	log := zap.NewNop().Sugar()

	guards := services.GuardConfig{
		MaxAmount:      1_000_000_000,
		MaxDuration:    1000 * time.Hour,
		MaxStartBehind: 1000 * time.Hour,
		MaxStartAhead:  1000 * time.Hour,
	}

	streamService := services.NewStreamService(
		memory.NewMemoryStreamRepository(),
		memory.NewMemoryProfileRepository(),
		tokenLedger,
		clock,
		nil,
		services.NopRecorder(),
		guards,
		domain.Address("custody"),
		log,
	)
	authService := services.NewAuthService(memory.NewMemoryUserRepository(), "test-secret", time.Hour, clock)

	router := gin.New()
	router.Use(middleware.ErrorHandlerMiddleware(log))

	NewAuthHandler(authService).SetupRoutes(router)
	NewStreamHandler(streamService).SetupRoutes(router, middleware.AuthMiddleware(authService))

	return &handlerFixture{
		router: router,
		ledger: tokenLedger,
		clock:  clock,
		auth:   authService,
	}
}

func (f *handlerFixture) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// registerAndLogin provisions a user whose address matches the username and
// returns a bearer token.
func (f *handlerFixture) registerAndLogin(t *testing.T, username string) string {
	t.Helper()

	w := f.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"password": "s3cret-pass",
		"address":  username,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": username,
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (f *handlerFixture) createStream(t *testing.T, token string, start, end uint64) uint64 {
	t.Helper()

	w := f.request(t, http.MethodPost, "/api/v1/streams", token, gin.H{
		"receiver":     "bob",
		"token":        handlerTestToken,
		"total_amount": 1000,
		"start_time":   start,
		"end_time":     end,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Stream struct {
			ID uint64 `json:"id"`
		} `json:"stream"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Stream.ID
}

func TestStreamLifecycleOverHTTP(t *testing.T) {
	f := newHandlerFixture(t)

	aliceToken := f.registerAndLogin(t, "alice")
	bobToken := f.registerAndLogin(t, "bob")

	f.ledger.Mint(handlerTestToken, "alice", 1000)
	require.NoError(t, f.ledger.Approve(context.Background(), handlerTestToken, "alice", "custody", 1000))

	start := uint64(f.clock.Now().Unix())
	id := f.createStream(t, aliceToken, start, start+100)
	assert.Equal(t, uint64(1), id)

	// Anyone can read the stream and its unlocked amount.
	w := f.request(t, http.MethodGet, fmt.Sprintf("/api/v1/streams/%d", id), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	f.clock.Advance(50 * time.Second)
	w = f.request(t, http.MethodGet, fmt.Sprintf("/api/v1/streams/%d/unlocked", id), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var unlockedResp struct {
		Unlocked uint64 `json:"unlocked"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &unlockedResp))
	assert.Equal(t, uint64(500), unlockedResp.Unlocked)

	// Receiver withdraws half of the vested amount.
	w = f.request(t, http.MethodPost, fmt.Sprintf("/api/v1/streams/%d/withdraw", id), bobToken, gin.H{"amount": 250})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var withdrawResp struct {
		Withdrawn uint64 `json:"withdrawn"`
		Remaining uint64 `json:"remaining"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &withdrawResp))
	assert.Equal(t, uint64(250), withdrawResp.Withdrawn)
	assert.Equal(t, uint64(750), withdrawResp.Remaining)

	// Sender cancels; remainder settles pro rata.
	w = f.request(t, http.MethodPost, fmt.Sprintf("/api/v1/streams/%d/cancel", id), aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cancelResp struct {
		ReceiverDue  uint64 `json:"receiver_due"`
		SenderRefund uint64 `json:"sender_refund"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cancelResp))
	assert.Equal(t, uint64(250), cancelResp.ReceiverDue)
	assert.Equal(t, uint64(500), cancelResp.SenderRefund)
}

func TestCreateStreamRequiresAuth(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.request(t, http.MethodPost, "/api/v1/streams", "", gin.H{
		"receiver":     "bob",
		"token":        handlerTestToken,
		"total_amount": 1000,
		"start_time":   1,
		"end_time":     100,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWithdrawByNonReceiverIsForbidden(t *testing.T) {
	f := newHandlerFixture(t)

	aliceToken := f.registerAndLogin(t, "alice")
	f.registerAndLogin(t, "bob")

	f.ledger.Mint(handlerTestToken, "alice", 1000)
	require.NoError(t, f.ledger.Approve(context.Background(), handlerTestToken, "alice", "custody", 1000))

	start := uint64(f.clock.Now().Unix())
	id := f.createStream(t, aliceToken, start, start+100)

	f.clock.Advance(50 * time.Second)
	w := f.request(t, http.MethodPost, fmt.Sprintf("/api/v1/streams/%d/withdraw", id), aliceToken, gin.H{"amount": 100})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
}

func TestWithdrawBeyondUnlockedReturnsTaxonomyCode(t *testing.T) {
	f := newHandlerFixture(t)

	aliceToken := f.registerAndLogin(t, "alice")
	bobToken := f.registerAndLogin(t, "bob")

	f.ledger.Mint(handlerTestToken, "alice", 1000)
	require.NoError(t, f.ledger.Approve(context.Background(), handlerTestToken, "alice", "custody", 1000))

	start := uint64(f.clock.Now().Unix())
	id := f.createStream(t, aliceToken, start, start+100)

	f.clock.Advance(50 * time.Second)
	w := f.request(t, http.MethodPost, fmt.Sprintf("/api/v1/streams/%d/withdraw", id), bobToken, gin.H{"amount": 600})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INSUFFICIENT_UNLOCKED_BALANCE", resp.Error.Code)
}

func TestInvalidTimeRangeRejectedOverHTTP(t *testing.T) {
	f := newHandlerFixture(t)

	aliceToken := f.registerAndLogin(t, "alice")
	f.ledger.Mint(handlerTestToken, "alice", 1000)
	require.NoError(t, f.ledger.Approve(context.Background(), handlerTestToken, "alice", "custody", 1000))

	start := uint64(f.clock.Now().Unix())
	w := f.request(t, http.MethodPost, "/api/v1/streams", aliceToken, gin.H{
		"receiver":     "bob",
		"token":        handlerTestToken,
		"total_amount": 1000,
		"start_time":   start + 100,
		"end_time":     start + 100,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_TIME_RANGE", resp.Error.Code)

	// Nothing was pulled from the sender.
	balance, err := f.ledger.BalanceOf(context.Background(), handlerTestToken, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), balance)
}

func TestGetStreamNotFoundOverHTTP(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.request(t, http.MethodGet, "/api/v1/streams/99", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMalformedStreamIDRejected(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.request(t, http.MethodGet, "/api/v1/streams/not-a-number", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListStreamsForCaller(t *testing.T) {
	f := newHandlerFixture(t)

	aliceToken := f.registerAndLogin(t, "alice")
	f.ledger.Mint(handlerTestToken, "alice", 2000)
	require.NoError(t, f.ledger.Approve(context.Background(), handlerTestToken, "alice", "custody", 2000))

	start := uint64(f.clock.Now().Unix())
	f.createStream(t, aliceToken, start, start+100)
	f.createStream(t, aliceToken, start, start+200)

	w := f.request(t, http.MethodGet, "/api/v1/streams", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Profile struct {
			AsSender []uint64 `json:"as_sender"`
		} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Profile.AsSender, 2)
}
