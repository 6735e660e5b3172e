package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"viewswap/internal/entity"
	"viewswap/internal/repo/persistent"
	"viewswap/internal/usecase"
	"viewswap/pkg/jwt"
	"viewswap/pkg/queue"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type MockUserUseCase struct {
	mock.Mock
}

func (m *MockUserUseCase) Register(telegramID int64, username string) (*entity.User, bool, error) {
	args := m.Called(telegramID, username)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*entity.User), args.Bool(1), args.Error(2)
}

func (m *MockUserUseCase) FindByTelegramID(telegramID int64) (*entity.User, error) {
	args := m.Called(telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserUseCase) Pause(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserUseCase) Resume(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserUseCase) Status(userID string) (*usecase.UserStatus, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UserStatus), args.Error(1)
}

type MockEnforcementUseCase struct {
	mock.Mock
}

func (m *MockEnforcementUseCase) Strike(userID string) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

func (m *MockEnforcementUseCase) Unstrike(userID string) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

func (m *MockEnforcementUseCase) IsBanned(user *entity.User) bool {
	args := m.Called(user)
	return args.Bool(0)
}

func (m *MockEnforcementUseCase) ListStrikable(minStrikes int) ([]*entity.User, error) {
	args := m.Called(minStrikes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.User), args.Error(1)
}

type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) WithTx(tx *gorm.DB) persistent.LogRepository { return m }

func (m *MockLogRepository) Append(event, userID, details string) error {
	args := m.Called(event, userID, details)
	return args.Error(0)
}

func (m *MockLogRepository) List(limit, offset int) ([]*entity.LogEntry, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.LogEntry), args.Error(1)
}

type MockMatcher struct {
	mock.Mock
}

func (m *MockMatcher) NextVideoFor(viewerID string) (*entity.Candidate, error) {
	args := m.Called(viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Candidate), args.Error(1)
}

type MockInboxReader struct {
	mock.Mock
}

func (m *MockInboxReader) Recent(ctx context.Context, chatID int64, limit int) ([]queue.Notification, error) {
	args := m.Called(chatID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]queue.Notification), args.Error(1)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

type adminHandlerMocks struct {
	users       *MockUserUseCase
	enforcement *MockEnforcementUseCase
	matcher     *MockMatcher
	logs        *MockLogRepository
	inbox       *MockInboxReader
}

func newAdminHandlerForTest(password string) (*AdminHandler, *adminHandlerMocks) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	m := &adminHandlerMocks{
		users:       new(MockUserUseCase),
		enforcement: new(MockEnforcementUseCase),
		matcher:     new(MockMatcher),
		logs:        new(MockLogRepository),
		inbox:       new(MockInboxReader),
	}
	handler := NewAdminHandler(m.users, m.enforcement, m.matcher, m.logs, m.inbox, jwt.NewService("test-secret"), AdminCredentials{
		Username:     "admin",
		PasswordHash: string(hash),
	})
	return handler, m
}

func TestLogin_Success(t *testing.T) {
	handler, _ := newAdminHandlerForTest("correct-horse")

	router := setupTestRouter()
	router.POST("/login", handler.Login)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/login", strings.NewReader(`{"username":"admin","password":"correct-horse"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response LoginResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.NotEmpty(t, response.Token)

	claims, err := jwt.NewService("test-secret").ValidateToken(response.Token)
	assert.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	handler, _ := newAdminHandlerForTest("correct-horse")

	router := setupTestRouter()
	router.POST("/login", handler.Login)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/login", strings.NewReader(`{"username":"admin","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetStrikableUsers(t *testing.T) {
	handler, m := newAdminHandlerForTest("pw")

	m.enforcement.On("ListStrikable", 2).Return([]*entity.User{
		{ID: "user-1", Strikes: 2},
		{ID: "user-2", Strikes: 4},
	}, nil)

	router := setupTestRouter()
	router.GET("/users/strikable", handler.GetStrikableUsers)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/users/strikable?min_strikes=2", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(2), response["count"])
	m.enforcement.AssertExpectations(t)
}

func TestAddStrike(t *testing.T) {
	handler, m := newAdminHandlerForTest("pw")

	m.enforcement.On("Strike", "user-1").Return(3, nil)

	router := setupTestRouter()
	router.POST("/users/:id/strikes", handler.AddStrike)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/users/user-1/strikes", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(3), response["strikes"])
}

func TestRemoveStrike_UserNotFound(t *testing.T) {
	handler, m := newAdminHandlerForTest("pw")

	m.enforcement.On("Unstrike", "ghost").Return(0, entity.ErrNotFound)

	router := setupTestRouter()
	router.DELETE("/users/:id/strikes", handler.RemoveStrike)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/users/ghost/strikes", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUser(t *testing.T) {
	handler, m := newAdminHandlerForTest("pw")

	user := &entity.User{ID: "user-1", Strikes: 4}
	m.users.On("Status", "user-1").Return(&usecase.UserStatus{
		User:         user,
		ActiveVideos: 2,
		Videos: []*usecase.VideoStatus{
			{Video: &entity.Video{ID: "video-1", Title: "First clip"}, CompletedViews: 7},
			{Video: &entity.Video{ID: "video-2", Title: "Second clip"}, CompletedViews: 0},
		},
	}, nil)
	m.enforcement.On("IsBanned", user).Return(true)

	router := setupTestRouter()
	router.GET("/users/:id", handler.GetUser)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/users/user-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, true, response["banned"])
	assert.Equal(t, float64(2), response["active_videos"])
	videos := response["videos"].([]interface{})
	assert.Len(t, videos, 2)
	first := videos[0].(map[string]interface{})
	assert.Equal(t, float64(7), first["completed_views"])
}

func TestGetUserInbox(t *testing.T) {
	handler, m := newAdminHandlerForTest("pw")

	user := &entity.User{ID: "user-1", TelegramID: 100}
	m.users.On("Status", "user-1").Return(&usecase.UserStatus{User: user}, nil)
	m.inbox.On("Recent", int64(100), 20).Return([]queue.Notification{
		{Kind: queue.KindProofAccepted, ChatID: 100, Text: "Your proof was accepted!"},
	}, nil)

	router := setupTestRouter()
	router.GET("/users/:id/inbox", handler.GetUserInbox)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/users/user-1/inbox", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(1), response["count"])
	notifications := response["notifications"].([]interface{})
	entry := notifications[0].(map[string]interface{})
	assert.Equal(t, queue.KindProofAccepted, entry["kind"])
}

func TestGetUserInbox_UserNotFound(t *testing.T) {
	handler, m := newAdminHandlerForTest("pw")

	m.users.On("Status", "missing").Return(nil, entity.ErrNotFound)

	router := setupTestRouter()
	router.GET("/users/:id/inbox", handler.GetUserInbox)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/users/missing/inbox", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	m.inbox.AssertNotCalled(t, "Recent", mock.Anything, mock.Anything)
}

func TestGetLogs(t *testing.T) {
	handler, m := newAdminHandlerForTest("pw")

	m.logs.On("List", 50, 0).Return([]*entity.LogEntry{
		{ID: "log-1", Event: entity.EventStrikeAdded},
	}, nil)

	router := setupTestRouter()
	router.GET("/logs", handler.GetLogs)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/logs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	m.logs.AssertExpectations(t)
}

func TestGetLogs_RejectsBadLimit(t *testing.T) {
	handler, _ := newAdminHandlerForTest("pw")

	router := setupTestRouter()
	router.GET("/logs", handler.GetLogs)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/logs?limit=9999", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetNextVideo_Preview(t *testing.T) {
	handler, m := newAdminHandlerForTest("pw")

	m.matcher.On("NextVideoFor", "user-1").Return(&entity.Candidate{
		Video:          &entity.Video{ID: "video-1", Title: "My clip"},
		CompletedViews: 2,
	}, nil)

	router := setupTestRouter()
	router.GET("/users/:id/next-video", handler.GetNextVideo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/users/user-1/next-video", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(2), response["completed_views"])
}

func TestGetNextVideo_NoCandidates(t *testing.T) {
	handler, m := newAdminHandlerForTest("pw")

	m.matcher.On("NextVideoFor", "user-1").Return(nil, nil)

	router := setupTestRouter()
	router.GET("/users/:id/next-video", handler.GetNextVideo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/users/user-1/next-video", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "null")
}
