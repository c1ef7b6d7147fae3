package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dalchat-backend/internal/database"
	"dalchat-backend/internal/handlers"
	"dalchat-backend/internal/hub"
	"dalchat-backend/internal/keyValue"
	"dalchat-backend/internal/models"
	"dalchat-backend/internal/snowflake"
	"dalchat-backend/internal/store"
	"dalchat-backend/internal/token"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	_ = snowflake.Setup(1)

	sugar := zap.NewNop().Sugar()
	keyValue.Setup(sugar, nil, true)
	hub.Setup(sugar, nil, true)
	token.Setup("test-secret")

	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &models.ConfigFile{SelfContained: true}
	return handlers.NewRouter(cfg, sugar, store.New(sugar, db))
}

func doRequest(t *testing.T, router chi.Router, method string, path string, sessionToken string, body any) *httptest.ResponseRecorder {
	t.Helper()

	reader := bytes.NewBuffer(nil)
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+sessionToken)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v))
}

type authResult struct {
	Success bool        `json:"success"`
	User    models.User `json:"user"`
	Token   string      `json:"token"`
}

func signup(t *testing.T, router chi.Router, email string, displayName string) authResult {
	t.Helper()

	rr := doRequest(t, router, "POST", "/api/signup", "", map[string]string{
		"email":       email,
		"password":    "Password1",
		"displayName": displayName,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result authResult
	decodeBody(t, rr, &result)
	require.True(t, result.Success)
	require.NotEmpty(t, result.Token)
	return result
}

func createServer(t *testing.T, router chi.Router, sessionToken string, name string) models.Server {
	t.Helper()

	rr := doRequest(t, router, "POST", "/api/servers", sessionToken, map[string]string{"name": name})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result struct {
		Server models.Server `json:"server"`
	}
	decodeBody(t, rr, &result)
	return result.Server
}

func TestSignupValidation(t *testing.T) {
	router := newTestRouter(t)

	for name, body := range map[string]map[string]string{
		"missing email":       {"password": "Password1", "displayName": "Alice"},
		"bad email":           {"email": "not-an-email", "password": "Password1", "displayName": "Alice"},
		"short password":      {"email": "a@b.com", "password": "abc", "displayName": "Alice"},
		"missing displayName": {"email": "a@b.com", "password": "Password1"},
	} {
		rr := doRequest(t, router, "POST", "/api/signup", "", body)
		require.Equalf(t, http.StatusBadRequest, rr.Code, "case %q: %s", name, rr.Body.String())
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	router := newTestRouter(t)

	signup(t, router, "alice@example.com", "Alice")

	rr := doRequest(t, router, "POST", "/api/signup", "", map[string]string{
		"email":       "alice@example.com",
		"password":    "Different1",
		"displayName": "Imposter",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "already registered")
}

func TestLogin(t *testing.T) {
	router := newTestRouter(t)

	created := signup(t, router, "alice@example.com", "Alice")

	rr := doRequest(t, router, "POST", "/api/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "Password1",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var result authResult
	decodeBody(t, rr, &result)
	require.Equal(t, created.User.ID, result.User.ID)
	require.NotEmpty(t, result.Token)

	// wrong password and unknown email give the same response
	wrongPassword := doRequest(t, router, "POST", "/api/login", "", map[string]string{
		"email": "alice@example.com", "password": "WrongPass1",
	})
	unknownEmail := doRequest(t, router, "POST", "/api/login", "", map[string]string{
		"email": "nobody@example.com", "password": "Password1",
	})
	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	require.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLogoutRevokesSession(t *testing.T) {
	router := newTestRouter(t)

	alice := signup(t, router, "alice@example.com", "Alice")

	rr := doRequest(t, router, "GET", "/api/servers", alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, router, "POST", "/api/logout", alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, router, "GET", "/api/servers", alice.Token, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	// the revoked token can't be used to log out again either
	rr = doRequest(t, router, "POST", "/api/logout", alice.Token, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequestsWithoutSession(t *testing.T) {
	router := newTestRouter(t)

	rr := doRequest(t, router, "GET", "/api/servers", "", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doRequest(t, router, "GET", "/api/servers", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestEndToEndScenario(t *testing.T) {
	router := newTestRouter(t)

	// user A registers and creates a server
	alice := signup(t, router, "alice@example.com", "Alice")
	server := createServer(t, router, alice.Token, "Team")
	serverPath := fmt.Sprintf("/api/servers/%d", server.ID)

	// the fresh server has the two seeded channels and A as its owner
	rr := doRequest(t, router, "GET", serverPath+"/channels", alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var channelList struct {
		Channels []models.Channel `json:"channels"`
	}
	decodeBody(t, rr, &channelList)
	require.Len(t, channelList.Channels, 2)
	require.Equal(t, "general", channelList.Channels[0].ID)
	require.Equal(t, "announcements", channelList.Channels[1].ID)

	rr = doRequest(t, router, "GET", serverPath+"/members", alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var memberList struct {
		Members []models.Member `json:"members"`
	}
	decodeBody(t, rr, &memberList)
	require.Len(t, memberList.Members, 1)
	require.Equal(t, models.RoleOwner, memberList.Members[0].Role)

	// user B registers and joins
	bob := signup(t, router, "bob@example.com", "Bob")

	rr = doRequest(t, router, "GET", serverPath+"/messages/general", bob.Token, nil)
	require.Equal(t, http.StatusForbidden, rr.Code, "non-member must not read messages")

	rr = doRequest(t, router, "POST", serverPath+"/join", bob.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doRequest(t, router, "GET", "/api/servers", bob.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var serverList struct {
		Servers []models.Server `json:"servers"`
	}
	decodeBody(t, rr, &serverList)
	require.Len(t, serverList.Servers, 1)
	require.Equal(t, server.ID, serverList.Servers[0].ID)

	// A sends "hi" to general, B sees it with A's name and a sane timestamp
	rr = doRequest(t, router, "POST", serverPath+"/messages/general", alice.Token,
		map[string]string{"text": "hi"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doRequest(t, router, "GET", serverPath+"/messages/general", bob.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var messageList struct {
		Messages []models.Message `json:"messages"`
	}
	decodeBody(t, rr, &messageList)
	require.Len(t, messageList.Messages, 1)
	require.Equal(t, "hi", messageList.Messages[0].Text)
	require.Equal(t, "Alice", messageList.Messages[0].Username)
	require.False(t, messageList.Messages[0].Time.Before(server.CreatedAt))

	// B is a plain member and can't create channels yet
	rr = doRequest(t, router, "POST", serverPath+"/channels", bob.Token,
		map[string]string{"name": "roadmap"})
	require.Equal(t, http.StatusForbidden, rr.Code)

	// A promotes B to admin
	rolePath := fmt.Sprintf("%s/members/%d/role", serverPath, bob.User.ID)
	rr = doRequest(t, router, "PUT", rolePath, alice.Token, map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// now B can create a channel
	rr = doRequest(t, router, "POST", serverPath+"/channels", bob.Token,
		map[string]string{"name": "roadmap"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var channelResult struct {
		Channel models.Channel `json:"channel"`
	}
	decodeBody(t, rr, &channelResult)
	require.Equal(t, "roadmap", channelResult.Channel.ID)

	// duplicate slug is rejected
	rr = doRequest(t, router, "POST", serverPath+"/channels", bob.Token,
		map[string]string{"name": "ROADMAP"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	// general stays protected even for admins
	rr = doRequest(t, router, "DELETE", serverPath+"/channels/general", bob.Token, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "general")

	// but roadmap can go
	rr = doRequest(t, router, "DELETE", serverPath+"/channels/roadmap", bob.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, router, "GET", serverPath+"/messages/roadmap", bob.Token, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	// B still can't change roles, that stays with the owner
	rr = doRequest(t, router, "PUT", rolePath, bob.Token, map[string]string{"role": "member"})
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestSetRoleValidation(t *testing.T) {
	router := newTestRouter(t)

	alice := signup(t, router, "alice@example.com", "Alice")
	bob := signup(t, router, "bob@example.com", "Bob")

	server := createServer(t, router, alice.Token, "Team")
	serverPath := fmt.Sprintf("/api/servers/%d", server.ID)

	rr := doRequest(t, router, "POST", serverPath+"/join", bob.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rolePath := fmt.Sprintf("%s/members/%d/role", serverPath, bob.User.ID)

	rr = doRequest(t, router, "PUT", rolePath, alice.Token, map[string]string{"role": "superuser"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, router, "PUT", rolePath, alice.Token, map[string]string{"role": "owner"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	// unknown target user
	rr = doRequest(t, router, "PUT", serverPath+"/members/12345/role", alice.Token,
		map[string]string{"role": "admin"})
	require.Equal(t, http.StatusNotFound, rr.Code)

	// unknown server
	rr = doRequest(t, router, "PUT", "/api/servers/12345/join", bob.Token, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMessagesToUnknownChannel(t *testing.T) {
	router := newTestRouter(t)

	alice := signup(t, router, "alice@example.com", "Alice")
	server := createServer(t, router, alice.Token, "Team")
	serverPath := fmt.Sprintf("/api/servers/%d", server.ID)

	rr := doRequest(t, router, "POST", serverPath+"/messages/nowhere", alice.Token,
		map[string]string{"text": "hello?"})
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = doRequest(t, router, "POST", serverPath+"/messages/general", alice.Token,
		map[string]string{"text": ""})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestJoinTwiceKeepsRole(t *testing.T) {
	router := newTestRouter(t)

	alice := signup(t, router, "alice@example.com", "Alice")
	bob := signup(t, router, "bob@example.com", "Bob")

	server := createServer(t, router, alice.Token, "Team")
	serverPath := fmt.Sprintf("/api/servers/%d", server.ID)

	rr := doRequest(t, router, "POST", serverPath+"/join", bob.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rolePath := fmt.Sprintf("%s/members/%d/role", serverPath, bob.User.ID)
	rr = doRequest(t, router, "PUT", rolePath, alice.Token, map[string]string{"role": "moderator"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, router, "POST", serverPath+"/join", bob.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, router, "GET", serverPath+"/members", bob.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var memberList struct {
		Members []models.Member `json:"members"`
	}
	decodeBody(t, rr, &memberList)
	for _, member := range memberList.Members {
		if member.UserID == bob.User.ID {
			require.Equal(t, models.RoleModerator, member.Role)
		}
	}
}

func TestMemberTimestamps(t *testing.T) {
	router := newTestRouter(t)

	before := time.Now().Add(-time.Second)

	alice := signup(t, router, "alice@example.com", "Alice")
	server := createServer(t, router, alice.Token, "Team")

	rr := doRequest(t, router, "GET", fmt.Sprintf("/api/servers/%d/members", server.ID), alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var memberList struct {
		Members []models.Member `json:"members"`
	}
	decodeBody(t, rr, &memberList)
	require.Len(t, memberList.Members, 1)
	require.True(t, memberList.Members[0].JoinedAt.After(before))
}
