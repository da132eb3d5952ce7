package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danilovichz/lawpro-v2/models"
	"github.com/danilovichz/lawpro-v2/service"
	"github.com/danilovichz/lawpro-v2/storage"
)

type stubDirectory struct {
	filtered   []models.LawyerRecord
	lawyers    map[uuid.UUID]models.LawyerRecord
	filters    []models.LawyerFilter
	lastFilter models.LawyerFilter
}

func (d *stubDirectory) SearchLawyersRanked(context.Context, *string, string, *models.CaseType) ([]models.LawyerRecord, error) {
	return nil, nil
}

func (d *stubDirectory) FilterLawyers(_ context.Context, filter models.LawyerFilter) ([]models.LawyerRecord, error) {
	d.filters = append(d.filters, filter)
	d.lastFilter = filter
	return d.filtered, nil
}

func (d *stubDirectory) GetByID(_ context.Context, id uuid.UUID) (*models.LawyerRecord, error) {
	l, ok := d.lawyers[id]
	if !ok {
		return nil, models.ErrLawyerNotFound
	}
	return &l, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   int             `json:"count"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestRouter(t *testing.T, dir *stubDirectory) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewLocalStateStore(t.TempDir())
	require.NoError(t, err)

	conversations := service.NewConversationService(service.WithStateStore(store))
	search := service.NewLawyerSearchService(
		service.SearchWithDirectory(dir),
		service.SearchWithStateStore(store),
	)

	return NewRouter(NewConversationHandler(conversations, nil), NewLawyerHandler(search))
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestConversationFlow(t *testing.T) {
	dir := &stubDirectory{filtered: []models.LawyerRecord{{State: "California", County: "Orange County", LawFirm: "Law Offices of Dana Cho", Type: "Criminal"}}}
	r := newTestRouter(t, dir)

	w, env := do(t, r, http.MethodPost, "/api/sessions", `{"session_key":"chat-42","title":"DUI question"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var session models.ChatSession
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, "chat-42", session.SessionKey)

	w, env = do(t, r, http.MethodPost, "/api/sessions/chat-42/messages", `{"message":"I got a DUI in Los Angeles California"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var result service.ProcessMessageResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.ShouldSearch)
	assert.Equal(t, "California", *result.State.State)

	w, env = do(t, r, http.MethodPost, "/api/sessions/chat-42/messages", `{"message":"Actually, I'm in Orange County"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "Orange County, California", result.SearchLocation)

	w, env = do(t, r, http.MethodGet, "/api/sessions/chat-42/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	var state models.ConversationState
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Equal(t, "Orange County", *state.County)
	assert.True(t, state.IsComplete)

	w, env = do(t, r, http.MethodGet, "/api/sessions/chat-42/lawyers", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.Count)
	assert.Equal(t, "Orange", dir.lastFilter.County)

	var lawyers []models.LawyerRecord
	require.NoError(t, json.Unmarshal(env.Data, &lawyers))
	assert.Equal(t, "Dana Cho", lawyers[0].Name)

	w, _ = do(t, r, http.MethodDelete, "/api/sessions/chat-42", "")
	require.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, r, http.MethodGet, "/api/sessions/chat-42/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cleared models.ConversationState
	require.NoError(t, json.Unmarshal(env.Data, &cleared))
	assert.Equal(t, models.ConversationState{}, cleared)
}

func TestProcessMessage_RequiresMessage(t *testing.T) {
	r := newTestRouter(t, &stubDirectory{})

	w, env := do(t, r, http.MethodPost, "/api/sessions/chat-1/messages", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
}

func TestCreateSession_GeneratesKey(t *testing.T) {
	r := newTestRouter(t, &stubDirectory{})

	w, env := do(t, r, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var session models.ChatSession
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.NotEmpty(t, session.SessionKey)
}

func TestSearchLawyers(t *testing.T) {
	dir := &stubDirectory{}
	r := newTestRouter(t, dir)

	w, env := do(t, r, http.MethodPost, "/api/lawyers/search", `{"state":"Nevada","caseType":"car accident"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, 0, env.Count)
	require.NotEmpty(t, dir.filters)
	assert.Equal(t, models.LawyerFilter{State: "Nevada", Type: "Personal Injury", Limit: service.DirectPageSize}, dir.filters[0])

	w, _ = do(t, r, http.MethodPost, "/api/lawyers/search", `{"county":"Clark County"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetLawyer(t *testing.T) {
	id := uuid.New()
	dir := &stubDirectory{lawyers: map[uuid.UUID]models.LawyerRecord{
		id: {ID: id, State: "Nevada", County: "Clark County", LawFirm: "Acme Law Firm", Type: "Criminal"},
	}}
	r := newTestRouter(t, dir)

	w, env := do(t, r, http.MethodGet, "/api/lawyers/"+id.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	var got models.LawyerRecord
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "Criminal Defense Specialist in Clark County, Nevada", got.Specialty)

	w, env = do(t, r, http.MethodGet, "/api/lawyers/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	w, _ = do(t, r, http.MethodGet, "/api/lawyers/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, &stubDirectory{})

	w, _ := do(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
