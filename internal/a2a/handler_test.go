package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/agent-site-provisioner/internal/config"
	"github.com/BerylCAtieno/agent-site-provisioner/internal/models"
	"github.com/BerylCAtieno/agent-site-provisioner/internal/provisioner"
)

const janeJSON = `{"agent_name":"Jane Smith","brokerage":"Lone Star Realty","phone":"555-0100","email":"jane@example.com","city_area":"The Woodlands"}`

type fakeGenerator struct {
	record *models.WebsiteRecord
	got    []models.AgentProfile
}

func (f *fakeGenerator) GenerateWebsite(ctx context.Context, profile models.AgentProfile) *models.WebsiteRecord {
	f.got = append(f.got, profile)
	return f.record
}

func newRouter(t *testing.T, gen WebsiteGenerator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()

	h := NewA2AHandler(gen, 5*time.Second, logger)
	router := gin.New()
	router.Use(RequestLoggingMiddleware(logger))
	router.GET("/.well-known/agent.json", h.ServeAgentCard)
	router.POST("/a2a/provisioner", h.HandleProvisioner)
	router.POST("/api/websites", h.HandleCreateWebsite)
	return router
}

func realGenerator() WebsiteGenerator {
	logger, _ := test.NewNullLogger()
	cfg := config.Defaults()
	return provisioner.NewFromConfig(&cfg, logger)
}

func post(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func rpcBody(t *testing.T, method string, parts []map[string]any) string {
	t.Helper()
	body := map[string]any{
		"jsonrpc": "2.0",
		"id":      "req-1",
		"method":  method,
		"params": map[string]any{
			"message": map[string]any{
				"kind":  "message",
				"role":  RoleUser,
				"parts": parts,
			},
		},
	}
	data, err := json.Marshal(body)
	require.NoError(t, err)
	return string(data)
}

type rpcResult struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      any           `json:"id"`
	Result  *TaskResult   `json:"result"`
	Error   *JSONRPCError `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) rpcResult {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code)
	var resp rpcResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestServeAgentCard(t *testing.T) {
	router := newRouter(t, &fakeGenerator{})

	req := httptest.NewRequest(http.MethodGet, "/.well-known/agent.json", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var card map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &card))
	for _, field := range []string{"name", "description", "version", "capabilities", "endpoints"} {
		assert.Contains(t, card, field)
	}
}

func TestHandleProvisionerDataPart(t *testing.T) {
	router := newRouter(t, realGenerator())

	body := rpcBody(t, "message/send", []map[string]any{
		{"kind": PartData, "data": json.RawMessage(janeJSON)},
	})
	resp := decode(t, post(t, router, "/a2a/provisioner", body))

	require.Nil(t, resp.Error)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "req-1", resp.ID)
	assert.Equal(t, StateCompleted, resp.Result.Status.State)
	assert.NotEmpty(t, resp.Result.ID)

	require.Len(t, resp.Result.Artifacts, 1)
	parts := resp.Result.Artifacts[0].Parts
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0].Text, "https://janesmithsmith.yourdomain.com")

	var record models.WebsiteRecord
	require.NoError(t, json.Unmarshal(parts[1].Data, &record))
	assert.Equal(t, "https://janesmithsmith.yourdomain.com", record.WebsiteURL)
	assert.Equal(t, models.StatusCreated, record.Status)
	assert.NotEmpty(t, record.SiteIdentifier)
}

func TestHandleProvisionerTextPart(t *testing.T) {
	gen := &fakeGenerator{record: &models.WebsiteRecord{WebsiteURL: "https://x.example.com", SiteIdentifier: "s1", Status: models.StatusCreated}}
	router := newRouter(t, gen)

	body := rpcBody(t, "agent/task", []map[string]any{
		{"kind": PartText, "text": "<p>" + janeJSON + "</p>"},
	})
	resp := decode(t, post(t, router, "/a2a/provisioner", body))

	require.NotNil(t, resp.Result)
	assert.Equal(t, StateCompleted, resp.Result.Status.State)
	require.Len(t, gen.got, 1)
	assert.Equal(t, "Jane Smith", gen.got[0].AgentName)
	assert.Equal(t, "The Woodlands", gen.got[0].CityArea)
	assert.Nil(t, gen.got[0].Bio)
}

func TestHandleProvisionerHistoryPart(t *testing.T) {
	gen := &fakeGenerator{record: &models.WebsiteRecord{WebsiteURL: "https://x.example.com", SiteIdentifier: "s1", Status: models.StatusCreated}}
	router := newRouter(t, gen)

	history := []map[string]any{
		{"kind": PartText, "text": `{"agent_name":"Old Agent","brokerage":"b","phone":"1","email":"e","city_area":"c"}`},
		{"kind": PartText, "text": janeJSON},
		{"kind": PartText, "text": "Generating your site..."},
	}
	body := rpcBody(t, "message/send", []map[string]any{
		{"kind": PartData, "data": history},
	})
	resp := decode(t, post(t, router, "/a2a/provisioner", body))

	require.NotNil(t, resp.Result)
	require.Len(t, gen.got, 1)
	assert.Equal(t, "Jane Smith", gen.got[0].AgentName)
}

func TestHandleProvisionerNoProfile(t *testing.T) {
	gen := &fakeGenerator{}
	router := newRouter(t, gen)

	body := rpcBody(t, "message/send", []map[string]any{
		{"kind": PartText, "text": "build me a website"},
	})
	resp := decode(t, post(t, router, "/a2a/provisioner", body))

	require.NotNil(t, resp.Result)
	assert.Equal(t, StateInputRequired, resp.Result.Status.State)
	assert.Empty(t, resp.Result.Artifacts)
	assert.Empty(t, gen.got)
}

func TestHandleProvisionerGenerationFails(t *testing.T) {
	router := newRouter(t, realGenerator())

	incomplete := `{"agent_name":"Jane Smith","brokerage":"Lone Star Realty"}`
	body := rpcBody(t, "message/send", []map[string]any{
		{"kind": PartData, "data": json.RawMessage(incomplete)},
	})
	resp := decode(t, post(t, router, "/a2a/provisioner", body))

	require.NotNil(t, resp.Result)
	assert.Equal(t, StateFailed, resp.Result.Status.State)
	assert.Empty(t, resp.Result.Artifacts)
	require.NotNil(t, resp.Result.Status.Message)
	assert.Equal(t, msgGenerationFailed, resp.Result.Status.Message.Parts[0].Text)
}

func TestHandleProvisionerDirectMessage(t *testing.T) {
	gen := &fakeGenerator{record: &models.WebsiteRecord{WebsiteURL: "https://x.example.com", SiteIdentifier: "s1", Status: models.StatusCreated}}
	router := newRouter(t, gen)

	body := `{"message":{"kind":"message","role":"user","parts":[{"kind":"data","data":` + janeJSON + `}]}}`
	resp := decode(t, post(t, router, "/a2a/provisioner", body))

	require.NotNil(t, resp.Result)
	assert.Equal(t, "direct-message", resp.ID)
	assert.Equal(t, StateCompleted, resp.Result.Status.State)
}

func TestHandleProvisionerRPCErrors(t *testing.T) {
	router := newRouter(t, &fakeGenerator{})

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{not json`, CodeParseError},
		{"array body", `[1,2]`, CodeInvalidRequest},
		{"object without message", `{"foo":"bar"}`, CodeInvalidRequest},
		{"scalar body", `"hello"`, CodeInvalidRequest},
		{"wrong version", `{"jsonrpc":"1.0","id":"1","method":"message/send","params":{}}`, CodeInvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","id":"1","method":"tasks/cancel","params":{}}`, CodeMethodNotFound},
		{"bad params", `{"jsonrpc":"2.0","id":"1","method":"message/send","params":"nope"}`, CodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := decode(t, post(t, router, "/a2a/provisioner", tt.body))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Nil(t, resp.Result)
		})
	}
}

func TestHandleCreateWebsite(t *testing.T) {
	router := newRouter(t, realGenerator())

	w := post(t, router, "/api/websites", janeJSON)
	require.Equal(t, http.StatusCreated, w.Code)

	var record models.WebsiteRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, "https://janesmithsmith.yourdomain.com", record.WebsiteURL)
	assert.Equal(t, models.StatusCreated, record.Status)
}

func TestHandleCreateWebsiteFailures(t *testing.T) {
	router := newRouter(t, realGenerator())

	w := post(t, router, "/api/websites", `{"agent_name":"   ","brokerage":"b","phone":"1","email":"e","city_area":"c"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"website generation failed"}`, w.Body.String())

	w = post(t, router, "/api/websites", `[1,2`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
