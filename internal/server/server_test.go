package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/promptcanvas/internal/classifier"
	"github.com/alexanderramin/promptcanvas/internal/llm"
	"github.com/alexanderramin/promptcanvas/internal/personalization"
	"github.com/alexanderramin/promptcanvas/internal/plan"
	"github.com/alexanderramin/promptcanvas/internal/recipe"
	"github.com/alexanderramin/promptcanvas/internal/session"
	"github.com/alexanderramin/promptcanvas/internal/signal"
)

type offlineClient struct{}

func (offlineClient) Generate(context.Context, llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return nil, llm.ErrNotConfigured
}

func (offlineClient) Configured() bool { return false }

func newTestRouter(t *testing.T) (*gin.Engine, *session.Store) {
	t.Helper()

	client := offlineClient{}
	registry := recipe.NewRegistry()
	store := session.NewStore(session.Config{SweepInterval: time.Hour}, nil)
	t.Cleanup(store.Close)

	h := &Handlers{
		Resolver:   signal.NewResolver(signal.NewFetcher(client, nil), 0, nil),
		Classifier: classifier.New(client, registry, nil),
		Engine:     personalization.NewEngine(registry, nil),
		Generator:  plan.NewGenerator(client, nil),
		Sessions:   store,
		Registry:   registry,
		Log:        nil,
	}
	return NewRouter(Options{}, h), store
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListRecipes(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/recipes", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Recipes []recipe.CanvasRecipe `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Recipes, 4)
}

func TestClassify(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/canvas/classify",
		gin.H{"prompt": "We need HIPAA compliance for our clinic"})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Decision classifier.Decision `json:"decision"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, recipe.GovernedRollout, resp.Decision.RecipeID)
	assert.Equal(t, classifier.SourceHeuristics, resp.Decision.Source)
}

func TestClassify_HintsSteerDecision(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/canvas/classify", gin.H{
		"prompt": "set up a workspace",
		"hints":  []string{"we are an agency serving clients"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Decision classifier.Decision `json:"decision"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, recipe.ClientPortal, resp.Decision.RecipeID)
}

func TestClassify_MissingPrompt(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/canvas/classify", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/canvas/classify", gin.H{"prompt": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/sessions",
		gin.H{"prompt": "team of 12 on slack"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Session session.Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Session.ID
	require.NotEmpty(t, id)

	w = doJSON(t, router, http.MethodPatch, "/api/sessions/"+id, gin.H{
		"values":       gin.H{"workspace_name": "Acme"},
		"completeStep": recipe.StepWorkspaceBasics,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Session session.Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Acme", got.Session.Values["workspace_name"])
	assert.Equal(t, []string{recipe.StepWorkspaceBasics}, got.Session.CompletedSteps)

	w = doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/events",
		gin.H{"type": "field_changed", "data": gin.H{"field": "workspace_name"}})
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSession_UnknownID(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/sessions/nope/events",
		gin.H{"type": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateSession_RejectsUnknownRecipe(t *testing.T) {
	router, store := newTestRouter(t)
	sess := store.Create("")

	w := doJSON(t, router, http.MethodPatch, "/api/sessions/"+sess.ID,
		gin.H{"recipeId": "R42"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlanNext_FullPipeline(t *testing.T) {
	router, store := newTestRouter(t)
	sess := store.Create("Our team of 12 uses Slack and Jira every day")

	w := doJSON(t, router, http.MethodPost, "/api/canvas/plan",
		gin.H{"sessionId": sess.ID})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		SessionID string                  `json:"sessionId"`
		Decision  *classifier.Decision    `json:"decision"`
		Knobs     *personalization.Result `json:"knobs"`
		Plan      *plan.FormPlan          `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.NotNil(t, resp.Decision)
	assert.Equal(t, recipe.TeamWorkspace, resp.Decision.RecipeID)

	require.NotNil(t, resp.Knobs)
	assert.False(t, resp.Knobs.Fallback.Applied)

	require.NotNil(t, resp.Plan)
	assert.Equal(t, plan.KindRenderStep, resp.Plan.Kind)
	assert.Equal(t, plan.SourceRules, resp.Plan.Source, "offline client falls back to rules")
	assert.Equal(t, recipe.StepWorkspaceBasics, resp.Plan.Step.ID)

	// the chosen recipe sticks to the session
	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, string(recipe.TeamWorkspace), got.RecipeID)
}

func TestPlanNext_ExplicitRecipe(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/canvas/plan",
		gin.H{"prompt": "just my notes", "recipeId": "R3"})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Decision *classifier.Decision `json:"decision"`
		Knobs    *personalization.Result
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.Decision, "no classification when the recipe is given")
	assert.Equal(t, recipe.ClientPortal, resp.Knobs.RecipeID)
}

func TestPlanNext_BadRequests(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/canvas/plan", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "no prompt and no session")

	w = doJSON(t, router, http.MethodPost, "/api/canvas/plan",
		gin.H{"prompt": "hello", "recipeId": "R42"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/canvas/plan",
		gin.H{"prompt": "hello", "sessionId": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
