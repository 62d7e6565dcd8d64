package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alexanderramin/promptcanvas/internal/classifier"
	"github.com/alexanderramin/promptcanvas/internal/personalization"
	"github.com/alexanderramin/promptcanvas/internal/plan"
	"github.com/alexanderramin/promptcanvas/internal/recipe"
	"github.com/alexanderramin/promptcanvas/internal/session"
	"github.com/alexanderramin/promptcanvas/internal/signal"
)

const maxPromptLen = 4000

func (h *Handlers) listRecipes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"recipes": h.Registry.List()})
}

type classifyRequest struct {
	Prompt string   `json:"prompt" binding:"required"`
	Hints  []string `json:"hints"`
}

func (h *Handlers) classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "prompt is required")
		return
	}
	prompt, ok := cleanPrompt(req.Prompt)
	if !ok {
		badRequest(c, "prompt is empty or too long")
		return
	}

	decision := h.Classifier.Classify(c.Request.Context(), withHints(prompt, req.Hints))
	c.JSON(http.StatusOK, gin.H{"decision": decision})
}

// withHints folds caller-supplied hint phrases into the text the
// classifier sees. Hints never grow the prompt past the length cap.
func withHints(prompt string, hints []string) string {
	for _, hint := range hints {
		hint = strings.TrimSpace(hint)
		if hint == "" {
			continue
		}
		if len(prompt)+len(hint)+1 > maxPromptLen {
			break
		}
		prompt += " " + hint
	}
	return prompt
}

type planRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"sessionId"`
	RecipeID  string `json:"recipeId"`
}

type planResponse struct {
	SessionID string                  `json:"sessionId,omitempty"`
	Decision  *classifier.Decision    `json:"decision,omitempty"`
	Signals   signal.Signals          `json:"signals"`
	Knobs     *personalization.Result `json:"knobs"`
	Plan      *plan.FormPlan          `json:"plan"`
}

// planNext runs the full decision pipeline: load or skip the session,
// pick a recipe, resolve signals, score knobs, and plan the next step,
// falling back to the deterministic planner when generation yields
// nothing.
func (h *Handlers) planNext(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	var sess *session.Session
	if req.SessionID != "" {
		var err error
		sess, err = h.Sessions.Get(req.SessionID)
		if err != nil {
			notFound(c, "session not found")
			return
		}
	}

	prompt := req.Prompt
	if prompt == "" && sess != nil {
		prompt = sess.Prompt
	}
	prompt, ok := cleanPrompt(prompt)
	if !ok {
		badRequest(c, "prompt is empty or too long")
		return
	}

	var decision *classifier.Decision
	recipeID := recipe.ID(req.RecipeID)
	if recipeID == "" && sess != nil && sess.RecipeID != "" {
		recipeID = recipe.ID(sess.RecipeID)
	}
	if recipeID == "" {
		d := h.Classifier.Classify(c.Request.Context(), prompt)
		decision = &d
		recipeID = d.RecipeID
	}

	rec, err := h.Registry.Get(recipeID)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	signals := h.Resolver.Resolve(c.Request.Context(), prompt)

	knobs, err := h.Engine.Score(rec.ID, signals)
	if err != nil {
		h.Log.Error("scoring failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, planResponse{
			Signals: signals,
			Plan:    plan.ErrorPlan("We could not personalize this canvas. Try again."),
		})
		return
	}

	formPlan := h.Generator.Generate(c.Request.Context(), plan.Request{
		Prompt:    prompt,
		Recipe:    rec,
		Session:   sess,
		Signals:   signals,
		Overrides: knobs.Overrides,
	})
	if formPlan == nil {
		formPlan = plan.NextPlan(rec, sess)
	}

	resp := planResponse{
		Decision: decision,
		Signals:  signals,
		Knobs:    knobs,
		Plan:     formPlan,
	}
	if sess != nil {
		resp.SessionID = sess.ID
		if sess.RecipeID != string(rec.ID) {
			if _, err := h.Sessions.Update(sess.ID, nil, "", string(rec.ID)); err != nil {
				h.Log.Warn("recording recipe on session failed", zap.Error(err))
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}

type createSessionRequest struct {
	Prompt string `json:"prompt"`
}

func (h *Handlers) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if len(req.Prompt) > maxPromptLen {
		badRequest(c, "prompt too long")
		return
	}

	sess := h.Sessions.Create(strings.TrimSpace(req.Prompt))
	c.JSON(http.StatusCreated, gin.H{"session": sess})
}

func (h *Handlers) getSession(c *gin.Context) {
	sess, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		notFound(c, "session not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

type updateSessionRequest struct {
	Values       map[string]any `json:"values"`
	CompleteStep string         `json:"completeStep"`
	RecipeID     string         `json:"recipeId"`
}

func (h *Handlers) updateSession(c *gin.Context) {
	var req updateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.RecipeID != "" {
		if _, err := h.Registry.Get(recipe.ID(req.RecipeID)); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	sess, err := h.Sessions.Update(c.Param("id"), req.Values, req.CompleteStep, req.RecipeID)
	if err != nil {
		notFound(c, "session not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

func (h *Handlers) deleteSession(c *gin.Context) {
	h.Sessions.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

type appendEventRequest struct {
	Type string         `json:"type" binding:"required"`
	Data map[string]any `json:"data"`
}

func (h *Handlers) appendEvent(c *gin.Context) {
	var req appendEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "event type is required")
		return
	}

	err := h.Sessions.AppendEvent(c.Param("id"), session.Event{Type: req.Type, Data: req.Data})
	if errors.Is(err, session.ErrNotFound) {
		notFound(c, "session not found")
		return
	}
	c.Status(http.StatusAccepted)
}

func cleanPrompt(prompt string) (string, bool) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" || len(prompt) > maxPromptLen {
		return "", false
	}
	return prompt, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"error": msg})
}
