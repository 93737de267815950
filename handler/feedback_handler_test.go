package handler

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/ragdocs-be/repository"
	"github.com/tieubaoca/ragdocs-be/types"
)

func newFeedbackRouter(t *testing.T) (*gin.Engine, repository.FeedbackRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	feedback, err := repository.NewFeedbackRepo(filepath.Join(t.TempDir(), "feedback.json"))
	require.NoError(t, err)

	h := NewFeedbackHandler(feedback)
	router := gin.New()
	router.POST("/feedback", h.SubmitFeedback)
	return router, feedback
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitFeedback(t *testing.T) {
	router, feedback := newFeedbackRouter(t)

	w := postJSON(router, "/feedback", `{"query":"q","answer":"a","feedback":"negative"}`)
	require.Equal(t, http.StatusOK, w.Code)

	negatives, err := feedback.RecentNegative(10)
	require.NoError(t, err)
	require.Len(t, negatives, 1)
	assert.Equal(t, "q", negatives[0].Query)
	assert.Equal(t, types.FeedbackNegative, negatives[0].Feedback)
}

func TestSubmitFeedbackRejectsUnknownLabel(t *testing.T) {
	router, _ := newFeedbackRouter(t)

	w := postJSON(router, "/feedback", `{"query":"q","answer":"a","feedback":"meh"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitFeedbackRejectsBadBody(t *testing.T) {
	router, _ := newFeedbackRouter(t)

	w := postJSON(router, "/feedback", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
