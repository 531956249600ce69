package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDoer struct {
	responses map[string]fakeResponse
	requests  []*fhttp.Request
	bodies    []string
	err       error
}

type fakeResponse struct {
	status int
	body   string
}

func (f *fakeDoer) Do(req *fhttp.Request) (*fhttp.Response, error) {
	f.requests = append(f.requests, req)
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		f.bodies = append(f.bodies, string(data))
	}
	if f.err != nil {
		return nil, f.err
	}
	resp, ok := f.responses[req.Method+" "+req.URL.Path]
	if !ok {
		resp = fakeResponse{status: 404, body: `{"error":"Not found"}`}
	}
	return &fhttp.Response{
		StatusCode: resp.status,
		Body:       io.NopCloser(strings.NewReader(resp.body)),
		Header:     fhttp.Header{},
		Request:    req,
	}, nil
}

func newTestClient(t *testing.T, doer Doer) *Client {
	t.Helper()
	c, err := New(doer, "https://api.example.com/", time.Second, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestNewValidatesInput(t *testing.T) {
	_, err := New(nil, "https://api.example.com", 0, zerolog.Nop())
	assert.Error(t, err)
	_, err = New(&fakeDoer{}, "not a url", 0, zerolog.Nop())
	assert.Error(t, err)
}

func TestUserStats(t *testing.T) {
	doer := &fakeDoer{responses: map[string]fakeResponse{
		"GET " + PathUserStats: {200, `{
			"stats": {"dailyStreak": 4, "weeklyGoal": 5, "bestInterviewScore": 82.5, "improvementRate": "+12%", "lastActivityDate": null},
			"recentSessions": [{"id": "s1", "type": "technical", "score": 70, "completedAt": "2024-05-01"}]
		}`},
	}}
	stats, err := newTestClient(t, doer).UserStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Stats.DailyStreak)
	assert.Equal(t, 5, stats.Stats.WeeklyGoal)
	assert.Equal(t, 82.5, stats.Stats.BestInterviewScore)
	assert.Equal(t, "+12%", stats.Stats.ImprovementRate)
	assert.Empty(t, stats.Stats.LastActivityDate)
	require.Len(t, stats.RecentSessions, 1)

	req := doer.requests[0]
	assert.Equal(t, "https://api.example.com/api/user-stats", req.URL.String())
	_, hasDeadline := req.Context().Deadline()
	assert.True(t, hasDeadline)
}

func TestRecentActivity(t *testing.T) {
	doer := &fakeDoer{responses: map[string]fakeResponse{
		"GET " + PathRecentInterviews: {200, `{"recentSessions":[{"id":"a"},{"id":"b"}]}`},
		"GET " + PathRecentAnalyses:   {200, `{"analyses":[{"id":"r1","score":91}]}`},
	}}
	c := newTestClient(t, doer)

	sessions, err := c.RecentInterviews(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	analyses, err := c.RecentAnalyses(context.Background())
	require.NoError(t, err)
	require.Len(t, analyses, 1)
	assert.Equal(t, 91.0, analyses[0].Score)
}

func TestNon2xxIsUnavailable(t *testing.T) {
	doer := &fakeDoer{responses: map[string]fakeResponse{
		"GET " + PathSubscriptionStatus: {500, `{"error":"Internal server error"}`},
	}}
	_, err := newTestClient(t, doer).SubscriptionStatus(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "Internal server error")
	assert.Len(t, doer.requests, 1, "no retries")
}

func TestTransportErrorIsUnavailable(t *testing.T) {
	doer := &fakeDoer{err: context.DeadlineExceeded}
	_, err := newTestClient(t, doer).QuestionnaireStatus(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestSubscriptionAndQuestionnaireStatus(t *testing.T) {
	doer := &fakeDoer{responses: map[string]fakeResponse{
		"GET " + PathSubscriptionStatus: {200, `{"hasActiveSubscription":true,"subscription":{"plan":"annual","status":"trialing","trialDaysRemaining":2,"cancelAtPeriodEnd":false}}`},
		"GET " + PathQuestionnaireStatus: {200, `{"questionnaireCompleted":true}`},
	}}
	c := newTestClient(t, doer)

	sub, err := c.SubscriptionStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, sub.HasActiveSubscription)
	require.NotNil(t, sub.Subscription)
	assert.Equal(t, "trialing", sub.Subscription.Status)
	assert.Equal(t, 2, sub.Subscription.TrialDaysRemaining)

	status, err := c.QuestionnaireStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.QuestionnaireCompleted)
}

func TestSubmitQuestionnaire(t *testing.T) {
	doer := &fakeDoer{responses: map[string]fakeResponse{
		"POST " + PathQuestionnaire: {200, `{"success":true}`},
	}}
	sub := QuestionnaireSubmission{
		Goal:          "land-internship",
		InterviewType: []string{"technical", "behavioral"},
		Experience:    "student",
		Timeline:      "1-3-months",
		WeakestArea:   []string{"system-design"},
	}
	res, err := newTestClient(t, doer).SubmitQuestionnaire(context.Background(), sub)
	require.NoError(t, err)
	assert.True(t, res.Success)

	require.Len(t, doer.bodies, 1)
	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(doer.bodies[0]), &sent))
	assert.Equal(t, "land-internship", sent["goal"])
	assert.Equal(t, []any{"technical", "behavioral"}, sent["interviewType"])
	assert.Equal(t, "application/json", doer.requests[0].Header.Get("Content-Type"))
}
