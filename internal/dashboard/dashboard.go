// Package dashboard turns the user-stats payload into the view the dashboard
// prints.
package dashboard

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jimezsa/prepsite/internal/api"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWeeklyGoal      = 3
	DefaultLevel           = 1
	DefaultImprovementRate = "N/A"
)

// Progress is the flattened dashboard view-model.
type Progress struct {
	DailyStreak          int                 `json:"dailyStreak"`
	WeeklyGoal           int                 `json:"weeklyGoal"`
	WeeklyProgress       int                 `json:"weeklyProgress"`
	BestScore            float64             `json:"bestScore"`
	AverageScore         float64             `json:"averageScore"`
	TotalInterviews      int                 `json:"totalInterviews"`
	BehavioralInterviews int                 `json:"behavioralInterviews"`
	TechnicalInterviews  int                 `json:"technicalInterviews"`
	ResumeChecks         int                 `json:"resumeChecks"`
	TotalSessions        int                 `json:"totalSessions"`
	RecentSessions       []api.RecentSession `json:"recentSessions"`
	AverageFillerWords   float64             `json:"averageFillerWords"`
	BestFillerWordCount  int                 `json:"bestFillerWordCount"`
	CurrentStreak        int                 `json:"currentStreak"`
	LongestStreak        int                 `json:"longestStreak"`
	TotalActiveDays      int                 `json:"totalActiveDays"`
	LastActivityDate     *string             `json:"lastActivityDate"`
	TotalXP              int                 `json:"totalXP"`
	Level                int                 `json:"level"`
	HasActivityToday     bool                `json:"hasActivityToday"`
	QuickStats           QuickStats          `json:"quickStats"`
}

type QuickStats struct {
	PracticeStreak  int    `json:"practiceStreak"`
	WeeklyProgress  string `json:"weeklyProgress"`
	ImprovementRate string `json:"improvementRate"`
	ActiveDays      int    `json:"activeDays"`
}

// View is everything the dashboard shows. Progress is nil when the stats
// endpoint was unavailable.
type View struct {
	Progress       *Progress            `json:"progress"`
	RecentSessions []api.RecentSession  `json:"recentSessions"`
	RecentAnalyses []api.RecentAnalysis `json:"recentAnalyses"`
}

// Map flattens a stats payload. Zero fields fall back to 0 except weekly
// goal, level and improvement rate.
func Map(payload api.UserStats) Progress {
	s := payload.Stats
	goal := orInt(s.WeeklyGoal, DefaultWeeklyGoal)

	var lastActivity *string
	if strings.TrimSpace(s.LastActivityDate) != "" {
		value := s.LastActivityDate
		lastActivity = &value
	}

	sessions := payload.RecentSessions
	if sessions == nil {
		sessions = []api.RecentSession{}
	}

	return Progress{
		DailyStreak:          s.DailyStreak,
		WeeklyGoal:           goal,
		WeeklyProgress:       s.WeeklyProgress,
		BestScore:            math.Max(math.Max(s.BestInterviewScore, s.BestResumeScore), math.Max(s.BestTechnicalScore, s.BestBehavioralScore)),
		AverageScore:         s.AverageScore,
		TotalInterviews:      s.TotalInterviews,
		BehavioralInterviews: s.BehavioralInterviews,
		TechnicalInterviews:  s.TechnicalInterviews,
		ResumeChecks:         s.ResumeChecks,
		TotalSessions:        s.TotalInterviews + s.ResumeChecks,
		RecentSessions:       sessions,
		AverageFillerWords:   s.AverageFillerWords,
		BestFillerWordCount:  s.BestFillerWordCount,
		CurrentStreak:        s.CurrentStreak,
		LongestStreak:        s.LongestStreak,
		TotalActiveDays:      s.TotalActiveDays,
		LastActivityDate:     lastActivity,
		TotalXP:              s.TotalXP,
		Level:                orInt(s.Level, DefaultLevel),
		HasActivityToday:     s.HasActivityToday,
		QuickStats: QuickStats{
			PracticeStreak:  s.DailyStreak,
			WeeklyProgress:  fmt.Sprintf("%d/%d", s.WeeklyProgress, goal),
			ImprovementRate: improvementRate(s.ImprovementRate),
			ActiveDays:      s.TotalActiveDays,
		},
	}
}

// Source is the subset of the API client the dashboard needs.
type Source interface {
	UserStats(ctx context.Context) (api.UserStats, error)
	RecentInterviews(ctx context.Context) ([]api.RecentSession, error)
	RecentAnalyses(ctx context.Context) ([]api.RecentAnalysis, error)
}

// Load fetches the three dashboard sources concurrently. A failing source
// leaves its part of the view empty. Only cancellation of ctx is returned.
func Load(ctx context.Context, src Source, logger zerolog.Logger) (View, error) {
	view := View{
		RecentSessions: []api.RecentSession{},
		RecentAnalyses: []api.RecentAnalysis{},
	}

	var g errgroup.Group
	g.Go(func() error {
		stats, err := src.UserStats(ctx)
		if err != nil {
			return unavailable(ctx, logger, api.PathUserStats, err)
		}
		progress := Map(stats)
		view.Progress = &progress
		return nil
	})
	g.Go(func() error {
		sessions, err := src.RecentInterviews(ctx)
		if err != nil {
			return unavailable(ctx, logger, api.PathRecentInterviews, err)
		}
		if sessions != nil {
			view.RecentSessions = sessions
		}
		return nil
	})
	g.Go(func() error {
		analyses, err := src.RecentAnalyses(ctx)
		if err != nil {
			return unavailable(ctx, logger, api.PathRecentAnalyses, err)
		}
		if analyses != nil {
			view.RecentAnalyses = analyses
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return View{}, err
	}
	return view, nil
}

func unavailable(ctx context.Context, logger zerolog.Logger, path string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	logger.Warn().Err(err).Str("source", path).Msg("dashboard source unavailable")
	return nil
}

func orInt(value int, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}

func improvementRate(value any) string {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			return v
		}
	case float64:
		if v != 0 {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return DefaultImprovementRate
}
