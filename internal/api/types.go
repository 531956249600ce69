package api

// UserStats is the /api/user-stats payload. Zero values stand for absent
// fields.
type UserStats struct {
	Stats          Stats           `json:"stats"`
	RecentSessions []RecentSession `json:"recentSessions"`
}

type Stats struct {
	DailyStreak          int     `json:"dailyStreak"`
	WeeklyGoal           int     `json:"weeklyGoal"`
	WeeklyProgress       int     `json:"weeklyProgress"`
	BestInterviewScore   float64 `json:"bestInterviewScore"`
	BestResumeScore      float64 `json:"bestResumeScore"`
	BestTechnicalScore   float64 `json:"bestTechnicalScore"`
	BestBehavioralScore  float64 `json:"bestBehavioralScore"`
	AverageScore         float64 `json:"averageScore"`
	TotalInterviews      int     `json:"totalInterviews"`
	BehavioralInterviews int     `json:"behavioralInterviews"`
	TechnicalInterviews  int     `json:"technicalInterviews"`
	ResumeChecks         int     `json:"resumeChecks"`
	AverageFillerWords   float64 `json:"averageFillerWords"`
	BestFillerWordCount  int     `json:"bestFillerWordCount"`
	CurrentStreak        int     `json:"currentStreak"`
	LongestStreak        int     `json:"longestStreak"`
	TotalActiveDays      int     `json:"totalActiveDays"`
	LastActivityDate     string  `json:"lastActivityDate"`
	TotalXP              int     `json:"totalXP"`
	Level                int     `json:"level"`
	HasActivityToday     bool    `json:"hasActivityToday"`
	// ImprovementRate is either a preformatted string or a number.
	ImprovementRate any `json:"improvementRate"`
}

type RecentSession struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Score       float64 `json:"score"`
	CompletedAt string  `json:"completedAt"`
}

type RecentAnalysis struct {
	ID        string  `json:"id"`
	Score     float64 `json:"score"`
	CreatedAt string  `json:"createdAt"`
}

type recentSessionsPayload struct {
	RecentSessions []RecentSession `json:"recentSessions"`
}

type recentAnalysesPayload struct {
	Analyses []RecentAnalysis `json:"analyses"`
}

type SubscriptionStatus struct {
	HasActiveSubscription bool          `json:"hasActiveSubscription"`
	Subscription          *Subscription `json:"subscription,omitempty"`
}

type Subscription struct {
	Plan               string `json:"plan"`
	Status             string `json:"status"`
	TrialDaysRemaining int    `json:"trialDaysRemaining"`
	CurrentPeriodEnd   string `json:"currentPeriodEnd"`
	CancelAtPeriodEnd  bool   `json:"cancelAtPeriodEnd"`
}

type QuestionnaireStatus struct {
	QuestionnaireCompleted bool `json:"questionnaireCompleted"`
}

// QuestionnaireSubmission is the body of POST /api/user/questionnaire. Every
// field is required by the server.
type QuestionnaireSubmission struct {
	Goal          string   `json:"goal"`
	InterviewType []string `json:"interviewType"`
	Experience    string   `json:"experience"`
	Timeline      string   `json:"timeline"`
	WeakestArea   []string `json:"weakestArea"`
}

type SubmitResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
