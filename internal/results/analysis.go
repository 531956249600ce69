package results

// Analysis is a career-roadmap analysis as produced by the roadmap endpoint.
type Analysis struct {
	OverallScore        float64             `json:"overallScore"`
	Summary             string              `json:"summary"`
	CurrentRoleAnalysis CurrentRoleAnalysis `json:"currentRoleAnalysis"`
	CareerPath          CareerPath          `json:"careerPath"`
	SkillsAnalysis      SkillsAnalysis      `json:"skillsAnalysis"`
	Recommendations     Recommendations     `json:"recommendations"`
	Certifications      []Certification     `json:"certifications"`
	Networking          Networking          `json:"networking"`
	Resources           Resources           `json:"resources"`
}

type CurrentRoleAnalysis struct {
	Strengths    []string `json:"strengths"`
	SkillGaps    []string `json:"skillGaps"`
	MarketDemand float64  `json:"marketDemand"`
}

type CareerPath struct {
	Phases []Phase `json:"phases"`
}

type Phase struct {
	Title                string   `json:"title"`
	Timeframe            string   `json:"timeframe"`
	Description          string   `json:"description"`
	KeyMilestones        []string `json:"keyMilestones"`
	SkillsToAcquire      []string `json:"skillsToAcquire"`
	EstimatedSalaryRange string   `json:"estimatedSalaryRange"`
}

type SkillsAnalysis struct {
	TechnicalSkills []TechnicalSkill `json:"technicalSkills"`
	SoftSkills      []SoftSkill      `json:"softSkills"`
}

type TechnicalSkill struct {
	Skill            string  `json:"skill"`
	Importance       float64 `json:"importance"`
	CurrentLevel     string  `json:"currentLevel"`
	TargetLevel      string  `json:"targetLevel"`
	LearningPriority string  `json:"learningPriority"`
}

type SoftSkill struct {
	Skill       string  `json:"skill"`
	Importance  float64 `json:"importance"`
	Description string  `json:"description"`
}

type Recommendations struct {
	Immediate []string `json:"immediate"`
	ShortTerm []string `json:"shortTerm"`
	LongTerm  []string `json:"longTerm"`
}

type Certification struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	Priority      string `json:"priority"`
	EstimatedTime string `json:"estimatedTime"`
	Description   string `json:"description"`
}

type Networking struct {
	Communities []string `json:"communities"`
	Events      []string `json:"events"`
	Platforms   []string `json:"platforms"`
}

type Resources struct {
	Courses  []Course `json:"courses"`
	Books    []string `json:"books"`
	Podcasts []string `json:"podcasts"`
	Blogs    []string `json:"blogs"`
}

type Course struct {
	Title    string `json:"title"`
	Provider string `json:"provider"`
	Type     string `json:"type"`
	Duration string `json:"duration"`
}
