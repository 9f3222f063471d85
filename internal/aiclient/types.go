package aiclient

import "encoding/json"

// Analysis is the result of matching a job description against the user.
type Analysis struct {
	Title           string   `json:"title,omitempty"`
	Company         string   `json:"company,omitempty"`
	Location        string   `json:"location,omitempty"`
	MatchPercentage float64  `json:"matchPercentage"`
	MatchedSkills   []string `json:"matchedSkills"`
	MissingSkills   []string `json:"missingSkills"`
}

// Job describes a listing sent for an eligibility check.
type Job struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// Certification is a suggested course or certificate.
type Certification struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	URL      string `json:"url"`
	IsFree   bool   `json:"isFree"`
}

// RoadmapStep is one phase of an eligibility roadmap.
type RoadmapStep struct {
	Phase          string          `json:"phase"`
	Skills         []string        `json:"skills"`
	Resources      []string        `json:"resources"`
	Certifications []Certification `json:"certifications,omitempty"`
}

// Eligibility is the verdict for one job and a set of user skills.
type Eligibility struct {
	IsEligible         bool              `json:"isEligible"`
	EligibilityScore   float64           `json:"eligibilityScore"`
	Summary            string            `json:"summary"`
	MatchedSkills      []string          `json:"matchedSkills"`
	MissingSkills      []string          `json:"missingSkills"`
	Roadmap            []RoadmapStep     `json:"roadmap"`
	InterviewQuestions []json.RawMessage `json:"interviewQuestions,omitempty"`
}

// RoadmapPhase is one month of a career roadmap.
type RoadmapPhase struct {
	Month       json.RawMessage `json:"month"`
	Topics      []string        `json:"topics"`
	ActionItems []string        `json:"actionItems"`
}

// Roadmap is a multi-month plan toward a dream job.
type Roadmap struct {
	DreamJob             string          `json:"dreamJob"`
	Phases               []RoadmapPhase  `json:"phases"`
	RecommendedResources json.RawMessage `json:"recommendedResources,omitempty"`
}

// InterviewQuestion is one generated question.
type InterviewQuestion struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Tips       string `json:"tips"`
}

// InterviewQuestions groups questions by interview round.
type InterviewQuestions struct {
	Role             string                         `json:"role"`
	TotalQuestions   int                            `json:"totalQuestions"`
	QuestionsByRound map[string][]InterviewQuestion `json:"questionsByRound"`
}

// ChatTurn is one prior message in a chat, in the service's wire shape.
type ChatTurn struct {
	Role  string     `json:"role"` // "user" or "model"
	Parts []ChatPart `json:"parts"`
}

// ChatPart is a text fragment of a ChatTurn.
type ChatPart struct {
	Text string `json:"text"`
}

// ChatReply is the assistant's answer.
type ChatReply struct {
	Text string `json:"text"`
}

// CareerAdvice is the service's assessment of the user's saved applications.
// Nested sections are passed through untouched.
type CareerAdvice struct {
	OverallAssessment   string          `json:"overallAssessment"`
	MotivationalMessage string          `json:"motivationalMessage"`
	ApplicationStats    json.RawMessage `json:"applicationStats,omitempty"`
	Strengths           json.RawMessage `json:"strengths,omitempty"`
	AreasToImprove      json.RawMessage `json:"areasToImprove,omitempty"`
	StrategicAdvice     json.RawMessage `json:"strategicAdvice,omitempty"`
	RoleRecommendations json.RawMessage `json:"roleRecommendations,omitempty"`
	NextSteps           json.RawMessage `json:"nextSteps,omitempty"`
}

// JobListing is one opportunity returned by the jobs endpoints.
type JobListing struct {
	ID          json.RawMessage `json:"id,omitempty"`
	Title       string          `json:"title"`
	Company     string          `json:"company"`
	Location    string          `json:"location"`
	Description string          `json:"description"`
	Duration    string          `json:"duration,omitempty"`
	WorkMode    string          `json:"workMode,omitempty"`
	Link        string          `json:"link,omitempty"`
	Logo        string          `json:"logo,omitempty"`
	Source      string          `json:"source,omitempty"`
	ApplyBy     string          `json:"applyBy,omitempty"`
}
