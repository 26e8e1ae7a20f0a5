package types

// Status is the lifecycle state of a simulation as reported by the backend.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further progress is expected.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Simulation is the canonical, normalized simulation record.
type Simulation struct {
	ID                 SimulationID               `json:"simulation_id" yaml:"simulation_id"`
	Status             Status                     `json:"status" yaml:"status"`
	Participant1       string                     `json:"participant1" yaml:"participant1"`
	Participant2       string                     `json:"participant2" yaml:"participant2"`
	CompatibilityScore *float64                   `json:"compatibility_score,omitempty" yaml:"compatibility_score,omitempty"`
	Rating             string                     `json:"rating,omitempty" yaml:"rating,omitempty"`
	Days               []Day                      `json:"days" yaml:"days"`
	FinalAssessments   map[string]FinalAssessment `json:"final_assessments" yaml:"final_assessments"`
	DateSuggestions    []string                   `json:"date_suggestions" yaml:"date_suggestions"`
	CompletedDays      int                        `json:"completed_days,omitempty" yaml:"completed_days,omitempty"`
	Error              string                     `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt          string                     `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	CompletedAt        string                     `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

type Day struct {
	Number     int              `json:"day" yaml:"day"`
	Sessions   []TextingSession `json:"texting_sessions" yaml:"texting_sessions"`
	Activities []Activity       `json:"activities" yaml:"activities"`
}

type TextingSession struct {
	Time      string     `json:"time" yaml:"time"`
	Exchanges []Exchange `json:"exchanges" yaml:"exchanges"`
}

type Activity struct {
	Name         string     `json:"name" yaml:"name"`
	Description  string     `json:"description,omitempty" yaml:"description,omitempty"`
	Interactions []Exchange `json:"interactions" yaml:"interactions"`
}

// Exchange is one message in a simulation, whether it happened over text or
// during an activity. Exchanges are never mutated once decoded.
type Exchange struct {
	Sender            string             `json:"sender" yaml:"sender"`
	Message           string             `json:"message" yaml:"message"`
	Emotion           string             `json:"emotion" yaml:"emotion"`
	InternalThought   string             `json:"internal_thought" yaml:"internal_thought"`
	FondnessLevel     *int               `json:"fondness_level,omitempty" yaml:"fondness_level,omitempty"`
	FondnessBreakdown *FondnessBreakdown `json:"fondness_breakdown,omitempty" yaml:"fondness_breakdown,omitempty"`
}

type FondnessBreakdown struct {
	Total              int `json:"total" yaml:"total"`
	LLMDecision        int `json:"llm_decision" yaml:"llm_decision"`
	ValuePenalty       int `json:"value_penalty" yaml:"value_penalty"`
	DealbreakerPenalty int `json:"dealbreaker_penalty" yaml:"dealbreaker_penalty"`
}

type FinalAssessment struct {
	Statement     string `json:"statement" yaml:"statement"`
	FinalFondness *int   `json:"final_fondness,omitempty" yaml:"final_fondness,omitempty"`
}

// FondnessPoint is one position of the reconstructed fondness timeline.
type FondnessPoint struct {
	Person1Fondness int       `json:"person1_fondness" yaml:"person1_fondness"`
	Person2Fondness int       `json:"person2_fondness" yaml:"person2_fondness"`
	Day             int       `json:"day" yaml:"day"`
	EventID         EventID   `json:"event_id" yaml:"event_id"`
	Kind            EventKind `json:"kind" yaml:"kind"`
	Sender          string    `json:"sender" yaml:"sender"`
}

type TurnRole string

const (
	RoleUser TurnRole = "user"
	RoleTwin TurnRole = "twin"
)

// ChatTurn is one entry of a live chat transcript. Twin-only fields are zero
// on user turns.
type ChatTurn struct {
	ID              TurnID   `json:"id"`
	Role            TurnRole `json:"role"`
	Text            string   `json:"text"`
	Emotion         string   `json:"emotion,omitempty"`
	InternalThought string   `json:"internal_thought,omitempty"`
	FondnessLevel   int      `json:"fondness_level,omitempty"`
	FondnessChange  int      `json:"fondness_change,omitempty"`
}
