package twin

import (
	"encoding/json"
	"fmt"
)

// Profile is a personality profile known to the backend.
type Profile struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name"`
	Age                     int      `json:"age"`
	MBTI                    string   `json:"mbti"`
	Interests               []string `json:"interests"`
	Values                  []string `json:"values"`
	SpontaneityLevel        int      `json:"spontaneity_level"`
	EmotionalExpressiveness int      `json:"emotional_expressiveness"`
	Bio                     string   `json:"bio,omitempty"`
}

// SimulationSummary is one entry of the simulation listing.
type SimulationSummary struct {
	SimulationID       string   `json:"simulation_id"`
	Profile1           string   `json:"profile1"`
	Profile2           string   `json:"profile2"`
	CompatibilityScore *float64 `json:"compatibility_score,omitempty"`
	Status             string   `json:"status"`
	CompletedDays      int      `json:"completed_days"`
	CreatedAt          string   `json:"created_at,omitempty"`
	CompletedAt        string   `json:"completed_at,omitempty"`
}

// SimulationCreated is the response to starting a simulation.
type SimulationCreated struct {
	SimulationID string `json:"simulation_id"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
}

// ChatStarted is the response to opening a chat with a twin.
type ChatStarted struct {
	ChatID          string `json:"chat_id"`
	ProfileName     string `json:"profile_name"`
	ProfileMBTI     string `json:"profile_mbti"`
	InitialFondness int    `json:"initial_fondness"`
}

// ChatReply is the twin's answer to one user message.
type ChatReply struct {
	Message         string `json:"message"`
	Emotion         string `json:"emotion"`
	InternalThought string `json:"internal_thought"`
	FondnessChange  int    `json:"fondness_change"`
	FondnessLevel   int    `json:"fondness_level"`
}

// ChatHistory is the backend's record of a chat.
type ChatHistory struct {
	ChatID          string            `json:"chat_id"`
	ProfileName     string            `json:"profile_name"`
	Conversation    []json.RawMessage `json:"conversation"`
	CurrentFondness int               `json:"current_fondness"`
	MessageCount    int               `json:"message_count"`
}

// ChatEnded is the response to closing a chat.
type ChatEnded struct {
	Message       string `json:"message"`
	SavedTo       string `json:"saved_to,omitempty"`
	FinalFondness int    `json:"final_fondness"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}
