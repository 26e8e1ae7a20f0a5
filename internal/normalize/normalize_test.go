package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/user/twinsim/internal/types"
)

const flatRecord = `{
  "simulation_id": "alex_sam_20250101_120000",
  "status": "completed",
  "profile1": "Alex",
  "profile2": "Sam",
  "compatibility_score": 78.5,
  "completed_days": 1,
  "days": [
    {
      "day": 1,
      "texting_sessions": [
        {"time": "morning", "exchanges": [
          {"sender": "Alex", "message": "hi", "emotion": "happy", "internal_thought": "nervous", "fondness_level": 60},
          {"sender": "Sam", "message": "hey", "emotion": "curious", "internal_thought": "cute", "fondness_level": 55,
           "fondness_breakdown": {"total": 5, "llm_decision": 6, "value_penalty": -1, "dealbreaker_penalty": 0}}
        ]}
      ],
      "activities": [
        {"activity": {"name": "Cooking class", "description": "Pasta night"}, "interactions": [
          {"sender": "Sam", "message": "too much salt", "emotion": "amused", "internal_thought": "fun"}
        ]}
      ]
    }
  ],
  "final_assessments": {
    "Alex": {"statement": "I'd see them again", "final_fondness": 72},
    "Sam": {"statement": "Maybe", "final_fondness": 64}
  },
  "date_suggestions": ["Picnic", "Museum"]
}`

const nestedRecord = `{
  "simulation_id": "alex_sam_20250101_120000",
  "status": "completed",
  "profile1": "alex",
  "profile2": "sam",
  "result": {
    "participants": {"person1": "Alex", "person2": "Sam"},
    "compatibility": {"score": 78.5, "rating": "Compatible"},
    "days": [
      {
        "day": 1,
        "texting_sessions": [
          {"time": "morning", "exchanges": [
            {"sender": "Alex", "message": "hi", "emotion": "happy", "internal_thought": "nervous", "fondness_level": 60},
            {"sender": "Sam", "message": "hey", "emotion": "curious", "internal_thought": "cute", "fondness_level": 55,
             "fondness_breakdown": {"total": 5, "llm_decision": 6, "value_penalty": -1, "dealbreaker_penalty": 0}}
          ]}
        ],
        "activities": [
          {"activity": {"name": "Cooking class", "description": "Pasta night"}, "interactions": [
            {"sender": "Sam", "message": "too much salt", "emotion": "amused", "internal_thought": "fun"}
          ]}
        ]
      }
    ],
    "final_assessment": {
      "Alex": {"assessment": "I'd see them again", "fondness_level": 72},
      "Sam": {"statement": "Maybe", "final_fondness": 64}
    },
    "date_suggestions": ["Picnic", "Museum"]
  }
}`

func TestSimulation_FlatAndNestedAgree(t *testing.T) {
	flat := Simulation([]byte(flatRecord))
	nested := Simulation([]byte(nestedRecord))

	if nested.Participant1 != "Alex" || nested.Participant2 != "Sam" {
		t.Errorf("expected nested participants Alex/Sam, got %q/%q", nested.Participant1, nested.Participant2)
	}
	if nested.Rating != "Compatible" {
		t.Errorf("expected rating Compatible, got %q", nested.Rating)
	}

	// Only the fields that differ by construction are blanked out.
	nested.Rating = ""
	flat.CompletedDays = 0
	if diff := cmp.Diff(flat, nested); diff != "" {
		t.Errorf("flat and nested records normalized differently (-flat +nested):\n%s", diff)
	}
}

func TestSimulation_FlatFields(t *testing.T) {
	score := 78.5
	want := types.Simulation{
		ID:                 "alex_sam_20250101_120000",
		Status:             types.StatusCompleted,
		Participant1:       "Alex",
		Participant2:       "Sam",
		CompatibilityScore: &score,
		CompletedDays:      1,
		Days: []types.Day{{
			Number: 1,
			Sessions: []types.TextingSession{{
				Time: "morning",
				Exchanges: []types.Exchange{
					{Sender: "Alex", Message: "hi", Emotion: "happy", InternalThought: "nervous", FondnessLevel: intp(60)},
					{Sender: "Sam", Message: "hey", Emotion: "curious", InternalThought: "cute", FondnessLevel: intp(55),
						FondnessBreakdown: &types.FondnessBreakdown{Total: 5, LLMDecision: 6, ValuePenalty: -1}},
				},
			}},
			Activities: []types.Activity{{
				Name:        "Cooking class",
				Description: "Pasta night",
				Interactions: []types.Exchange{
					{Sender: "Sam", Message: "too much salt", Emotion: "amused", InternalThought: "fun"},
				},
			}},
		}},
		FinalAssessments: map[string]types.FinalAssessment{
			"Alex": {Statement: "I'd see them again", FinalFondness: intp(72)},
			"Sam":  {Statement: "Maybe", FinalFondness: intp(64)},
		},
		DateSuggestions: []string{"Picnic", "Museum"},
	}

	got := Simulation([]byte(flatRecord))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("normalized record mismatch (-want +got):\n%s", diff)
	}
}

func TestSimulation_FinalAssessmentVariants(t *testing.T) {
	want := map[string]types.FinalAssessment{
		"Alex": {Statement: "great", FinalFondness: intp(80)},
	}

	records := map[string]string{
		"nested singular":     `{"result": {"final_assessment": {"Alex": {"statement": "great", "final_fondness": 80}}}}`,
		"nested plural":       `{"result": {"final_assessments": {"Alex": {"statement": "great", "final_fondness": 80}}}}`,
		"flat singular":       `{"final_assessment": {"Alex": {"statement": "great", "final_fondness": 80}}}`,
		"flat plural":         `{"final_assessments": {"Alex": {"statement": "great", "final_fondness": 80}}}`,
		"alternate fields":    `{"final_assessments": {"Alex": {"assessment": "great", "fondness_level": 80}}}`,
		"statement preferred": `{"final_assessments": {"Alex": {"statement": "great", "assessment": "meh", "final_fondness": 80, "fondness_level": 10}}}`,
	}
	for name, raw := range records {
		t.Run(name, func(t *testing.T) {
			got := Simulation([]byte(raw)).FinalAssessments
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("final assessments mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSimulation_NestedWinsOverFlat(t *testing.T) {
	raw := `{
		"profile1": "flat1", "profile2": "flat2", "compatibility_score": 10,
		"days": [{"day": 9}],
		"date_suggestions": ["flat"],
		"final_assessments": {"flat": {"statement": "x"}},
		"result": {
			"participants": {"person1": "A", "person2": "B"},
			"compatibility": {"score": 90},
			"days": [{"day": 1}],
			"date_suggestions": ["nested"],
			"final_assessment": {"nested": {"statement": "y"}}
		}
	}`
	sim := Simulation([]byte(raw))

	if sim.Participant1 != "A" || sim.Participant2 != "B" {
		t.Errorf("expected participants A/B, got %q/%q", sim.Participant1, sim.Participant2)
	}
	if sim.CompatibilityScore == nil || *sim.CompatibilityScore != 90 {
		t.Errorf("expected score 90, got %v", sim.CompatibilityScore)
	}
	if len(sim.Days) != 1 || sim.Days[0].Number != 1 {
		t.Errorf("expected the nested day 1, got %+v", sim.Days)
	}
	if diff := cmp.Diff([]string{"nested"}, sim.DateSuggestions); diff != "" {
		t.Errorf("date suggestions mismatch (-want +got):\n%s", diff)
	}
	if _, ok := sim.FinalAssessments["nested"]; !ok {
		t.Error("expected the nested assessment")
	}
	if _, ok := sim.FinalAssessments["flat"]; ok {
		t.Error("flat assessment should be ignored when a nested one exists")
	}
}

func TestSimulation_PendingRecord(t *testing.T) {
	raw := `{"simulation_id": "s1", "status": "pending", "profile1_id": "a", "profile2_id": "b", "completed_at": null, "error": null}`
	got := Simulation([]byte(raw))

	want := types.Simulation{
		ID:               "s1",
		Status:           types.StatusPending,
		Days:             []types.Day{},
		FinalAssessments: map[string]types.FinalAssessment{},
		DateSuggestions:  []string{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pending record mismatch (-want +got):\n%s", diff)
	}
	if got.Status.Terminal() {
		t.Error("pending must not be terminal")
	}
}

func TestSimulation_MalformedInputDegrades(t *testing.T) {
	for _, raw := range []string{"", "not json", "[]", "42", `{"days": "soon"}`, `{"days": [1, "x", null]}`} {
		sim := Simulation([]byte(raw))
		if sim.Days == nil || len(sim.Days) != 0 {
			t.Errorf("input %q: expected empty non-nil days, got %#v", raw, sim.Days)
		}
		if sim.FinalAssessments == nil {
			t.Errorf("input %q: nil final assessments", raw)
		}
		if sim.DateSuggestions == nil {
			t.Errorf("input %q: nil date suggestions", raw)
		}
		if sim.CompatibilityScore != nil {
			t.Errorf("input %q: unexpected score %v", raw, *sim.CompatibilityScore)
		}
	}
}

func TestSimulation_TolerantExchanges(t *testing.T) {
	raw := `{"days": [{"day": 2, "texting_sessions": [{"time": "evening", "exchanges": [
		{"sender": "A", "fondness_level": "high"},
		{"sender": "B", "fondness_level": 61.6},
		"garbage",
		{"message": 5}
	]}], "activities": [{"name": "Hike", "interactions": "none"}]}]}`
	sim := Simulation([]byte(raw))

	want := []types.Day{{
		Number: 2,
		Sessions: []types.TextingSession{{
			Time: "evening",
			Exchanges: []types.Exchange{
				{Sender: "A"},
				{Sender: "B", FondnessLevel: intp(62)},
				{},
			},
		}},
		Activities: []types.Activity{{Name: "Hike", Interactions: []types.Exchange{}}},
	}}
	if diff := cmp.Diff(want, sim.Days); diff != "" {
		t.Errorf("days mismatch (-want +got):\n%s", diff)
	}
}

func intp(n int) *int { return &n }
