// Package normalize turns a simulation record, in whichever shape the backend
// produced it, into the canonical types.Simulation.
//
// The backend serves two equivalent layouts: flat fields at the top level, or
// the finished result nested under "result" with renamed sub-fields. Every
// field is resolved through an ordered list of paths and the first one holding
// a value of the expected JSON type wins. Missing or malformed data degrades
// to empty values; nothing here returns an error.
package normalize

import (
	"math"

	"github.com/tidwall/gjson"

	"github.com/user/twinsim/internal/types"
)

var (
	daysPaths        = []string{"result.days", "days"}
	participant1     = []string{"result.participants.person1", "profile1"}
	participant2     = []string{"result.participants.person2", "profile2"}
	scorePaths       = []string{"result.compatibility.score", "compatibility_score"}
	ratingPaths      = []string{"result.compatibility.rating", "compatibility_rating"}
	assessmentPaths  = []string{"result.final_assessment", "result.final_assessments", "final_assessment", "final_assessments"}
	suggestionPaths  = []string{"result.date_suggestions", "date_suggestions"}
	simulationIDPath = []string{"simulation_id", "result.simulation_id"}
)

// Simulation normalizes a raw simulation record.
func Simulation(raw []byte) types.Simulation {
	sim := types.Simulation{
		Days:             []types.Day{},
		FinalAssessments: map[string]types.FinalAssessment{},
		DateSuggestions:  []string{},
	}
	if !gjson.ValidBytes(raw) {
		return sim
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return sim
	}

	sim.ID = types.SimulationID(firstOf(root, gjson.String, simulationIDPath...).String())
	sim.Status = types.Status(root.Get("status").String())
	sim.Participant1 = firstOf(root, gjson.String, participant1...).String()
	sim.Participant2 = firstOf(root, gjson.String, participant2...).String()
	sim.Rating = firstOf(root, gjson.String, ratingPaths...).String()
	sim.Error = stringOf(root.Get("error"))
	sim.CreatedAt = stringOf(root.Get("created_at"))
	sim.CompletedAt = stringOf(root.Get("completed_at"))
	if n := root.Get("completed_days"); n.Type == gjson.Number {
		sim.CompletedDays = int(n.Int())
	}

	if s := firstOf(root, gjson.Number, scorePaths...); s.Exists() {
		score := s.Float()
		sim.CompatibilityScore = &score
	}

	if days := firstArray(root, daysPaths...); days.Exists() {
		days.ForEach(func(_, d gjson.Result) bool {
			if d.IsObject() {
				sim.Days = append(sim.Days, day(d))
			}
			return true
		})
	}

	if fa := firstObject(root, assessmentPaths...); fa.Exists() {
		fa.ForEach(func(name, a gjson.Result) bool {
			if a.IsObject() {
				sim.FinalAssessments[name.String()] = assessment(a)
			}
			return true
		})
	}

	if ds := firstArray(root, suggestionPaths...); ds.Exists() {
		ds.ForEach(func(_, s gjson.Result) bool {
			if s.Type == gjson.String {
				sim.DateSuggestions = append(sim.DateSuggestions, s.String())
			}
			return true
		})
	}

	return sim
}

func day(d gjson.Result) types.Day {
	out := types.Day{
		Sessions:   []types.TextingSession{},
		Activities: []types.Activity{},
	}
	if n := d.Get("day"); n.Type == gjson.Number {
		out.Number = int(n.Int())
	}

	d.Get("texting_sessions").ForEach(func(_, s gjson.Result) bool {
		if !s.IsObject() {
			return true
		}
		out.Sessions = append(out.Sessions, types.TextingSession{
			Time:      stringOf(s.Get("time")),
			Exchanges: exchanges(s.Get("exchanges")),
		})
		return true
	})

	d.Get("activities").ForEach(func(_, a gjson.Result) bool {
		if !a.IsObject() {
			return true
		}
		// The activity metadata is nested under "activity" by the simulator;
		// older records put it on the entry itself.
		out.Activities = append(out.Activities, types.Activity{
			Name:         firstOf(a, gjson.String, "activity.name", "name").String(),
			Description:  firstOf(a, gjson.String, "activity.description", "description").String(),
			Interactions: exchanges(a.Get("interactions")),
		})
		return true
	})

	return out
}

func exchanges(list gjson.Result) []types.Exchange {
	out := []types.Exchange{}
	if !list.IsArray() {
		return out
	}
	list.ForEach(func(_, e gjson.Result) bool {
		if !e.IsObject() {
			return true
		}
		ex := types.Exchange{
			Sender:          stringOf(e.Get("sender")),
			Message:         stringOf(e.Get("message")),
			Emotion:         stringOf(e.Get("emotion")),
			InternalThought: stringOf(e.Get("internal_thought")),
			FondnessLevel:   intPtr(e.Get("fondness_level")),
		}
		if b := e.Get("fondness_breakdown"); b.IsObject() {
			ex.FondnessBreakdown = &types.FondnessBreakdown{
				Total:              int(b.Get("total").Int()),
				LLMDecision:        int(b.Get("llm_decision").Int()),
				ValuePenalty:       int(b.Get("value_penalty").Int()),
				DealbreakerPenalty: int(b.Get("dealbreaker_penalty").Int()),
			}
		}
		out = append(out, ex)
		return true
	})
	return out
}

func assessment(a gjson.Result) types.FinalAssessment {
	return types.FinalAssessment{
		Statement:     firstOf(a, gjson.String, "statement", "assessment").String(),
		FinalFondness: intPtr(firstOf(a, gjson.Number, "final_fondness", "fondness_level")),
	}
}

// firstOf returns the first path whose value has the given JSON type, or an
// empty Result.
func firstOf(r gjson.Result, typ gjson.Type, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.Type == typ {
			return v
		}
	}
	return gjson.Result{}
}

func firstArray(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.IsArray() {
			return v
		}
	}
	return gjson.Result{}
}

func firstObject(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.IsObject() {
			return v
		}
	}
	return gjson.Result{}
}

func stringOf(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}
	return r.String()
}

func intPtr(r gjson.Result) *int {
	if r.Type != gjson.Number {
		return nil
	}
	n := int(math.Round(r.Float()))
	return &n
}
