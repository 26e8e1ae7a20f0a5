// Package timeline reconstructs the fondness series of a simulation.
package timeline

import (
	"github.com/user/twinsim/internal/types"
)

// NeutralFondness is the value both participants start from before any
// exchange reports a level.
const NeutralFondness = 50

// Build walks every exchange of the simulation in narrative order (days in
// order, a day's texting sessions before its activities, blocks and exchanges
// in order) and emits one point per exchange.
//
// The sender's fondness is replaced by the exchange's level when present; the
// other participant's value is carried forward. Participant 1 is identified by
// exact string equality between the sender and sim.Participant1, so a name
// that differs only in case or whitespace counts as participant 2.
func Build(sim types.Simulation) []types.FondnessPoint {
	points := make([]types.FondnessPoint, 0, CountExchanges(sim))
	run1, run2 := NeutralFondness, NeutralFondness

	emit := func(day int, id types.EventID, kind types.EventKind, ex types.Exchange) {
		if ex.FondnessLevel != nil {
			if ex.Sender == sim.Participant1 {
				run1 = *ex.FondnessLevel
			} else {
				run2 = *ex.FondnessLevel
			}
		}
		points = append(points, types.FondnessPoint{
			Person1Fondness: run1,
			Person2Fondness: run2,
			Day:             day,
			EventID:         id,
			Kind:            kind,
			Sender:          ex.Sender,
		})
	}

	for di, day := range sim.Days {
		for si, session := range day.Sessions {
			for ei, ex := range session.Exchanges {
				emit(day.Number, types.NewEventID(di, types.KindSession, si, ei), types.KindSession, ex)
			}
		}
		for ai, activity := range day.Activities {
			for ei, ex := range activity.Interactions {
				emit(day.Number, types.NewEventID(di, types.KindActivity, ai, ei), types.KindActivity, ex)
			}
		}
	}
	return points
}

// CountExchanges returns the number of exchanges across all days, sessions
// and activities.
func CountExchanges(sim types.Simulation) int {
	n := 0
	for _, day := range sim.Days {
		for _, s := range day.Sessions {
			n += len(s.Exchanges)
		}
		for _, a := range day.Activities {
			n += len(a.Interactions)
		}
	}
	return n
}

// Lookup returns the exchange an event id points at.
func Lookup(sim types.Simulation, id types.EventID) (types.Exchange, bool) {
	pos, err := types.ParseEventID(id)
	if err != nil || pos.DayIndex >= len(sim.Days) {
		return types.Exchange{}, false
	}
	day := sim.Days[pos.DayIndex]

	var list []types.Exchange
	switch pos.Kind {
	case types.KindSession:
		if pos.Sub >= len(day.Sessions) {
			return types.Exchange{}, false
		}
		list = day.Sessions[pos.Sub].Exchanges
	case types.KindActivity:
		if pos.Sub >= len(day.Activities) {
			return types.Exchange{}, false
		}
		list = day.Activities[pos.Sub].Interactions
	}
	if pos.Exchange >= len(list) {
		return types.Exchange{}, false
	}
	return list[pos.Exchange], true
}

// DailyClose returns the last point of each day, in order.
func DailyClose(points []types.FondnessPoint) []types.FondnessPoint {
	var out []types.FondnessPoint
	for i, p := range points {
		if i+1 == len(points) || points[i+1].Day != p.Day {
			out = append(out, p)
		}
	}
	return out
}
