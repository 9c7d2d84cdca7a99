package analyzer

import (
	"sort"
	"strings"
	"time"

	"github.com/akoskomuves/promptly/internal/session"
)

// OverlapOptions tunes parallel-session detection.
type OverlapOptions struct {
	// IncludeTouching also reports sessions that only touch, where one
	// starts at the instant another finishes. Such groups have a zero-length
	// window and OverlapMinutes of 0.
	IncludeTouching bool
}

type sweepEvent struct {
	at    time.Time
	start bool
	idx   int
}

// DetectParallelSessions finds groups of sessions that were active at the
// same moment. Only sessions with both a start and a finish time take part.
// Each distinct member set is reported once, longest overlap first.
func DetectParallelSessions(sessions []session.Record, opts OverlapOptions) []ParallelSessionGroup {
	var timed []session.Record
	for _, s := range sessions {
		if !s.StartedAt.IsZero() && s.FinishedAt != nil {
			timed = append(timed, s)
		}
	}
	if len(timed) < 2 {
		return []ParallelSessionGroup{}
	}

	events := make([]sweepEvent, 0, len(timed)*2)
	for i, s := range timed {
		events = append(events,
			sweepEvent{at: s.StartedAt, start: true, idx: i},
			sweepEvent{at: *s.FinishedAt, start: false, idx: i},
		)
	}
	// Starts sort before ends at the same instant, so back-to-back sessions
	// are briefly active together.
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.at.Equal(b.at) {
			return a.at.Before(b.at)
		}
		if a.start != b.start {
			return a.start
		}
		return timed[a.idx].ID < timed[b.idx].ID
	})

	active := make(map[int]struct{})
	seen := make(map[string]struct{})
	groups := []ParallelSessionGroup{}

	for _, ev := range events {
		if !ev.start {
			delete(active, ev.idx)
			continue
		}
		active[ev.idx] = struct{}{}
		if len(active) < 2 {
			continue
		}

		members := make([]session.Record, 0, len(active))
		for idx := range active {
			members = append(members, timed[idx])
		}
		sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

		key := groupKey(members)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		g, ok := overlapGroup(members, opts)
		if ok {
			groups = append(groups, g)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].OverlapMinutes > groups[j].OverlapMinutes
	})
	return groups
}

func groupKey(members []session.Record) string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return strings.Join(ids, ",")
}

// overlapGroup computes the shared window [latest start, earliest finish]
// of members. Empty windows are rejected unless touching groups are wanted.
func overlapGroup(members []session.Record, opts OverlapOptions) (ParallelSessionGroup, bool) {
	start := members[0].StartedAt
	end := *members[0].FinishedAt
	tokens := 0
	out := make([]ParallelMember, 0, len(members))

	for _, m := range members {
		if m.StartedAt.After(start) {
			start = m.StartedAt
		}
		if m.FinishedAt.Before(end) {
			end = *m.FinishedAt
		}
		tokens += m.TotalTokens
		out = append(out, ParallelMember{
			ID:          m.ID,
			TicketID:    m.TicketID,
			StartedAt:   m.StartedAt,
			FinishedAt:  *m.FinishedAt,
			TotalTokens: m.TotalTokens,
		})
	}

	touching := end.Equal(start) && opts.IncludeTouching
	if !end.After(start) && !touching {
		return ParallelSessionGroup{}, false
	}

	return ParallelSessionGroup{
		Sessions:       out,
		OverlapStart:   start,
		OverlapEnd:     end,
		OverlapMinutes: int(roundHalfUp(end.Sub(start).Minutes())),
		CombinedTokens: tokens,
	}, true
}
