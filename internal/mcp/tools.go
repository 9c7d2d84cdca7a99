package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/akoskomuves/promptly/internal/analyzer"
	"github.com/akoskomuves/promptly/internal/session"
)

// RecentSessionsResult holds a list of recent sessions.
type RecentSessionsResult struct {
	Sessions []RecentSession `json:"sessions"`
}

// RecentSession holds summary data for a single session.
type RecentSession struct {
	SessionID     string           `json:"session_id"`
	TicketID      string           `json:"ticket_id"`
	Project       string           `json:"project"`
	Status        string           `json:"status"`
	StartTime     string           `json:"start_time"`
	DurationMin   int              `json:"duration_minutes"`
	TotalTokens   int              `json:"total_tokens"`
	EstimatedCost float64          `json:"estimated_cost_usd"`
	Category      session.Category `json:"category,omitempty"`
	Quality       *float64         `json:"quality,omitempty"`
}

// SessionIntelligenceResult is the intelligence of one session. Stored is
// false when the bundle was computed on the fly for an unenriched session.
type SessionIntelligenceResult struct {
	SessionID    string               `json:"session_id"`
	Category     session.Category     `json:"category"`
	Stored       bool                 `json:"stored"`
	Intelligence session.Intelligence `json:"intelligence"`
}

var (
	noArgsSchema  = json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
	recentNSchema = json.RawMessage(`{"type":"object","properties":{"n":{"type":"integer","description":"Number of sessions to return (default 5, max 50)"}},"additionalProperties":false}`)
	digestSchema  = json.RawMessage(`{"type":"object","properties":{"date":{"type":"string","description":"Any day (YYYY-MM-DD) inside the week to summarize; defaults to today"},"from":{"type":"string","description":"Custom period start (YYYY-MM-DD)"},"to":{"type":"string","description":"Custom period end, inclusive (YYYY-MM-DD)"}},"additionalProperties":false}`)
	trendsSchema  = json.RawMessage(`{"type":"object","properties":{"periods":{"type":"integer","description":"Number of periods (default from config)"},"days":{"type":"integer","description":"Days per period (default from config)"}},"additionalProperties":false}`)
	overlapSchema = json.RawMessage(`{"type":"object","properties":{"include_touching":{"type":"boolean","description":"Also report sessions that start exactly when another finishes"}},"additionalProperties":false}`)
	sessionSchema = json.RawMessage(`{"type":"object","properties":{"id":{"type":"string","description":"Session ID"}},"required":["id"],"additionalProperties":false}`)
)

// addTools registers all MCP tool handlers on s.
func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "get_recent_sessions",
		Description: "Last N sessions with cost, category, and quality score.",
		InputSchema: recentNSchema,
		Handler:     s.handleGetRecentSessions,
	})
	s.registerTool(toolDef{
		Name:        "get_digest",
		Description: "Weekly or custom-period digest compared against the preceding period.",
		InputSchema: digestSchema,
		Handler:     s.handleGetDigest,
	})
	s.registerTool(toolDef{
		Name:        "get_project_trends",
		Description: "Per-project token and cost trends over consecutive periods.",
		InputSchema: trendsSchema,
		Handler:     s.handleGetProjectTrends,
	})
	s.registerTool(toolDef{
		Name:        "get_parallel_sessions",
		Description: "Groups of sessions that ran at the same time.",
		InputSchema: overlapSchema,
		Handler:     s.handleGetParallelSessions,
	})
	s.registerTool(toolDef{
		Name:        "get_skill_usage",
		Description: "Slash-command skill usage correlated with session quality.",
		InputSchema: noArgsSchema,
		Handler:     s.handleGetSkillUsage,
	})
	s.registerTool(toolDef{
		Name:        "get_instruction_effectiveness",
		Description: "Session quality before and after instruction file edits.",
		InputSchema: noArgsSchema,
		Handler:     s.handleGetInstructionEffectiveness,
	})
	s.registerTool(toolDef{
		Name:        "get_session_intelligence",
		Description: "Quality, tool, subagent, context, and prompt analysis for one session.",
		InputSchema: sessionSchema,
		Handler:     s.handleGetSessionIntelligence,
	})
}

// loadSessions decodes every stored session and prices it.
func (s *Server) loadSessions() ([]session.Record, error) {
	raws, err := s.source.ListAllSessions()
	if err != nil {
		return nil, err
	}
	recs := session.DecodeAll(raws)
	s.prices.PriceSessions(recs)
	return recs, nil
}

// decodeArgs unmarshals args into v. Empty and null arguments leave v untouched.
func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// handleGetRecentSessions returns the last N sessions by start time.
func (s *Server) handleGetRecentSessions(args json.RawMessage) (any, error) {
	var params struct {
		N *int `json:"n"`
	}
	// A malformed n falls back to the default.
	_ = decodeArgs(args, &params)

	n := 5
	if params.N != nil {
		n = *params.N
	}
	if n <= 0 {
		n = 5
	}
	if n > 50 {
		n = 50
	}

	recs, err := s.loadSessions()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].StartedAt.After(recs[j].StartedAt)
	})
	if n < len(recs) {
		recs = recs[:n]
	}

	result := make([]RecentSession, 0, len(recs))
	for _, r := range recs {
		project, ok := session.ExtractProject(r.TicketID)
		if !ok {
			project = r.TicketID
		}
		rs := RecentSession{
			SessionID:     r.ID,
			TicketID:      r.TicketID,
			Project:       project,
			Status:        string(r.Status),
			StartTime:     session.FormatTimestamp(r.StartedAt),
			DurationMin:   int(r.Duration().Minutes()),
			TotalTokens:   r.TotalTokens,
			EstimatedCost: r.EstimatedCost.InexactFloat64(),
			Category:      r.Category,
		}
		if q, ok := r.Quality(); ok {
			rs.Quality = &q
		}
		result = append(result, rs)
	}

	return RecentSessionsResult{Sessions: result}, nil
}

// handleGetDigest summarizes the week containing date, or the custom
// [from, to] period when both are given.
func (s *Server) handleGetDigest(args json.RawMessage) (any, error) {
	var params struct {
		Date string `json:"date"`
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}

	bounds, err := analyzer.ResolveDigestBounds(s.now(), params.Date, params.From, params.To)
	if err != nil {
		return nil, err
	}

	recs, err := s.loadSessions()
	if err != nil {
		return nil, err
	}
	return analyzer.ComputeDigest(recs, bounds), nil
}

// handleGetProjectTrends buckets per-project usage into consecutive periods.
func (s *Server) handleGetProjectTrends(args json.RawMessage) (any, error) {
	var params struct {
		Periods *int `json:"periods"`
		Days    *int `json:"days"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	periods, days := s.trends.PeriodCount, s.trends.PeriodDays
	if params.Periods != nil {
		periods = *params.Periods
	}
	if params.Days != nil {
		days = *params.Days
	}

	recs, err := s.loadSessions()
	if err != nil {
		return nil, err
	}
	return analyzer.ComputeProjectTrends(recs, periods, days), nil
}

// handleGetParallelSessions reports overlapping sessions.
func (s *Server) handleGetParallelSessions(args json.RawMessage) (any, error) {
	var params struct {
		IncludeTouching *bool `json:"include_touching"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	opts := s.overlap
	if params.IncludeTouching != nil {
		opts.IncludeTouching = *params.IncludeTouching
	}

	recs, err := s.loadSessions()
	if err != nil {
		return nil, err
	}
	return analyzer.DetectParallelSessions(recs, opts), nil
}

func (s *Server) handleGetSkillUsage(args json.RawMessage) (any, error) {
	recs, err := s.loadSessions()
	if err != nil {
		return nil, err
	}
	return analyzer.ComputeSkillUsage(recs), nil
}

func (s *Server) handleGetInstructionEffectiveness(args json.RawMessage) (any, error) {
	recs, err := s.loadSessions()
	if err != nil {
		return nil, err
	}
	return analyzer.ComputeInstructionEffectiveness(recs), nil
}

// handleGetSessionIntelligence returns the stored intelligence of a session,
// computing it without persisting when the session was never enriched.
func (s *Server) handleGetSessionIntelligence(args json.RawMessage) (any, error) {
	var params struct {
		ID string `json:"id"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	if params.ID == "" {
		return nil, errors.New("id is required")
	}

	raw, err := s.source.GetSession(params.ID)
	if err != nil {
		return nil, err
	}
	rec := session.Decode(raw)
	stored := rec.Intelligence != nil
	rec = s.quality.Enrich(rec)

	return SessionIntelligenceResult{
		SessionID:    rec.ID,
		Category:     rec.Category,
		Stored:       stored,
		Intelligence: *rec.Intelligence,
	}, nil
}
