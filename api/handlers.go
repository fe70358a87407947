package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loadwatch/domain/core"
	"loadwatch/domain/timeline"
	"loadwatch/internal/attendance"
	"loadwatch/internal/profiling"
)

// handleDaily returns the latest daily table, optionally filtered by
// player or team.
func (s *Server) handleDaily(c *gin.Context) {
	rows, err := s.results.LatestDailyAll(c.Request.Context())
	if err != nil {
		sendUnavailable(c, err)
		return
	}
	rows = filterRows(rows, c.Query("player"), c.Query("team"))
	c.JSON(http.StatusOK, gin.H{
		"count": len(rows),
		"rows":  roundRows(rows),
	})
}

// handleWeeklyPlayers returns the latest weekly per-player table.
func (s *Server) handleWeeklyPlayers(c *gin.Context) {
	rows, err := s.results.LatestWeeklyPlayer(c.Request.Context())
	if err != nil {
		sendUnavailable(c, err)
		return
	}
	rows = filterRows(rows, c.Query("player"), c.Query("team"))
	c.JSON(http.StatusOK, gin.H{
		"count": len(rows),
		"rows":  roundRows(rows),
	})
}

// handleWeeklyTeams returns the latest weekly per-team averages.
func (s *Server) handleWeeklyTeams(c *gin.Context) {
	rows, err := s.results.LatestWeeklyTeam(c.Request.Context())
	if err != nil {
		sendUnavailable(c, err)
		return
	}
	if team := c.Query("team"); team != "" {
		var filtered []timeline.TeamRow
		for _, r := range rows {
			if r.Team == team {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}
	for i := range rows {
		rows[i].Metrics = roundValues(rows[i].Metrics)
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(rows),
		"rows":  rows,
	})
}

// abnormalEntry is one flagged metric-week for the player report.
type abnormalEntry struct {
	YearWeek       string               `json:"year_week"`
	Metric         string               `json:"metric"`
	ACWR           core.Value           `json:"acwr"`
	Classification timeline.Abnormality `json:"classification"`
}

// handlePlayerReport lists every High or Low metric-week for one
// player, plus the weeks flagged for left/right imbalance.
func (s *Server) handlePlayerReport(c *gin.Context) {
	player := c.Param("player")
	rows, err := s.results.LatestWeeklyPlayer(c.Request.Context())
	if err != nil {
		sendUnavailable(c, err)
		return
	}

	type weekScores struct {
		YearWeek string         `json:"year_week"`
		Scores   map[string]int `json:"scores"`
	}

	var abnormal []abnormalEntry
	var imbalanceWeeks []string
	var riskScores []weekScores
	found := false
	for _, r := range rows {
		if r.Player != player {
			continue
		}
		found = true
		for _, metric := range s.tracked {
			cls, ok := r.Abnormality[metric]
			if !ok || cls == timeline.AbnormalModerate {
				continue
			}
			abnormal = append(abnormal, abnormalEntry{
				YearWeek:       r.YearWeek,
				Metric:         metric,
				ACWR:           core.Round2(r.ACWR[metric]),
				Classification: cls,
			})
		}
		if r.IMAImbalance {
			imbalanceWeeks = append(imbalanceWeeks, r.YearWeek)
		}
		if len(r.RiskScores) > 0 {
			riskScores = append(riskScores, weekScores{YearWeek: r.YearWeek, Scores: r.RiskScores})
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown player"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player":          player,
		"abnormal":        abnormal,
		"risk_scores":     riskScores,
		"imbalance_weeks": imbalanceWeeks,
	})
}

// handleTeamOverview combines weekly team averages with attendance and
// metric distribution summaries computed from the daily table.
func (s *Server) handleTeamOverview(c *gin.Context) {
	team := c.Param("team")

	daily, err := s.results.LatestDailyAll(c.Request.Context())
	if err != nil {
		sendUnavailable(c, err)
		return
	}
	weeklyPlayers, err := s.results.LatestWeeklyPlayer(c.Request.Context())
	if err != nil {
		sendUnavailable(c, err)
		return
	}
	weekly, err := s.results.LatestWeeklyTeam(c.Request.Context())
	if err != nil {
		sendUnavailable(c, err)
		return
	}

	var teamWeekly []timeline.TeamRow
	for _, r := range weekly {
		if r.Team == team {
			r.Metrics = roundValues(r.Metrics)
			teamWeekly = append(teamWeekly, r)
		}
	}
	if len(teamWeekly) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown team"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"team":          team,
		"weekly":        teamWeekly,
		"attendance":    attendance.ForTeam(attendance.Count(daily), team),
		"distributions": profiling.ForTeam(profiling.Profile(weeklyPlayers, s.tracked), team),
	})
}

func sendUnavailable(c *gin.Context, err error) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
}

func filterRows(rows []timeline.Row, player, team string) []timeline.Row {
	if player == "" && team == "" {
		return rows
	}
	var out []timeline.Row
	for _, r := range rows {
		if player != "" && r.Player != player {
			continue
		}
		if team != "" && r.Team != team {
			continue
		}
		out = append(out, r)
	}
	return out
}

// roundRows applies the two decimal serialization rounding to every
// numeric map without touching the caller's rows.
func roundRows(rows []timeline.Row) []timeline.Row {
	out := make([]timeline.Row, len(rows))
	for i, r := range rows {
		rounded := r.Clone()
		rounded.Metrics = roundValues(rounded.Metrics)
		rounded.Acute = roundValues(rounded.Acute)
		rounded.Chronic = roundValues(rounded.Chronic)
		rounded.ACWR = roundValues(rounded.ACWR)
		out[i] = rounded
	}
	return out
}

func roundValues(m map[string]core.Value) map[string]core.Value {
	if m == nil {
		return nil
	}
	out := make(map[string]core.Value, len(m))
	for k, v := range m {
		out[k] = core.Round2(v)
	}
	return out
}
