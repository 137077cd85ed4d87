package snake

import "time"

// RunTick runs one full iteration of the authoritative phase order: flush
// deaths, advance the counter, conditionally move, generate an apple if
// needed. Returns true if the session should terminate (alive_players
// <= 1) after this tick.
func (s *Session) RunTick() bool {
	s.flushLeaderboard()
	s.Tick++

	if s.GameSpeed < 1 {
		s.GameSpeed = 1
	}
	if s.Tick%s.GameSpeed == 0 {
		s.Move()
	}

	s.generateAppleIfNeeded()

	return len(s.aliveOrder) <= 1
}

func (s *Session) generateAppleIfNeeded() {
	if len(s.Apples) > 0 {
		return
	}

	occupied := make(map[Point]struct{})
	for _, p := range s.AlivePlayers() {
		for _, c := range p.Chunks {
			occupied[c] = struct{}{}
		}
	}

	var free []Point
	for x := 0; x < s.Grid.Width; x++ {
		for y := 0; y < s.Grid.Height; y++ {
			cell := Point{X: x, Y: y}
			if _, taken := occupied[cell]; !taken {
				free = append(free, cell)
			}
		}
	}
	if len(free) == 0 {
		return
	}
	s.Apples[free[randomIndex(len(free))]] = struct{}{}
}

// AdvanceDeadline advances LastTickTime by TickInterval and returns the
// duration to sleep before the next tick: 0 if the deadline has already
// passed (the caller should log "session is behind"), the remaining
// time otherwise. This is deadline scheduling, not a fixed-period
// ticker: drift never accumulates across ticks.
func (s *Session) AdvanceDeadline() time.Duration {
	s.LastTickTime = s.LastTickTime.Add(s.TickInterval)
	remaining := time.Until(s.LastTickTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}
