package snake

import "sort"

// flushLeaderboard sorts currentDeaths ascending by length, groups
// consecutive equal-length entries into places, appends them to
// leaderboard, and clears currentDeaths. Called at the start of every
// tick and once more at game end.
func (s *Session) flushLeaderboard() {
	if len(s.currentDeaths) == 0 {
		return
	}

	sort.SliceStable(s.currentDeaths, func(i, j int) bool {
		return s.currentDeaths[i].Length < s.currentDeaths[j].Length
	})

	var place Place
	currentLen := -1
	for _, d := range s.currentDeaths {
		if currentLen != -1 && d.Length != currentLen {
			s.leaderboard = append(s.leaderboard, place)
			place = Place{}
		}
		place.Keys = append(place.Keys, d.Key)
		currentLen = d.Length
	}
	s.leaderboard = append(s.leaderboard, place)

	s.currentDeaths = nil
}

// finishGame moves any remaining alive players into currentDeaths (they
// form the winning, last-flushed place) and flushes a final time.
func (s *Session) finishGame() {
	for _, p := range s.AlivePlayers() {
		s.currentDeaths = append(s.currentDeaths, death{Key: p.Key, Length: p.Length()})
	}
	s.aliveOrder = nil
	s.flushLeaderboard()
	s.Running = false
}

// Leaderboard returns the wire-order leaderboard: rank 1 (the winner)
// first, i.e. reversed from internal append order.
func (s *Session) Leaderboard() []Place {
	out := make([]Place, len(s.leaderboard))
	for i, place := range s.leaderboard {
		out[len(s.leaderboard)-1-i] = place
	}
	return out
}
