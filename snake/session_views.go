package snake

import "github.com/huskgames/snakearena/wire"

func playerView(p *Player) wire.PlayerView {
	chunks := make([]wire.Cell, len(p.Chunks))
	for i, c := range p.Chunks {
		chunks[i] = wire.NewCell(c.X, c.Y)
	}
	return wire.PlayerView{
		Key:       p.Key,
		Name:      p.Name,
		Chunks:    chunks,
		Direction: int(p.Dir),
	}
}

// sessionJoinView builds the session_join payload. includeAll is true
// only for the connection that just joined: the new player's
// own payload additionally includes the full players list.
func sessionJoinView(s *Session, joined *Player, includeAll bool) wire.SessionJoinPayload {
	payload := wire.SessionJoinPayload{
		Code:     s.Code,
		Player:   playerView(joined),
		OwnerKey: s.Owner,
	}
	if includeAll {
		for _, p := range s.Players() {
			payload.Players = append(payload.Players, playerView(p))
		}
	}
	return payload
}

func sessionLeaveView(s *Session, leftKey string) wire.SessionLeavePayload {
	return wire.SessionLeavePayload{
		Code:     s.Code,
		Key:      leftKey,
		OwnerKey: s.Owner,
	}
}

func sessionStartView(s *Session) wire.SessionStartPayload {
	return wire.SessionStartPayload{
		Code:  s.Code,
		State: stateView(s),
	}
}

func stateView(s *Session) wire.StateView {
	players := make([]wire.PlayerView, 0, len(s.aliveOrder))
	for _, p := range s.AlivePlayers() {
		players = append(players, playerView(p))
	}
	apples := make([]wire.Cell, 0, len(s.Apples))
	for cell := range s.Apples {
		apples = append(apples, wire.NewCell(cell.X, cell.Y))
	}
	return wire.StateView{
		Tick:         s.Tick,
		Apples:       apples,
		AlivePlayers: players,
	}
}

func sessionEndView(s *Session) wire.SessionEndPayload {
	board := s.Leaderboard()
	places := make([][]wire.PlayerView, 0, len(board))
	for _, place := range board {
		views := make([]wire.PlayerView, 0, len(place.Keys))
		for _, key := range place.Keys {
			views = append(views, playerView(s.players[key]))
		}
		places = append(places, views)
	}
	return wire.SessionEndPayload{
		Code:        s.Code,
		Leaderboard: places,
	}
}
