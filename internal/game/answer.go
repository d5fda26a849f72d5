package game

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal"
	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal/store"
)

// =============================================================================
// ANSWER COLLECTION & ELIMINATION RESOLUTION
// =============================================================================

// SubmitAnswer records one player's answer for the current round and
// privately acknowledges it. When the last alive player answers, the
// deadline is cancelled and resolution is scheduled after a short
// debounce so near-simultaneous submissions batch into one pass
// instead of racing two resolutions.
func (g *GameServer) SubmitAnswer(room *internal.Room, playerID, answer string) error {
	choice := strings.ToLower(strings.TrimSpace(answer))

	room.Mu.Lock()
	player, ok := room.Players[playerID]
	if !ok {
		room.Mu.Unlock()
		return internal.ErrPlayerUnknown
	}
	if player.Eliminated {
		room.Mu.Unlock()
		return internal.ErrPlayerEliminated
	}
	if room.State != internal.StatePlaying || room.RoundResolved {
		room.Mu.Unlock()
		return internal.ErrRoomNotPlaying
	}
	if player.CurrentAnswer != "" {
		room.Mu.Unlock()
		return internal.ErrAlreadyAnswered
	}

	player.CurrentAnswer = choice
	player.AnswerLatencyMs = g.clock.Since(room.QuestionStart).Milliseconds()
	latency := player.AnswerLatencyMs
	questionNumber := room.CurrentIndex + 1
	correct := choice == room.Questions[room.CurrentIndex].CorrectAnswer
	allAnswered := room.AllAliveAnswered()
	room.Mu.Unlock()

	log.Debug().
		Str("room", room.Id).
		Str("player", playerID).
		Str("answer", choice).
		Int64("latency_ms", latency).
		Bool("all_answered", allAnswered).
		Msg("answer submitted")

	sendPrivate(player, internal.Message[internal.AnswerAckData]{
		Type: internal.MsgPlayerAnswer,
		Data: internal.AnswerAckData{
			Success:        true,
			Answer:         choice,
			QuestionNumber: questionNumber,
		},
	})
	g.recorder.RecordAnswer(room.Id, playerID, questionNumber, choice, correct, latency)

	if allAnswered {
		room.Timers.Cancel(internal.TimerDeadline)
		room.Timers.Schedule(internal.TimerDebounce, internal.ResolveDebounce, func() {
			g.ProcessAnswers(room)
		})
	}
	return nil
}

// ProcessAnswers resolves the current round exactly once, whether it
// was reached through the 15 s deadline or the all-answered debounce:
// the first caller past the RoundResolved guard wins, the other is a
// no-op, as is any resolution racing a destroyed or finished room.
func (g *GameServer) ProcessAnswers(room *internal.Room) {
	room.Mu.Lock()
	if room.State != internal.StatePlaying || room.RoundResolved {
		room.Mu.Unlock()
		return
	}
	if room.CurrentIndex >= len(room.Questions) {
		room.Mu.Unlock()
		return
	}
	room.RoundResolved = true

	question := room.Questions[room.CurrentIndex]
	roundNumber := room.CurrentIndex + 1

	eliminated := make([]internal.EliminatedPlayer, 0)
	outcomes := make(map[string]bool)
	for _, id := range room.PlayerOrder {
		p := room.Players[id]
		if p == nil || p.Eliminated {
			continue
		}
		if p.CurrentAnswer == question.CorrectAnswer {
			p.CorrectAnswers++
			outcomes[p.Id] = true
			continue
		}
		answerShown := strings.ToUpper(p.CurrentAnswer)
		if answerShown == "" {
			answerShown = "NO ANSWER"
		}
		p.Eliminated = true
		p.EliminationRound = roundNumber
		outcomes[p.Id] = false
		eliminated = append(eliminated, internal.EliminatedPlayer{
			PlayerID: p.Id,
			Name:     p.Name,
			Answer:   answerShown,
		})
	}
	// Answer records are per-round only; drop them after resolution.
	for _, p := range room.Players {
		p.ResetRoundState()
	}

	remaining := room.AliveCount()
	room.CurrentIndex++
	gameEnding := remaining <= 1 || room.CurrentIndex >= len(room.Questions)
	room.Mu.Unlock()

	// Whichever of deadline/debounce did not trigger this pass is stale.
	room.Timers.Cancel(internal.TimerDeadline)
	room.Timers.Cancel(internal.TimerDebounce)

	// The next step is armed before the elimination broadcast so the
	// round chain never has a gap a client could observe.
	if gameEnding {
		room.Timers.Schedule(internal.TimerInterRound, internal.GameEndingSettle, func() {
			g.EndGame(room)
		})
	} else {
		room.Timers.Schedule(internal.TimerInterRound, internal.InterRoundSettle, func() {
			g.startQuestion(room)
		})
	}

	log.Info().
		Str("room", room.Id).
		Int("round", roundNumber).
		Int("eliminated", len(eliminated)).
		Int("remaining", remaining).
		Bool("game_ending", gameEnding).
		Msg("round resolved")

	SafeBroadcastToRoom(room, internal.Message[internal.PlayerEliminatedData]{
		Type: internal.MsgPlayerEliminated,
		Data: internal.PlayerEliminatedData{
			CorrectAnswer: question.CorrectAnswer,
			Eliminated:    eliminated,
			Remaining:     remaining,
		},
	})

	for _, e := range eliminated {
		elim := true
		g.recorder.UpdatePlayerInGame(room.Id, e.PlayerID, store.PlayerUpdate{Eliminated: &elim})
	}
	if question.QuestionID != "" {
		g.recorder.IncrementQuestionUsage(question.QuestionID)
		for _, wasCorrect := range outcomes {
			g.recorder.UpdateQuestionCorrectRate(question.QuestionID, wasCorrect)
		}
	}
}
