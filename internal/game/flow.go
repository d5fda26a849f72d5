package game

import (
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal"
	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal/store"
)

// =============================================================================
// GAME FLOW - COUNTDOWN, QUESTION LOOP, GAME OVER
// =============================================================================

// StartGame moves a WAITING room to STARTING: questions are resolved
// and frozen, sessions are opened, and the 3-tick countdown begins.
// Only the creator may start, and only with at least two players.
func (g *GameServer) StartGame(room *internal.Room, playerID string, data internal.StartGameData) error {
	supplied, err := normalizeQuestions(data.Questions)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	if room.State != internal.StateWaiting {
		room.Mu.Unlock()
		return internal.ErrAlreadyStarted
	}
	if room.CreatorID != playerID {
		room.Mu.Unlock()
		return internal.ErrNotCreator
	}
	if len(room.Players) < internal.MinPlayersToStart {
		room.Mu.Unlock()
		return internal.ErrNotEnoughPlayers
	}
	// Freeze the pool and close the doors before the (possibly slow)
	// question fetch; joins are rejected from here on.
	room.State = internal.StateStarting
	room.Countdown = internal.CountdownTicks
	playerIDs := append([]string(nil), room.PlayerOrder...)
	room.Mu.Unlock()

	questions := supplied
	if len(questions) == 0 {
		questions = g.resolveQuestions(room.Id)
	}

	room.Mu.Lock()
	room.Questions = questions
	room.CurrentIndex = 0
	totalQuestions := len(questions)
	prizePool := room.PrizePool
	room.Mu.Unlock()

	log.Info().
		Str("room", room.Id).
		Int("players", len(playerIDs)).
		Int("questions", totalQuestions).
		Float64("prize_pool", prizePool).
		Msg("game starting")

	status := string(internal.StateStarting)
	g.recorder.UpdateGame(room.Id, store.GameUpdate{Status: &status, Questions: questions})
	for _, id := range playerIDs {
		g.recorder.CreateSession(room.Id, id)
	}

	// Arm the first tick before broadcasting so the countdown is already
	// running when clients see it.
	room.Timers.Schedule(internal.TimerCountdown, internal.CountdownTickInterval, func() {
		g.countdownTick(room)
	})
	SafeBroadcastToRoom(room, internal.Message[internal.GameStartedData]{
		Type: internal.MsgGameStarted,
		Data: internal.GameStartedData{
			Countdown:      internal.CountdownTicks,
			TotalQuestions: totalQuestions,
			PrizePool:      prizePool,
			RoomState:      internal.StateStarting,
		},
	})
	return nil
}

// countdownTick fires once per second during STARTING. The zero tick
// is the GO signal: the room enters PLAYING and the first question is
// scheduled after a short settle.
func (g *GameServer) countdownTick(room *internal.Room) {
	room.Mu.Lock()
	if room.State != internal.StateStarting {
		room.Mu.Unlock()
		return
	}
	room.Countdown--
	n := room.Countdown
	if n <= 0 {
		room.State = internal.StatePlaying
	}
	totalQuestions := len(room.Questions)
	prizePool := room.PrizePool
	state := room.State
	room.Mu.Unlock()

	if n > 0 {
		room.Timers.Schedule(internal.TimerCountdown, internal.CountdownTickInterval, func() {
			g.countdownTick(room)
		})
	} else {
		log.Info().Str("room", room.Id).Msg("countdown finished, entering play")
		status := string(internal.StatePlaying)
		g.recorder.UpdateGame(room.Id, store.GameUpdate{Status: &status})
		room.Timers.Schedule(internal.TimerInterRound, internal.PostCountdownSettle, func() {
			g.startQuestion(room)
		})
	}

	SafeBroadcastToRoom(room, internal.Message[internal.GameStartedData]{
		Type: internal.MsgGameStarted,
		Data: internal.GameStartedData{
			Countdown:      n,
			TotalQuestions: totalQuestions,
			PrizePool:      prizePool,
			RoomState:      state,
		},
	})
}

// startQuestion reveals the current question and arms its deadline.
func (g *GameServer) startQuestion(room *internal.Room) {
	room.Mu.Lock()
	if room.State != internal.StatePlaying {
		room.Mu.Unlock()
		return
	}
	if room.CurrentIndex >= len(room.Questions) {
		room.Mu.Unlock()
		g.EndGame(room)
		return
	}
	for _, p := range room.Players {
		p.ResetRoundState()
	}
	room.RoundResolved = false
	room.QuestionStart = g.clock.Now()
	q := room.Questions[room.CurrentIndex]
	questionNumber := room.CurrentIndex + 1
	alive := room.AliveCount()
	totalQuestions := len(room.Questions)
	room.Mu.Unlock()

	log.Info().
		Str("room", room.Id).
		Int("question", questionNumber).
		Int("alive", alive).
		Msg("question revealed")

	// Deadline armed before the reveal broadcast.
	room.Timers.Schedule(internal.TimerDeadline, internal.QuestionTimeLimit, func() {
		g.ProcessAnswers(room)
	})
	SafeBroadcastToRoom(room, internal.Message[internal.NextQuestionData]{
		Type: internal.MsgNextQuestion,
		Data: internal.NextQuestionData{
			QuestionNumber: questionNumber,
			Question:       q.Text,
			Choices:        q.Choices,
			CorrectAnswer:  q.CorrectAnswer,
			TimeLimit:      int(internal.QuestionTimeLimit.Seconds()),
			AlivePlayers:   alive,
			TotalQuestions: totalQuestions,
		},
	})
}

// EndGame finishes the room: computes the winner (or a null winner on
// a tie or total wipeout), broadcasts game_over with final standings,
// and arms the 30 s auto-deletion. Safe to call from several paths;
// only the first caller past the state guard does the work.
func (g *GameServer) EndGame(room *internal.Room) {
	room.Mu.Lock()
	if room.State == internal.StateFinished {
		room.Mu.Unlock()
		return
	}
	room.State = internal.StateFinished

	var winner *internal.Player
	if alive := room.AlivePlayers(); len(alive) == 1 {
		winner = alive[0]
	}
	prizes := internal.ComputePrizes(room.PrizePool)
	prizePool := room.PrizePool
	totalQuestions := len(room.Questions)

	var winnerData *internal.WinnerData
	if winner != nil {
		winnerData = &internal.WinnerData{
			PlayerID: winner.Id,
			Name:     winner.Name,
			Prize:    prizes.WinnerPrize,
		}
	}
	finalStats := make([]internal.FinalStat, 0, len(room.PlayerOrder))
	for _, id := range room.PlayerOrder {
		p := room.Players[id]
		if p == nil {
			continue
		}
		finalStats = append(finalStats, internal.FinalStat{
			PlayerID:         p.Id,
			Name:             p.Name,
			EliminationRound: p.EliminationRound,
			CorrectAnswers:   p.CorrectAnswers,
			IsWinner:         winner != nil && p.Id == winner.Id,
		})
	}
	room.Mu.Unlock()

	// Late question or resolution timers must never fire into a
	// finished room.
	room.Timers.Cancel(internal.TimerCountdown)
	room.Timers.Cancel(internal.TimerDeadline)
	room.Timers.Cancel(internal.TimerDebounce)
	room.Timers.Cancel(internal.TimerInterRound)

	// Armed before the broadcast so the room is already on its way out
	// when clients see the result.
	room.Timers.Schedule(internal.TimerAutoDelete, internal.RoomAutoDeleteDelay, func() {
		g.teardownRoom(room)
	})

	winnerID := ""
	if winnerData != nil {
		winnerID = winnerData.PlayerID
	}
	log.Info().
		Str("room", room.Id).
		Str("winner", winnerID).
		Float64("prize_pool", prizePool).
		Msg("game over")

	SafeBroadcastToRoom(room, internal.Message[internal.GameOverData]{
		Type: internal.MsgGameOver,
		Data: internal.GameOverData{
			Winner:         winnerData,
			PrizePool:      prizePool,
			PlatformFee:    prizes.PlatformFee,
			TotalQuestions: totalQuestions,
			FinalStats:     finalStats,
		},
	})

	g.recorder.FinishGame(room.Id, winnerID)
	status := string(internal.StateFinished)
	g.recorder.UpdateGame(room.Id, store.GameUpdate{Status: &status})
	for position, stat := range rankFinalStats(finalStats) {
		pos := position + 1
		upd := store.PlayerUpdate{Position: &pos}
		prize := 0.0
		if stat.IsWinner {
			prize = prizes.WinnerPrize
		}
		upd.PrizeWon = &prize
		g.recorder.UpdatePlayerInGame(room.Id, stat.PlayerID, upd)
		g.recorder.CompleteSession(room.Id, stat.PlayerID, stat.CorrectAnswers, prize)
	}
}

// rankFinalStats orders standings: winner first, then by how long each
// player survived, then by correct answers.
func rankFinalStats(stats []internal.FinalStat) []internal.FinalStat {
	ranked := append([]internal.FinalStat(nil), stats...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.IsWinner != b.IsWinner {
			return a.IsWinner
		}
		if a.EliminationRound != b.EliminationRound {
			// 0 means never eliminated, which outranks any round number.
			if a.EliminationRound == 0 || b.EliminationRound == 0 {
				return a.EliminationRound == 0
			}
			return a.EliminationRound > b.EliminationRound
		}
		return a.CorrectAnswers > b.CorrectAnswers
	})
	return ranked
}

// normalizeQuestions validates a caller-supplied question list and
// lower-cases the answer keys. An empty list means "none supplied".
func normalizeQuestions(questions []internal.Question) ([]internal.Question, error) {
	if len(questions) == 0 {
		return nil, nil
	}
	out := make([]internal.Question, 0, len(questions))
	for _, q := range questions {
		q.CorrectAnswer = strings.ToLower(strings.TrimSpace(q.CorrectAnswer))
		if strings.TrimSpace(q.Text) == "" || len(q.Choices) != 4 {
			return nil, internal.ErrInvalidQuestions
		}
		if _, ok := q.Choices[q.CorrectAnswer]; !ok {
			return nil, internal.ErrInvalidQuestions
		}
		out = append(out, q)
	}
	return out, nil
}
