package internal

import "errors"

// Validation errors surfaced to clients as error frames. No state is
// mutated when any of these is returned.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrRoomNotWaiting   = errors.New("room is not accepting players")
	ErrRoomNotPlaying   = errors.New("room is not in a playing state")
	ErrNameTaken        = errors.New("that name is already taken in this room")
	ErrInvalidName      = errors.New("player name must be 2-20 characters")
	ErrInvalidEntryFee  = errors.New("entry fee must be a positive amount")
	ErrNotCreator       = errors.New("only the room creator can start the game")
	ErrNotEnoughPlayers = errors.New("need at least 2 players to start")
	ErrAlreadyStarted   = errors.New("game has already started")
	ErrPlayerUnknown    = errors.New("player is not in this room")
	ErrPlayerEliminated = errors.New("player has been eliminated")
	ErrAlreadyAnswered  = errors.New("answer already submitted for this round")
	ErrInvalidQuestions = errors.New("supplied question list is invalid")
	ErrNoConnection     = errors.New("player has no active connection")
	ErrNotInRoom        = errors.New("join or create a room first")
)
