package internal

// Message is the wire envelope for every frame in both directions.
type Message[T any] struct {
	Type MessageType `json:"type"`
	Data T           `json:"data,omitempty"`
}

// MessageType is the closed set of frame kinds. Inbound types are
// dispatched with an exhaustive switch in the gateway; anything outside
// the set gets a single error frame back.
type MessageType string

const (
	// Inbound
	MsgCreateRoom   MessageType = "create_room"
	MsgJoinRoom     MessageType = "join_room"
	MsgLeaveRoom    MessageType = "leave_room"
	MsgStartGame    MessageType = "start_game"
	MsgPlayerAnswer MessageType = "player_answer"
	MsgPing         MessageType = "ping"

	// Outbound
	MsgRoomUpdate       MessageType = "room_update"
	MsgGameStarted      MessageType = "game_started"
	MsgNextQuestion     MessageType = "next_question"
	MsgPlayerEliminated MessageType = "player_eliminated"
	MsgGameOver         MessageType = "game_over"
	MsgError            MessageType = "error"
	MsgPong             MessageType = "pong"
)

// =============================================================================
// INBOUND PAYLOADS
// =============================================================================

type CreateRoomData struct {
	PlayerName    string  `json:"playerName"`
	EntryFee      float64 `json:"entryFee"`
	WalletAddress string  `json:"walletAddress,omitempty"`
}

type JoinRoomData struct {
	RoomID        string `json:"roomId"`
	PlayerName    string `json:"playerName"`
	WalletAddress string `json:"walletAddress,omitempty"`
}

type StartGameData struct {
	Questions []Question `json:"questions,omitempty"`
}

type PlayerAnswerData struct {
	Answer string `json:"answer"`
}

// =============================================================================
// OUTBOUND PAYLOADS
// =============================================================================

type RoomUpdateData struct {
	RoomID     string           `json:"roomId"`
	PlayerID   string           `json:"playerId,omitempty"`
	Success    bool             `json:"success"`
	GamePhase  RoomState        `json:"gamePhase"`
	CreatorID  string           `json:"creatorId"`
	EntryFee   float64          `json:"entryFee"`
	PrizePool  float64          `json:"prizePool"`
	MaxPlayers int              `json:"maxPlayers"`
	Players    []PlayerSnapshot `json:"players"`
}

type GameStartedData struct {
	Countdown      int       `json:"countdown"`
	TotalQuestions int       `json:"totalQuestions"`
	PrizePool      float64   `json:"prizePool"`
	RoomState      RoomState `json:"roomState"`
}

type NextQuestionData struct {
	QuestionNumber int               `json:"questionNumber"`
	Question       string            `json:"question"`
	Choices        map[string]string `json:"choices"`
	CorrectAnswer  string            `json:"correctAnswer"`
	TimeLimit      int               `json:"timeLimit"`
	AlivePlayers   int               `json:"alivePlayers"`
	TotalQuestions int               `json:"totalQuestions"`
}

// AnswerAckData is sent privately to the submitting connection only.
type AnswerAckData struct {
	Success        bool   `json:"success"`
	Answer         string `json:"answer"`
	QuestionNumber int    `json:"questionNumber"`
}

type EliminatedPlayer struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Answer   string `json:"answer"` // submitted choice, or "NO ANSWER"
}

type PlayerEliminatedData struct {
	CorrectAnswer string             `json:"correctAnswer"`
	Eliminated    []EliminatedPlayer `json:"eliminated"`
	Remaining     int                `json:"remaining"`
}

type WinnerData struct {
	PlayerID string  `json:"playerId"`
	Name     string  `json:"name"`
	Prize    float64 `json:"prize"`
}

type FinalStat struct {
	PlayerID         string `json:"playerId"`
	Name             string `json:"name"`
	EliminationRound int    `json:"eliminationRound,omitempty"`
	CorrectAnswers   int    `json:"correctAnswers"`
	IsWinner         bool   `json:"isWinner"`
}

type GameOverData struct {
	Winner         *WinnerData `json:"winner"` // null on a tie or total wipeout
	PrizePool      float64     `json:"prizePool"`
	PlatformFee    float64     `json:"platformFee"`
	TotalQuestions int         `json:"totalQuestions"`
	FinalStats     []FinalStat `json:"finalStats"`
}

type ErrorData struct {
	Message string `json:"message"`
}

func ErrorMessage(msg string) Message[ErrorData] {
	return Message[ErrorData]{Type: MsgError, Data: ErrorData{Message: msg}}
}
