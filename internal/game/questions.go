package game

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal"
)

// QuestionSource produces question sets for new games. The production
// source is the external generator service; any failure there falls
// back to the built-in set so a match can always start.
type QuestionSource interface {
	Fetch(ctx context.Context, count int) ([]internal.Question, error)
}

const questionFetchTimeout = 5 * time.Second

// resolveQuestions asks the configured source and falls back to the
// built-in set. Gameplay never fails because questions could not be
// fetched.
func (g *GameServer) resolveQuestions(roomID string) []internal.Question {
	if g.questions != nil {
		ctx, cancel := context.WithTimeout(context.Background(), questionFetchTimeout)
		defer cancel()
		questions, err := g.questions.Fetch(ctx, internal.QuestionsPerGame)
		if err == nil {
			if questions, err = normalizeQuestions(questions); err == nil && len(questions) > 0 {
				return questions
			}
		}
		log.Warn().Err(err).Str("room", roomID).Msg("question source failed, using fallback set")
	}
	return FallbackQuestions()
}

// HTTPQuestionSource fetches generated questions from the question
// service over HTTP.
type HTTPQuestionSource struct {
	URL    string
	Client *http.Client
}

func NewHTTPQuestionSource(url string) *HTTPQuestionSource {
	return &HTTPQuestionSource{
		URL:    url,
		Client: &http.Client{Timeout: questionFetchTimeout},
	}
}

func (s *HTTPQuestionSource) Fetch(ctx context.Context, count int) ([]internal.Question, error) {
	url := fmt.Sprintf("%s?count=%d", s.URL, count)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build question request: %w", err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("question service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("question service returned status %d", resp.StatusCode)
	}
	var questions []internal.Question
	if err := json.NewDecoder(resp.Body).Decode(&questions); err != nil {
		return nil, fmt.Errorf("failed to decode question response: %w", err)
	}
	return questions, nil
}

// FallbackQuestions is the built-in set used when no questions are
// supplied and the external source is unavailable.
func FallbackQuestions() []internal.Question {
	return []internal.Question{
		{
			Text:          "What is the largest planet in our solar system?",
			Choices:       map[string]string{"a": "Earth", "b": "Jupiter", "c": "Saturn", "d": "Neptune"},
			CorrectAnswer: "b",
		},
		{
			Text:          "Which element has the chemical symbol 'Au'?",
			Choices:       map[string]string{"a": "Silver", "b": "Copper", "c": "Gold", "d": "Aluminium"},
			CorrectAnswer: "c",
		},
		{
			Text:          "In which year did the first human land on the Moon?",
			Choices:       map[string]string{"a": "1965", "b": "1969", "c": "1972", "d": "1959"},
			CorrectAnswer: "b",
		},
		{
			Text:          "What is the capital city of Australia?",
			Choices:       map[string]string{"a": "Sydney", "b": "Melbourne", "c": "Perth", "d": "Canberra"},
			CorrectAnswer: "d",
		},
		{
			Text:          "How many sides does a hexagon have?",
			Choices:       map[string]string{"a": "5", "b": "6", "c": "7", "d": "8"},
			CorrectAnswer: "b",
		},
		{
			Text:          "Which ocean is the deepest on Earth?",
			Choices:       map[string]string{"a": "Atlantic", "b": "Indian", "c": "Pacific", "d": "Arctic"},
			CorrectAnswer: "c",
		},
		{
			Text:          "Who painted the Mona Lisa?",
			Choices:       map[string]string{"a": "Leonardo da Vinci", "b": "Michelangelo", "c": "Raphael", "d": "Donatello"},
			CorrectAnswer: "a",
		},
		{
			Text:          "What is the smallest prime number?",
			Choices:       map[string]string{"a": "0", "b": "1", "c": "2", "d": "3"},
			CorrectAnswer: "c",
		},
		{
			Text:          "Which country hosted the 2016 Summer Olympics?",
			Choices:       map[string]string{"a": "China", "b": "Brazil", "c": "United Kingdom", "d": "Japan"},
			CorrectAnswer: "b",
		},
		{
			Text:          "What gas do plants primarily absorb for photosynthesis?",
			Choices:       map[string]string{"a": "Oxygen", "b": "Nitrogen", "c": "Hydrogen", "d": "Carbon dioxide"},
			CorrectAnswer: "d",
		},
	}
}
