package domain

import (
	"strings"
	"time"
)

// Letter identifies one of the three options of a question.
type Letter string

const (
	LetterA Letter = "A"
	LetterB Letter = "B"
	LetterC Letter = "C"
)

// ParseLetter trims and upper-cases raw input and reports whether it names a valid option.
func ParseLetter(raw string) (Letter, bool) {
	l := Letter(strings.ToUpper(strings.TrimSpace(raw)))
	return l, l.Valid()
}

func (l Letter) Valid() bool {
	switch l {
	case LetterA, LetterB, LetterC:
		return true
	}
	return false
}

// Question is a multiple-choice question from the bank.
type Question struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	CorrectAnswer Letter `json:"correctAnswer"`
	Active        bool   `json:"active"`
}

// OptionText returns the text behind a letter, or "" for an unknown letter.
func (q Question) OptionText(l Letter) string {
	switch l {
	case LetterA:
		return q.OptionA
	case LetterB:
		return q.OptionB
	case LetterC:
		return q.OptionC
	}
	return ""
}

// View strips the correct answer so the question can be shown to a player.
func (q Question) View() QuestionView {
	return QuestionView{
		ID:   q.ID,
		Text: q.Text,
		Options: Options{
			A: q.OptionA,
			B: q.OptionB,
			C: q.OptionC,
		},
	}
}

// Options maps letters to option texts.
type Options struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
}

// QuestionView is what a player sees when requesting a quiz.
type QuestionView struct {
	ID      string  `json:"id"`
	Text    string  `json:"question"`
	Options Options `json:"options"`
}

// AnswerSubmission is a single answer of a submitted batch.
type AnswerSubmission struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// GradedAnswer is what the engine hands to the answer store.
type GradedAnswer struct {
	UserID         string
	QuestionID     string
	SelectedAnswer Letter
	IsCorrect      bool
}

// AnsweredEvent is one persisted grading outcome.
type AnsweredEvent struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	QuestionID     string    `json:"questionId"`
	SelectedAnswer Letter    `json:"selectedAnswer"`
	IsCorrect      bool      `json:"isCorrect"`
	CreatedAt      time.Time `json:"createdAt"`
}

// AnswerDetail pairs a letter with its option text.
type AnswerDetail struct {
	Letter Letter `json:"letter"`
	Text   string `json:"text"`
}

// AnswerResult is the per-question outcome inside a QuizResult.
type AnswerResult struct {
	QuestionID     string       `json:"questionId"`
	QuestionText   string       `json:"question"`
	SelectedAnswer AnswerDetail `json:"selectedAnswer"`
	CorrectAnswer  AnswerDetail `json:"correctAnswer"`
	IsCorrect      bool         `json:"isCorrect"`
}

// QuizResult summarizes one graded batch.
type QuizResult struct {
	TotalQuestions int            `json:"totalQuestions"`
	CorrectAnswers int            `json:"correctAnswers"`
	Score          int            `json:"score"`
	Answers        []AnswerResult `json:"answers"`
}

// ScoreRow is a per-user count of correct answers.
type ScoreRow struct {
	UserID string
	Score  int
}

// UnknownDisplayName is shown for users the directory cannot resolve.
const UnknownDisplayName = "Unknown"

// User is an account as seeded into the directory; accounts themselves are managed elsewhere.
type User struct {
	ID       string
	Username string
	Email    string
}

// Identity prefers the username and falls back to the email.
func (u User) Identity() UserIdentity {
	name := u.Username
	if name == "" {
		name = u.Email
	}
	return UserIdentity{ID: u.ID, DisplayName: name}
}

// UserIdentity is how a user appears on the leaderboard.
type UserIdentity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// UserScore is a leaderboard row.
type UserScore struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
	Position    int    `json:"position"`
}

// Ranking is the ordered leaderboard.
type Ranking struct {
	Rankings   []UserScore `json:"rankings"`
	TotalUsers int         `json:"totalUsers"`
}
