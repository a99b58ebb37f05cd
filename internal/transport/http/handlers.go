package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"quiz-ranking-service/internal/app"
	"quiz-ranking-service/internal/domain"
)

// NoScoreMessage is returned by /ranking/me before the caller has a correct answer.
const NoScoreMessage = "You have no score yet. Take the quiz first."

// SubmitRequest carries one batch. The answer count is checked by the quiz service,
// so a missing or empty list is reported as a wrong batch size.
type SubmitRequest struct {
	Answers []domain.AnswerSubmission `json:"answers"`
}

type ScoreResponse struct {
	Score int `json:"score"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type QuizHandler struct {
	service *app.QuizService
}

func NewQuizHandler(service *app.QuizService) *QuizHandler {
	return &QuizHandler{service: service}
}

func (h *QuizHandler) Questions(c *gin.Context) {
	questions, err := h.service.GetQuestions(c.Request.Context())
	if err != nil {
		c.JSON(errorResponse(err))
		return
	}
	c.JSON(http.StatusOK, questions)
}

func (h *QuizHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: codeBadRequest})
		return
	}

	result, err := h.service.SubmitAnswers(c.Request.Context(), currentUser(c), req.Answers)
	if err != nil {
		c.JSON(errorResponse(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *QuizHandler) MyScore(c *gin.Context) {
	score, err := h.service.GetUserScore(c.Request.Context(), currentUser(c))
	if err != nil {
		c.JSON(errorResponse(err))
		return
	}
	c.JSON(http.StatusOK, ScoreResponse{Score: score})
}

type RankingHandler struct {
	service *app.RankingService
}

func NewRankingHandler(service *app.RankingService) *RankingHandler {
	return &RankingHandler{service: service}
}

func (h *RankingHandler) Ranking(c *gin.Context) {
	ranking, err := h.service.GetRanking(c.Request.Context())
	if err != nil {
		c.JSON(errorResponse(err))
		return
	}
	c.JSON(http.StatusOK, ranking)
}

func (h *RankingHandler) Me(c *gin.Context) {
	entry, ok, err := h.service.GetUserRanking(c.Request.Context(), currentUser(c))
	if err != nil {
		c.JSON(errorResponse(err))
		return
	}
	if !ok {
		c.JSON(http.StatusOK, MessageResponse{Message: NoScoreMessage})
		return
	}
	c.JSON(http.StatusOK, entry)
}
