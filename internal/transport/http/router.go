package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"quiz-ranking-service/internal/app"
)

// NewRouter wires the REST endpoints and the socket channel onto one engine.
func NewRouter(quiz *app.QuizService, ranking *app.RankingService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	quizHandler := NewQuizHandler(quiz)
	quizRoutes := r.Group("/quiz")
	quizRoutes.Use(RequireUser())
	{
		quizRoutes.GET("/questions", quizHandler.Questions)
		quizRoutes.POST("/submit", quizHandler.Submit)
		quizRoutes.GET("/my-score", quizHandler.MyScore)
	}

	rankingHandler := NewRankingHandler(ranking)
	r.GET("/ranking", rankingHandler.Ranking)
	r.GET("/ranking/me", RequireUser(), rankingHandler.Me)

	wsHandler := NewWSHandler(quiz, ranking)
	r.GET("/ws", RequireUser(), wsHandler.Serve)

	return r
}
