package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"quiz-ranking-service/internal/app"
)

// Socket message types. Every request gets exactly one reply; nothing is pushed.
const (
	msgQuestions = "questions"
	msgSubmit    = "submit"
	msgResult    = "result"
	msgScore     = "score"
	msgRanking   = "ranking"
	msgMyRanking = "myRanking"
	msgError     = "error"
)

type WSHandler struct {
	quiz     *app.QuizService
	ranking  *app.RankingService
	upgrader websocket.Upgrader
}

func NewWSHandler(quiz *app.QuizService, ranking *app.RankingService) *WSHandler {
	return &WSHandler{
		quiz:    quiz,
		ranking: ranking,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Serve upgrades the request and serves quiz and ranking requests for the user
// authenticated by RequireUser until the client disconnects.
func (h *WSHandler) Serve(c *gin.Context) {
	userID := currentUser(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Replies are written from this loop only, so writes never overlap.
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws read error: %v", err)
			}
			return
		}
		if err := conn.WriteJSON(h.handle(c.Request.Context(), userID, inbound)); err != nil {
			log.Printf("ws write error: %v", err)
			return
		}
	}
}

func (h *WSHandler) handle(ctx context.Context, userID string, inbound inboundMessage) outboundMessage {
	switch inbound.Type {
	case msgQuestions:
		questions, err := h.quiz.GetQuestions(ctx)
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage{Type: msgQuestions, Payload: questions}
	case msgSubmit:
		var req SubmitRequest
		if err := json.Unmarshal(inbound.Payload, &req); err != nil {
			return badRequest("invalid submit payload")
		}
		result, err := h.quiz.SubmitAnswers(ctx, userID, req.Answers)
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage{Type: msgResult, Payload: result}
	case msgScore:
		score, err := h.quiz.GetUserScore(ctx, userID)
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage{Type: msgScore, Payload: ScoreResponse{Score: score}}
	case msgRanking:
		ranking, err := h.ranking.GetRanking(ctx)
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage{Type: msgRanking, Payload: ranking}
	case msgMyRanking:
		entry, ok, err := h.ranking.GetUserRanking(ctx, userID)
		if err != nil {
			return errorMessage(err)
		}
		if !ok {
			return outboundMessage{Type: msgMyRanking, Payload: MessageResponse{Message: NoScoreMessage}}
		}
		return outboundMessage{Type: msgMyRanking, Payload: entry}
	}
	return badRequest("unsupported message type")
}

func errorMessage(err error) outboundMessage {
	status, body := errorResponse(err)
	return outboundMessage{Type: msgError, Payload: errorPayload{Status: status, Code: body.Code, Message: body.Error}}
}

func badRequest(message string) outboundMessage {
	return outboundMessage{Type: msgError, Payload: errorPayload{
		Status:  http.StatusBadRequest,
		Code:    codeBadRequest,
		Message: message,
	}}
}
