package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tripper "github.com/koscakluka/tripper/core"
	"github.com/koscakluka/tripper/core/maps"
	"github.com/koscakluka/tripper/core/speechtotext"
)

const maxVoiceUpload = 25 << 20

type APIError struct {
	Message string `json:"message"`
}

func writeError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.JSON(status, APIError{Message: tripper.ErrorMessage(err)})
}

func writeMessage(c *gin.Context, status int, message string) {
	c.JSON(status, APIError{Message: message})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.sessions.count()})
}

func (s *Server) languages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": tripper.Languages, "default": tripper.DefaultLanguage})
}

func (s *Server) currencies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"currencies": tripper.Currencies, "default": tripper.DefaultCurrency})
}

type SessionResponse struct {
	ID string `json:"id"`
}

func (s *Server) createSession(c *gin.Context) {
	c.JSON(http.StatusCreated, SessionResponse{ID: s.sessions.create()})
}

func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.sessions.get(c.Param("id"))
	if !ok {
		writeMessage(c, http.StatusNotFound, "session not found")
		return
	}
	sess.mu.Lock()
	snapshot := sess.conv.Snapshot()
	sess.mu.Unlock()
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) deleteSession(c *gin.Context) {
	if !s.sessions.delete(c.Param("id")) {
		writeMessage(c, http.StatusNotFound, "session not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// resetSession clears the history but keeps the id usable.
func (s *Server) resetSession(c *gin.Context) {
	sess, ok := s.sessions.get(c.Param("id"))
	if !ok {
		writeMessage(c, http.StatusNotFound, "session not found")
		return
	}
	sess.mu.Lock()
	sess.conv.Reset()
	sess.mu.Unlock()
	c.Status(http.StatusNoContent)
}

type ChatRequest struct {
	Message  string `json:"message"`
	Audio    bool   `json:"audio"`
	Language string `json:"language"`
}

func (s *Server) chat(c *gin.Context) {
	sess, ok := s.sessions.get(c.Param("id"))
	if !ok {
		writeMessage(c, http.StatusNotFound, "session not found")
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(c, http.StatusBadRequest, tripper.ErrEmptyMessage)
		return
	}

	s.streamReply(c, sess, req.Message, req.Audio, req.Language)
}

// voice transcribes an uploaded recording and chats with the transcript.
// Failed transcriptions are sent as the message, as users see them in the
// history.
func (s *Server) voice(c *gin.Context) {
	sess, ok := s.sessions.get(c.Param("id"))
	if !ok {
		writeMessage(c, http.StatusNotFound, "session not found")
		return
	}
	if s.transcriber == nil {
		writeMessage(c, http.StatusServiceUnavailable, speechtotext.UserMessage(speechtotext.ErrUnavailable))
		return
	}

	header, err := c.FormFile("audio")
	if err != nil {
		writeError(c, http.StatusBadRequest, tripper.ErrEmptyMessage)
		return
	}
	file, err := header.Open()
	if err != nil {
		writeMessage(c, http.StatusBadRequest, "cannot open recording")
		return
	}
	defer file.Close()

	recording, err := io.ReadAll(io.LimitReader(file, maxVoiceUpload))
	if err != nil {
		writeMessage(c, http.StatusBadRequest, "cannot read recording")
		return
	}

	language := c.PostForm("language")
	transcript, err := s.transcriber.Transcribe(c.Request.Context(), recording, speechtotext.LanguageTag(tripper.LanguageCode(language)))
	if err != nil {
		logger.Warn("transcription failed", "error", err)
		transcript = speechtotext.UserMessage(err)
	}

	s.streamReply(c, sess, transcript, c.PostForm("audio") == "true", language)
}

// streamReply sends every conversation snapshot as a server sent event.
func (s *Server) streamReply(c *gin.Context, sess *session, message string, audio bool, language string) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	for snapshot := range s.assistant.Submit(c.Request.Context(), sess.conv, message, audio, language) {
		c.SSEvent("conversation", snapshot)
		c.Writer.Flush()
		if c.Request.Context().Err() != nil {
			break
		}
	}
	c.SSEvent("done", "[DONE]")
	c.Writer.Flush()
}

type PlanResponse struct {
	Itinerary string            `json:"itinerary"`
	Places    tripper.PlaceList `json:"places"`
	Error     string            `json:"error,omitempty"`
}

func (s *Server) plan(c *gin.Context) {
	var constraints tripper.TripConstraints
	if err := c.ShouldBindJSON(&constraints); err != nil {
		writeMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if currency, ok := tripper.LookupCurrency(constraints.Currency); ok {
		constraints.Currency = currency.Code
		constraints.Budget = currency.Clamp(constraints.Budget)
	}

	plan, err := s.planner.Generate(c.Request.Context(), constraints)
	if err != nil {
		status := http.StatusBadGateway
		var validationErr *tripper.ValidationError
		if errors.As(err, &validationErr) {
			status = http.StatusBadRequest
		}
		_ = c.Error(err)
		c.JSON(status, PlanResponse{Places: tripper.PlaceList{}, Error: tripper.ErrorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, PlanResponse{Itinerary: plan.Itinerary, Places: plan.Places})
}

type MapRequest struct {
	Places tripper.PlaceList `json:"places"`
}

// renderMap answers with a Leaflet page, or 204 when there is nothing to show.
func (s *Server) renderMap(c *gin.Context) {
	var req MapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	model, ok := s.planner.BuildMap(c.Request.Context(), req.Places)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := maps.Render(c.Writer, *model, s.mapOptions...); err != nil {
		_ = c.Error(err)
	}
}
