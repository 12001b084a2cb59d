// Package http exposes quiz playback over WebSocket. The browser is a thin
// media surface: it streams position reports and answer clicks up, and gets
// play/pause/seek commands and state snapshots back.
package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quizreel-web/internal/domain"
	"quizreel-web/internal/i18n"
	"quizreel-web/internal/playback"
	"quizreel-web/internal/results"
)

// QuizSource loads playable quizzes (backend client, optionally cached).
type QuizSource interface {
	GetQuiz(ctx context.Context, quizID, lang string) (domain.Quiz, error)
}

// ViewTracker records one content view per session start, fire-and-forget.
type ViewTracker interface {
	TrackView(contentID string)
}

type WSHandler struct {
	quizzes    QuizSource
	aggregator *results.Aggregator
	fx         playback.Effects
	tracker    ViewTracker
	tuning     playback.Tuning
	upgrader   websocket.Upgrader
}

func NewWSHandler(quizzes QuizSource, aggregator *results.Aggregator, fx playback.Effects, tracker ViewTracker, tuning playback.Tuning) *WSHandler {
	return &WSHandler{
		quizzes:    quizzes,
		aggregator: aggregator,
		fx:         fx,
		tracker:    tracker,
		tuning:     tuning,
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

type mediaPayload struct {
	QuestionID string  `json:"questionId"`
	Seconds    float64 `json:"seconds"`
}

type answerPayload struct {
	OptionID *string `json:"optionId"`
}

type submitScorePayload struct {
	GuestName string `json:"guestName"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type commandPayload struct {
	Action     string  `json:"action"`
	QuestionID string  `json:"questionId"`
	Seconds    float64 `json:"seconds,omitempty"`
}

// Localized quiz view sent once at session start. Option correctness stays
// server-side; the surface only ever learns it through state snapshots.
type quizView struct {
	ID        string         `json:"id"`
	Slug      string         `json:"slug,omitempty"`
	PosterURL string         `json:"posterUrl,omitempty"`
	ContentID string         `json:"contentId"`
	Title     string         `json:"title"`
	Questions []questionView `json:"questions"`
}

type questionView struct {
	ID        string              `json:"id"`
	Kind      domain.QuestionKind `json:"type"`
	MediaURL  string              `json:"mediaUrl,omitempty"`
	StartTime float64             `json:"startTime"`
	StopTime  float64             `json:"stopTime"`
	EndTime   float64             `json:"endTime"`
	Text      string              `json:"text"`
	Options   []optionView        `json:"options"`
}

type optionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func buildQuizView(quiz domain.Quiz, lang string) quizView {
	title := ""
	if tr, ok := quiz.Translations.Resolve(lang); ok {
		title = tr.Title
	}
	view := quizView{
		ID:        quiz.ID,
		Slug:      quiz.Slug,
		PosterURL: quiz.PosterURL,
		ContentID: quiz.ContentID,
		Title:     title,
	}
	for _, q := range quiz.Questions {
		qv := questionView{
			ID:        q.ID,
			Kind:      q.Kind,
			MediaURL:  q.MediaURL,
			StartTime: q.StartTime,
			StopTime:  q.StopTime,
			EndTime:   q.EndTime,
		}
		if tr, ok := q.Translations.Resolve(lang); ok {
			qv.Text = tr.Text
		}
		for _, opt := range q.Options {
			ov := optionView{ID: opt.ID}
			if tr, ok := opt.Translations.Resolve(lang); ok {
				ov.Text = tr.Text
			}
			qv.Options = append(qv.Options, ov)
		}
		view.Questions = append(view.Questions, qv)
	}
	return view
}

// wsMedia relays the session's media commands to the browser.
type wsMedia struct {
	send chan<- outboundMessage[any]
	done <-chan struct{}
}

func (m wsMedia) Play(questionID string)  { m.push("play", questionID, 0) }
func (m wsMedia) Pause(questionID string) { m.push("pause", questionID, 0) }
func (m wsMedia) Seek(questionID string, seconds float64) {
	m.push("seek", questionID, seconds)
}

func (m wsMedia) push(action, questionID string, seconds float64) {
	msg := outboundMessage[any]{Type: "command", Payload: commandPayload{
		Action:     action,
		QuestionID: questionID,
		Seconds:    seconds,
	}}
	select {
	case m.send <- msg:
	case <-m.done:
	}
}

// ServeWS upgrades the request and runs one playback session per connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}
	lang := i18n.CanonicalLang(r.URL.Query().Get("lang"))
	if lang == "" {
		lang = "en"
	}

	quiz, err := h.quizzes.GetQuiz(r.Context(), quizID, lang)
	switch {
	case err == domain.ErrQuizNotFound || err == domain.ErrQuizEmpty:
		http.Error(w, "quiz not found", http.StatusNotFound)
		return
	case err != nil:
		log.Printf("quiz load failed for %s: %v", quizID, err)
		http.Error(w, "quiz unavailable", http.StatusBadGateway)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// The quiz view goes out before the session's first media commands.
	send <- outboundMessage[any]{Type: "quiz", Payload: buildQuizView(quiz, lang)}

	session, err := playback.NewSession(quiz, wsMedia{send: send, done: closeSignals}, h.fx, h.tuning)
	if err != nil {
		// Loader contract violated; nothing playable.
		send <- errMsg(err.Error())
		close(closeSignals)
		close(send)
		<-writerDone
		return
	}
	defer session.Close()

	if h.tracker != nil {
		h.tracker.TrackView(quiz.ContentID)
	}

	updates, cancel := session.Subscribe()
	defer cancel()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: snap}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "position":
			var payload mediaPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid position payload")
				continue
			}
			session.Position(payload.QuestionID, payload.Seconds)
		case "mediaLoaded":
			var payload mediaPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid mediaLoaded payload")
				continue
			}
			session.MediaLoaded(payload.QuestionID)
		case "mediaError":
			var payload mediaPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid mediaError payload")
				continue
			}
			session.MediaError(payload.QuestionID)
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid answer payload")
				continue
			}
			session.Answer(payload.OptionID)
		case "submitScore":
			var payload submitScorePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid submitScore payload")
				continue
			}
			snap := session.Snapshot()
			if !snap.QuizComplete {
				send <- errMsg("quiz not complete")
				continue
			}
			submission, err := h.aggregator.Submit(r.Context(), payload.GuestName, quiz.ContentID, snap.Score, snap.TotalQuestions)
			if err != nil {
				// Submission stays retryable: the surface keeps the form visible.
				send <- errMsg(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "results", Payload: submission}
		default:
			send <- errMsg("unsupported message type")
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func errMsg(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
