package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/view"
)

// WSHandler lets a browser client play one quiz session per connection.
// The handler owns the countdown clock for its session and discards the
// session when the socket closes.
type WSHandler struct {
	service  *app.QuizService
	clock    app.Clock
	tick     time.Duration
	defaults domain.SessionConfig
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, clock app.Clock, tick time.Duration, defaults domain.SessionConfig) *WSHandler {
	return &WSHandler{
		service:  service,
		clock:    clock,
		tick:     tick,
		defaults: defaults,
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

type startPayload struct {
	Amount     int    `json:"amount"`
	Category   int    `json:"category"`
	Difficulty string `json:"difficulty"`
	Type       string `json:"type"`
	Countdown  int    `json:"countdown"`
}

type selectPayload struct {
	Index  int    `json:"index"`
	Answer string `json:"answer"`
}

type sessionPayload struct {
	ID string `json:"id"`
}

type tickPayload struct {
	Remaining int `json:"remaining"`
}

type selectedPayload struct {
	Index    int  `json:"index"`
	Accepted bool `json:"accepted"`
	Correct  bool `json:"correct"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}

// sessionConfig fills amount and countdown from the server defaults when the
// client leaves them out. Category, difficulty and type must come from the client.
func (h *WSHandler) sessionConfig(p startPayload) domain.SessionConfig {
	cfg := domain.SessionConfig{
		Amount:     p.Amount,
		Category:   p.Category,
		Difficulty: domain.Difficulty(p.Difficulty),
		Type:       domain.QuestionType(p.Type),
		Countdown:  p.Countdown,
	}
	if cfg.Amount == 0 {
		cfg.Amount = h.defaults.Amount
	}
	if cfg.Countdown == 0 {
		cfg.Countdown = h.defaults.Countdown
	}
	return cfg
}

// ServeWS upgrades HTTP requests to websockets and wires them into a quiz session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})
	close(updatesDone) // replaced once a session subscribes

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				slog.Warn("ws write error", "error", err)
				return
			}
		}
	}()

	var (
		session     *app.Session
		unsubscribe = func() {}
	)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid start payload")
				continue
			}
			cfg := h.sessionConfig(payload)

			if session != nil {
				// Only a failed load may be retried on the same connection.
				if _, err := session.Start(ctx, cfg); err != nil {
					send <- errorMessage(err.Error())
				}
				continue
			}

			started, _, err := h.service.StartSession(ctx, cfg)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			session = started
			send <- outboundMessage[any]{Type: "session", Payload: sessionPayload{ID: session.ID()}}

			updates, cancel := session.Subscribe()
			unsubscribe = cancel
			updatesDone = make(chan struct{})
			go h.forward(session, updates, send, closeSignals, updatesDone)

		case "select":
			if session == nil {
				send <- errorMessage(domain.ErrNotReady.Error())
				continue
			}
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid select payload")
				continue
			}
			correct, err := session.RecordAnswer(payload.Index, payload.Answer)
			send <- outboundMessage[any]{Type: "selected", Payload: selectedPayload{
				Index:    payload.Index,
				Accepted: err == nil,
				Correct:  correct,
			}}

		case "submit":
			if session == nil {
				send <- errorMessage(domain.ErrNotReady.Error())
				continue
			}
			if phase := session.Phase(); phase != domain.PhaseReady && phase != domain.PhaseSubmitted {
				send <- errorMessage(domain.ErrNotReady.Error())
				continue
			}
			session.Submit()

		default:
			send <- errorMessage("unsupported message type")
		}
	}

	close(closeSignals)
	unsubscribe()
	<-updatesDone
	if session != nil {
		h.service.Discard(session.ID())
	}
	close(send)
	<-writerDone
}

// forward renders session snapshots onto the socket and attaches the
// countdown clock once questions are loaded.
func (h *WSHandler) forward(session *app.Session, updates <-chan domain.SessionState, send chan<- outboundMessage[any], closeSignals <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	clockStarted := false
	for {
		var state domain.SessionState
		select {
		case s, ok := <-updates:
			if !ok {
				return
			}
			state = s
		case <-closeSignals:
			return
		}

		if state.Phase == domain.PhaseReady && !clockStarted {
			if err := session.StartClock(h.clock, h.tick); err != nil && !errors.Is(err, domain.ErrClockRunning) {
				slog.Warn("start countdown", "session", session.ID(), "error", err)
			} else {
				clockStarted = true
			}
		}

		for _, msg := range h.render(session, state) {
			select {
			case send <- msg:
			case <-closeSignals:
				return
			}
		}
	}
}

func (h *WSHandler) render(session *app.Session, state domain.SessionState) []outboundMessage[any] {
	switch state.Change {
	case domain.ChangeTick:
		return []outboundMessage[any]{{Type: "tick", Payload: tickPayload{Remaining: state.Remaining}}}
	case domain.ChangeDisposed:
		return nil
	}

	msgs := []outboundMessage[any]{{Type: "state", Payload: view.Render(state, view.NewRand())}}
	if state.Phase == domain.PhaseSubmitted {
		if result, ok := session.Result(); ok {
			msgs = append(msgs, outboundMessage[any]{Type: "result", Payload: result})
			slog.Info("quiz session submitted",
				"session", result.SessionID,
				"score", result.Score,
				"total", result.Total,
				"reason", result.Reason,
			)
		}
	}
	return msgs
}
