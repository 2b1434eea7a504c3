package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"quiz-session-service/internal/app"
)

// Handler exposes the session coordinator over websockets: participants on
// /connect/{participant}, the host on /admin.
type Handler struct {
	coordinator *app.Coordinator
	upgrader    websocket.Upgrader
}

func NewHandler(coordinator *app.Coordinator) *Handler {
	return &Handler{
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Routes mounts the websocket endpoints and a health probe.
func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.HandleFunc("/connect/{participant}", h.ServeParticipant)
	r.HandleFunc("/admin", h.ServeHost)
	return r
}

type textMessage struct {
	Text string `json:"text"`
}

type answerMessage struct {
	Answer *string `json:"answer"`
}

// ServeParticipant handles one participant session: greet, register, then
// route inbound answers until disconnect.
func (h *Handler) ServeParticipant(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["participant"]

	wsconn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	c := newConn(name, wsconn)

	if h.coordinator.State() == app.StateAwaitingQuiz {
		_ = c.Close("Quiz not started yet")
		return
	}

	_ = c.Send(textMessage{Text: h.coordinator.QuizName()})
	_ = c.Send(textMessage{Text: "Check your name on the screen!"})

	participant, err := h.coordinator.Join(name, c)
	if err != nil {
		_ = c.Close("Quiz not started yet")
		return
	}
	defer h.coordinator.Leave(participant)
	defer func() { _ = c.Close("") }()

	for {
		_, raw, err := wsconn.ReadMessage()
		if err != nil {
			return
		}
		log.Printf("client %s sent: %s", name, raw)

		var in answerMessage
		if err := json.Unmarshal(raw, &in); err != nil || in.Answer == nil {
			// Protocol misuse is dropped, not failed.
			log.Printf("ignoring malformed payload from %s", name)
			continue
		}
		h.coordinator.SubmitAnswer(participant, *in.Answer)
	}
}

// ServeHost handles the host control session. A case-insensitive "y"
// advances the quiz; anything else is ignored. The handler returns when
// the quiz ends or the host goes away; losing the host never tears the
// session down.
func (h *Handler) ServeHost(w http.ResponseWriter, r *http.Request) {
	wsconn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	c := newConn("host", wsconn)
	defer func() { _ = c.Close("") }()

	h.coordinator.SetHost(c)
	defer h.coordinator.ClearHost(c)

	_ = c.sendText(fmt.Sprintf("Admin for the quiz %q", h.coordinator.QuizName()))

	for {
		_, raw, err := wsconn.ReadMessage()
		if err != nil {
			log.Printf("host disconnected")
			return
		}
		command := strings.TrimSpace(string(raw))
		log.Printf("host sent: %s", command)
		if !strings.EqualFold(command, "y") {
			continue
		}

		result := h.coordinator.Advance()
		if result.Ended {
			_ = c.Close("Quiz ended")
			return
		}
	}
}
