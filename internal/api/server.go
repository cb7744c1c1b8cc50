// Package api serves read-only observation endpoints over HTTP plus a
// websocket stream of simulation notifications. Handlers never touch live
// simulation state: the loop goroutine publishes a status view on each UI
// pulse and handlers read that cached copy, so there is nothing to race.
package api

import (
	"encoding/json"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"github.com/talgya/outpost/internal/colony"
	"github.com/talgya/outpost/internal/events"
	"github.com/talgya/outpost/internal/sim"
)

const recentEventCap = 100

// Server exposes the simulation over HTTP.
type Server struct {
	Colony *colony.Colony
	Loop   *sim.Loop
	Clock  sim.Clock
	Port   int

	status atomic.Value // *StatusView

	mu     sync.Mutex
	recent []events.Event

	hub *hub

	limMu    sync.Mutex
	limiters map[string]*rate.Limiter
}

// StatusView is the cached, serializable state handed to handlers.
type StatusView struct {
	Tick       uint64               `json:"tick"`
	Paused     bool                 `json:"paused"`
	Resources  []ResourceView       `json:"resources"`
	Population PopulationView       `json:"population"`
	Queues     map[string]QueueView `json:"queues"`
	Buildings  map[string]int       `json:"buildings"`
	Techs      map[string]int       `json:"technologies"`
	Units      map[string]int       `json:"units"`
	Completed  map[string]int       `json:"completed"` // lifetime completions per domain
	Shortfall  bool                 `json:"shortfall"`
}

// ResourceView is one stock in the status view.
type ResourceView struct {
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Pretty    string  `json:"pretty"`
	Cap       float64 `json:"cap"` // -1 = unbounded
	PerSecond float64 `json:"per_second"`
}

// PopulationView is the population pair in the status view.
type PopulationView struct {
	Current int     `json:"current"`
	Cap     float64 `json:"cap"`
}

// QueueView is one queue's contents in the status view.
type QueueView struct {
	Capacity int             `json:"capacity"`
	Items    []QueueItemView `json:"items"`
}

// QueueItemView is one committed operation in the status view.
type QueueItemView struct {
	Key       string `json:"key"`
	Level     int    `json:"level"`
	Remaining string `json:"remaining,omitempty"` // head only
	Active    bool   `json:"active"`
}

// Attach subscribes the server to the dispatcher: every notification lands in
// the recent-event ring and on the websocket stream, and each UI pulse
// refreshes the cached status view. Call before the loop starts.
func (s *Server) Attach(d *events.Dispatcher) {
	s.hub = newHub()
	s.limiters = make(map[string]*rate.Limiter)

	d.SubscribeAll(func(e events.Event) {
		if e.Type == events.TypeUIPulse {
			s.status.Store(s.buildStatus())
			return
		}
		s.mu.Lock()
		s.recent = append(s.recent, e)
		if len(s.recent) > recentEventCap {
			s.recent = s.recent[len(s.recent)-recentEventCap:]
		}
		s.mu.Unlock()
		s.hub.broadcast(e)
	})

	s.status.Store(s.buildStatus())
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.limited(s.handleStatus))
	mux.HandleFunc("/api/v1/resources", s.limited(s.handleResources))
	mux.HandleFunc("/api/v1/queues", s.limited(s.handleQueues))
	mux.HandleFunc("/api/v1/events", s.limited(s.handleEvents))
	mux.HandleFunc("/api/v1/stream", s.hub.handleStream)

	go func() {
		slog.Info("api server listening", "port", s.Port)
		if err := http.ListenAndServe(":"+strconv.Itoa(s.Port), mux); err != nil {
			slog.Error("api server stopped", "error", err)
		}
	}()
}

// buildStatus snapshots colony state. Runs on the loop goroutine only.
func (s *Server) buildStatus() *StatusView {
	c := s.Colony
	bank := c.Ledger()

	view := &StatusView{
		Tick:      s.Loop.Tick(),
		Paused:    s.Loop.Paused(),
		Queues:    make(map[string]QueueView, 3),
		Shortfall: c.Provisions().Shortfall(),
	}

	for _, name := range bank.Names() {
		cap := bank.Cap(name)
		if math.IsInf(cap, 1) {
			cap = -1
		}
		view.Resources = append(view.Resources, ResourceView{
			Name:      name,
			Amount:    bank.Amount(name),
			Pretty:    humanize.CommafWithDigits(bank.Amount(name), 1),
			Cap:       cap,
			PerSecond: bank.Rate(name),
		})
	}

	_, popCap := bank.Population()
	view.Population = PopulationView{Current: bank.PopulationCount(), Cap: popCap}

	now := s.Clock.Now()

	var buildItems []QueueItemView
	for i, item := range c.Construction().Items() {
		buildItems = append(buildItems, itemView(item.Payload.Building, item.PendingLevel, i == 0, item.Remaining(now).String()))
	}
	view.Queues["construction"] = QueueView{Capacity: c.Construction().Slots().MaxSlots(), Items: buildItems}

	var resItems []QueueItemView
	for i, item := range c.Research().Items() {
		resItems = append(resItems, itemView(item.Payload.Tech, item.PendingLevel, i == 0, item.Remaining(now).String()))
	}
	view.Queues["research"] = QueueView{Capacity: c.Research().Slots().MaxSlots(), Items: resItems}

	var trainItems []QueueItemView
	for i, item := range c.Training().Items() {
		trainItems = append(trainItems, itemView(item.Payload.Unit, item.PendingLevel, i == 0, item.Remaining(now).String()))
	}
	view.Queues["training"] = QueueView{Capacity: c.Training().Slots().MaxSlots(), Items: trainItems}

	view.Buildings, view.Techs, view.Units = c.Levels()
	view.Completed = c.CompletionTotals()
	return view
}

func itemView(key string, level int, active bool, remaining string) QueueItemView {
	v := QueueItemView{Key: key, Level: level, Active: active}
	if active {
		v.Remaining = remaining
	}
	return v
}

func (s *Server) currentStatus() *StatusView {
	if v, ok := s.status.Load().(*StatusView); ok {
		return v
	}
	return &StatusView{}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.currentStatus())
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.currentStatus().Resources)
}

func (s *Server) handleQueues(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.currentStatus().Queues)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]events.Event, len(s.recent))
	copy(out, s.recent)
	s.mu.Unlock()
	writeJSON(w, out)
}

// limited wraps a handler with a per-IP token bucket.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, _ := net.SplitHostPort(r.RemoteAddr)
		if !s.limiterFor(ip).Allow() {
			http.Error(w, "rate limit", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

func (s *Server) limiterFor(ip string) *rate.Limiter {
	s.limMu.Lock()
	defer s.limMu.Unlock()
	lim, ok := s.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(10, 20)
		s.limiters[ip] = lim
	}
	return lim
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
