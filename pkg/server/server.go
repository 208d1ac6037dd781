package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Freaky/IMSErious/pkg/config"
	"github.com/Freaky/IMSErious/pkg/log"
	"github.com/Freaky/IMSErious/pkg/message"
	"github.com/Freaky/IMSErious/pkg/metrics"
	"github.com/Freaky/IMSErious/pkg/registry"
)

// maxBodySize bounds the notification payload
const maxBodySize = 1024

// Server is the HTTP front end: it accepts PUT notifications, applies
// the access policy, and routes each decoded message through the
// registry to every matching handler slot.
type Server struct {
	cfg      *config.Config
	registry *registry.Registry
	logger   zerolog.Logger
	srv      *http.Server
	sem      chan struct{}
}

// New creates a front end for the given config and routing table
func New(cfg *config.Config, reg *registry.Registry) *Server {
	s := &Server{
		cfg:      cfg,
		registry: reg,
		logger:   log.WithComponent("server"),
		sem:      make(chan struct{}, cfg.MaxConnections),
	}

	r := mux.NewRouter()
	r.HandleFunc(cfg.Endpoint, s.notify).Methods(http.MethodPut)

	s.srv = &http.Server{
		Addr:              cfg.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if t := cfg.Timeout.Std(); t > 0 {
		s.srv.ReadTimeout = t
		s.srv.WriteTimeout = t
	}

	return s
}

// Start binds the listener and serves in the background. A bind
// failure is returned synchronously so startup can abort.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}

	go func() {
		var err error
		if s.cfg.TLS != nil {
			err = s.srv.ServeTLS(ln, s.cfg.TLS.Cert, s.cfg.TLS.Key)
		} else {
			err = s.srv.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Server terminated")
		}
	}()

	s.logger.Info().
		Str("listen", s.cfg.Listen).
		Str("endpoint", s.cfg.Endpoint).
		Bool("tls", s.cfg.TLS != nil).
		Msg("Listening")
	return nil
}

// Shutdown stops accepting requests and drains in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// notify handles one PUT notification
func (s *Server) notify(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With().
		Str("request_id", uuid.NewString()).
		Str("remote", r.RemoteAddr).
		Logger()

	remote, remoteOK := parseRemote(r.RemoteAddr)

	if len(s.cfg.Allow) > 0 && (!remoteOK || !s.cfg.Allowed(remote.Addr())) {
		logger.Warn().Msg("Address not allowed")
		s.respond(w, http.StatusForbidden)
		return
	}

	if !s.authorized(r) {
		logger.Warn().Msg("Authentication failed")
		s.respond(w, http.StatusForbidden)
		return
	}

	// load shedding: reject rather than queue when saturated
	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	default:
		logger.Warn().Msg("Overloaded")
		s.respond(w, http.StatusServiceUnavailable)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn().Msg("Body too large")
			s.respond(w, http.StatusRequestEntityTooLarge)
		} else {
			logger.Warn().Err(err).Msg("Body read failed")
			s.respond(w, http.StatusRequestTimeout)
		}
		return
	}

	msg, err := message.Decode(body)
	if err != nil {
		logger.Debug().Err(err).Msg("Bad message")
		s.respond(w, http.StatusBadRequest)
		return
	}
	if remoteOK {
		msg.RemoteAddr = remote
	}

	metrics.MessagesReceived.WithLabelValues(msg.Event.String()).Inc()
	matched := s.registry.Dispatch(msg)
	logger.Debug().
		Str("event", msg.Event.String()).
		Str("user", msg.User).
		Int("matched", matched).
		Msg("Message dispatched")

	s.respond(w, http.StatusOK)
}

// respond writes an empty response and counts it
func (s *Server) respond(w http.ResponseWriter, status int) {
	metrics.RequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	w.WriteHeader(status)
}

// authorized checks basic auth when configured
func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.Auth == nil {
		return true
	}
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.cfg.Auth.User)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.cfg.Auth.Pass)) == 1
	return userOK && passOK
}

// parseRemote extracts the peer address; it may be absent in tests
func parseRemote(remoteAddr string) (netip.AddrPort, bool) {
	ap, err := netip.ParseAddrPort(remoteAddr)
	if err != nil {
		return netip.AddrPort{}, false
	}
	return ap, true
}
