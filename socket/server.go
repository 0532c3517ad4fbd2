package socket

import (
	"context"

	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog"

	"veil_server/middleware"
	"veil_server/services"
)

const defaultNamespace = "/"

func matchRoom(matchID string) string { return "match:" + matchID }
func userRoom(userID string) string   { return "user:" + userID }

// PresenceTracker is the slice of the presence service the socket layer
// drives on connect and disconnect.
type PresenceTracker interface {
	MarkOnline(ctx context.Context, userID string) error
	MarkOffline(ctx context.Context, userID string) error
}

// Server wraps the socket.io server and implements services.Broadcaster.
// Every connection authenticates at handshake time and is placed into its
// user room; match rooms are joined on demand after a participant check.
type Server struct {
	IO       *socketio.Server
	Verifier middleware.TokenVerifier
	Matches  services.MatchStore
	Presence PresenceTracker
	Log      zerolog.Logger
}

func NewServer(verifier middleware.TokenVerifier, matches services.MatchStore, presence PresenceTracker, log zerolog.Logger) *Server {
	s := &Server{
		IO:       socketio.NewServer(nil),
		Verifier: verifier,
		Matches:  matches,
		Presence: presence,
		Log:      log.With().Str("component", "socket").Logger(),
	}
	s.register()
	return s
}

func (s *Server) register() {
	s.IO.OnConnect(defaultNamespace, func(conn socketio.Conn) error {
		u := conn.URL()
		token := u.Query().Get("token")
		userID, err := s.Verifier.Verify(context.Background(), token)
		if err != nil {
			s.Log.Warn().Err(err).Str("socketId", conn.ID()).Msg("handshake rejected")
			return err
		}
		conn.SetContext(userID)
		conn.Join(userRoom(userID))
		if err := s.Presence.MarkOnline(context.Background(), userID); err != nil {
			s.Log.Warn().Err(err).Str("userId", userID).Msg("failed to mark online")
		}
		s.Log.Debug().Str("userId", userID).Str("socketId", conn.ID()).Msg("socket connected")
		return nil
	})

	// join subscribes the connection to a match's message stream. Only
	// participants may listen in.
	s.IO.OnEvent(defaultNamespace, "join", func(conn socketio.Conn, matchID string) {
		userID, _ := conn.Context().(string)
		if userID == "" || matchID == "" {
			return
		}
		match, err := s.Matches.GetByID(context.Background(), matchID)
		if err != nil || !match.HasParticipant(userID) {
			s.Log.Warn().Str("userId", userID).Str("matchId", matchID).Msg("join refused")
			return
		}
		conn.Join(matchRoom(matchID))
	})

	s.IO.OnEvent(defaultNamespace, "leave", func(conn socketio.Conn, matchID string) {
		if matchID != "" {
			conn.Leave(matchRoom(matchID))
		}
	})

	// Heartbeat keeps the presence key alive while the tab stays open.
	s.IO.OnEvent(defaultNamespace, "presence:ping", func(conn socketio.Conn) {
		if userID, _ := conn.Context().(string); userID != "" {
			if err := s.Presence.MarkOnline(context.Background(), userID); err != nil {
				s.Log.Warn().Err(err).Str("userId", userID).Msg("presence refresh failed")
			}
		}
	})

	s.IO.OnDisconnect(defaultNamespace, func(conn socketio.Conn, reason string) {
		userID, _ := conn.Context().(string)
		if userID == "" {
			return
		}
		if err := s.Presence.MarkOffline(context.Background(), userID); err != nil {
			s.Log.Warn().Err(err).Str("userId", userID).Msg("failed to mark offline")
		}
		s.Log.Debug().Str("userId", userID).Str("reason", reason).Msg("socket disconnected")
	})

	s.IO.OnError(defaultNamespace, func(conn socketio.Conn, err error) {
		s.Log.Error().Err(err).Msg("socket error")
	})
}

// ToMatch pushes an event to every connection subscribed to the match.
func (s *Server) ToMatch(matchID, event string, payload any) {
	s.IO.BroadcastToRoom(defaultNamespace, matchRoom(matchID), event, payload)
}

// ToUser pushes an event to all of the user's connections.
func (s *Server) ToUser(userID, event string, payload any) {
	s.IO.BroadcastToRoom(defaultNamespace, userRoom(userID), event, payload)
}

// Serve runs the socket.io event loop. Blocks; run it on its own goroutine.
func (s *Server) Serve() error { return s.IO.Serve() }

// Close shuts the event loop down.
func (s *Server) Close() error { return s.IO.Close() }
