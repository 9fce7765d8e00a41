package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/mdlayher/vsock"
	"github.com/rs/zerolog/log"

	"github.com/cloudx-io/draftauction/auctionapi"
)

// Server accepts one JSON request per connection and writes one JSON response.
type Server struct {
	cfg     Config
	archive RunArchive
}

// NewServer returns a server for cfg. archive may be nil.
func NewServer(cfg Config, archive RunArchive) *Server {
	return &Server{cfg: cfg, archive: archive}
}

// Listen opens the listener selected by the configured network.
func (s *Server) Listen() (net.Listener, error) {
	switch s.cfg.Network {
	case NetworkVsock:
		listener, err := vsock.Listen(s.cfg.VsockPort, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create vsock listener: %w", err)
		}
		log.Info().Msgf("Clearing server listening on vsock port %d", s.cfg.VsockPort)
		return listener, nil
	default:
		listener, err := net.Listen("tcp", s.cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("failed to create tcp listener: %w", err)
		}
		log.Info().Msgf("Clearing server listening on %s", listener.Addr())
		return listener, nil
	}
}

// Serve accepts connections until ctx is cancelled. Each connection takes a
// worker slot; connections arriving while every slot is busy are closed
// immediately.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	semaphore := make(chan struct{}, s.cfg.MaxWorkers)
	log.Info().Msgf("Worker pool initialized with %d max concurrent workers", s.cfg.MaxWorkers)

	go func() {
		<-ctx.Done()
		if err := listener.Close(); err != nil {
			log.Error().Msgf("Failed to close listener: %v", err)
		}
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			log.Error().Msgf("Failed to accept connection: %v", err)
			continue
		}

		// Acquire worker slot - immediate rejection if pool full
		select {
		case semaphore <- struct{}{}:
			go func(c net.Conn) {
				defer func() { <-semaphore }() // Release worker slot
				s.handleConnection(ctx, c)
			}(conn)
		default:
			log.Info().Msg("No workers available, rejecting connection (pool full)")
			if err := conn.Close(); err != nil {
				log.Error().Msgf("Failed to close rejected connection: %v", err)
			}
		}
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("Panic recovered in handleConnection: %v", r)
		}
		if err := conn.Close(); err != nil {
			log.Error().Msgf("Failed to close connection: %v", err)
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))

	var response any
	payload, err := readRequest(conn, s.cfg.MaxRequestBytes)
	switch {
	case errors.Is(err, ErrRequestTooLarge):
		log.Error().Msgf("Rejecting request: %v", err)
		response = errorResponse("%v", err)
	case err != nil:
		log.Error().Msgf("Failed to read request: %v", err)
		return
	default:
		response = s.handleRequest(ctx, payload)
	}

	if err := json.NewEncoder(conn).Encode(response); err != nil {
		log.Error().Msgf("Failed to encode response: %v", err)
	}
}

// ErrRequestTooLarge is returned when a connection sends more than the configured limit.
var ErrRequestTooLarge = errors.New("request too large")

// readRequest reads r to EOF, failing once more than limit bytes arrive.
func readRequest(r io.Reader, limit int64) ([]byte, error) {
	payload, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(payload)) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrRequestTooLarge, limit)
	}
	return payload, nil
}

// handleRequest decodes one request payload and dispatches it on its type.
func (s *Server) handleRequest(ctx context.Context, payload []byte) any {
	var baseReq struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &baseReq); err != nil {
		log.Error().Msgf("Failed to decode base request: %v", err)
		return errorResponse("Failed to decode request: %v", err)
	}

	log.Info().Msgf("Received request type: %s", baseReq.Type)

	switch baseReq.Type {
	case auctionapi.TypePing:
		return auctionapi.PongResponse{
			Type:      auctionapi.TypePong,
			Message:   "Clearing server is healthy",
			Timestamp: time.Now().Unix(),
		}

	case auctionapi.TypeSimulationRequest:
		var req auctionapi.SimulationRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			log.Error().Msgf("Failed to decode simulation request: %v", err)
			return errorResponse("Failed to decode simulation request: %v", err)
		}
		return ProcessSimulation(ctx, req, s.archive)

	case auctionapi.TypeMonteCarloRequest:
		var req auctionapi.MonteCarloRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			log.Error().Msgf("Failed to decode Monte Carlo request: %v", err)
			return errorResponse("Failed to decode Monte Carlo request: %v", err)
		}
		return ProcessMonteCarlo(ctx, req, s.cfg.MaxWorkers, s.cfg.MaxIterations)

	default:
		return errorResponse("Unknown request type: %s", baseReq.Type)
	}
}

func errorResponse(format string, args ...any) auctionapi.ErrorResponse {
	return auctionapi.ErrorResponse{
		Type:    auctionapi.TypeError,
		Message: fmt.Sprintf(format, args...),
	}
}
