package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/longregen/voicedemo/internal/adapters/metrics"
	"github.com/longregen/voicedemo/internal/domain"
	"github.com/longregen/voicedemo/internal/domain/models"
	"github.com/longregen/voicedemo/internal/ports"
	"github.com/longregen/voicedemo/pkg/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultParticipantName = "user"

	tracerName = "github.com/longregen/voicedemo/connection"
)

// ConnectionBootstrapper issues a one-time session descriptor for one demo. It
// holds no per-request state and is safe for concurrent use.
type ConnectionBootstrapper struct {
	demo       models.Demo
	newLiveKit ports.LiveKitServiceFactory
	idGen      ports.IDGenerator
	sessions   ports.SessionRepository
	tokenTTL   time.Duration
	logger     *slog.Logger
}

type BootstrapperOption func(*ConnectionBootstrapper)

// WithSessionRepository enables the best-effort session ledger.
func WithSessionRepository(repo ports.SessionRepository) BootstrapperOption {
	return func(b *ConnectionBootstrapper) {
		b.sessions = repo
	}
}

func WithTokenTTL(ttl time.Duration) BootstrapperOption {
	return func(b *ConnectionBootstrapper) {
		if ttl > 0 {
			b.tokenTTL = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) BootstrapperOption {
	return func(b *ConnectionBootstrapper) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func NewConnectionBootstrapper(
	demo models.Demo,
	newLiveKit ports.LiveKitServiceFactory,
	idGen ports.IDGenerator,
	opts ...BootstrapperOption,
) *ConnectionBootstrapper {
	if demo.DispatchMode == "" {
		demo.DispatchMode = models.DispatchModeAPI
	}

	b := &ConnectionBootstrapper{
		demo:       demo,
		newLiveKit: newLiveKit,
		idGen:      idGen,
		tokenTTL:   models.DefaultTokenTTL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("demo", demo.Name)
	return b
}

func (b *ConnectionBootstrapper) Demo() models.Demo {
	return b.demo
}

// Bootstrap validates configuration, names a fresh room and participant, signs a
// token scoped to that room and, when an agent is requested, tries to place it in
// the room. Only configuration and signing failures are returned as errors.
func (b *ConnectionBootstrapper) Bootstrap(ctx context.Context, req models.ConnectionRequest) (*models.ConnectionDetails, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "connection.bootstrap",
		trace.WithAttributes(otel.Demo(b.demo.Name), otel.DispatchMode(string(b.demo.DispatchMode))))
	defer span.End()

	lk, err := b.liveKit()
	if err != nil {
		b.fail(span, "config", err)
		return nil, err
	}

	participantName := strings.TrimSpace(req.ParticipantName)
	if participantName == "" {
		participantName = DefaultParticipantName
	}

	agentName := strings.TrimSpace(req.AgentName)
	if agentName == "" {
		agentName = b.demo.AgentName
	}

	roomName := b.idGen.GenerateRoomName(b.demo.RoomPrefix)
	identity := b.idGen.GenerateParticipantIdentity(b.demo.IdentityPrefix)
	span.SetAttributes(otel.RoomName(roomName), otel.ParticipantIdentity(identity))

	grant := models.NewRoomGrant(roomName)
	if agentName != "" && b.demo.DispatchMode == models.DispatchModeToken {
		grant.Agents = []string{agentName}
	}

	token, err := lk.GenerateToken(grant, identity, participantName, b.tokenTTL)
	if err != nil {
		if !errors.Is(err, domain.ErrTokenSigning) {
			err = fmt.Errorf("%w: %w", domain.ErrTokenSigning, err)
		}
		b.fail(span, "signing", err)
		return nil, err
	}

	record := models.NewSessionRecord(b.idGen.GenerateSessionID(), b.demo.Name, roomName, identity, participantName)
	if agentName != "" {
		span.SetAttributes(otel.AgentName(agentName))
		switch b.demo.DispatchMode {
		case models.DispatchModeToken:
			record.MarkEmbedded(agentName)
			metrics.AgentDispatchTotal.WithLabelValues(b.demo.Name, agentName, string(models.DispatchStatusEmbedded)).Inc()
		default:
			b.dispatchAgent(ctx, lk, roomName, agentName, record)
		}
	}
	b.recordSession(ctx, record)

	metrics.ConnectionsIssued.WithLabelValues(b.demo.Name).Inc()

	return &models.ConnectionDetails{
		ServerURL:        lk.ServerURL(),
		RoomName:         roomName,
		ParticipantName:  participantName,
		ParticipantToken: token.Token,
	}, nil
}

// liveKit fails fast on missing secrets so no network call is attempted.
func (b *ConnectionBootstrapper) liveKit() (ports.LiveKitService, error) {
	if missing := b.demo.Credentials.Missing(); len(missing) > 0 {
		return nil, domain.NewDomainError(domain.ErrMissingConfig, strings.Join(missing, ", "))
	}

	lk, err := b.newLiveKit(b.demo.Credentials)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrMissingConfig, err.Error())
	}
	return lk, nil
}

// dispatchAgent registers the room and dispatches the agent. Failures are logged,
// counted and recorded; they never reach the caller.
func (b *ConnectionBootstrapper) dispatchAgent(ctx context.Context, lk ports.LiveKitService, roomName, agentName string, record *models.SessionRecord) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "connection.dispatch_agent",
		trace.WithAttributes(otel.RoomName(roomName), otel.AgentName(agentName)))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.AgentDispatchDuration.WithLabelValues(b.demo.Name).Observe(time.Since(start).Seconds())
	}()

	dispatch, err := b.registerAndDispatch(ctx, lk, roomName, agentName)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(otel.DispatchOutcome(string(models.DispatchStatusFailed)))
		record.MarkDispatchFailed(agentName, err)
		metrics.AgentDispatchTotal.WithLabelValues(b.demo.Name, agentName, string(models.DispatchStatusFailed)).Inc()
		b.logger.Warn("agent dispatch failed, continuing without agent",
			"room", roomName, "agent", agentName, "error", err)
		return
	}

	span.SetAttributes(otel.DispatchOutcome(string(models.DispatchStatusDispatched)), otel.DispatchID(dispatch.ID))
	record.MarkDispatched(agentName)
	metrics.AgentDispatchTotal.WithLabelValues(b.demo.Name, agentName, string(models.DispatchStatusDispatched)).Inc()
	b.logger.Info("agent dispatched", "room", roomName, "agent", agentName, "dispatch_id", dispatch.ID)
}

func (b *ConnectionBootstrapper) registerAndDispatch(ctx context.Context, lk ports.LiveKitService, roomName, agentName string) (dispatch *models.AgentDispatch, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", domain.ErrAgentDispatch, r)
		}
	}()

	if _, err := lk.CreateRoom(ctx, roomName); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRoomRegistration, err)
	}

	dispatch, err = lk.DispatchAgent(ctx, models.AgentDispatchRequest{RoomName: roomName, AgentName: agentName})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAgentDispatch, err)
	}
	if dispatch == nil {
		dispatch = &models.AgentDispatch{RoomName: roomName, AgentName: agentName}
	}
	return dispatch, nil
}

func (b *ConnectionBootstrapper) recordSession(ctx context.Context, record *models.SessionRecord) {
	if b.sessions == nil {
		return
	}
	if err := b.sessions.Record(ctx, record); err != nil {
		metrics.SessionRecordErrors.Inc()
		b.logger.Warn("failed to record session", "session_id", record.ID, "error", err)
	}
}

func (b *ConnectionBootstrapper) fail(span trace.Span, reason string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	metrics.ConnectionErrors.WithLabelValues(b.demo.Name, reason).Inc()

	var de *domain.DomainError
	if errors.As(err, &de) {
		b.logger.Error("connection bootstrap failed", "reason", reason, "detail", de.Message)
		return
	}
	b.logger.Error("connection bootstrap failed", "reason", reason, "error", err)
}
