package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/astrolive/loyalty-engine/internal/audit"
	"github.com/astrolive/loyalty-engine/internal/domain"
	"github.com/astrolive/loyalty-engine/internal/hub"
	"github.com/astrolive/loyalty-engine/internal/identity"
	"github.com/astrolive/loyalty-engine/internal/kafka"
	"github.com/astrolive/loyalty-engine/internal/ledger"
	"github.com/astrolive/loyalty-engine/internal/notify"
	"github.com/astrolive/loyalty-engine/internal/payment"
	"github.com/astrolive/loyalty-engine/internal/points"
	"github.com/astrolive/loyalty-engine/internal/repository"
	"github.com/astrolive/loyalty-engine/internal/session"
	"github.com/astrolive/loyalty-engine/pkg/log"
)

type engineService struct {
	hub        *hub.Hub
	manager    *session.Manager
	idp        identity.Provider
	awarder    *points.Awarder
	dispatcher *notify.Dispatcher
	payment    payment.Service
	gifts      repository.GiftRepository
	levels     points.LevelSource
	ledger     ledger.Ledger
	producer   kafka.EventProducer
}

// NewEngineService wires the engine's collaborators into one service.
func NewEngineService(
	h *hub.Hub,
	manager *session.Manager,
	idp identity.Provider,
	awarder *points.Awarder,
	dispatcher *notify.Dispatcher,
	pay payment.Service,
	gifts repository.GiftRepository,
	levels points.LevelSource,
	lg ledger.Ledger,
	producer kafka.EventProducer,
) EngineService {
	return &engineService{
		hub:        h,
		manager:    manager,
		idp:        idp,
		awarder:    awarder,
		dispatcher: dispatcher,
		payment:    pay,
		gifts:      gifts,
		levels:     levels,
		ledger:     lg,
		producer:   producer,
	}
}

func (s *engineService) HandleAuth(ctx context.Context, c *hub.Client, token string) error {
	viewer, err := s.idp.Verify(ctx, token)
	if err != nil {
		audit.Log(ctx, audit.ActionAuthFailed, "", "authentication rejected")
		c.SendMessage(&domain.AuthResultMessage{
			Type:    domain.MsgTypeAuthResult,
			Success: false,
			Message: err.Error(),
		})
		return err
	}

	c.State.Authenticate(viewer)
	audit.Log(ctx, audit.ActionAuth, viewer.ID, "viewer authenticated")

	return c.SendMessage(&domain.AuthResultMessage{
		Type:       domain.MsgTypeAuthResult,
		Success:    true,
		ViewerID:   viewer.ID,
		ViewerName: viewer.Name,
	})
}

// HandleJoin attaches the connection to a live session. Anonymous viewers
// may join and read; chatting and gifting require auth.
func (s *engineService) HandleJoin(ctx context.Context, c *hub.Client, streamID string) error {
	if c.State.InSession() {
		s.handleLeaveInternal(ctx, c)
	}

	sess, err := s.manager.Attach(ctx, streamID, c.ID, c.State.Viewer(), c)
	if err != nil {
		if errors.Is(err, session.ErrSessionUnavailable) {
			return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeSessionUnavailable, "Stream session is not live"))
		}
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeInternalError, "Failed to join stream"))
	}

	s.hub.JoinStream(c, streamID)
	c.State.JoinStream(streamID)
	audit.LogWithDetail(ctx, audit.ActionJoinStream, c.State.Viewer().ID, streamID, "joined stream")

	return c.SendMessage(&domain.JoinedMessage{
		Type:       domain.MsgTypeJoined,
		StreamID:   streamID,
		StreamerID: sess.StreamerID,
	})
}

func (s *engineService) HandleChat(ctx context.Context, c *hub.Client, text string) error {
	if !c.State.IsAuthenticated() {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeUnauthorized, "Not authenticated"))
	}
	if !c.State.InSession() {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeNotInSession, "Not in a stream session"))
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Empty message"))
	}

	streamID := c.State.CurrentStream()
	sess, ok := s.manager.Lookup(streamID)
	if !ok {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeSessionUnavailable, "Stream session is not live"))
	}

	viewer := c.State.Viewer()
	now := time.Now().UTC()
	msg := domain.ChatMessage{
		ID:          uuid.New().String(),
		StreamID:    streamID,
		StreamerID:  sess.StreamerID,
		AuthorID:    viewer.ID,
		AuthorName:  viewer.Name,
		Text:        text,
		DisplayTime: now.Format("15:04"),
		CreatedAt:   now,
	}
	s.stampLevel(ctx, &msg)

	stored, err := sess.Append(msg)
	if err != nil {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeSessionUnavailable, "Stream session is not live"))
	}
	if !stored {
		// Duplicate delivery of an already-stored message: drop silently.
		return nil
	}

	if err := s.hub.Broadcast(streamID, &domain.ChatMessageOut{
		Type:    domain.MsgTypeMessage,
		Message: msg,
	}); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldMessageID, msg.ID).Msg("chat broadcast failed")
	}
	audit.LogWithDetail(ctx, audit.ActionSendMessage, viewer.ID, msg.ID, "chat message stored")

	s.produce(ctx, &domain.EngineEvent{
		Type:       domain.EventChatMessage,
		StreamID:   streamID,
		StreamerID: sess.StreamerID,
		ViewerID:   viewer.ID,
		Message:    &msg,
		OccurredAt: now,
	})

	// Streamer messages never accrue points.
	award, err := s.awarder.AwardChat(ctx, viewer.ID, sess.StreamerID)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldViewerID, viewer.ID).Msg("chat point accrual failed")
		return nil
	}
	s.dispatchAward(ctx, streamID, award)

	return nil
}

func (s *engineService) HandleGift(ctx context.Context, c *hub.Client, giftID, streamerID string) error {
	if !c.State.IsAuthenticated() {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeUnauthorized, "Not authenticated"))
	}
	if !c.State.InSession() {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeNotInSession, "Not in a stream session"))
	}

	streamID := c.State.CurrentStream()
	sess, ok := s.manager.Lookup(streamID)
	if !ok {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeSessionUnavailable, "Stream session is not live"))
	}
	if streamerID == "" {
		streamerID = sess.StreamerID
	}
	if streamerID != sess.StreamerID {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Gift target does not match the session"))
	}

	gift, err := s.gifts.GetGift(ctx, streamerID, giftID)
	if err != nil {
		if errors.Is(err, repository.ErrGiftNotFound) {
			return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Unknown gift"))
		}
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeInternalError, "Failed to look up gift"))
	}

	viewer := c.State.Viewer()
	ev, err := s.payment.DebitGift(ctx, viewer.ID, gift)
	if err != nil {
		if errors.Is(err, payment.ErrInsufficientCoins) {
			return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeInsufficientCoins, "Not enough coins"))
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldGiftID, giftID).Msg("gift debit failed")
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeInternalError, "Gift payment failed"))
	}
	ev.SenderName = viewer.Name

	audit.LogWithDetail(ctx, audit.ActionSendGift, viewer.ID, ev.TransactionID, "gift confirmed")
	s.dispatcher.GiftReceived(streamID, ev)

	s.produce(ctx, &domain.EngineEvent{
		Type:       domain.EventGiftSent,
		StreamID:   streamID,
		StreamerID: streamerID,
		ViewerID:   viewer.ID,
		Gift:       ev,
		OccurredAt: ev.OccurredAt,
	})

	award, err := s.awarder.AwardGift(ctx, ev)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldTxnID, ev.TransactionID).Msg("gift point accrual failed")
		return nil
	}
	s.dispatchAward(ctx, streamID, award)

	return nil
}

func (s *engineService) HandleHistory(ctx context.Context, c *hub.Client, streamID string) error {
	if streamID == "" {
		streamID = c.State.CurrentStream()
	}
	sess, ok := s.manager.Lookup(streamID)
	if !ok {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeSessionUnavailable, "Stream session is not live"))
	}

	return c.SendMessage(&domain.HistoryMessage{
		Type:     domain.MsgTypeHistoryOut,
		StreamID: sess.StreamID,
		Messages: sess.History(),
	})
}

func (s *engineService) HandleLeave(ctx context.Context, c *hub.Client) error {
	if !c.State.InSession() {
		return nil
	}
	return s.handleLeaveInternal(ctx, c)
}

func (s *engineService) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	if !c.State.InSession() {
		return nil
	}
	audit.Log(ctx, audit.ActionDisconnect, c.State.Viewer().ID, "connection closed")
	return s.handleLeaveInternal(ctx, c)
}

func (s *engineService) handleLeaveInternal(ctx context.Context, c *hub.Client) error {
	streamID := c.State.CurrentStream()
	if streamID == "" {
		return nil
	}

	s.manager.Detach(streamID, c.ID)
	s.hub.LeaveStream(c, streamID)
	c.State.LeaveStream()
	audit.LogWithDetail(ctx, audit.ActionLeaveStream, c.State.Viewer().ID, streamID, "left stream")
	return nil
}

// StartSession opens a live session for the streamer's new broadcast.
func (s *engineService) StartSession(ctx context.Context, streamerID string) (*session.Session, error) {
	streamID := uuid.New().String()
	sess, err := s.manager.StartSession(ctx, streamerID, streamID)
	if err != nil {
		return nil, err
	}

	audit.LogWithDetail(ctx, audit.ActionSessionStart, streamerID, streamID, "session started")
	s.produce(ctx, &domain.EngineEvent{
		Type:       domain.EventSessionStart,
		StreamID:   streamID,
		StreamerID: streamerID,
		OccurredAt: time.Now().UTC(),
	})
	return sess, nil
}

// EndSession closes the streamer's live session.
func (s *engineService) EndSession(ctx context.Context, streamerID string) error {
	sess, ok := s.manager.LiveSession(streamerID)
	if !ok {
		return session.ErrSessionUnavailable
	}
	streamID := sess.StreamID

	if err := s.manager.EndSession(ctx, streamerID); err != nil {
		return err
	}

	audit.LogWithDetail(ctx, audit.ActionSessionEnd, streamerID, streamID, "session ended")
	s.produce(ctx, &domain.EngineEvent{
		Type:       domain.EventSessionEnd,
		StreamID:   streamID,
		StreamerID: streamerID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

func (s *engineService) Stop() error {
	if err := s.producer.Close(); err != nil {
		l := log.L()
		l.Warn().Err(err).Msg("failed to close event producer")
	}
	return nil
}

// stampLevel annotates the message with the author's current level badge.
// Best effort: a failed lookup leaves the badge empty.
func (s *engineService) stampLevel(ctx context.Context, msg *domain.ChatMessage) {
	if msg.AuthorID == "" || msg.AuthorID == msg.StreamerID {
		return
	}

	levels, err := s.levels.Levels(ctx, msg.StreamerID)
	if err != nil || len(levels) == 0 {
		return
	}
	balance, err := s.ledger.Read(ctx, msg.AuthorID, msg.StreamerID)
	if err != nil {
		return
	}

	current, _ := domain.Resolve(levels, balance)
	if current != nil {
		msg.Level = domain.Rank(levels, current.ID) + 1
		msg.LevelName = current.Name
	}
}

func (s *engineService) dispatchAward(ctx context.Context, streamID string, award *points.Award) {
	if award == nil {
		return
	}

	s.dispatcher.PointsUpdated(streamID, award)
	if award.LeveledUp && award.Current != nil {
		audit.LogWithDetail(ctx, audit.ActionLevelUp, award.ViewerID, award.Current.Name, "level reached")
	}

	s.produce(ctx, &domain.EngineEvent{
		Type:       domain.EventPointsAwarded,
		StreamID:   streamID,
		StreamerID: award.StreamerID,
		ViewerID:   award.ViewerID,
		Points:     award.Amount,
		Balance:    award.NewBalance,
		Source:     award.Source,
		OccurredAt: time.Now().UTC(),
	})
}

func (s *engineService) produce(ctx context.Context, ev *domain.EngineEvent) {
	if err := s.producer.ProduceEvent(ctx, ev); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str("event_type", ev.Type).Msg("failed to produce engine event")
	}
}
