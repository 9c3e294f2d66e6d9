package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/astrolive/loyalty-engine/internal/domain"
	"github.com/astrolive/loyalty-engine/internal/identity"
	"github.com/astrolive/loyalty-engine/internal/ledger"
	"github.com/astrolive/loyalty-engine/internal/levels"
	"github.com/astrolive/loyalty-engine/internal/repository"
	"github.com/astrolive/loyalty-engine/internal/service"
	"github.com/astrolive/loyalty-engine/internal/session"
	"github.com/astrolive/loyalty-engine/pkg/log"
	"github.com/astrolive/loyalty-engine/pkg/response"
)

// HTTPHandler serves the ladder and gift catalog management API, viewer
// point queries and the session lifecycle endpoints.
type HTTPHandler struct {
	engine    service.EngineService
	levelRepo repository.LevelRepository
	giftRepo  repository.GiftRepository
	provider  *levels.Provider
	ledger    ledger.Ledger
	idp       identity.Provider
}

// NewHTTPHandler creates the HTTP API handler.
func NewHTTPHandler(
	engine service.EngineService,
	levelRepo repository.LevelRepository,
	giftRepo repository.GiftRepository,
	provider *levels.Provider,
	lg ledger.Ledger,
	idp identity.Provider,
) *HTTPHandler {
	return &HTTPHandler{
		engine:    engine,
		levelRepo: levelRepo,
		giftRepo:  giftRepo,
		provider:  provider,
		ledger:    lg,
		idp:       idp,
	}
}

// RegisterRoutes registers all routes.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	{
		streamers := api.Group("/streamers")
		{
			// Public routes
			streamers.GET("/:id/levels", h.GetLevels)
			streamers.GET("/:id/gifts", h.ListGifts)

			// Protected routes: a streamer manages their own catalog
			auth := identity.RequireAuth(h.idp)
			streamers.PUT("/:id/levels", auth, h.ReplaceLevels)
			streamers.POST("/:id/gifts", auth, h.CreateGift)
			streamers.DELETE("/:id/gifts/:gift_id", auth, h.DeleteGift)
		}

		api.GET("/points", identity.RequireAuth(h.idp), h.GetPoints)

		sessions := api.Group("/sessions", identity.RequireAuth(h.idp))
		{
			sessions.POST("", h.StartSession)
			sessions.DELETE("", h.EndSession)
		}
	}
}

// Health reports liveness.
func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

// GetLevels returns a streamer's loyalty ladder sorted by threshold.
func (h *HTTPHandler) GetLevels(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	streamerID := c.Param("id")

	ladder, err := h.provider.Levels(ctx, streamerID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldStreamerID, streamerID).Msg("failed to get levels")
		response.InternalError(c, "failed to get levels")
		return
	}

	response.Success(c, gin.H{"levels": ladder})
}

type replaceLevelsRequest struct {
	Levels []domain.LoyaltyLevel `json:"levels" binding:"required"`
}

// ReplaceLevels swaps the caller's entire ladder.
func (h *HTTPHandler) ReplaceLevels(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	streamerID := c.Param("id")
	if identity.CurrentViewer(c).ID != streamerID {
		response.Forbidden(c, "only the streamer may edit their ladder")
		return
	}

	var req replaceLevelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	for _, lvl := range req.Levels {
		if lvl.Name == "" || lvl.PointsRequired < 0 {
			response.BadRequest(c, "each level needs a name and a non-negative threshold")
			return
		}
	}

	stored, err := h.levelRepo.ReplaceLevels(ctx, streamerID, req.Levels)
	if err != nil {
		l.Error().Err(err).Str(log.FieldStreamerID, streamerID).Msg("failed to replace levels")
		response.InternalError(c, "failed to replace levels")
		return
	}
	h.provider.Invalidate(ctx, streamerID)

	response.Success(c, gin.H{"levels": stored})
}

// ListGifts returns a streamer's gift catalog.
func (h *HTTPHandler) ListGifts(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	streamerID := c.Param("id")

	gifts, err := h.giftRepo.ListGifts(ctx, streamerID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldStreamerID, streamerID).Msg("failed to list gifts")
		response.InternalError(c, "failed to list gifts")
		return
	}

	response.Success(c, gin.H{"gifts": gifts})
}

type createGiftRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=100"`
	CoinCost      int64  `json:"coin_cost" binding:"required,min=1"`
	PointsAwarded int64  `json:"points_awarded" binding:"required,min=0"`
}

// CreateGift adds a gift to the caller's catalog.
func (h *HTTPHandler) CreateGift(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	streamerID := c.Param("id")
	if identity.CurrentViewer(c).ID != streamerID {
		response.Forbidden(c, "only the streamer may edit their catalog")
		return
	}

	var req createGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	gift := &domain.Gift{
		StreamerID:    streamerID,
		Name:          req.Name,
		CoinCost:      req.CoinCost,
		PointsAwarded: req.PointsAwarded,
	}
	if err := h.giftRepo.CreateGift(ctx, gift); err != nil {
		l.Error().Err(err).Str(log.FieldStreamerID, streamerID).Msg("failed to create gift")
		response.InternalError(c, "failed to create gift")
		return
	}

	response.Created(c, gift)
}

// DeleteGift removes a gift from the caller's catalog.
func (h *HTTPHandler) DeleteGift(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	streamerID := c.Param("id")
	giftID := c.Param("gift_id")
	if identity.CurrentViewer(c).ID != streamerID {
		response.Forbidden(c, "only the streamer may edit their catalog")
		return
	}

	if err := h.giftRepo.DeleteGift(ctx, streamerID, giftID); err != nil {
		if errors.Is(err, repository.ErrGiftNotFound) {
			response.NotFound(c, "gift not found")
			return
		}
		l.Error().Err(err).Str(log.FieldGiftID, giftID).Msg("failed to delete gift")
		response.InternalError(c, "failed to delete gift")
		return
	}

	response.Success(c, gin.H{"deleted": giftID})
}

// GetPoints returns the caller's balances. With ?streamer_id= it returns one
// balance and the resolved level; without, every balance the caller holds.
func (h *HTTPHandler) GetPoints(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	viewer := identity.CurrentViewer(c)
	streamerID := c.Query("streamer_id")

	if streamerID == "" {
		balances, err := h.ledger.ReadByViewer(ctx, viewer.ID)
		if err != nil {
			l.Error().Err(err).Str(log.FieldViewerID, viewer.ID).Msg("failed to read balances")
			response.InternalError(c, "failed to read balances")
			return
		}
		response.Success(c, gin.H{"balances": balances})
		return
	}

	balance, err := h.ledger.Read(ctx, viewer.ID, streamerID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldViewerID, viewer.ID).Msg("failed to read balance")
		response.InternalError(c, "failed to read balance")
		return
	}

	ladder, err := h.provider.Levels(ctx, streamerID)
	if err != nil {
		l.Warn().Err(err).Str(log.FieldStreamerID, streamerID).Msg("level lookup failed for points query")
		ladder = nil
	}
	current, next := domain.Resolve(ladder, balance)

	response.Success(c, gin.H{
		"balance":  balance,
		"level":    current,
		"next":     next,
		"progress": domain.ProgressFor(ladder, balance),
	})
}

// StartSession opens a live session for the caller's broadcast.
func (h *HTTPHandler) StartSession(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	streamer := identity.CurrentViewer(c)

	sess, err := h.engine.StartSession(ctx, streamer.ID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldStreamerID, streamer.ID).Msg("failed to start session")
		response.InternalError(c, "failed to start session")
		return
	}

	response.Created(c, gin.H{
		"stream_id":   sess.StreamID,
		"streamer_id": sess.StreamerID,
	})
}

// EndSession closes the caller's live session.
func (h *HTTPHandler) EndSession(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	streamer := identity.CurrentViewer(c)

	if err := h.engine.EndSession(ctx, streamer.ID); err != nil {
		if errors.Is(err, session.ErrSessionUnavailable) {
			response.NotFound(c, "no live session")
			return
		}
		l.Error().Err(err).Str(log.FieldStreamerID, streamer.ID).Msg("failed to end session")
		response.InternalError(c, "failed to end session")
		return
	}

	response.Success(c, gin.H{"ended": true})
}
