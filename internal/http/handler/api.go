package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"radarmap/internal/model"
	"radarmap/internal/service"
)

type statusResponse struct {
	Radar       string     `json:"radar"`
	MyID        string     `json:"my_id,omitempty"`
	Count       int        `json:"count"`
	CountActive int        `json:"count_active"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

type peersResponse struct {
	Data      []model.Peer `json:"data"`
	Online    bool         `json:"online"`
	UpdatedAt *time.Time   `json:"updated_at,omitempty"`
}

// Status godoc
// @Summary Radar node state
// @Produce json
// @Success 200 {object} statusResponse
// @Router /api/status [get]
func Status(svc service.RadarService, radarEnabled bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := svc.Snapshot()
		return c.JSON(statusResponse{
			Radar:       radarState(svc, radarEnabled),
			MyID:        snap.MyID,
			Count:       snap.Count,
			CountActive: snap.CountActive,
			UpdatedAt:   snap.UpdatedAt,
			LastError:   snap.LastError,
		})
	}
}

// ListPeers godoc
// @Summary Current peers
// @Produce json
// @Success 200 {object} peersResponse
// @Router /api/peers [get]
func ListPeers(svc service.RadarService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := svc.Snapshot()
		peers := snap.Peers
		if peers == nil {
			peers = []model.Peer{}
		}
		return c.JSON(peersResponse{
			Data:      peers,
			Online:    snap.Online,
			UpdatedAt: snap.UpdatedAt,
		})
	}
}

// PeerTrack godoc
// @Summary Recorded track of one peer, newest first
// @Produce json
// @Param id path string true "peer id"
// @Param limit query int false "page size (default 100, max 1000)"
// @Param offset query int false "page offset"
// @Success 200 {object} service.TrackResult
// @Failure 400 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /api/peers/{id}/track [get]
func PeerTrack(svc service.RadarService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "100"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.Track(c.UserContext(), c.Params("id"), limit, offset)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrHistoryDisabled):
				return writeError(c, fiber.StatusServiceUnavailable, "HISTORY_DISABLED", "track history is not configured")
			case errors.Is(err, service.ErrPeerIDRequired):
				return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "peer id is required")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(res)
	}
}

// LatestArchive godoc
// @Summary Redirect to the most recently archived snapshot
// @Success 307
// @Failure 404 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /api/archive/latest [get]
func LatestArchive(svc service.RadarService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		url, err := svc.LatestArchiveURL(c.UserContext())
		if err != nil {
			switch {
			case errors.Is(err, service.ErrArchiveDisabled):
				return writeError(c, fiber.StatusServiceUnavailable, "ARCHIVE_DISABLED", "snapshot archive is not configured")
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "no snapshot archived yet")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.Redirect(url, fiber.StatusTemporaryRedirect)
	}
}
