package backend

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type toggleFlagRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func (s *Server) handleListFlags(c echo.Context) error {
	return respond(c, http.StatusOK, s.store.listFlags())
}

func (s *Server) handleToggleFlag(c echo.Context) error {
	var req toggleFlagRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	flag, err := s.store.toggleFlag(c.Param("key"), *req.Enabled)
	if err != nil {
		return err
	}

	s.log.Info().
		Str("flag", flag.FlagKey).
		Bool("enabled", flag.Enabled).
		Msg("feature flag toggled")
	return respond(c, http.StatusOK, flag)
}

// handleSyncChannels pulls fresh orders from every channel simulator and
// reports the number of new orders imported per channel. Duplicate external
// order IDs are skipped.
func (s *Server) handleSyncChannels(c echo.Context) error {
	results := s.syncChannels()

	s.log.Info().Interface("results", results).Msg("channel sync completed")
	return respond(c, http.StatusOK, results)
}
