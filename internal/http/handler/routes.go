package handler

import (
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"

	"radarmap/internal/service"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Service      service.RadarService
	DB           Pinger // nil when track history is not configured
	Static       fs.FS
	RadarEnabled bool
	PollInterval time.Duration
	Debug        bool
}

// RegisterRoutes attaches the map page, static assets, health probes and the radar API.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/", Index(d.RadarEnabled, d.PollInterval))
	if d.Static != nil {
		app.Use("/static", Static(d.Static, d.Debug))
	}

	app.Get("/health", HealthCheck(d.DB, d.Service, d.RadarEnabled))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")
	api.Get("/status", Status(d.Service, d.RadarEnabled))
	api.Get("/peers", ListPeers(d.Service))
	api.Get("/peers/:id/track", PeerTrack(d.Service))
	api.Get("/archive/latest", LatestArchive(d.Service))
}

// Index renders the map page.
func Index(radarEnabled bool, poll time.Duration) fiber.Handler {
	pollMs := poll.Milliseconds()
	if pollMs <= 0 {
		pollMs = 1000
	}
	return func(c *fiber.Ctx) error {
		return c.Render("index", fiber.Map{
			"Title":        "iNav Radar",
			"RadarEnabled": radarEnabled,
			"PollMs":       pollMs,
		})
	}
}

// Static serves regular files from static. Directories and unknown names fall
// through so they end as 404. Outside debug, browsers may cache for an hour.
func Static(static fs.FS, debug bool) fiber.Handler {
	maxAge := 3600
	if debug {
		maxAge = 0
	}
	return filesystem.New(filesystem.Config{
		Root:   http.FS(static),
		MaxAge: maxAge,
		Next: func(c *fiber.Ctx) bool {
			name := strings.TrimPrefix(strings.TrimPrefix(c.Path(), "/static"), "/")
			if name == "" {
				return true
			}
			st, err := fs.Stat(static, name)
			return err != nil || st.IsDir()
		},
	})
}
