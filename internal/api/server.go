// Package api exposes the canvas back-end over HTTP/JSON for the browser
// renderer.
package api

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/soochol/agentcanvas/internal/services"
)

type Server struct {
	canvases    *services.CanvasService
	dashboard   *services.DashboardService
	marketplace *services.MarketplaceService
	agents      *services.AgentService

	allowedOrigins []string
	renderer       fs.FS
}

func NewServer(canvases *services.CanvasService, dashboard *services.DashboardService, marketplace *services.MarketplaceService, agents *services.AgentService) *Server {
	return &Server{
		canvases:       canvases,
		dashboard:      dashboard,
		marketplace:    marketplace,
		agents:         agents,
		allowedOrigins: []string{"*"},
	}
}

// SetAllowedOrigins restricts CORS to the given renderer origins.
func (s *Server) SetAllowedOrigins(origins []string) {
	if len(origins) > 0 {
		s.allowedOrigins = origins
	}
}

// SetRenderer serves the renderer's static build from fsys for every path
// outside /api.
func (s *Server) SetRenderer(fsys fs.FS) {
	s.renderer = fsys
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/canvases", func(r chi.Router) {
			r.Post("/", s.createCanvas)
			r.Get("/", s.listCanvases)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getCanvas)
				r.Delete("/", s.deleteCanvas)
				r.Post("/save", s.saveCanvas)
				r.Post("/publish", s.publishCanvas)
				r.Get("/events", s.streamCanvasEvents)
				r.Post("/nodes", s.addNode)
				r.Route("/nodes/{nodeId}", func(r chi.Router) {
					r.Patch("/", s.updateNode)
					r.Delete("/", s.deleteNode)
					r.Put("/position", s.moveNode)
					r.Get("/form", s.getForm)
					r.Post("/form", s.editForm)
					r.Post("/upload", s.uploadDocument)
					r.Get("/uploads", s.listUploads)
				})
				r.Post("/edges", s.connect)
				r.Delete("/edges/{edgeId}", s.removeEdge)
			})
		})
		r.Get("/orchestra", s.openOrchestra)
		r.Get("/dashboard", s.getDashboard)
		r.Get("/marketplace", s.getMarketplace)
		r.Get("/task-types", s.listTaskTypes)
		r.Route("/agents/{id}", func(r chi.Router) {
			r.Post("/run", s.runAgent)
			r.Get("/status", s.agentStatus)
			r.Post("/chat", s.chat)
			r.Post("/call", s.call)
		})
		r.Post("/creator", s.generate)
	})

	if s.renderer != nil {
		r.Handle("/*", rendererHandler(s.renderer))
	}
	return r
}
