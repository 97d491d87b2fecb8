package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/routegroup"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/tapedrive-io/tape/docs"
	"github.com/tapedrive-io/tape/internal/api/handlers"
	"github.com/tapedrive-io/tape/internal/api/middleware"
	"github.com/tapedrive-io/tape/internal/config"
	"github.com/tapedrive-io/tape/internal/core/mining"
	"github.com/tapedrive-io/tape/internal/core/primitives"
	"github.com/tapedrive-io/tape/internal/core/store"
	"github.com/tapedrive-io/tape/internal/core/tape"
	"github.com/tapedrive-io/tape/internal/core/wire"
)

// maxRequestBody caps a write body at one full tape (MaxLeaves segments)
// plus slack for the surrounding JSON envelope.
const maxRequestBody = primitives.MaxTapeSize + 4096

// Server wires the core's tape/mining/treasury services behind a
// routegroup mux, the same shape nazandr-cp-epoch-server's Server uses
// for its epoch/subsidy/merkle services.
type Server struct {
	tapeService     tape.Service
	miningService   mining.Service
	treasuryService wire.Treasury
	store           *store.Store
	logger          lgr.L
	config          *config.Config
}

func NewServer(
	tapeService tape.Service,
	miningService mining.Service,
	treasuryService wire.Treasury,
	st *store.Store,
	logger lgr.L,
	cfg *config.Config,
) *Server {
	return &Server{
		tapeService:     tapeService,
		miningService:   miningService,
		treasuryService: treasuryService,
		store:           st,
		logger:          logger,
		config:          cfg,
	}
}

// SetupRoutes configures all HTTP routes and middleware.
func (s *Server) SetupRoutes() http.Handler {
	healthHandler := handlers.NewHealthHandler(s.logger, s.checkStore)
	tapeHandler := handlers.NewTapeHandler(s.tapeService, s.store, s.logger)
	miningHandler := handlers.NewMiningHandler(s.miningService, s.store, s.logger)
	treasuryHandler := handlers.NewTreasuryHandler(s.treasuryService, s.store, s.logger)

	router := routegroup.New(http.NewServeMux())

	router.Use(rest.RealIP)
	router.Use(rest.Trace)
	router.Use(rest.SizeLimit(maxRequestBody))
	router.Use(middleware.Logging(s.logger))
	router.Use(middleware.Recovery(s.logger))
	router.Use(rest.AppInfo("tapedrive", "tapedrive-io", "0.1.0"))
	router.Use(rest.Ping)

	router.HandleFunc("GET /health", healthHandler.HandleHealth)
	router.HandleFunc("GET /swagger/*", httpSwagger.Handler())

	router.Group().Mount("/api").Route(func(api *routegroup.Bundle) {
		api.Group().Mount("/tapes").Route(func(tapes *routegroup.Bundle) {
			tapes.HandleFunc("POST /", tapeHandler.HandleCreate)
			tapes.HandleFunc("GET /{address}", tapeHandler.HandleGet)
			tapes.HandleFunc("POST /{address}/write", tapeHandler.HandleWrite)
			tapes.HandleFunc("POST /{address}/update", tapeHandler.HandleUpdate)
			tapes.HandleFunc("POST /{address}/finalize", tapeHandler.HandleFinalize)
		})

		api.Group().Mount("/miners").Route(func(miners *routegroup.Bundle) {
			miners.HandleFunc("POST /", miningHandler.HandleRegister)
			miners.HandleFunc("GET /{address}", miningHandler.HandleGet)
			miners.HandleFunc("POST /{address}/mine", miningHandler.HandleMine)
			miners.HandleFunc("POST /{address}/claim", miningHandler.HandleClaim)
			miners.HandleFunc("DELETE /{address}", miningHandler.HandleClose)
		})

		api.Group().Mount("/treasury").Route(func(treasury *routegroup.Bundle) {
			treasury.HandleFunc("POST /initialize", treasuryHandler.HandleInitialize)
			treasury.HandleFunc("GET /", treasuryHandler.HandleGetSnapshot)
		})
	})

	return router
}

// Start starts the HTTP server with the teacher's security timeouts.
func (s *Server) Start() error {
	handler := s.SetupRoutes()
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.Logf("INFO starting server on %s", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

func (s *Server) checkStore() error {
	if s.store == nil {
		return fmt.Errorf("store not initialized")
	}
	if _, err := s.store.GetArchive(); err != nil {
		return fmt.Errorf("archive not reachable: %w", err)
	}
	return nil
}
