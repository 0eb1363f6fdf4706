package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/acquainted-app/acquaintedbackend/config"
	"github.com/acquainted-app/acquaintedbackend/database"
	"github.com/acquainted-app/acquaintedbackend/handlers"
	"github.com/acquainted-app/acquaintedbackend/repository"
	"github.com/acquainted-app/acquaintedbackend/services"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create database directory %s: %v", dir, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}

	personRepo := repository.NewPersonRepository(db)
	facetRepo := repository.NewFacetRepository(db)
	linkRepo := repository.NewLinkRepository(db)

	filterService := services.NewFilterService(personRepo, linkRepo)
	transferService := services.NewTransferService(db, personRepo, facetRepo, linkRepo)
	recentFacets := services.NewRecentFacets()

	log.Printf("Using database: %s", cfg.DatabasePath)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	personHandler := &handlers.PersonHandler{
		People: personRepo,
		Facets: facetRepo,
		Links:  linkRepo,
		Filter: filterService,
		Recent: recentFacets,
	}
	facetHandler := &handlers.FacetHandler{Facets: facetRepo, Recent: recentFacets}
	transferHandler := &handlers.TransferHandler{Service: transferService}

	r.Route("/api", func(r chi.Router) {
		r.Route("/people", func(r chi.Router) {
			r.Get("/", personHandler.ListPeople)
			r.Post("/", personHandler.CreatePerson)
			r.Get("/search", personHandler.SearchPeople)
			r.Route("/{person_id}", func(r chi.Router) {
				r.Get("/", personHandler.GetPerson)
				r.Put("/", personHandler.UpdatePerson)
				r.Delete("/", personHandler.DeletePerson)
				r.Route("/facets/{facet_id}", func(r chi.Router) {
					r.Put("/", personHandler.AddFacetToPerson)
					r.Delete("/", personHandler.RemoveFacetFromPerson)
				})
			})
		})

		r.Route("/facets", func(r chi.Router) {
			r.Get("/", facetHandler.ListFacets)
			r.Post("/", facetHandler.FindOrCreateFacet)
			r.Get("/search", facetHandler.SearchFacets)
			r.Get("/recent", facetHandler.RecentFacets)
			r.Route("/{facet_id}", func(r chi.Router) {
				r.Put("/", facetHandler.UpdateFacet)
				r.Delete("/", facetHandler.DeleteFacet)
			})
		})

		r.Get("/export", transferHandler.ExportData)
		r.Post("/import", transferHandler.ImportData)
		r.Delete("/data", transferHandler.ClearData)
	})

	serverAddr := ":" + cfg.Port
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
