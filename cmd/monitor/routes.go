package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	getcustomers "gas-monitor/http-server/customers/get"
	savecustomer "gas-monitor/http-server/customers/save"
	upcustomer "gas-monitor/http-server/customers/update"
	getprofiles "gas-monitor/http-server/profiles/get"
	saveprofile "gas-monitor/http-server/profiles/save"
	upprofiles "gas-monitor/http-server/profiles/update"
	getreadings "gas-monitor/http-server/readings/get"
	savereading "gas-monitor/http-server/readings/save"
	upreading "gas-monitor/http-server/readings/update"
	"gas-monitor/http-server/report/excel"
	"gas-monitor/internal/config"
	"gas-monitor/internal/middleware/auth"
	"gas-monitor/internal/service/export"
	"gas-monitor/internal/service/monitor"
)

func routes(cfg config.Config, log *slog.Logger, store Storage, monitorService *monitor.Service, exportService *export.Service) *chi.Mux {
	router := chi.NewRouter()
	loc := cfg.Location()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	adminAuth := auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass)

	// операторы вносят показания, просмотр и выгрузка только для админов
	router.With(auth.Operator(log, store)).Post("/api/readings", savereading.SaveReading(log, monitorService))
	router.With(adminAuth).Get("/api/readings", getreadings.GetReadings(log, monitorService, loc))
	router.With(adminAuth).Get("/api/report/excel", excel.GenerateReportExcel(log, exportService, loc, cfg.Export.Timeout))

	router.Get("/api/customers", getcustomers.GetCustomers(log, store))

	adminRouter := chi.NewRouter()
	adminRouter.Use(adminAuth)

	adminRouter.Get("/readings/{id}", upreading.GetReadingAdmin(log, monitorService))
	adminRouter.Put("/readings/{id}", upreading.UpdateReadingAdmin(log, monitorService))
	adminRouter.Delete("/readings/{id}", upreading.DeleteReadingAdmin(log, monitorService))
	adminRouter.Get("/customers", getcustomers.GetAllCustomersAdmin(log, store))
	adminRouter.Post("/customers", savecustomer.SaveCustomerAdmin(log, store))
	adminRouter.Put("/customers/{code}", upcustomer.UpdateCustomerAdmin(log, store))
	adminRouter.Get("/profiles", getprofiles.GetProfilesAdmin(log, store))
	adminRouter.Post("/profiles/save", saveprofile.SaveProfileAdmin(log, store))
	adminRouter.Put("/profiles/update", upprofiles.UpdateProfilesAdmin(log, store))

	router.Mount("/api/admin", adminRouter)

	if cfg.FrontendDir != "" {
		mountFrontend(router, cfg, log)
	}

	return router
}

// mountFrontend отдаёт собранный SPA; неизвестные пути уходят в index.html.
func mountFrontend(router *chi.Mux, cfg config.Config, log *slog.Logger) {
	frontendDir := cfg.FrontendDir
	if _, err := os.Stat(frontendDir); err != nil {
		log.Warn("Папка фронтенда не найдена, статика не раздаётся", "path", frontendDir)
		return
	}

	index := filepath.Join(frontendDir, "index.html")
	fileServer := http.FileServer(http.Dir(frontendDir))

	router.Handle("/assets/*", fileServer)

	router.With(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass)).Handle("/admin/*",
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, index)
		}),
	)

	router.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(frontendDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
		http.ServeFile(w, r, index)
	})
}
