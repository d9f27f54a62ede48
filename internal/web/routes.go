package web

import (
	"github.com/facegate/facegate/internal/web/handlers"
)

func (s *Server) setupRoutes(imageDir string) {
	studentsHandler := handlers.NewStudentsHandler(s.store)
	attendancesHandler := handlers.NewAttendancesHandler(s.store)
	imagesHandler := handlers.NewImagesHandler(imageDir)

	s.router.Get("/health", handlers.HealthCheck)

	// Roster and reference images, consumed by the kiosk synchronizer.
	s.router.Get("/students/", studentsHandler.List)
	s.router.Get("/images/{name}", imagesHandler.Get)

	// Attendance log.
	s.router.Post("/attendances/", attendancesHandler.Create)
	s.router.Get("/attendances/", attendancesHandler.List)
	s.router.Get("/attendances/counts", attendancesHandler.Counts)
}
