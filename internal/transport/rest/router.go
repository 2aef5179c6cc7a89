package rest

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"airclass/internal/service"
	"airclass/internal/transport/rest/handler"
	"airclass/internal/transport/ws"
)

// Container holds all dependencies for the router.
type Container struct {
	Identity       *service.IdentityService
	Sessions       *service.SessionService
	Rooms          *service.RoomService
	WSHandler      *ws.Handler
	AllowedOrigins string
	Log            *logrus.Logger
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.Identity)
	classroomHandler := handler.NewClassroomHandler(c.Rooms, c.Identity)
	attendanceHandler := handler.NewAttendanceHandler(c.Rooms)
	requestHandler := handler.NewRequestHandler(c.Rooms)
	sessionHandler := handler.NewSessionHandler(c.Sessions)

	r.Use(loggingMiddleware(c.Log), corsMiddleware(c.AllowedOrigins))

	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")

	r.HandleFunc("/classroom", classroomHandler.List).Methods("GET", "OPTIONS")
	r.HandleFunc("/classroom", classroomHandler.Create).Methods("POST")
	r.HandleFunc("/classroom", classroomHandler.Update).Methods("PUT")
	r.HandleFunc("/classroom", classroomHandler.Delete).Methods("DELETE")

	r.HandleFunc("/attendance", attendanceHandler.List).Methods("GET", "OPTIONS")
	r.HandleFunc("/attendance", attendanceHandler.Mark).Methods("POST")
	r.HandleFunc("/attendance/code", attendanceHandler.GenerateCode).Methods("POST", "OPTIONS")

	r.HandleFunc("/request", requestHandler.List).Methods("GET", "OPTIONS")
	r.HandleFunc("/request", requestHandler.Create).Methods("POST")
	r.HandleFunc("/request", requestHandler.Update).Methods("PUT")

	r.HandleFunc("/session", sessionHandler.List).Methods("GET", "OPTIONS")
	r.HandleFunc("/session", sessionHandler.Deactivate).Methods("PUT")

	if c.WSHandler != nil {
		r.HandleFunc("/ws", c.WSHandler.Serve).Methods("GET")
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func loggingMiddleware(log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("http request")
		})
	}
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
