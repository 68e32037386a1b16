package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/vancomm/minesweeper-games/internal/config"
)

func Cors(origins config.Origins) Middleware {
	options := cors.Options{
		AllowOriginFunc: origins.Allow,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Location", "X-Request-ID"},
		AllowCredentials: true,
	}
	return cors.New(options).Handler
}
