package config

import (
	"os"
	"strings"
)

// Origins lists the browser origins allowed to call the API and open game
// streams. An empty list lets every origin through.
type Origins []string

func NewOrigins() Origins {
	var origins Origins
	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (o Origins) Allow(origin string) bool {
	if len(o) == 0 {
		return true
	}
	for _, allowed := range o {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}
