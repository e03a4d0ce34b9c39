package config

// GetDefaults returns the built-in configuration keyed by koanf path.
func GetDefaults() map[string]any {
	return map[string]any{
		"cache.backend":         "file",
		"cache.dir":             "",
		"cache.redis_addr":      "localhost:6379",
		"cache.redis_password":  "",
		"cache.redis_db":        0,
		"cache.ttl":             "168h",
		"render.format":         "svg",
		"render.style":          "lanes",
		"render.cell_size":      20.0,
		"layout.dep_order":      "priority",
		"layout.max_rows":       0,
		"server.addr":           ":8080",
		"server.read_timeout":   "30s",
		"server.write_timeout":  "60s",
		"server.max_body_bytes": int64(8 << 20),
		"mongo.uri":             "",
		"mongo.database":        "lanegraph",
		"mongo.collection":      "events",
	}
}

// GetDefaultConfigTemplate returns a commented config file with every
// option at its default.
func GetDefaultConfigTemplate() string {
	return `# lanegraph configuration
# Environment overrides: LANEGRAPH_<SECTION>__<KEY>, e.g. LANEGRAPH_CACHE__BACKEND=none

cache:
  backend: file                 # file | redis | none
  dir: ""                       # File cache directory (default: user cache dir)
  redis_addr: localhost:6379    # Redis address for backend: redis
  redis_db: 0
  ttl: 168h                     # Lifetime of cached layouts and artifacts

render:
  format: svg                   # Comma-separated: svg, png, pdf, json, dot, txt
  style: lanes                  # lanes | nodelink
  cell_size: 20                 # Lane spacing in pixels

layout:
  dep_order: priority           # priority | first
  max_rows: 0                   # Row budget (0 = unlimited)

server:
  addr: ":8080"
  read_timeout: 30s
  write_timeout: 60s
  max_body_bytes: 8388608

mongo:
  uri: ""                       # mongodb://host:27017
  database: lanegraph
  collection: events
`
}
