package server

import (
	"encoding/json"
	"github.com/ValentinKolb/dGrid/lib/compact"
	"github.com/ValentinKolb/dGrid/lib/schemastore"
	"github.com/ValentinKolb/dGrid/rpc/common"
	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lni/dragonboat/v4/logger"
	"net/http"
	"strconv"
	"time"
)

var adminLogger = logger.GetLogger("admin")

// memberInfo is the admin api view of a member
type memberInfo struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	Endpoint string `json:"endpoint"`
	Self     bool   `json:"self,omitempty"`
}

// newAdminRouter creates the admin http api of a member
//
//	GET /health        liveness
//	GET /metrics       prometheus text format
//	GET /members       all members of the cluster
//	GET /schemas       all stored schemas
//	GET /schemas/{id}  one schema, 404 if unknown
func newAdminRouter(config common.ServerConfig, store schemastore.ISchemaStore) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logRequests)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	r.Get("/members", func(w http.ResponseWriter, _ *http.Request) {
		members := []memberInfo{{
			Name:     config.MemberName,
			ID:       config.MemberID().String(),
			Endpoint: config.Transport.Endpoint,
			Self:     true,
		}}
		for _, name := range config.PeerNames() {
			members = append(members, memberInfo{
				Name:     name,
				ID:       common.MemberID(name).String(),
				Endpoint: config.Peers[name],
			})
		}
		writeJSON(w, http.StatusOK, members)
	})

	r.Route("/schemas", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			schemas, err := store.List()
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			defs := make([]compact.SchemaDefinition, len(schemas))
			for i, schema := range schemas {
				defs[i] = schema.Definition()
			}
			writeJSON(w, http.StatusOK, defs)
		})

		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid schema id")
				return
			}
			schema, ok, err := store.Get(id)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if !ok {
				writeError(w, http.StatusNotFound, "schema not found")
				return
			}
			writeJSON(w, http.StatusOK, schema.Definition())
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		adminLogger.Warningf("failed to write admin response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// logRequests logs every request at debug level
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		adminLogger.Debugf("%s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
