package internal

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"campushub/observability"
	"campushub/projection"
	"campushub/search"
)

//go:embed inspect.html
var templatesFS embed.FS

// DebugServer is the operator-facing HTTP surface: raw store inspection,
// runtime counters, full-text message search, and the recent activity
// timeline. Never exposed to end users.
type DebugServer struct {
	log        *slog.Logger
	db         *badger.DB
	monitoring *observability.MonitoringManager
	index      *search.MessageIndex
	timeline   *projection.Timeline
}

func NewDebugServer(log *slog.Logger, db *badger.DB, monitoring *observability.MonitoringManager,
	index *search.MessageIndex, timeline *projection.Timeline) *DebugServer {
	return &DebugServer{log: log, db: db, monitoring: monitoring, index: index, timeline: timeline}
}

type InspectRow struct {
	Key        string
	Collection string
	Timestamp  string
	EntityID   string
	Detail     string
}

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  observability.MonitoringStats
}

// Start serves on all interfaces so the dashboard is reachable from the
// operator's machine. Runs in its own goroutine.
func (s *DebugServer) Start(port int) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "notif:"
		}

		data := PageData{Prefix: prefix, Stats: s.monitoring.GetLatest()}

		_ = s.db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapRow(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, s.monitoring.GetLatest())
	})

	mux.HandleFunc("/timeline", func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, s.timeline.Recent())
	})

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			http.Error(w, "missing q parameter", http.StatusBadRequest)
			return
		}
		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}
		hits, err := s.index.Search(r.Context(), q, r.URL.Query().Get("conversation_id"), limit)
		if err != nil {
			s.log.Warn("Search failed", "query", q, "error", err)
			http.Error(w, "search failed", http.StatusInternalServerError)
			return
		}
		s.writeJSON(w, hits)
	})

	go func() {
		addr := fmt.Sprintf("0.0.0.0:%d", port)
		s.log.Info("Debug server listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			s.log.Error("Debug server stopped", "error", err)
		}
	}()
}

func (s *DebugServer) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Debug("Failed to encode debug payload", "error", err)
	}
}

// mapRow extracts what it can from the key layout; every collection puts the
// entity id last and the hot ones carry a padded nano timestamp before it.
func mapRow(key string, val []byte) InspectRow {
	parts := strings.Split(key, ":")
	row := InspectRow{
		Key:        key,
		Collection: parts[0],
		Timestamp:  "--:--:--",
		EntityID:   "--------",
		Detail:     "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	if len(parts) >= 2 {
		row.EntityID = parts[len(parts)-1]
		if len(row.EntityID) > 8 {
			row.EntityID = row.EntityID[:8]
		}
	}
	if len(parts) >= 4 {
		if tsNano, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
			row.Timestamp = time.Unix(0, tsNano).Format("15:04:05")
		}
	}
	return row
}
