package jobs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/Pranav4399/loans/internal/storage"
)

const defaultRetentionHours = 72

// CleanupJob periodically removes abandoned conversations so half-filled
// forms do not pile up in storage.
type CleanupJob struct {
	store     storage.Store
	retention time.Duration
	interval  time.Duration
	stop      chan struct{}
	isRunning bool
}

// NewCleanupJob creates a cleanup job. Retention comes from the
// CONVERSATION_RETENTION_HOURS environment variable (default 72).
func NewCleanupJob(store storage.Store) *CleanupJob {
	retentionHours := defaultRetentionHours
	if v := os.Getenv("CONVERSATION_RETENTION_HOURS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			retentionHours = parsed
		} else {
			log.Printf("⚠️  Invalid CONVERSATION_RETENTION_HOURS %q, using default %d", v, defaultRetentionHours)
		}
	}

	return &CleanupJob{
		store:     store,
		retention: time.Duration(retentionHours) * time.Hour,
		interval:  time.Hour,
		stop:      make(chan struct{}),
	}
}

// Start begins the periodic cleanup sweep.
func (j *CleanupJob) Start() {
	if j.isRunning {
		log.Println("Cleanup job already running")
		return
	}

	j.isRunning = true
	log.Printf("Starting conversation cleanup job (retention: %v)", j.retention)

	go j.run()
}

// Stop halts the cleanup sweep.
func (j *CleanupJob) Stop() {
	if !j.isRunning {
		return
	}
	j.isRunning = false
	close(j.stop)
	log.Println("Stopping conversation cleanup job...")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.stop:
			return
		}
	}
}

// sweep deletes incomplete conversations whose last update is older than the
// retention window. Completed conversations are kept so the terminal step can
// answer duplicate messages.
func (j *CleanupJob) sweep() {
	cutoff := time.Now().Add(-j.retention)
	deleted, err := j.store.DeleteStaleConversations(cutoff)
	if err != nil {
		log.Printf("❌ Conversation cleanup failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("🧹 Cleaned up %d stale conversation(s)", deleted)
	}
}
