package main

import (
	"context"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contre95/moodshelf/src/features/config"
	"github.com/contre95/moodshelf/src/features/console"
	"github.com/contre95/moodshelf/src/features/importing"
	"github.com/contre95/moodshelf/src/features/logging"
	"github.com/contre95/moodshelf/src/features/metrics"
	"github.com/contre95/moodshelf/src/features/playlists"
	"github.com/contre95/moodshelf/src/features/session"
	"github.com/contre95/moodshelf/src/infra/database"
	"github.com/contre95/moodshelf/src/infra/m3u"
	"github.com/contre95/moodshelf/src/infra/memory"
	"github.com/contre95/moodshelf/src/infra/snapshot"
	"github.com/contre95/moodshelf/src/infra/watcher"
	"github.com/contre95/moodshelf/src/music"
)

func main() {
	// Load configuration
	cfgManager, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create the snapshot store
	var store session.Store
	if cfgManager.Get().Database.Enabled {
		db, err := database.NewSqliteStore(cfgManager.Get().Database.Path)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		store = db
	} else {
		slog.Warn("Database disabled, sessions will not outlive the process")
		store = memory.NewInMemoryStore()
	}

	// Every session gets its own metrics registry
	recorders := make(map[string]*metrics.Recorder)
	sessionManager := session.NewManager(store, func(id string) session.Options {
		recorder := metrics.NewRecorder(id)
		recorders[id] = recorder
		return sessionOptions(cfgManager.Get().Session, recorder)
	})

	sess, err := sessionManager.Open(ctx, cfgManager.Get().Session.ID)
	if err != nil {
		log.Fatalf("failed to open session: %v", err)
	}
	slog.Info("Session opened", "id", sess.ID(), "songs", sess.GetStats().TotalCount)

	// Remember the session so "config save" reopens it on the next start
	cfg := *cfgManager.Get()
	cfg.Session.ID = sess.ID()
	cfgManager.Update(&cfg)
	metricsService := metrics.NewService(recorders[sess.ID()])

	// Create the importing service
	importingService := importing.NewService(snapshot.Codec{}, memory.NewInMemoryRegistry(), cfgManager)

	// Create the playlists service
	playlistsService := playlists.NewService(m3u.NewGenerator(), snapshot.Codec{}, cfgManager)

	// Start watching the import directory if enabled
	var events chan importing.FileEvent
	if cfgManager.Get().Import.Watch {
		events = make(chan importing.FileEvent, 16)
		debounce := time.Duration(cfgManager.Get().Import.DebounceSecs) * time.Second
		var fileWatcher importing.Watcher
		fileWatcher, err = watcher.NewWatcher(events, debounce)
		if err != nil {
			log.Fatalf("failed to create watcher: %v", err)
		}
		if _, err := importingService.ImportDirectory(sess, importingService.WatchPath()); err != nil {
			slog.Error("Initial import failed", "error", err)
		}
		if err := fileWatcher.Start(ctx, importingService.WatchPath()); err != nil {
			log.Fatalf("failed to start watcher: %v", err)
		}
		defer fileWatcher.Stop()
	}

	// Run the console until quit, EOF or a signal
	cli := console.NewConsole(sess, importingService, playlistsService, sessionManager, metricsService, cfgManager)
	if err := cli.Run(ctx, os.Stdin, os.Stdout, events); err != nil {
		slog.Error("Console stopped", "error", err)
	}

	slog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sessionManager.Close(shutdownCtx, sess.ID()); err != nil {
		slog.Error("Failed to save session", "id", sess.ID(), "error", err)
		return
	}
	slog.Info("Session saved", "id", sess.ID())
}

// sessionOptions turns the session config into options. A zero seed seeds the
// picker from the clock.
func sessionOptions(cfg config.Session, recorder session.Recorder) session.Options {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	opts := session.Options{
		AntiRepeat: cfg.AntiRepeat,
		Rand:       rand.New(rand.NewPCG(seed, seed>>1)),
		Recorder:   recorder,
	}
	profile, err := music.NewMoodProfile(map[music.Mood]float64{
		music.MoodChill:     cfg.Profile.Chill,
		music.MoodEnergetic: cfg.Profile.Energetic,
		music.MoodMixed:     cfg.Profile.Mixed,
	})
	if err != nil {
		slog.Warn("Ignoring configured mood profile", "error", err)
		return opts
	}
	opts.Profile = &profile
	return opts
}
