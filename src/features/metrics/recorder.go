package metrics

import (
	"github.com/contre95/moodshelf/src/music"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "moodshelf"

// Recorder counts session activity in its own prometheus registry, so
// independent sessions never share counters.
type Recorder struct {
	registry        *prometheus.Registry
	songsAdded      *prometheus.CounterVec
	songsUpdated    *prometheus.CounterVec
	songsRemoved    prometheus.Counter
	luckyPicks      *prometheus.CounterVec
	emptyPools      prometheus.Counter
	profileRejected prometheus.Counter
	librarySize     *prometheus.GaugeVec
}

// NewRecorder creates a recorder labelled with the session ID.
func NewRecorder(sessionID string) *Recorder {
	labels := prometheus.Labels{"session": sessionID}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		songsAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "songs_added_total",
			Help:        "Songs added, by mood and whether the song was new.",
			ConstLabels: labels,
		}, []string{"mood", "new"}),
		songsUpdated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "songs_updated_total",
			Help:        "Songs edited, by resulting mood.",
			ConstLabels: labels,
		}, []string{"mood"}),
		songsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "songs_removed_total",
			Help:        "Songs removed from the library.",
			ConstLabels: labels,
		}),
		luckyPicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "lucky_picks_total",
			Help:        "Successful lucky picks, by mood of the picked song.",
			ConstLabels: labels,
		}, []string{"mood"}),
		emptyPools: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "lucky_pick_empty_pool_total",
			Help:        "Lucky picks that failed because the pool was empty.",
			ConstLabels: labels,
		}),
		profileRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "mood_profile_rejected_total",
			Help:        "Mood profile updates rejected as invalid.",
			ConstLabels: labels,
		}),
		librarySize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "library_songs",
			Help:        "Songs currently in the library, by mood.",
			ConstLabels: labels,
		}, []string{"mood"}),
	}
	r.registry.MustRegister(
		r.songsAdded,
		r.songsUpdated,
		r.songsRemoved,
		r.luckyPicks,
		r.emptyPools,
		r.profileRejected,
		r.librarySize,
	)
	for _, m := range music.Moods {
		r.librarySize.WithLabelValues(string(m)).Set(0)
	}
	return r
}

// Registry exposes the registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) SongAdded(mood music.Mood, created bool) {
	isNew := "false"
	if created {
		isNew = "true"
	}
	r.songsAdded.WithLabelValues(string(mood), isNew).Inc()
}

func (r *Recorder) SongUpdated(mood music.Mood) {
	r.songsUpdated.WithLabelValues(string(mood)).Inc()
}

func (r *Recorder) SongRemoved() {
	r.songsRemoved.Inc()
}

func (r *Recorder) LuckyPicked(mood music.Mood) {
	r.luckyPicks.WithLabelValues(string(mood)).Inc()
}

func (r *Recorder) PickFailed() {
	r.emptyPools.Inc()
}

func (r *Recorder) ProfileRejected() {
	r.profileRejected.Inc()
}

// LibrarySize sets the size gauge of every mood.
func (r *Recorder) LibrarySize(byMood map[music.Mood]int) {
	for _, m := range music.Moods {
		r.librarySize.WithLabelValues(string(m)).Set(float64(byMood[m]))
	}
}
