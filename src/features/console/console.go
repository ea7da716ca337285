package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/contre95/moodshelf/src/features/config"
	"github.com/contre95/moodshelf/src/features/importing"
	"github.com/contre95/moodshelf/src/features/playlists"
	"github.com/contre95/moodshelf/src/features/session"
	"github.com/contre95/moodshelf/src/music"
)

// SessionStore saves the open session and manages the stored ones.
type SessionStore interface {
	Save(ctx context.Context, s *session.Session) error
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}

// MetricsDumper prints the metrics of the session.
type MetricsDumper interface {
	Dump(w io.Writer) error
}

// Console is a line-oriented front end over one session. Every session call
// happens on the goroutine running Run, one command at a time.
type Console struct {
	session       *session.Session
	importer      *importing.Service
	exporter      *playlists.Service
	sessions      SessionStore
	metrics       MetricsDumper
	configManager *config.Manager
}

// NewConsole creates a console. importer, exporter, sessions, metrics and
// cfgManager may be nil; the commands that need them then report that the
// feature is not available.
func NewConsole(sess *session.Session, importer *importing.Service, exporter *playlists.Service, sessions SessionStore, metrics MetricsDumper, cfgManager *config.Manager) *Console {
	return &Console{
		session:       sess,
		importer:      importer,
		exporter:      exporter,
		sessions:      sessions,
		metrics:       metrics,
		configManager: cfgManager,
	}
}

// Run reads commands from in until quit, EOF or ctx is done. File events
// from the import watcher are handled on the same loop.
func (c *Console) Run(ctx context.Context, in io.Reader, out io.Writer, events <-chan importing.FileEvent) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	fmt.Fprintf(out, "Moodshelf session %s. Type 'help' for commands.\n", c.session.ID())
	for {
		fmt.Fprint(out, "> ")
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			fmt.Fprintln(out)
			return err
		case event := <-events:
			c.handleFileEvent(out, event)
		case line := <-lines:
			command, args, _ := strings.Cut(strings.TrimSpace(line), " ")
			if command == "" {
				continue
			}
			if c.HandleCommand(ctx, out, strings.ToLower(command), strings.TrimSpace(args)) {
				return nil
			}
		}
	}
}

// HandleCommand runs a single command. It reports true when the console
// should stop.
func (c *Console) HandleCommand(ctx context.Context, out io.Writer, command, args string) bool {
	slog.Debug("Console command received", "command", command, "args", args)
	switch command {
	case "add":
		c.handleAdd(out, args)
	case "update", "edit":
		c.handleUpdate(out, args)
	case "remove", "rm":
		c.handleRemove(out, args)
	case "playlists", "ls":
		c.handlePlaylists(out, args)
	case "search", "find":
		c.handleSearch(out, args)
	case "reset":
		c.handleReset(out, args)
	case "stats":
		c.handleStats(out, args)
	case "profile":
		c.handleProfile(out, args)
	case "lucky", "pick":
		c.handleLucky(out, args)
	case "history":
		c.handleHistory(out, args)
	case "import":
		c.handleImport(out, args)
	case "imported":
		c.handleImported(out, args)
	case "export":
		c.handleExport(out)
	case "save":
		c.handleSave(ctx, out)
	case "sessions":
		c.handleSessions(ctx, out)
	case "delete":
		c.handleDelete(ctx, out, args)
	case "metrics":
		c.handleMetrics(out)
	case "config":
		c.handleConfig(out, args)
	case "help":
		c.handleHelp(out)
	case "quit", "exit":
		return true
	default:
		fmt.Fprintf(out, "❌ Unknown command %q. Type 'help' to see available commands.\n", command)
	}
	return false
}

// GetCommands returns the available commands
func (c *Console) GetCommands() map[string]string {
	return map[string]string{
		"add":       "Add a song: add Title | Artist | Genre | Energy | tag, tag",
		"update":    "Change genre and energy: update Title | Artist | Genre | Energy",
		"remove":    "Remove a song: remove Title | Artist",
		"playlists": "Show the mood playlists (playlists [mood])",
		"search":    "Search songs (search <query>, or search title:|artist:|genre:|tag:<query>)",
		"reset":     "Remove every song and history entry (reset confirm)",
		"stats":     "Show library statistics (stats [mood])",
		"profile":   "Show or set mood weights (profile chill=1 energetic=0 mixed=0)",
		"lucky":     "Pick a random song (lucky [mood])",
		"history":   "Show history (history [added|lucky|summary])",
		"import":    "Merge a snapshot file, or the import directory (import [file])",
		"imported":  "List imported files, or forget them (imported [clear])",
		"export":    "Write M3U playlists and a YAML snapshot to the export path",
		"save":      "Save the session to the database",
		"sessions":  "List stored sessions",
		"delete":    "Delete a stored session (delete <id>)",
		"metrics":   "Show session metrics",
		"config":    "Show the configuration (config [json|save])",
		"quit":      "Exit",
	}
}

func (c *Console) handleHelp(out io.Writer) {
	commands := c.GetCommands()
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-10s %s\n", name, commands[name])
	}
}

// splitFields splits "a | b | c" into at least n trimmed fields.
func splitFields(args string, n int) []string {
	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	for len(parts) < n {
		parts = append(parts, "")
	}
	return parts
}

func (c *Console) handleAdd(out io.Writer, args string) {
	f := splitFields(args, 5)
	raw := music.RawSong{Title: f[0], Artist: f[1], Genre: f[2], Tags: strings.Split(f[4], ",")}
	if f[3] != "" {
		raw.Energy = f[3]
	}
	song, created, defaults := c.session.AddSong(raw)
	if created {
		fmt.Fprintf(out, "✅ Added %s\n", song.Pretty())
	} else {
		fmt.Fprintf(out, "✅ Updated %s\n", song.Pretty())
	}
	printDefaults(out, defaults)
}

func (c *Console) handleUpdate(out io.Writer, args string) {
	f := splitFields(args, 4)
	var energy any
	if f[3] != "" {
		energy = f[3]
	}
	song, defaults, found := c.session.UpdateSong(f[0], f[1], f[2], energy)
	if !found {
		fmt.Fprintf(out, "❌ No song %q by %q\n", f[0], f[1])
		return
	}
	fmt.Fprintf(out, "✅ Updated %s\n", song.Pretty())
	printDefaults(out, defaults)
}

func printDefaults(out io.Writer, defaults music.Defaults) {
	if defaults.Any() {
		fmt.Fprintf(out, "⚠️  Defaults used for: %s\n", strings.Join(defaults.Fields(), ", "))
	}
}

func (c *Console) handleRemove(out io.Writer, args string) {
	f := splitFields(args, 2)
	if c.session.RemoveSong(f[0], f[1]) {
		fmt.Fprintf(out, "✅ Removed %q by %q\n", f[0], f[1])
		return
	}
	fmt.Fprintf(out, "❌ No song %q by %q\n", f[0], f[1])
}

func (c *Console) handlePlaylists(out io.Writer, args string) {
	playlists := c.session.GetPlaylists()
	moods := music.Moods
	if args != "" {
		mood, err := music.ParseMood(args)
		if err != nil {
			fmt.Fprintf(out, "❌ %s\n", err)
			return
		}
		moods = []music.Mood{mood}
	}
	for _, mood := range moods {
		fmt.Fprint(out, playlists[mood].Pretty())
	}
}

func (c *Console) handleSearch(out io.Writer, args string) {
	field, query := music.ParseSearchQuery(args)
	songs := c.session.SearchBy(field, query)
	if len(songs) == 0 {
		fmt.Fprintln(out, "No songs found")
		return
	}
	for i, s := range songs {
		fmt.Fprintf(out, "  %d. %s\n", i+1, s.Pretty())
	}
}

func (c *Console) handleStats(out io.Writer, args string) {
	st := c.session.GetStats()
	if args != "" {
		mood, err := music.ParseMood(args)
		if err != nil {
			fmt.Fprintf(out, "❌ %s\n", err)
			return
		}
		if st, err = c.session.StatsFor(mood); err != nil {
			fmt.Fprintf(out, "❌ %s\n", err)
			return
		}
		fmt.Fprintf(out, "📊 %s playlist\n", mood)
	} else {
		fmt.Fprintln(out, "📊 Library")
	}
	fmt.Fprintf(out, "  Songs: %d\n", st.TotalCount)
	fmt.Fprintf(out, "  Average energy: %.2f\n", st.AverageEnergy)
	for _, m := range music.Moods {
		fmt.Fprintf(out, "  %-9s %d (%.0f%%), average energy %.2f\n", m, st.CountByMood[m], st.RatioByMood[m]*100, st.AverageEnergyByMood[m])
	}
	if st.TopGenre != "" {
		fmt.Fprintf(out, "  Top genre: %s (%d)\n", st.TopGenre, st.TopGenreCount)
		fmt.Fprintf(out, "  Top artist: %s (%d)\n", st.TopArtist, st.TopArtistCount)
	}
}

func (c *Console) handleProfile(out io.Writer, args string) {
	if args != "" {
		weights, err := parseWeights(args)
		if err != nil {
			fmt.Fprintf(out, "❌ %s\n", err)
			return
		}
		if err := c.session.SetMoodProfile(weights); err != nil {
			fmt.Fprintf(out, "❌ %s (profile unchanged)\n", err)
			return
		}
		c.rememberProfile()
	}
	weights := c.session.MoodProfile().Weights()
	parts := make([]string, 0, len(music.Moods))
	for _, m := range music.Moods {
		parts = append(parts, fmt.Sprintf("%s=%g", strings.ToLower(string(m)), weights[m]))
	}
	fmt.Fprintf(out, "Mood profile: %s\n", strings.Join(parts, " "))
}

// rememberProfile copies the session profile into the configuration, so
// "config save" makes it the startup profile.
func (c *Console) rememberProfile() {
	if c.configManager == nil {
		return
	}
	weights := c.session.MoodProfile().Weights()
	cfg := *c.configManager.Get()
	cfg.Session.Profile = config.Profile{
		Chill:     weights[music.MoodChill],
		Energetic: weights[music.MoodEnergetic],
		Mixed:     weights[music.MoodMixed],
	}
	c.configManager.Update(&cfg)
}

// parseWeights reads "chill=1 energetic=0.5". Unknown mood names are passed
// through so the profile validation reports them.
func parseWeights(args string) (map[music.Mood]float64, error) {
	weights := make(map[music.Mood]float64)
	for _, field := range strings.Fields(args) {
		name, value, ok := strings.Cut(field, "=")
		if !ok {
			return nil, fmt.Errorf("expected mood=weight, got %q", field)
		}
		w, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("weight of %s is not a number: %q", name, value)
		}
		mood, err := music.ParseMood(name)
		if err != nil {
			mood = music.Mood(name)
		}
		weights[mood] = w
	}
	return weights, nil
}

func (c *Console) handleLucky(out io.Writer, args string) {
	var song music.Song
	var err error
	if args == "" {
		song, err = c.session.LuckyPick()
	} else {
		mood, perr := music.ParseMood(args)
		if perr != nil {
			fmt.Fprintf(out, "❌ %s\n", perr)
			return
		}
		song, err = c.session.LuckyPickMood(mood)
	}
	if err != nil {
		fmt.Fprintf(out, "❌ %s\n", err)
		return
	}
	fmt.Fprintf(out, "🎲 %s\n", song.Pretty())
}

func (c *Console) handleHistory(out io.Writer, args string) {
	if strings.EqualFold(args, "summary") {
		summary := c.session.HistorySummary()
		for _, m := range music.Moods {
			fmt.Fprintf(out, "  %-9s %d\n", m, summary[m])
		}
		return
	}
	var filter *music.HistoryKind
	if args != "" {
		kind, err := music.ParseHistoryKind(args)
		if err != nil {
			fmt.Fprintf(out, "❌ %s\n", err)
			return
		}
		filter = &kind
	}
	entries := c.session.GetHistory(filter)
	if len(entries) == 0 {
		fmt.Fprintln(out, "History is empty")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(out, "  %s %-9s %s - %s (%s)\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Kind, e.Artist, e.Title, e.Mood)
	}
}

func (c *Console) handleImport(out io.Writer, args string) {
	if c.importer == nil {
		fmt.Fprintln(out, "❌ Importing is not available")
		return
	}
	if args == "" {
		stats, err := c.importer.ImportDirectory(c.session, c.importer.WatchPath())
		if err != nil {
			fmt.Fprintf(out, "❌ %s\n", err)
			return
		}
		fmt.Fprintf(out, "📥 %d files, %d new songs, %d skipped, %d errors\n", stats.Files, stats.Added, stats.Skipped, stats.Errors)
		if stats.Defaulted > 0 {
			fmt.Fprintf(out, "⚠️  %d songs stored with defaults\n", stats.Defaulted)
		}
		return
	}
	result, err := c.importer.ImportFile(c.session, args)
	if err != nil {
		fmt.Fprintf(out, "❌ %s\n", err)
		return
	}
	printImport(out, result)
}

func (c *Console) handleFileEvent(out io.Writer, event importing.FileEvent) {
	if c.importer == nil {
		return
	}
	result, err := c.importer.HandleEvent(c.session, event)
	if err != nil {
		fmt.Fprintf(out, "\n❌ Import of %s failed: %s\n", event.Path, err)
		return
	}
	fmt.Fprintln(out)
	printImport(out, result)
}

func printImport(out io.Writer, result importing.Result) {
	if result.Skipped {
		fmt.Fprintf(out, "📥 %s already imported\n", result.Path)
		return
	}
	fmt.Fprintf(out, "📥 %s: %d songs, %d new\n", result.Path, result.Songs, result.Added)
	if result.Defaulted > 0 {
		fmt.Fprintf(out, "⚠️  %d songs stored with defaults\n", result.Defaulted)
	}
}

func (c *Console) handleExport(out io.Writer) {
	if c.exporter == nil {
		fmt.Fprintln(out, "❌ Exporting is not available")
		return
	}
	paths, err := c.exporter.ExportM3U(c.session)
	if err != nil {
		fmt.Fprintf(out, "❌ %s\n", err)
		return
	}
	snapshot, err := c.exporter.ExportSnapshot(c.session)
	if err != nil {
		fmt.Fprintf(out, "❌ %s\n", err)
		return
	}
	for _, p := range append(paths, snapshot) {
		fmt.Fprintf(out, "📤 %s\n", p)
	}
}

func (c *Console) handleSave(ctx context.Context, out io.Writer) {
	if c.sessions == nil {
		fmt.Fprintln(out, "❌ Saving is not available")
		return
	}
	if err := c.sessions.Save(ctx, c.session); err != nil {
		fmt.Fprintf(out, "❌ %s\n", err)
		return
	}
	fmt.Fprintf(out, "💾 Session %s saved\n", c.session.ID())
}

func (c *Console) handleMetrics(out io.Writer) {
	if c.metrics == nil {
		fmt.Fprintln(out, "❌ Metrics are not available")
		return
	}
	if err := c.metrics.Dump(out); err != nil {
		fmt.Fprintf(out, "❌ %s\n", err)
	}
}

func (c *Console) handleConfig(out io.Writer, args string) {
	if c.configManager == nil {
		fmt.Fprintln(out, "❌ Configuration is not available")
		return
	}
	switch strings.ToLower(args) {
	case "":
		fmt.Fprint(out, c.configManager.GetYAML())
	case "json":
		fmt.Fprintln(out, c.configManager.GetJSON())
	case "save":
		if err := c.configManager.Save(c.configManager.Path()); err != nil {
			fmt.Fprintf(out, "❌ %s\n", err)
			return
		}
		fmt.Fprintf(out, "💾 Configuration saved to %s\n", c.configManager.Path())
	default:
		fmt.Fprintf(out, "❌ Unknown config action %q, expected json or save\n", args)
	}
}

func (c *Console) handleReset(out io.Writer, args string) {
	if args != "confirm" {
		fmt.Fprintln(out, "❌ This removes every song and history entry. Type 'reset confirm' to proceed.")
		return
	}
	n := c.session.Reset()
	fmt.Fprintf(out, "🗑️  Removed %d songs\n", n)
}

func (c *Console) handleSessions(ctx context.Context, out io.Writer) {
	if c.sessions == nil {
		fmt.Fprintln(out, "❌ Sessions are not available")
		return
	}
	ids, err := c.sessions.List(ctx)
	if err != nil {
		fmt.Fprintf(out, "❌ %s\n", err)
		return
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No stored sessions")
		return
	}
	for _, id := range ids {
		marker := " "
		if id == c.session.ID() {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s %s\n", marker, id)
	}
}

func (c *Console) handleDelete(ctx context.Context, out io.Writer, id string) {
	if c.sessions == nil {
		fmt.Fprintln(out, "❌ Sessions are not available")
		return
	}
	switch id {
	case "":
		fmt.Fprintln(out, "❌ Usage: delete <session id>")
		return
	case c.session.ID():
		fmt.Fprintln(out, "❌ Cannot delete the open session, use 'reset confirm' instead")
		return
	}
	if err := c.sessions.Delete(ctx, id); err != nil {
		fmt.Fprintf(out, "❌ %s\n", err)
		return
	}
	fmt.Fprintf(out, "🗑️  Session %s deleted\n", id)
}

func (c *Console) handleImported(out io.Writer, args string) {
	if c.importer == nil {
		fmt.Fprintln(out, "❌ Importing is not available")
		return
	}
	if args == "clear" {
		n, err := c.importer.ForgetImports()
		if err != nil {
			fmt.Fprintf(out, "❌ %s\n", err)
			return
		}
		fmt.Fprintf(out, "🗑️  Forgot %d imported files\n", n)
		return
	}
	files := c.importer.ImportedFiles()
	if len(files) == 0 {
		fmt.Fprintln(out, "No files imported")
		return
	}
	for _, f := range files {
		fmt.Fprintf(out, "  %s %s: %d songs, %d new, %d with defaults\n", f.ImportedAt.Format("2006-01-02 15:04:05"), f.Path, f.Songs, f.Added, f.Defaulted)
	}
}
