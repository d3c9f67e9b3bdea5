// Package main is the entry point for the modalkit CLI
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/james-see/modalkit/pkg/api"
	"github.com/james-see/modalkit/pkg/audio"
	"github.com/james-see/modalkit/pkg/config"
	"github.com/james-see/modalkit/pkg/explorer"
	"github.com/james-see/modalkit/pkg/export"
	"github.com/james-see/modalkit/pkg/logging"
	"github.com/james-see/modalkit/pkg/theory"
	"github.com/james-see/modalkit/pkg/throttle"
	"github.com/james-see/modalkit/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	rootName   string
	kindName   string
	logLevel   string
	logFile    string
	devLogs    bool
	velocity   int
	waveform   string
	octaveBase int

	outputFile string
	modeName   string
	tempo      float64
	beats      uint32
	serverPort int

	cfg    *config.Config
	logger = zap.NewNop()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "modalkit",
	Short: "Explore the modes of a root note and hear their chords",
	Long: `modalkit derives the seven diatonic modes of a root note, shows their
degrees as notes, triads or seventh chords, and plays any chord you pick.

Examples:
  modalkit modes --root D --kind triads
  modalkit chord Dm7 --root C
  modalkit play Bdim --root C
  modalkit export Dm7 G7 Cmaj7 -o ii-V-I.mid
  modalkit export --mode Dorian --kind sevenths -o dorian.mid
  modalkit tui
  modalkit serve --port 8080`,
	Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRunE: setup,
	SilenceUsage:      true,
}

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "Print the mode table for a root",
	Args:  cobra.NoArgs,
	RunE:  runModes,
}

var chordCmd = &cobra.Command{
	Use:   "chord <symbol>",
	Short: "Resolve a chord and show where it is voiced",
	Args:  cobra.ExactArgs(1),
	RunE:  runChord,
}

var playCmd = &cobra.Command{
	Use:   "play <cell>",
	Short: "Play a chord or note through the audio device",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

var exportCmd = &cobra.Command{
	Use:   "export [cell...]",
	Short: "Write chords to a Standard MIDI File",
	RunE:  runExport,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive mode table",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default ~/.config/modalkit/config.json)")
	pf.StringVarP(&rootName, "root", "r", "", "Root note (default from config, C)")
	pf.StringVarP(&kindName, "kind", "k", "", "Display kind: notes, triads, sevenths")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
	pf.BoolVar(&devLogs, "dev", false, "Human-readable development logs")
	pf.IntVar(&velocity, "velocity", 0, "Note velocity 0-127")
	pf.StringVar(&waveform, "waveform", "", "Oscillator waveform: sine, square, sawtooth, triangle")
	pf.IntVar(&octaveBase, "octave", 0, "Base octave chords are voiced in")

	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path (required)")
	exportCmd.Flags().StringVarP(&modeName, "mode", "m", "", "Export every degree of this mode")
	exportCmd.Flags().Float64Var(&tempo, "tempo", 120, "Tempo in BPM")
	exportCmd.Flags().Uint32Var(&beats, "beats", 1, "Quarter notes per chord")
	_ = exportCmd.MarkFlagRequired("output")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (default from config, 8080)")

	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(chordCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup loads the config, applies flag overrides and builds the logger
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.UI.Root = rootName
	}
	if flags.Changed("kind") {
		cfg.UI.DisplayKind = kindName
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("velocity") {
		cfg.Audio.Velocity = velocity
	}
	if flags.Changed("waveform") {
		cfg.Audio.Waveform = waveform
	}
	if flags.Changed("octave") {
		cfg.Audio.OctaveBase = octaveBase
	}
	if flags.Changed("port") {
		cfg.Server.Port = serverPort
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	var outputs []string
	if logFile != "" {
		outputs = []string{logFile}
	}
	// the TUI owns the terminal; without a log file it runs silent
	if cmd == tuiCmd && logFile == "" {
		return nil
	}
	logger, err = logging.New(cfg.LogLevel, devLogs, outputs...)
	return err
}

func newExplorer() (*explorer.Explorer, *audio.Provider) {
	provider := audio.NewProvider(
		audio.WithSampleRate(cfg.Audio.SampleRate),
		audio.WithLogger(logger),
	)
	x := explorer.New(provider,
		explorer.WithLogger(logger),
		explorer.WithOctaveBase(cfg.Audio.OctaveBase),
		explorer.WithLimiter(throttle.New(cfg.ThrottleWindow())),
		explorer.WithVoiceOptions(cfg.VoiceOptions()...),
	)
	return x, provider
}

func runModes(cmd *cobra.Command, args []string) error {
	rows, err := theory.Table(cfg.Root(), cfg.DisplayKind())
	if err != nil {
		return err
	}
	styled := term.IsTerminal(int(os.Stdout.Fd()))
	fmt.Printf("%s modes of %s\n\n", cfg.DisplayKind().Label(), cfg.Root())
	fmt.Println(renderTable(theory.TableHeaders, rows, styled))
	return nil
}

func runChord(cmd *cobra.Command, args []string) error {
	x, _ := newExplorer()
	p, err := x.Plan(cfg.Root(), args[0])
	if err != nil {
		return err
	}
	fmt.Print(describePlan(p))
	return nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	x, provider := newExplorer()
	defer func() { _ = provider.Close() }()

	t, err := x.Click(cfg.Root(), args[0])
	if errors.Is(err, theory.ErrUnresolvedChord) {
		fmt.Fprintf(os.Stderr, "%q is not a chord, nothing to play\n", args[0])
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("♪ %s  %s\n", t.Plan.Chord.Symbol, strings.Join(t.Plan.NoteNames(), " "))
	// let the voices ring out and the device drain
	time.Sleep(t.Duration + 150*time.Millisecond)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cells := args
	if modeName != "" {
		row, err := modeRow(modeName)
		if err != nil {
			return err
		}
		cells = append(row, cells...)
	}
	if len(cells) == 0 {
		return errors.New("nothing to export: pass chord symbols or --mode")
	}

	x, _ := newExplorer()
	chords := make([][]theory.Note, 0, len(cells))
	for _, cell := range cells {
		p, err := x.Plan(cfg.Root(), cell)
		if err != nil {
			return err
		}
		chords = append(chords, p.Notes)
	}

	exporter := export.New(
		export.WithTempo(tempo),
		export.WithBeats(beats),
		export.WithVelocity(uint8(max(cfg.Audio.Velocity, 1))),
	)
	if err := exporter.WriteFile(outputFile, chords...); err != nil {
		return err
	}
	fmt.Printf("Wrote %d chord(s) to %s\n", len(chords), outputFile)
	return nil
}

// modeRow returns the degree cells of the named mode in the configured kind.
// In notes view every note plays as its major triad.
func modeRow(name string) ([]string, error) {
	m, err := theory.NewEngine(nil).Mode(cfg.Root(), name)
	if err != nil {
		return nil, err
	}
	return m.Degrees(cfg.DisplayKind()), nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	x, provider := newExplorer()
	defer func() { _ = provider.Close() }()

	persist := func(root theory.PitchClass, kind theory.DisplayKind) {
		cfg.UI.Root = string(root)
		cfg.UI.DisplayKind = string(kind)
		if err := saveConfig(); err != nil {
			logger.Warn("saving selections failed", zap.Error(err))
		}
	}
	return tui.Run(tui.New(x, cfg.Root(), cfg.DisplayKind(), tui.WithPersist(persist, 500*time.Millisecond)))
}

func saveConfig() error {
	if configPath != "" {
		return cfg.SaveTo(configPath)
	}
	return cfg.Save()
}

func runServe(cmd *cobra.Command, args []string) error {
	x, provider := newExplorer()
	defer func() { _ = provider.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(x, api.WithLogger(logger), api.WithCORSOrigins(cfg.Server.CORSOrigins...))
	fmt.Printf("Starting API server on port %d...\n", cfg.Server.Port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", cfg.Server.Port)
	return srv.Run(ctx, cfg.Server.Port)
}
