package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/edaniels/golog"
	"github.com/spf13/cobra"

	"github.com/san-kum/quadctl/internal/config"
	"github.com/san-kum/quadctl/internal/drive"
	"github.com/san-kum/quadctl/internal/robot"
	"github.com/san-kum/quadctl/internal/simbot"
	"github.com/san-kum/quadctl/internal/telemetry"
	"github.com/san-kum/quadctl/internal/teleop"
)

var (
	profilesDir string
	profileName string
	duration    time.Duration
	recordPath  string
	mode        string
	// Simulated robot parameters
	simGain float64
	// MQTT velocity feed for navigation
	mqttBroker string
	mqttTopic  string
	// Profile scaffolding
	numDOFs int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quadctl",
		Short: "legged robot motor control",
	}
	rootCmd.PersistentFlags().StringVar(&profilesDir, "profiles", ".quadctl", "profile directory")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "default", "control profile")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the control pipeline against a simulated robot",
		RunE:  runPipeline,
	}
	runCmd.Flags().DurationVar(&duration, "time", 0, "stop after this long (0 runs until interrupted)")
	runCmd.Flags().StringVar(&recordPath, "record", "", "write a CSV trace here on exit")
	runCmd.Flags().StringVar(&mode, "mode", "stand", "behavior to reach: stand, walk, navigate")
	runCmd.Flags().Float64Var(&simGain, "sim-gain", 0.02, "simulated joint tracking gain")
	runCmd.Flags().StringVar(&mqttBroker, "mqtt", "", "MQTT broker for navigation velocity commands")
	runCmd.Flags().StringVar(&mqttTopic, "mqtt-topic", "quadctl/cmd_vel", "velocity command topic")

	teleopCmd := &cobra.Command{
		Use:   "teleop",
		Short: "drive the simulated robot from the keyboard",
		RunE:  runTeleop,
	}
	teleopCmd.Flags().StringVar(&recordPath, "record", "", "write a CSV trace here on exit")
	teleopCmd.Flags().Float64Var(&simGain, "sim-gain", 0.02, "simulated joint tracking gain")
	teleopCmd.Flags().StringVar(&mqttBroker, "mqtt", "", "MQTT broker for navigation velocity commands")
	teleopCmd.Flags().StringVar(&mqttTopic, "mqtt-topic", "quadctl/cmd_vel", "velocity command topic")

	profilesCmd := &cobra.Command{
		Use:   "profiles",
		Short: "list available profiles",
		RunE:  listProfiles,
	}

	initCmd := &cobra.Command{
		Use:   "init [name]",
		Short: "write a default profile",
		Args:  cobra.ExactArgs(1),
		RunE:  initProfile,
	}
	initCmd.Flags().IntVar(&numDOFs, "dofs", 12, "number of joints")

	rootCmd.AddCommand(runCmd, teleopCmd, profilesCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildPipeline(logger golog.Logger) (*drive.Orchestrator, *simbot.Robot, *telemetry.Recorder, func(), error) {
	provider := config.NewDir(profilesDir)
	cfg, err := provider.Profile(profileName)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	bot := simbot.New(make([]float64, cfg.NumDOFs), cfg.Dt, simGain)
	rec := telemetry.NewRecorder(cfg.NumDOFs)

	cleanup := func() {}
	var nav robot.VelocitySource
	if mqttBroker != "" {
		src, err := teleop.NewMQTTSource(mqttBroker, mqttTopic, "quadctl", logger)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		nav = src
		cleanup = src.Close
	}

	orc, err := drive.New(drive.Options{
		Log:      logger,
		Cfg:      cfg,
		Profiles: provider,
		Profile:  profileName,
		Sensor:   bot,
		Actuator: bot,
		Nav:      nav,
		Recorder: rec,
	})
	if err != nil {
		cleanup()
		return nil, nil, nil, nil, err
	}
	return orc, bot, rec, cleanup, nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	logger := golog.NewDevelopmentLogger("quadctl")

	var goal robot.Mode
	switch mode {
	case "stand":
		goal = robot.ModeStandUp
	case "walk":
		goal = robot.ModeLocomotion
	case "navigate":
		goal = robot.ModeNavigation
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	orc, _, rec, cleanup, err := buildPipeline(logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	go sequence(ctx, orc, goal)
	orc.Run(ctx)

	return saveTrace(logger, rec)
}

// sequence walks the machine through stand-up and on to the goal behavior.
func sequence(ctx context.Context, orc *drive.Orchestrator, goal robot.Mode) {
	orc.Target().Update(func(t robot.ControlTarget) robot.ControlTarget {
		t.Mode = robot.ModeStandUp
		return t
	})
	if goal == robot.ModeStandUp {
		return
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		m := orc.Machine()
		if m.Mode() == robot.ModeStandUp && m.Progress() >= 1 {
			orc.Target().Update(func(t robot.ControlTarget) robot.ControlTarget {
				t.Mode = goal
				return t
			})
			return
		}
	}
}

func runTeleop(cmd *cobra.Command, args []string) error {
	logger := golog.NewDevelopmentLogger("quadctl")

	orc, bot, rec, cleanup, err := buildPipeline(logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		orc.Run(ctx)
	}()

	spark := telemetry.NewSparkline("joint 0 position")
	ui := teleop.NewModel(orc.Target(), orc.Machine(), func() string {
		spark.Push(bot.Read().Q[0])
		return spark.Render()
	})
	_, uiErr := tea.NewProgram(ui, tea.WithAltScreen()).Run()

	cancel()
	<-done
	if uiErr != nil {
		return uiErr
	}
	return saveTrace(logger, rec)
}

func saveTrace(logger golog.Logger, rec *telemetry.Recorder) error {
	if recordPath == "" || rec.Len() == 0 {
		return nil
	}
	if err := rec.Save(recordPath); err != nil {
		return err
	}
	logger.Infof("trace written to %s", recordPath)
	return nil
}

func listProfiles(cmd *cobra.Command, args []string) error {
	entries, err := os.ReadDir(profilesDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("no profiles in %s\n", profilesDir)
			return nil
		}
		return err
	}

	found := false
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".yaml")
		cfg, err := config.Load(filepath.Join(profilesDir, entry.Name()))
		if err != nil {
			fmt.Printf("  %s (invalid: %v)\n", name, err)
			found = true
			continue
		}
		fmt.Printf("  %s  %d dofs  policy=%s  obs=%s\n",
			name, cfg.NumDOFs, cfg.Policy.Kind, strings.Join(cfg.Observations, ","))
		found = true
	}
	if !found {
		fmt.Printf("no profiles in %s\n", profilesDir)
	}
	return nil
}

func initProfile(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(profilesDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(profilesDir, args[0]+".yaml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("profile %s already exists", path)
	}
	cfg := config.Default(numDOFs)
	cfg.Name = args[0]
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
