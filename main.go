package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"vehicle-damage-analyzer/config"
	"vehicle-damage-analyzer/internal/chat"
	"vehicle-damage-analyzer/internal/damage"
	"vehicle-damage-analyzer/internal/imageio"
	"vehicle-damage-analyzer/internal/model"
	"vehicle-damage-analyzer/internal/report"
	"vehicle-damage-analyzer/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const logFileName = "vehicle-damage-analyzer.log"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Try to load existing config.env file
	config.LoadEnvFile()

	// Check if required config is missing
	if missing := checkRequiredConfig(); len(missing) > 0 {
		if isInteractiveTerminal() {
			// Interactive terminal - run setup wizard
			if !runSetupWizard() {
				waitOnWindows()
				os.Exit(1)
			}
		} else {
			// Non-interactive (systemd, k8s, etc.) - fail with clear error
			fatalWithWait("missing required config: %s", strings.Join(missing, ", "))
		}
	}

	setupLogging()

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, msgUsage)
		os.Exit(1)
	}

	// Create context that cancels on SIGINT or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gemini, err := model.NewGemini(ctx)
	if err != nil {
		fatalWithWait("failed to initialize gemini client: %v", err)
	}
	log.Info().Msg("gemini client initialized")

	var analyzer damage.ImageAnalyzer = damage.NewAnalyzer(gemini)
	if os.Getenv("VDA_NO_CACHE") == "" {
		dbPath := os.Getenv("VDA_DB_PATH")
		if dbPath == "" {
			dbPath = "analysis-cache.db"
		}
		store, err := storage.NewSQLiteStore(dbPath)
		if err != nil {
			fatalWithWait("failed to initialize analysis cache: %v", err)
		}
		defer store.Close()
		analyzer = damage.NewCachedAnalyzer(analyzer, store)
		log.Info().Str("dbPath", dbPath).Msg("analysis caching enabled")
	}

	images := make([]damage.Image, 0, len(args))
	for _, arg := range args {
		img, err := imageio.Resolve(ctx, arg)
		if err != nil {
			fatalWithWait("%v", err)
		}
		images = append(images, img)
	}

	orchestrator := damage.NewOrchestrator(analyzer, damage.NewClaimsGenerator(gemini))

	fmt.Fprintln(os.Stderr, "Analyzing vehicle images...")
	rep, err := orchestrator.Run(ctx, images)
	if err != nil {
		fatalWithWait("%v", err)
	}

	fmt.Print(report.Render(rep))

	if isInteractiveTerminal() {
		runChatLoop(ctx, gemini, rep)
	}
}

// setupLogging configures zerolog output. JOURNAL_STREAM is set by systemd
// when running as a service; journald handles persistence there, so file
// logging is skipped.
func setupLogging() {
	if _, underSystemd := os.LookupEnv("JOURNAL_STREAM"); underSystemd {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return
	}
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		// Read-only working directory; console logging still works
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		log.Warn().Err(err).Msg("failed to open log file")
		return
	}

	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
	fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
	log.Logger = log.Output(io.MultiWriter(consoleWriter, fileWriter))
}

// runChatLoop opens a conversation primed with the report and relays stdin
// turns until EOF or "exit".
func runChatLoop(ctx context.Context, starter model.ChatStarter, rep *damage.Report) {
	session := chat.NewSession(starter)

	fmt.Println()
	greeting, err := session.Start(ctx, rep.Results)
	if err != nil {
		fmt.Println(chat.MsgConnectFailed)
		return
	}
	fmt.Printf("VDA-Bot: %s\n", greeting)
	fmt.Print(msgChatIntro)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return
		}

		reply, err := session.Send(ctx, line)
		if err != nil {
			log.Warn().Err(err).Msg("send rejected")
			continue
		}
		fmt.Printf("VDA-Bot: %s\n", reply)
	}
}
