package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	videosummarizer "video-summarizer/agents/video-summarizer"
	"video-summarizer/agents/video-summarizer/api"
	"video-summarizer/agents/video-summarizer/tools"
	"video-summarizer/agents/video-summarizer/youtube"
	"video-summarizer/shared/ai"
	"video-summarizer/shared/config"
	"video-summarizer/shared/monitoring"
	"video-summarizer/shared/scheduler"
	"video-summarizer/shared/search"
)

const version = "0.3.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create context that responds to signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	monitor := monitoring.NewMonitor()
	orchestrator, err := newOrchestrator(ctx, cfg, monitor)
	if err != nil {
		log.Fatalf("Failed to initialize agent: %v", err)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--once":
			if len(os.Args) < 3 {
				log.Fatalf("Usage: %s --once <youtube-url> [--detailed]", os.Args[0])
			}
			detailed := len(os.Args) > 3 && os.Args[3] == "--detailed"
			if err := runOnce(ctx, orchestrator, os.Args[2], detailed, os.Stdin, os.Stdout); err != nil {
				log.Fatalf("Failed to run: %v", err)
			}
			return
		case "mcp":
			// stdout carries the protocol
			log.SetOutput(os.Stderr)
			if err := tools.Serve(ctx, orchestrator, version); err != nil && !errors.Is(err, context.Canceled) {
				log.Fatalf("MCP server failed: %v", err)
			}
			return
		}
	}

	if err := serve(ctx, cfg, orchestrator, monitor); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func newOrchestrator(ctx context.Context, cfg *config.Config, monitor *monitoring.Monitor) (*videosummarizer.Orchestrator, error) {
	log.Println("Initializing Video Summarizer...")

	client, err := youtube.NewClient(ctx, &cfg.YouTube)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize YouTube client: %w", err)
	}

	generator, err := ai.NewGenerator(ctx, &cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AI generator: %w", err)
	}
	log.Printf("Using %s (%s) for summaries and answers", generator.Name(), cfg.AI.Model)

	var provider search.Provider
	switch cfg.Search.Provider {
	case config.SearchGoogle:
		google, err := search.NewGoogleProvider(ctx, cfg.Search.APIKey, cfg.Search.EngineID, cfg.Search.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize web search: %w", err)
		}
		provider = google
	case config.SearchDuckDuckGo:
		provider = search.NewDuckDuckGoProvider(cfg.Search.Endpoint)
	default:
		log.Println("Warning: web search disabled, search-augmented answers will note it is unavailable")
	}

	return videosummarizer.NewOrchestrator(
		client,
		ai.NewSummarizer(generator),
		ai.NewAnswerer(generator),
		search.NewAugmenter(provider, cfg.Search.MaxResults),
		monitor,
	), nil
}

func serve(ctx context.Context, cfg *config.Config, orchestrator *videosummarizer.Orchestrator, monitor *monitoring.Monitor) error {
	sessions := videosummarizer.NewSessionStore()

	s := scheduler.New(monitor)
	if err := s.Add(cfg.Sessions.SweepSchedule, sessions.EvictionJob(cfg.Sessions.IdleTimeout)); err != nil {
		return err
	}
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		s.Start(ctx)
	}()

	server := api.NewHTTPServer(&cfg.Server, api.SetupRoutes(api.NewHandler(orchestrator, sessions), monitor))

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	<-schedulerDone
	log.Println("Server stopped")
	return nil
}

// runOnce summarizes url in a local session, then answers questions read from
// in until EOF. A "/search " prefix asks with web search.
func runOnce(ctx context.Context, orchestrator *videosummarizer.Orchestrator, url string, detailed bool, in io.Reader, out io.Writer) error {
	sess := videosummarizer.NewSession("cli")

	fmt.Fprintln(out, "Summarizing...")
	summary, err := orchestrator.GenerateSummary(ctx, sess, url, detailed)
	if err != nil {
		return err
	}

	if snap := sess.Snapshot(); snap.Metadata != nil {
		fmt.Fprintf(out, "\n%s\n\n", snap.Metadata.Title)
	}
	fmt.Fprintln(out, summary.Text)
	fmt.Fprint(out, "\nAsk a question (prefix with /search to use web search, Ctrl-D to quit)\n> ")

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		question := strings.TrimSpace(scanner.Text())
		webSearch := false
		if rest, ok := strings.CutPrefix(question, "/search "); ok {
			question, webSearch = strings.TrimSpace(rest), true
		}

		if question != "" {
			qa, err := orchestrator.AskQuestion(ctx, sess, question, webSearch)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			} else {
				fmt.Fprintf(out, "\n%s\n", qa.Answer)
			}
		}
		fmt.Fprint(out, "\n> ")
	}
	return scanner.Err()
}
