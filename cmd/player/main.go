package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/config"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/player"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/services"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/tui"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/utils"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/validator"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/pkg"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	assessmentID := flag.String("assessment", "", "id of the assessment to take")
	jobID := flag.String("job", "", "take the assessment attached to this job")
	candidateID := flag.String("candidate", "", "candidate id recorded with the response")
	logPath := flag.String("log", "talentflow-player.log", "log file")
	flag.Parse()

	if *candidateID == "" || (*assessmentID == "") == (*jobID == "") {
		fmt.Fprintln(os.Stderr, "usage: player -candidate ID (-assessment ID | -job ID)")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// the terminal belongs to the TUI, so logs go to a file
	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := utils.NewLogger(logFile, cfg.Environment, cfg.LogLevel).Slog().With("component", "player")

	store := pkg.OpenDraftStore(cfg, logger)
	defer store.Close()
	store.Cleanup(context.Background())

	remoteStore := pkg.NewRemoteStore(cfg, logger)

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating event publisher: %v\n", err)
		os.Exit(1)
	}
	defer publisher.Close()

	var program *tea.Program
	notifier := services.MultiNotifier{
		services.NotifierFunc(func(_ context.Context, kind services.NotifyKind, message string) {
			if program != nil {
				program.Send(tui.NotifyMsg{Error: kind == services.NotifyError, Text: message})
			}
		}),
		services.NewEventNotifier(publisher, logger),
	}
	submissions := services.NewSubmissionService(remoteStore, notifier, pkg.RetryConfig(cfg), logger)

	load := func(ctx context.Context) (*player.Session, error) {
		var (
			a   *models.Assessment
			err error
		)
		if *assessmentID != "" {
			a, err = remoteStore.GetAssessment(ctx, *assessmentID)
		} else {
			a, err = remoteStore.GetAssessmentByJob(ctx, *jobID)
		}
		if err != nil {
			if errors.Is(err, services.ErrAssessmentNotFound) {
				return nil, errors.New("no such assessment")
			}
			return nil, err
		}
		return player.NewSession(*a, store, validator.New(), submissions, player.Config{CandidateID: *candidateID}, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	program = tea.NewProgram(tui.NewPlayer(ctx, load), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running player: %v\n", err)
		os.Exit(1)
	}
}
