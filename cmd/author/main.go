package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/builder"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/config"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/drafts"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/events"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/services"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/utils"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/validator"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/pkg"
)

const usage = `usage:
  author import -file TEMPLATE [-job JOB_ID] [-publish]
  author save -id ASSESSMENT_ID
  author export -id ASSESSMENT_ID [-out FILE]
  author jobs`

type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *drafts.Store
	remote    services.RemoteStore
	publisher events.EventPublisher
	reconcile *services.ReconciliationService
	validator *validator.Validator
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger := utils.NewLogger(os.Stderr, cfg.Environment, cfg.LogLevel).Slog().With("component", "author")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := newApp(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = a.run(ctx, os.Args[1], os.Args[2:])
	a.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	store := pkg.OpenDraftStore(cfg, logger)
	remoteStore := pkg.NewRemoteStore(cfg, logger)
	v := validator.New()

	var jobs *services.JobDirectory
	if list := cfg.JobList(); len(list) > 0 {
		jobs = services.NewJobDirectory(list)
	}

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return nil, err
	}
	notifier := services.MultiNotifier{
		services.NotifierFunc(func(_ context.Context, kind services.NotifyKind, message string) {
			mark := "ok"
			if kind == services.NotifyError {
				mark = "failed"
			}
			fmt.Fprintf(os.Stderr, "[%s] %s\n", mark, message)
		}),
		services.NewEventNotifier(publisher, logger),
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		remote:    remoteStore,
		publisher: publisher,
		reconcile: services.NewReconciliationService(remoteStore, store, notifier, jobs, v, pkg.RetryConfig(cfg), logger),
		validator: v,
	}, nil
}

func (a *app) Close() {
	a.store.Close()
	a.publisher.Close()
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "import":
		return a.importTemplate(ctx, args)
	case "save":
		return a.saveDraft(ctx, args)
	case "export":
		return a.exportTemplate(ctx, args)
	case "jobs":
		for _, job := range a.cfg.JobList() {
			fmt.Printf("%s\t%s\n", job.ID, job.Title)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

func (a *app) importTemplate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "YAML or JSON template")
	job := fs.String("job", "", "job the assessment belongs to, overrides the template")
	publish := fs.Bool("publish", false, "publish the assessment")
	fs.Parse(args)
	if *file == "" {
		return errors.New("-file is required")
	}

	imported, err := builder.ImportFile(*file)
	if err != nil {
		return err
	}

	ctrl := builder.NewController(imported, a.store, a.validator, a.logger)
	defer ctrl.Close()
	if *job != "" {
		ctrl.SetJob(*job)
	}
	if *publish {
		ctrl.SetPublished(true)
	}
	// the process may exit before the debounce fires; keep the draft now
	a.store.SaveAuthor(ctx, ctrl.Snapshot())

	return a.save(ctx, ctrl)
}

func (a *app) saveDraft(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	id := fs.String("id", "", "assessment id of the kept draft")
	fs.Parse(args)
	if *id == "" {
		return errors.New("-id is required")
	}

	draft := a.store.LoadAuthor(ctx, *id)
	if draft == nil {
		return fmt.Errorf("no draft kept for %s", *id)
	}
	ctrl := builder.NewController(models.Assessment{}, a.store, a.validator, a.logger)
	defer ctrl.Close()
	ctrl.Restore(*draft)

	return a.save(ctx, ctrl)
}

func (a *app) save(ctx context.Context, ctrl *builder.Controller) error {
	snapshot := ctrl.Snapshot()
	result, err := a.reconcile.Save(ctx, snapshot)
	if err != nil {
		var saveErr *services.SaveError
		if errors.As(err, &saveErr) {
			if a.store.Degraded() {
				return fmt.Errorf("%s (draft storage unavailable, changes were not kept)", saveErr.UserMessage())
			}
			return fmt.Errorf("%s (draft kept, retry with: author save -id %s)", saveErr.UserMessage(), snapshot.ID)
		}
		return err
	}

	saved := ctrl.Adopt(*result.Assessment)
	fmt.Printf("%s\t%s\t%s\n", result.Kind, saved.ID, saved.Title)
	return nil
}

func (a *app) exportTemplate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	id := fs.String("id", "", "assessment id")
	out := fs.String("out", "", "output file, stdout when empty")
	fs.Parse(args)
	if *id == "" {
		return errors.New("-id is required")
	}

	assessment, err := a.remote.GetAssessment(ctx, *id)
	if err != nil {
		return err
	}
	data, err := builder.ExportTemplate(*assessment)
	if err != nil {
		return err
	}
	if *out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(*out, data, 0o644)
}
