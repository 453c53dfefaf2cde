package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/GabrielBortolote/catho-bot/internal/apply"
	"github.com/GabrielBortolote/catho-bot/internal/config"
	"github.com/GabrielBortolote/catho-bot/internal/dom/chromedriver"
	"github.com/GabrielBortolote/catho-bot/internal/listing"
	"github.com/GabrielBortolote/catho-bot/internal/portal"
	"github.com/GabrielBortolote/catho-bot/internal/question"
	"github.com/GabrielBortolote/catho-bot/internal/report"
	"github.com/GabrielBortolote/catho-bot/internal/search"
	"github.com/GabrielBortolote/catho-bot/internal/status"
)

func main() {
	var cli config.CLI
	kong.Parse(&cli,
		kong.Name("catho-bot"),
		kong.Description("Reads Catho search results, classifies every listing and applies to the eligible ones."))

	if cli.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	if err := run(&cli); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cli *config.CLI) error {
	ctx := context.Background()

	queries, err := cli.Queries()
	if err != nil {
		return err
	}
	creds, err := config.LoadCredentials(cli.EnvFile)
	if err != nil {
		return err
	}

	cache, err := question.OpenCache(cli.Answers)
	if err != nil {
		return err
	}
	defer cache.Close()
	log.Info("answer cache loaded", "path", cli.Answers, "entries", cache.Len())

	session, err := chromedriver.New(chromedriver.Options{
		Headless:  cli.Headless,
		UserAgent: cli.UserAgent,
	})
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer session.Close()

	if err := portal.Login(ctx, session, cli.LoginURL, creds.Email, creds.Password); err != nil {
		return err
	}

	resolver := question.NewResolver(cache, question.NewConsolePrompter(os.Stdin, os.Stdout))

	workflow := apply.New(session, resolver, portal.WorkflowLocators(), apply.Options{})
	workflow.SetNotifier(status.NewSpinner())

	paginator := search.New(session, listing.NewClassifier(portal.ListingSelectors(), portal.ListingMarkers()),
		workflow, portal.SearchLocators(), search.Options{ApplyNow: cli.Apply})
	paginator.SetNotifier(status.NewSpinner())

	records := paginator.Run(ctx, queries)

	if err := report.WriteCSV(cli.Output, records); err != nil {
		return err
	}
	log.Info("report written", "path", cli.Output, "records", len(records))

	fmt.Println()
	fmt.Println(report.RenderSummary(report.Summarize(records)))
	return nil
}
