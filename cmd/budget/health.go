package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/budget-mapper/internal/cli"
	"github.com/Veraticus/budget-mapper/internal/common"
	"github.com/Veraticus/budget-mapper/internal/llm"
)

const healthTimeout = 5 * time.Second

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the database and the Ollama backend",
		Args:  cobra.NoArgs,
		RunE:  runHealth,
	}
}

func runHealth(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	fmt.Fprintln(out, cli.FormatSuccess("Database: "+settings.Database.Path))

	client, err := llm.NewOllamaClient(settings.LLM.BaseURL)
	if err != nil {
		return err
	}

	checkCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	models, err := client.Models(checkCtx)
	if err != nil {
		return common.NewUserError("Ollama is not reachable at "+settings.LLM.BaseURL, err)
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Ollama: %s (%d models)", settings.LLM.BaseURL, len(models))))

	if !slices.Contains(models, settings.LLM.Model) {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Model %s is not pulled. Run: ollama pull %s",
			settings.LLM.Model, settings.LLM.Model)))
		return nil
	}
	fmt.Fprintln(out, cli.FormatSuccess("Model: "+settings.LLM.Model))
	return nil
}
