package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/budget-mapper/internal/categories"
	"github.com/Veraticus/budget-mapper/internal/cli"
	"github.com/Veraticus/budget-mapper/internal/common"
	"github.com/Veraticus/budget-mapper/internal/storage"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage budget categories",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all categories",
			Args:  cobra.NoArgs,
			RunE:  runCategoriesList,
		},
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add a category",
			Long: `Add validates the name, fixes capitalization and stray characters,
and warns when an existing category is spelled almost the same.`,
			Args: cobra.MinimumNArgs(1),
			RunE: runCategoriesAdd,
		},
		&cobra.Command{
			Use:   "validate <name>",
			Short: "Show how a category name would be corrected",
			Args:  cobra.MinimumNArgs(1),
			RunE:  runCategoriesValidate,
		},
	)
	return cmd
}

func runCategoriesList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	cats, err := a.store.GetCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	return cli.WriteCategories(cmd.OutOrStdout(), cats)
}

func runCategoriesAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	name := strings.Join(args, " ")

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	names, err := a.categoryNames(ctx)
	if err != nil {
		return err
	}

	result, err := categories.NewSet(names).Add(name)
	writeValidation(cmd, result.Validation)
	if err != nil {
		switch {
		case errors.Is(err, categories.ErrDuplicateCategory):
			return common.NewUserError("Category already exists", err)
		case errors.Is(err, categories.ErrEmptyCategory):
			return common.NewUserError("Category name is empty", err)
		}
		return err
	}

	for _, similar := range result.Similar {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%q looks like existing category %q", result.Name, similar)))
	}

	created, err := a.store.CreateCategory(ctx, result.Name)
	if err != nil {
		if errors.Is(err, storage.ErrCategoryExists) {
			return common.NewUserError("Category already exists", err)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Added category %q", created.Name)))
	return nil
}

func runCategoriesValidate(cmd *cobra.Command, args []string) error {
	v := categories.Validate(strings.Join(args, " "))
	writeValidation(cmd, v)
	if v.Corrected == "" {
		return common.NewUserError("Category name is empty", categories.ErrEmptyCategory)
	}
	if !v.HasCorrections {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%q is valid", v.Corrected)))
	}
	return nil
}

func writeValidation(cmd *cobra.Command, v categories.Validation) {
	if !v.HasCorrections {
		return
	}
	out := cmd.OutOrStdout()
	if v.Corrected != "" {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%q corrected to %q", v.Original, v.Corrected)))
	}
	for _, correction := range v.Corrections {
		fmt.Fprintln(out, cli.SubtleStyle.Render("  • "+correction))
	}
}
