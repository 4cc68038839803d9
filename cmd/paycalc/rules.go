package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rgehrsitz/paycalc/internal/calculation"
	"github.com/rgehrsitz/paycalc/internal/rules"
)

func (a *app) rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List, show and validate tax rule packs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available rule packs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _ := a.services(nil)
			keys, err := store.Available()
			if err != nil {
				return err
			}
			t := table.New().
				Border(lipgloss.HiddenBorder()).
				Headers("KEY", "VERSION")
			for _, key := range keys {
				country, year, err := rules.ParseKey(key)
				if err != nil {
					continue
				}
				version := "invalid"
				if rp, err := store.Get(cmd.Context(), country, year); err == nil {
					version = rp.Metadata.Version
				}
				t.Row(key, version)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show KEY",
		Short: "Print a rule pack as YAML, e.g. paycalc rules show UK-2025",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			country, year, err := rules.ParseKey(args[0])
			if err != nil {
				return err
			}
			store, _ := a.services(nil)
			rp, err := store.Get(cmd.Context(), country, year)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(rp)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a rule-pack document (JSON, or YAML by extension)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file %s: %w", args[0], err)
			}
			rp, err := rules.Decode(filepath.Base(args[0]), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rule pack %s is valid (%s %d, version %s)\n",
				args[0], rp.Metadata.Country, rp.Metadata.TaxYear, rp.Metadata.Version)
			return nil
		},
	})

	return cmd
}

func (a *app) countriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List supported countries",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			registry := calculation.DefaultRegistry(nil)
			for _, c := range registry.SupportedCountries() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c, c.Currency())
			}
		},
	}
}
