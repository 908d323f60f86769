package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/pricepilot/config"
	"github.com/mohammad-safakhou/pricepilot/internal/match"
	"github.com/mohammad-safakhou/pricepilot/internal/pipeline"
	"github.com/mohammad-safakhou/pricepilot/internal/retailer"
	"github.com/mohammad-safakhou/pricepilot/internal/search"
	srv "github.com/mohammad-safakhou/pricepilot/internal/server"
	"github.com/mohammad-safakhou/pricepilot/internal/verify"
)

func main() {
	var root = &cobra.Command{Use: "pricepilot"}
	var cfgPath string
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config/config.json)")

	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			return srv.Run(cfg)
		},
	}

	var searchCmd = &cobra.Command{
		Use:   "search [query]",
		Short: "Run one search across all retailers and print the JSON response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			pipe, _, err := buildPipeline(cfg)
			if err != nil {
				return err
			}
			resp, err := pipe.Run(context.Background(), search.Query{
				SearchQuery: strings.Join(args, " "),
			})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	var retailers = &cobra.Command{
		Use:   "retailers",
		Short: "List configured retailers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			reg, err := retailer.NewRegistry(cfg.Retailers)
			if err != nil {
				return err
			}
			for _, rt := range reg.List() {
				fmt.Printf("%-20s %-30s %s\n", rt.ID, rt.DisplayName, rt.SiteFilter)
			}
			return nil
		},
	}

	root.AddCommand(serve, searchCmd, retailers)
	_ = root.Execute()
}

func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, *retailer.Registry, error) {
	reg, err := retailer.NewRegistry(cfg.Retailers)
	if err != nil {
		return nil, nil, err
	}
	client := search.NewGoogleClient(cfg.Search)
	dispatcher := search.NewDispatcher(client, cfg.Dispatch, cfg.Search, nil)
	matcher := match.NewMatcher(cfg.Match.Threshold)
	verifier := verify.New(cfg.Verify, nil)
	return pipeline.New(reg, dispatcher, matcher, verifier, nil, cfg.Pipeline, nil), reg, nil
}
