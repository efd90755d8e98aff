// storyctl is the headless companion to the storytrace viewer: it runs
// the same recovery, anonymization, shaping, and report passes against a
// story file from the command line.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/storytrace/storytrace/internal/anonymize"
	"github.com/storytrace/storytrace/internal/export"
	"github.com/storytrace/storytrace/internal/model"
	"github.com/storytrace/storytrace/internal/recovery"
	"github.com/storytrace/storytrace/internal/report"
	"github.com/storytrace/storytrace/internal/shape"
	"github.com/storytrace/storytrace/internal/stats"
)

func loadStory(path string, anonymized bool) (*model.Document, error) {
	doc, err := recovery.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading story: %w", err)
	}
	if anonymized {
		return anonymize.Apply(doc, anonymize.Extract(doc)), nil
	}
	return doc, nil
}

func main() {
	var verbose bool
	rootCmd := &cobra.Command{
		Use:   "storyctl",
		Short: "Batch processor for attack story exports",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	var anonymized bool
	var outPath string
	exportCmd := &cobra.Command{
		Use:   "export <story-file>",
		Short: "Parse a story export and write it back pretty-printed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadStory(args[0], anonymized)
			if err != nil {
				return err
			}
			path := outPath
			if path == "" {
				path = export.Filename("story", time.Now(), export.Options{Anonymized: anonymized}, "json")
			}
			if err := export.WriteDocument(path, doc); err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
	exportCmd.Flags().BoolVarP(&anonymized, "anonymize", "a", false, "redact sensitive identifiers")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: timestamped name)")

	var reportKind string
	var reportAnonymized bool
	reportCmd := &cobra.Command{
		Use:   "report <story-file>",
		Short: "Write a plain-text report to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadStory(args[0], reportAnonymized)
			if err != nil {
				return err
			}
			proj := shape.Build(doc)
			switch reportKind {
			case "cmdlines":
				fmt.Print(report.CommandLines(doc, proj))
			case "scripts":
				fmt.Print(report.Scripts(doc, proj))
			default:
				return fmt.Errorf("unknown report kind: %s (want cmdlines or scripts)", reportKind)
			}
			return nil
		},
	}
	reportCmd.Flags().StringVarP(&reportKind, "kind", "k", "cmdlines", "report kind (cmdlines, scripts)")
	reportCmd.Flags().BoolVarP(&reportAnonymized, "anonymize", "a", false, "redact sensitive identifiers")

	statsCmd := &cobra.Command{
		Use:   "stats <story-file>",
		Short: "Print node-type counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadStory(args[0], false)
			if err != nil {
				return err
			}
			c := stats.Count(doc)
			fmt.Printf("process:  %d\n", c.Process)
			fmt.Printf("file:     %d\n", c.File)
			fmt.Printf("account:  %d\n", c.Account)
			fmt.Printf("network:  %d\n", c.Network)
			fmt.Printf("registry: %d\n", c.Registry)
			fmt.Printf("other:    %d\n", c.Other)
			fmt.Printf("total:    %d\n", c.Total)
			return nil
		},
	}

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
