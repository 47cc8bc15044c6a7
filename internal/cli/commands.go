package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newAnalyzeCmd(g *globals) *cobra.Command {
	var pages string
	cmd := &cobra.Command{
		Use:   "analyze <file.pdf>",
		Short: "Summarize a PDF legal document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			res, err := g.newClient(nil).Analyze(cmd.Context(), filepath.Base(args[0]), data, pages)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, strings.TrimSpace(res.Summary))
			if len(res.Highlights) > 0 {
				fmt.Fprintln(out, "\nHighlights:")
				for _, h := range res.Highlights {
					fmt.Fprintln(out, "  "+h)
				}
			}
			if res.Cached {
				fmt.Fprintln(cmd.ErrOrStderr(), "(served from the server's analysis cache)")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pages, "pages", "", `page selection, e.g. "all", "3", "1,3,5-6"`)
	return cmd
}

func newTranslateCmd(g *globals) *cobra.Command {
	var (
		file string
		to   string
	)
	cmd := &cobra.Command{
		Use:   "translate [text]",
		Short: "Translate text (cached locally) or a PDF",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" && len(args) == 0 {
				return fmt.Errorf("pass text to translate or --file")
			}

			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				res, err := g.newClient(nil).TranslatePDF(cmd.Context(), filepath.Base(file), data, to)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.TranslatedText)
				return nil
			}

			cache, err := g.openCache()
			if err != nil {
				return err
			}
			res, err := g.newClient(cache).TranslateText(cmd.Context(), args[0], to)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.TranslatedText)
			if g.verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s -> %s\n", res.DetectedLanguage, res.TargetLanguage)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "PDF file to translate instead of text")
	cmd.Flags().StringVar(&to, "to", "fr", "target language code")
	return cmd
}

func newAssistCmd(g *globals) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:       "assist <summarize|explain|translate> <text>",
		Short:     "Summarize, explain or translate a passage",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"summarize", "explain", "translate"},
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := g.newClient(nil).Assist(cmd.Context(), args[0], args[1], to)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Result)
			if res.Source == "mock" {
				fmt.Fprintln(cmd.ErrOrStderr(), "(no AI provider configured on the server, canned answer)")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "target language for translate")
	return cmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "legalai", version)
		},
	}
}
