package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"bookfreq/internal/analyzer"
	"bookfreq/internal/app"
	"bookfreq/internal/config"
	"bookfreq/internal/platform/gutenberg"

	"github.com/urfave/cli/v2"
)

// Books processed by seed when no ids are given.
var defaultSeedIDs = []string{"1342", "84", "2701", "11", "1661"}

var topFlag = &cli.IntFlag{
	Name:    "top",
	Aliases: []string{"n"},
	Value:   analyzer.TopN,
	Usage:   "number of words to print",
}

func newApp(in io.Reader, out io.Writer) *cli.App {
	return &cli.App{
		Name:      "wordfreq",
		Usage:     "rank the most frequent words of Project Gutenberg books",
		Reader:    in,
		Writer:    out,
		ErrWriter: os.Stderr,
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "analyze a local text file, or stdin when no file is given",
				ArgsUsage: "[FILE]",
				Flags:     []cli.Flag{topFlag},
				Action:    analyzeAction,
			},
			{
				Name:      "fetch",
				Usage:     "download a book and print its top words without storing them",
				ArgsUsage: "URL",
				Flags:     []cli.Flag{topFlag},
				Action:    fetchAction,
			},
			{
				Name:      "seed",
				Usage:     "process books by ebook id or URL into the configured database",
				ArgsUsage: "[ID|URL...]",
				Action:    seedAction,
			},
		},
	}
}

func analyzeAction(c *cli.Context) error {
	var src io.Reader = c.App.Reader
	if path := c.Args().First(); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		src = f
	}

	b, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	text := string(b)

	printRanking(c.App.Writer, analyzer.ExtractTitle(text, ""), analyzer.AnalyzeN(text, c.Int("top")))
	return nil
}

func fetchAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("fetch needs exactly one URL", 2)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	textURL, err := gutenberg.NormalizeURL(c.Args().First())
	if err != nil {
		return err
	}

	text, err := app.NewFetcher(cfg).FetchText(c.Context, textURL)
	if err != nil {
		return err
	}

	title := analyzer.ExtractTitle(text, gutenberg.EbookID(textURL))
	printRanking(c.App.Writer, title, analyzer.AnalyzeN(text, c.Int("top")))
	return nil
}

func seedAction(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := c.Context
	application, err := app.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	sources := c.Args().Slice()
	if len(sources) == 0 {
		sources = defaultSeedIDs
	}

	var failed []string
	for _, src := range sources {
		res, err := application.Service.Process(ctx, sourceURL(src))
		if err != nil {
			fmt.Fprintf(c.App.Writer, "FAIL %s: %v\n", src, err)
			failed = append(failed, src)
			continue
		}
		fmt.Fprintf(c.App.Writer, "OK   %s: %s (%d words)\n", src, res.Book.Title, len(res.Words))
	}

	if len(failed) > 0 {
		return errors.New("seed failed for: " + strings.Join(failed, ", "))
	}
	return nil
}

// sourceURL turns a bare ebook id into its text URL.
func sourceURL(src string) string {
	src = strings.TrimSpace(src)
	if src != "" && strings.Trim(src, "0123456789") == "" {
		return gutenberg.TextURL(src)
	}
	return src
}

func printRanking(out io.Writer, title string, words []analyzer.WordCount) {
	if title != "" {
		fmt.Fprintf(out, "Title: %s\n", title)
	}
	for i, w := range words {
		fmt.Fprintf(out, "%2d. %-20s %d\n", i+1, w.Word, w.Count)
	}
}
