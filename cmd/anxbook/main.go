package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PTPAAA/anx-reader-legacy/internal/epub"
)

const (
	defaultThumbWidth  = 600
	defaultThumbHeight = 800
)

// cliOptions holds the validated command line options.
type cliOptions struct {
	InputPath string
	ShowTOC   bool
	Chapter   int // -1 means no chapter selected
	Resume    string
	PlainText bool
	CoverOut  string
	Logger    *slog.Logger
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anxbook <book.epub>",
		Short: "Inspect the parsed model of an EPUB book",
		Long: `anxbook opens an EPUB container and prints its assembled book model:
metadata, the chapter list with resume tokens, the table of contents,
individual chapter content, and the cover image.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			return run(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().Bool("toc", false, "Print the table of contents tree")
	cmd.Flags().IntP("chapter", "c", -1, "Print the content of the chapter at this index")
	cmd.Flags().String("resume", "", "Resolve a position token and print that chapter")
	cmd.Flags().Bool("text", false, "Print chapter content as plain text instead of markup")
	cmd.Flags().String("cover", "", "Write a JPEG cover thumbnail to this path")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	cmd.Flags().String("log-format", "text", "Log format: text, json")

	return cmd
}

// readCLIOptions reads and validates flags into cliOptions.
func readCLIOptions(cmd *cobra.Command, args []string) (*cliOptions, error) {
	opts := &cliOptions{InputPath: args[0]}

	opts.ShowTOC, _ = cmd.Flags().GetBool("toc")
	opts.Chapter, _ = cmd.Flags().GetInt("chapter")
	opts.Resume, _ = cmd.Flags().GetString("resume")
	opts.PlainText, _ = cmd.Flags().GetBool("text")
	opts.CoverOut, _ = cmd.Flags().GetString("cover")

	if opts.Chapter < -1 {
		return nil, fmt.Errorf("invalid --chapter index %d", opts.Chapter)
	}

	level, _ := cmd.Flags().GetString("log-level")
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid --log-level %q (want debug, info, warn or error)", level)
	}

	format, _ := cmd.Flags().GetString("log-format")
	switch strings.ToLower(format) {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid --log-format %q (want text or json)", format)
	}

	opts.Logger = buildLogger(os.Stderr, level, format)
	return opts, nil
}

// buildLogger constructs a slog logger writing to w.
func buildLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	hopts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

func run(out io.Writer, opts *cliOptions) error {
	book, err := epub.Open(opts.InputPath)
	if err != nil {
		return err
	}

	for _, w := range book.Warnings() {
		opts.Logger.Warn(w, "book", opts.InputPath)
	}

	switch {
	case opts.CoverOut != "":
		thumb, err := book.CoverThumbnail(defaultThumbWidth, defaultThumbHeight)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.CoverOut, thumb, 0o644); err != nil {
			return fmt.Errorf("failed to write cover: %w", err)
		}
		fmt.Fprintf(out, "wrote %s (%d bytes)\n", opts.CoverOut, len(thumb))
		return nil

	case opts.ShowTOC:
		printTOC(out, book.TOC(), 0)
		return nil

	case opts.Resume != "":
		ch, ok := book.ChapterForToken(opts.Resume)
		if !ok {
			return fmt.Errorf("book has no chapters")
		}
		return printChapter(out, ch, opts.PlainText)

	case opts.Chapter >= 0:
		ch, ok := book.ChapterAt(opts.Chapter)
		if !ok {
			return fmt.Errorf("chapter index %d out of range (book has %d chapters)",
				opts.Chapter, len(book.Chapters()))
		}
		return printChapter(out, ch, opts.PlainText)

	default:
		printSummary(out, book)
		return nil
	}
}

func printSummary(out io.Writer, book *epub.Book) {
	fmt.Fprintf(out, "Title:       %s\n", book.Title())
	fmt.Fprintf(out, "Author:      %s\n", book.Author())
	if d := book.Description(); d != "" {
		fmt.Fprintf(out, "Description: %s\n", d)
	}
	fmt.Fprintf(out, "Chapters:    %d\n\n", len(book.Chapters()))
	for _, ch := range book.Chapters() {
		fmt.Fprintf(out, "%4d  %-48s %s\n", ch.Index, ch.Title, epub.EncodePosition(ch.Index))
	}
}

func printTOC(out io.Writer, points []epub.NavPoint, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, np := range points {
		fmt.Fprintf(out, "%s- %s (%s)\n", indent, np.Label, np.Href)
		printTOC(out, np.Children, depth+1)
	}
}

func printChapter(out io.Writer, ch epub.Chapter, plainText bool) error {
	fmt.Fprintf(out, "# %s\n\n", ch.Title)
	if plainText {
		fmt.Fprintln(out, ch.Text())
		return nil
	}
	content, err := ch.CleanContent()
	if err != nil {
		return fmt.Errorf("failed to clean chapter markup: %w", err)
	}
	fmt.Fprintln(out, content)
	return nil
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
