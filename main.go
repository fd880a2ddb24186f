package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gallery-reader/internal/library"
	"gallery-reader/internal/reader"
)

var version = "dev"

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
	debug      bool
}

// newLogger writes human-readable logs to stderr.
func newLogger(debug bool) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "time",
		LevelKey:    "level",
		NameKey:     "logger",
		MessageKey:  "message",
		EncodeTime:  zapcore.ISO8601TimeEncoder,
		EncodeLevel: zapcore.CapitalLevelEncoder,
		EncodeName:  zapcore.FullNameEncoder,
	}
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

func (o *rootOptions) resolvedConfigPath() string {
	if o.configPath != "" {
		return o.configPath
	}
	return getConfigPath()
}

// loadConfig reads the config file and logs every warning.
func (o *rootOptions) loadConfig(log *zap.Logger) ConfigLoadResult {
	result := loadConfigFromPath(o.resolvedConfigPath())
	for _, w := range result.Warnings {
		log.Warn("config", zap.String("path", result.Path), zap.String("warning", w))
	}
	return result
}

func openLibrary(root string, cfg Config, log *zap.Logger) (*library.Library, error) {
	opts := cfg.libraryOptions()
	opts.Logger = log.Named("library")
	return library.Open(root, opts)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           appName,
		Short:         "Read image books from a local library",
		Long:          "Reads books made of image folders or archives (zip, rar, 7z) in grid, scroll, single page and two-page spread views.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is "+getConfigPath()+")")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(newReadCmd(opts))
	root.AddCommand(newBooksCmd(opts))
	root.AddCommand(newChaptersCmd(opts))
	return root
}

func newReadCmd(root *rootOptions) *cobra.Command {
	var chapter string
	var page int

	cmd := &cobra.Command{
		Use:   "read <library> <book>",
		Short: "Open a book in the reader window",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(root.debug)
			defer log.Sync() //nolint:errcheck

			result := root.loadConfig(log)
			lib, err := openLibrary(args[0], result.Config, log)
			if err != nil {
				return err
			}
			prefs := NewPrefsStore(
				filepath.Join(filepath.Dir(result.Path), "prefs.yaml"),
				reader.Preferences{Mode: reader.ModeSingle, RightToLeft: result.Config.RightToLeft},
			)
			opts, err := prepareSession(cmd.Context(), lib, args[1], chapter, page)
			if err != nil {
				return err
			}
			return runReader(lib, result, prefs, opts, log)
		},
	}
	cmd.Flags().StringVar(&chapter, "chapter", "", "chapter to open (default: book root, or the first chapter)")
	cmd.Flags().IntVar(&page, "page", -1, "page index to open; 0 opens the grid (default: saved progress)")
	return cmd
}

// prepareSession resolves the chapter list, the chapter to open, its images
// and the initial page.
func prepareSession(ctx context.Context, lib *library.Library, book, chapter string, page int) (GameOptions, error) {
	chapters, err := lib.Chapters(ctx, book)
	if err != nil {
		return GameOptions{}, err
	}
	images, err := lib.GetImagesInChapter(ctx, book, chapter)
	if err != nil {
		return GameOptions{}, err
	}
	if chapter == "" && len(images) == 0 && len(chapters) > 0 {
		chapter = chapters[0]
		if images, err = lib.GetImagesInChapter(ctx, book, chapter); err != nil {
			return GameOptions{}, err
		}
	}
	if page < 0 {
		page, _ = lib.Progress(book)
	}
	return GameOptions{
		Book:        book,
		Chapter:     chapter,
		Chapters:    chapters,
		Images:      images,
		InitialPage: page,
	}, nil
}

// runReader opens the window and blocks until the reader exits.
func runReader(lib *library.Library, result ConfigLoadResult, prefs *PrefsStore, opts GameOptions, log *zap.Logger) error {
	if err := InitGraphics(); err != nil {
		return fmt.Errorf("loading font: %w", err)
	}

	watcher, err := lib.Watch()
	if err != nil {
		log.Warn("library changes will not be detected", zap.Error(err))
		watcher = nil
	}

	g, err := NewGame(lib, watcher, result, prefs, opts, log)
	if err != nil {
		if watcher != nil {
			watcher.Close()
		}
		return err
	}
	defer g.Close()

	cfg := result.Config
	ebiten.SetWindowTitle(fmt.Sprintf("%s - %s", opts.Book, appName))
	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.Fullscreen)
	ebiten.SetScreenClearedEveryFrame(false)

	return ebiten.RunGame(g)
}

func newBooksCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "books <library>",
		Short: "List the books in a library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(root.debug)
			defer log.Sync() //nolint:errcheck

			result := root.loadConfig(log)
			lib, err := openLibrary(args[0], result.Config, log)
			if err != nil {
				return err
			}
			books, err := lib.Books()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderBooks(lib.Root(), books))
			return nil
		},
	}
}

func newChaptersCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chapters <library> <book>",
		Short: "List the chapters of a book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(root.debug)
			defer log.Sync() //nolint:errcheck

			result := root.loadConfig(log)
			lib, err := openLibrary(args[0], result.Config, log)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			book := args[1]
			names, err := lib.Chapters(ctx, book)
			if err != nil {
				return err
			}
			rootImages, err := lib.GetImagesInChapter(ctx, book, "")
			if err != nil {
				return err
			}
			chapters := make([]ChapterInfo, 0, len(names))
			for _, name := range names {
				images, err := lib.GetImagesInChapter(ctx, book, name)
				chapters = append(chapters, ChapterInfo{Name: name, Images: len(images), Err: err})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderChapters(book, len(rootImages), chapters))
			return nil
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, library.ErrBookNotFound) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
