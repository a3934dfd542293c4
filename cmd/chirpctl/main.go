// Command chirpctl inspects and crops chirp audio files.
//
// Usage:
//
//	chirpctl [-v] info <file>
//	chirpctl [-v] waveform [-width 60] [-height 8] <file>
//	chirpctl [-v] crop -start 0.5 -end 2 [-min 0.1] [-o out.wav] [-opus] <file>
//	chirpctl [-v] trim [-threshold 0.02] [-window 20ms] [-o out.wav] <file>
//	chirpctl [-v] article [-max 2500] <page.html>
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"

	"go.aimuz.me/chirps/audio"
	"go.aimuz.me/chirps/crop"
	"go.aimuz.me/chirps/reader"
)

var (
	bold   = color.New(color.Bold)
	cyan   = color.New(color.FgCyan)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
)

var errUsage = errors.New("usage: chirpctl [-v] info|waveform|crop|trim|article [flags] <file>")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		red.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("chirpctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})))

	rest := fs.Args()
	if len(rest) == 0 {
		return errUsage
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "info":
		return runInfo(cmdArgs, stdout, stderr)
	case "waveform":
		return runWaveform(cmdArgs, stdout, stderr)
	case "crop":
		return runCrop(cmdArgs, stdout, stderr)
	case "trim":
		return runTrim(cmdArgs, stdout, stderr)
	case "article":
		return runArticle(cmdArgs, stdout, stderr)
	}
	return fmt.Errorf("unknown command %q\n%w", cmd, errUsage)
}

// ─────────────────────────────────────────────────────────────────────────────
// Commands
// ─────────────────────────────────────────────────────────────────────────────

func runInfo(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, data, buf, err := load(fs)
	if err != nil {
		return err
	}

	bold.Fprintln(stdout, filepath.Base(path))
	fmt.Fprintf(stdout, "  format:      %s\n", audio.Sniff(data))
	fmt.Fprintf(stdout, "  size:        %d bytes\n", len(data))
	fmt.Fprintf(stdout, "  sample rate: %d Hz\n", buf.SampleRate)
	fmt.Fprintf(stdout, "  channels:    %d\n", buf.NumChannels())
	fmt.Fprintf(stdout, "  frames:      %d\n", buf.Len())
	fmt.Fprintf(stdout, "  duration:    %.3fs\n", buf.Duration())
	return nil
}

func runWaveform(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("waveform", flag.ContinueOnError)
	fs.SetOutput(stderr)
	width := fs.Int("width", 60, "Columns")
	height := fs.Int("height", 8, "Rows")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *width <= 0 || *height <= 0 {
		return fmt.Errorf("width and height must be positive")
	}
	_, _, buf, err := load(fs)
	if err != nil {
		return err
	}

	for _, line := range renderWaveform(audio.Sample(buf, *width), *height) {
		cyan.Fprintln(stdout, line)
	}
	fmt.Fprintf(stdout, "%.3fs, %d Hz\n", buf.Duration(), buf.SampleRate)
	return nil
}

func runCrop(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("crop", flag.ContinueOnError)
	fs.SetOutput(stderr)
	start := fs.Float64("start", 0, "Window start in seconds")
	end := fs.Float64("end", -1, "Window end in seconds (default: end of clip)")
	minSpan := fs.Float64("min", crop.DefaultMinSpan, "Shortest window in seconds")
	out := fs.String("o", "", "Output file (default: <input>.crop.wav)")
	opus := fs.Bool("opus", false, "Write Ogg Opus instead of WAV")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, _, buf, err := load(fs)
	if err != nil {
		return err
	}

	ctl, err := crop.New(buf.Duration(), *minSpan)
	if err != nil {
		return err
	}
	want := crop.Range{Start: *start, End: *end}
	if want.End < 0 {
		want.End = buf.Duration()
	}
	r := ctl.Set(want)
	if r != want {
		yellow.Fprintf(stdout, "window adjusted to %.3fs-%.3fs\n", r.Start, r.End)
	}

	return writeClip(stdout, buf, r, outputPath(path, *out, *opus), *opus)
}

func runTrim(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("trim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	threshold := fs.Float64("threshold", audio.DefaultActivityThreshold, "RMS level that counts as sound")
	window := fs.Duration("window", 20*time.Millisecond, "RMS window")
	out := fs.String("o", "", "Write the trimmed clip to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	_, _, buf, err := load(fs)
	if err != nil {
		return err
	}

	start, end, ok := audio.DetectActivity(buf, float32(*threshold), *window)
	if !ok {
		yellow.Fprintln(stdout, "no sound above threshold")
		return nil
	}
	fmt.Fprintf(stdout, "sound from %.3fs to %.3fs\n", start, end)

	if *out == "" {
		return nil
	}
	return writeClip(stdout, buf, crop.Range{Start: start, End: end}, *out, strings.HasSuffix(*out, ".opus"))
}

func runArticle(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("article", flag.ContinueOnError)
	fs.SetOutput(stderr)
	maxLen := fs.Int("max", reader.DefaultChunkSize, "Longest chunk in characters")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("article: expected one file")
	}
	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read page: %w", err)
	}
	defer f.Close()

	a, err := reader.Parse(f, *maxLen)
	if err != nil {
		return err
	}
	if a.Title != "" {
		bold.Fprintln(stdout, a.Title)
	}
	for i, c := range a.Chunks {
		cyan.Fprintf(stdout, "[%d/%d] ", i+1, len(a.Chunks))
		fmt.Fprintln(stdout, c)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// load reads and decodes the single file argument of fs.
func load(fs *flag.FlagSet) (path string, data []byte, buf *audio.Buffer, err error) {
	if fs.NArg() != 1 {
		return "", nil, nil, fmt.Errorf("%s: expected one file", fs.Name())
	}
	path = fs.Arg(0)
	data, err = os.ReadFile(path)
	if err != nil {
		return "", nil, nil, fmt.Errorf("read audio: %w", err)
	}
	buf, err = audio.Decode(data)
	if err != nil {
		return "", nil, nil, err
	}
	slog.Debug("decoded", "path", path, "rate", buf.SampleRate, "channels", buf.NumChannels(), "frames", buf.Len())
	return path, data, buf, nil
}

func writeClip(stdout io.Writer, buf *audio.Buffer, r crop.Range, path string, opus bool) error {
	clip, err := audio.Slice(buf, r.Start, r.End)
	if err != nil {
		return err
	}

	var data []byte
	if opus {
		data, err = audio.EncodeOggOpus(clip)
	} else {
		data, err = audio.EncodeWAV(clip)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write clip: %w", err)
	}

	fmt.Fprintf(stdout, "wrote %s (%.3fs, %d bytes)\n", path, clip.Duration(), len(data))
	return nil
}

func outputPath(in, out string, opus bool) string {
	if out != "" {
		return out
	}
	ext := ".crop.wav"
	if opus {
		ext = ".crop.opus"
	}
	return strings.TrimSuffix(in, filepath.Ext(in)) + ext
}

// renderWaveform draws an envelope as rows of block characters.
func renderWaveform(env audio.Envelope, height int) []string {
	rows := make([][]rune, height)
	for i := range rows {
		rows[i] = []rune(strings.Repeat(" ", len(env)))
	}
	for x, p := range env {
		top, size := p.Bar(height)
		for y := max(top, 0); y < min(top+size, height); y++ {
			rows[y][x] = '█'
		}
	}

	lines := make([]string, height)
	for i, row := range rows {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return lines
}
