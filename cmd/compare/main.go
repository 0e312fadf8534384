package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/eleven-am/pose-coach/internal/bootstrap"
	"github.com/eleven-am/pose-coach/internal/feedback"
	"github.com/eleven-am/pose-coach/internal/similarity"
)

type output struct {
	Distance *float64         `json:"distance"`
	Frames   int              `json:"frames"`
	Dropped  int              `json:"dropped"`
	A        similarity.Stats `json:"a"`
	B        similarity.Stats `json:"b"`
	Feedback feedback.Advice  `json:"feedback"`
}

func main() {
	action := flag.String("action", "exercise", "name of the movement, used in the feedback prompt")
	asJSON := flag.Bool("json", false, "print the result as JSON")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <reference-video> <attempt-video>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), flag.Arg(1), *action, *asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "compare: %v\n", err)
		var se *similarity.SequenceError
		if errors.As(err, &se) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

func run(refPath, attPath, action string, asJSON bool) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	det, err := bootstrap.NewDetector(cfg, logger)
	if err != nil {
		return err
	}
	if c, ok := det.(interface{ Close() error }); ok {
		defer c.Close()
	}

	open := bootstrap.NewOpener(cfg, logger)
	a, err := open(ctx, refPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", refPath, err)
	}
	b, err := open(ctx, attPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", attPath, err)
	}

	pipeline := similarity.New(det, bootstrap.PipelineConfig(cfg), logger)
	result, err := pipeline.Compare(ctx, a, b)
	if err != nil {
		return err
	}

	advice := bootstrap.NewFeedbackService(cfg, logger).Advise(ctx, result.Distance, action)
	return report(result, advice, asJSON)
}

func report(result *similarity.Result, advice feedback.Advice, asJSON bool) error {
	if asJSON {
		out := output{
			Frames:   result.Frames,
			Dropped:  result.Dropped,
			A:        result.A,
			B:        result.B,
			Feedback: advice,
		}
		if result.Finite() {
			out.Distance = &result.Distance
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Distance: %.4f\n", result.Distance)
	fmt.Printf("Frames:   %d compared, %d dropped\n", result.Frames, result.Dropped)
	fmt.Printf("Verdict:  %s\n\n", advice.Verdict)
	fmt.Println(advice.Text)
	return nil
}
