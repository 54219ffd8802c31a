package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sanity-io/litter"
	"github.com/zeromicro/go-zero/core/logx"

	"postgen/internal/cli"
	"postgen/internal/config"
	"postgen/internal/svc"
	"postgen/pkg/confkit"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("postgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configFile = fs.String("f", "etc/postgen.yaml", "the config file")
		prompt     = fs.String("prompt", "", "literal prompt sent to the model")
		topic      = fs.String("topic", "", "post topic, rendered through Post.PromptTemplate when configured")
		details    = fs.String("details", "", "extra details passed to the prompt template")
		dump       = fs.Bool("dump", false, "print the whole generated post instead of its content")
	)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := config.Load(confkit.LocateFile(*configFile))
	if err != nil {
		logx.Errorf("load config: %v", err)
		return exitError
	}
	logx.MustSetup(cfg.Log)
	logx.DisableStat()
	cli.LogConfigSummary(cfg)

	sc, err := svc.NewServiceContext(*cfg)
	if err != nil {
		logx.Errorf("init: %v", err)
		return exitError
	}
	defer sc.Close()

	text, err := sc.ResolvePrompt(svc.PromptInput{Prompt: *prompt, Topic: *topic, Details: *details})
	if err != nil {
		logx.Errorf("resolve prompt: %v", err)
		return exitError
	}

	p, err := sc.Generator.Generate(ctx, text)
	if err != nil {
		logx.Errorf("%v", err)
		return exitError
	}
	if p == nil {
		fmt.Fprintln(stderr, "no post generated: reply was not valid post JSON")
		return exitError
	}

	if *dump {
		fmt.Fprintln(stdout, litter.Sdump(p))
	} else {
		fmt.Fprintln(stdout, p.Content)
	}
	return exitOK
}
