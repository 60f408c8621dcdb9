package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/dmitrijs2005/courseimage/internal/flagx"
	"github.com/dmitrijs2005/courseimage/internal/server"
	"github.com/dmitrijs2005/courseimage/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	// -issue-token <userid> prints a signed access token and exits.
	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	issueFor := fs.Int64("issue-token", 0, "print an access token for this user id and exit")
	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"issue-token"})); err != nil {
		log.Fatalf("%v", err)
	}
	if *issueFor != 0 {
		if err := server.IssueToken(os.Stdout, cfg, *issueFor); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	app, err := server.NewApp(ctx, cfg, server.NewLogger(cfg))
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
